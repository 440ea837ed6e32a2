package gamma

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// closestMatch returns the candidate target most likely meant, or "" when
// nothing is close. Candidates containing target as a subsequence win;
// otherwise the nearest candidate within two edits is used.
func closestMatch(target string, candidates []string) string {
	if len(candidates) == 0 || target == "" {
		return ""
	}
	if ranks := fuzzy.RankFindFold(target, candidates); len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", 3
	lower := strings.ToLower(target)
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
