package gamma

import (
	"io"
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"
)

// Environment variables read by OptionsFromEnv.
const (
	EnvPath            = "GAMMAPATH"               // include search roots, list separated
	EnvMaxIncludeDepth = "GAMMA_MAX_INCLUDE_DEPTH" // include nesting limit
	EnvLineInfo        = "GAMMA_LINEINFO"          // emit line-info markers (default on)
	EnvDebug           = "GAMMA_DEBUG"             // trace compilation to stderr
)

// Options configures a compilation. The zero value compiles without line
// markers, resolves files from the working directory and keeps stylesheets
// as text.
type Options struct {
	Resolver    Resolver
	StyleSheets StyleSheets

	// LineInfo emits an OpLineInfo marker before each statement on a new
	// line.
	LineInfo bool

	// MaxIncludeDepth bounds include nesting; DefaultMaxIncludeDepth when 0.
	MaxIncludeDepth int

	// Debug receives compilation traces when non-nil.
	Debug io.Writer
}

// OptionsFromEnv returns the options the command line tools use, read from
// the environment.
func OptionsFromEnv() Options {
	env.Load()
	var roots []string
	for _, r := range filepath.SplitList(env.Str(EnvPath)) {
		if r != "" {
			roots = append(roots, r)
		}
	}
	opts := Options{
		Resolver:        NewFSResolver(roots),
		LineInfo:        !env.Has(EnvLineInfo) || env.Bool(EnvLineInfo),
		MaxIncludeDepth: env.Int(EnvMaxIncludeDepth, DefaultMaxIncludeDepth),
	}
	if env.Bool(EnvDebug) {
		opts.Debug = os.Stderr
	}
	return opts
}

// Set with -ldflags "-X github.com/freixas/gamma-sub002.Version=...".
var (
	Version   = "dev"
	BuildDate = "unknown"
)
