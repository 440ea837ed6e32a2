// resolve.go — where included scripts and external stylesheets come from.
//
// The compiler never touches the filesystem or the network itself. It asks a
// Resolver to turn the name written in the script into a canonical name and
// to read the text behind it. Two resolvers ship with the package:
//
//	FSResolver       files and http(s) URLs (the command line tool)
//	ArchiveResolver  the files of a txtar archive (bundles and tests)
//
// Resolution order for FSResolver:
//
// Network:
//   - Absolute http(s) URLs are fetched via GET with a timeout.
//   - A relative name included from a URL resolves against that URL.
//   - If the URL path has no extension, the default extension is appended.
//
// Filesystem:
//   - Relative names resolve against the includer's directory, then the
//     working directory, then each SearchPath root.
//   - If the name has no extension, name+ext is tried before name.
//   - The result is a cleaned absolute path.
package gamma

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/tools/txtar"
)

const (
	// ScriptExt is appended to include names without an extension.
	ScriptExt = ".gamma"
	// StyleSheetExt is appended to external stylesheet names without one.
	StyleSheetExt = ".css"
)

// Resolver locates and reads the sources named by include and external
// stylesheet statements.
type Resolver interface {
	// Resolve returns the canonical name of name as referenced from base.
	// external is set for stylesheets.
	Resolve(base *Origin, name string, external bool) (string, error)
	// Read returns the text of a canonical name.
	Read(name string) (string, error)
}

func defaultExt(external bool) string {
	if external {
		return StyleSheetExt
	}
	return ScriptExt
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

////////////////////////////////////////////////////////////////////////////////
//                              FILES AND URLS
////////////////////////////////////////////////////////////////////////////////

// FSResolver resolves names against the filesystem and http(s) URLs.
type FSResolver struct {
	SearchPath []string
	Timeout    time.Duration // HTTP timeout; 15s when zero
}

// NewFSResolver returns a resolver searching the given roots after the
// includer's directory and the working directory.
func NewFSResolver(searchPath []string) *FSResolver {
	return &FSResolver{SearchPath: searchPath}
}

func (r *FSResolver) Resolve(base *Origin, name string, external bool) (string, error) {
	ext := defaultExt(external)
	baseName := base.String()

	if isURL(name) || isURL(baseName) {
		u, err := url.Parse(name)
		if err != nil {
			return "", fmt.Errorf("invalid url: %w", err)
		}
		if !u.IsAbs() {
			b, err := url.Parse(baseName)
			if err != nil {
				return "", fmt.Errorf("invalid url: %w", err)
			}
			u = b.ResolveReference(u)
		}
		if path.Ext(u.Path) == "" {
			u.Path = strings.TrimSuffix(u.Path, "/") + ext
		}
		return u.String(), nil
	}

	var bases []string
	if baseName != "" {
		bases = append(bases, filepath.Dir(baseName))
	}
	if cwd, err := os.Getwd(); err == nil {
		bases = append(bases, cwd)
	}

	try := func(dir, s string) (string, bool) {
		var cands []string
		if filepath.Ext(s) != "" {
			cands = append(cands, filepath.Join(dir, s))
		} else {
			cands = append(cands, filepath.Join(dir, s)+ext, filepath.Join(dir, s))
		}
		for _, c := range cands {
			if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
				abs, _ := filepath.Abs(c)
				return filepath.Clean(abs), true
			}
		}
		return "", false
	}

	if filepath.IsAbs(name) {
		if p, ok := try("", name); ok {
			return p, nil
		}
	} else {
		for _, b := range bases {
			if p, ok := try(b, name); ok {
				return p, nil
			}
		}
	}
	for _, root := range r.SearchPath {
		if root == "" {
			continue
		}
		if p, ok := try(root, name); ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, fs.ErrNotExist)
}

func (r *FSResolver) Read(name string) (string, error) {
	if isURL(name) {
		return r.httpFetch(name)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return NormalizeNewlines(string(b)), nil
}

func (r *FSResolver) httpFetch(canonURL string) (string, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(canonURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return NormalizeNewlines(string(b)), nil
}

////////////////////////////////////////////////////////////////////////////////
//                                 ARCHIVES
////////////////////////////////////////////////////////////////////////////////

// ArchiveResolver serves the files of a txtar archive. Names are slash
// separated and relative to the archive root; the first file is the main
// script.
type ArchiveResolver struct {
	files map[string]string
	names []string
}

// NewArchiveResolver indexes the files of a.
func NewArchiveResolver(a *txtar.Archive) *ArchiveResolver {
	r := &ArchiveResolver{files: make(map[string]string, len(a.Files))}
	for _, f := range a.Files {
		name := path.Clean(f.Name)
		if _, dup := r.files[name]; !dup {
			r.names = append(r.names, name)
		}
		r.files[name] = NormalizeNewlines(string(f.Data))
	}
	return r
}

// ParseArchive parses txtar data into a resolver.
func ParseArchive(data []byte) *ArchiveResolver {
	return NewArchiveResolver(txtar.Parse(data))
}

// LoadArchive reads a txtar file into a resolver.
func LoadArchive(file string) (*ArchiveResolver, error) {
	a, err := txtar.ParseFile(file)
	if err != nil {
		return nil, err
	}
	return NewArchiveResolver(a), nil
}

// Main returns the archive's first file.
func (r *ArchiveResolver) Main() (name, src string, ok bool) {
	if len(r.names) == 0 {
		return "", "", false
	}
	name = r.names[0]
	return name, r.files[name], true
}

// Files returns the archive's file names in archive order.
func (r *ArchiveResolver) Files() []string {
	return append([]string(nil), r.names...)
}

func (r *ArchiveResolver) Resolve(base *Origin, name string, external bool) (string, error) {
	var dirs []string
	if b := base.String(); b != "" {
		dirs = append(dirs, path.Dir(b))
	}
	dirs = append(dirs, ".")
	for _, dir := range dirs {
		c := path.Join(dir, name)
		if path.Ext(name) == "" {
			if _, ok := r.files[c+defaultExt(external)]; ok {
				return c + defaultExt(external), nil
			}
		}
		if _, ok := r.files[c]; ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, fs.ErrNotExist)
}

func (r *ArchiveResolver) Read(name string) (string, error) {
	src, ok := r.files[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return src, nil
}
