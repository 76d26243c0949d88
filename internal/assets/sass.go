package assets

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/frontbuild/internal/pathglob"
)

// globImportPattern matches @import rules whose target contains a wildcard
var globImportPattern = regexp.MustCompile(`@import\s+['"]([^'"]*[*?{\[][^'"]*)['"]\s*;`)

var stylesheetExts = []string{".scss", ".sass", ".css"}

// sassCompiler compiles stylesheets with an embedded dart-sass process,
// started on first use and stopped when the build is disposed.
type sassCompiler struct {
	cfg        SassConfig
	compressed bool

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

func newSassCompiler(cfg SassConfig, dev bool) *sassCompiler {
	return &sassCompiler{cfg: cfg, compressed: !dev}
}

func (s *sassCompiler) start() (*godartsass.Transpiler, error) {
	if s.cfg.Binary == "" {
		return nil, ErrSassUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transpiler != nil {
		return s.transpiler, nil
	}

	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: s.cfg.Binary,
		Timeout:                  30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start dart-sass: %w", err)
	}

	s.transpiler = t
	return t, nil
}

// Compile returns the CSS for the stylesheet at filename along with the
// stylesheets pulled in through glob imports.
func (s *sassCompiler) Compile(filename string) (string, []string, error) {
	t, err := s.start()
	if err != nil {
		return "", nil, err
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, err
	}

	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", nil, err
	}

	loadPaths := append([]string{filepath.Dir(abs)}, s.cfg.IncludePaths...)
	source, imported := expandGlobImports(string(src), loadPaths, abs)

	var style godartsass.OutputStyle = godartsass.OutputStyleExpanded
	if s.compressed {
		style = godartsass.OutputStyleCompressed
	}

	var syntax godartsass.SourceSyntax = godartsass.SourceSyntaxSCSS
	if filepath.Ext(abs) == ".sass" {
		syntax = godartsass.SourceSyntaxSASS
	}

	result, err := t.Execute(godartsass.Args{
		Source:       source,
		URL:          (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
		IncludePaths: loadPaths,
		OutputStyle:  style,
		SourceSyntax: syntax,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to compile %s: %w", filename, err)
	}

	return result.CSS, imported, nil
}

func (s *sassCompiler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transpiler == nil {
		return nil
	}

	err := s.transpiler.Close()
	s.transpiler = nil
	return err
}

func sassPlugin(s *sassCompiler) api.Plugin {
	return api.Plugin{
		Name: "sass",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.s[ac]ss$`, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					css, imported, err := s.Compile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					resolveDir := filepath.Dir(args.Path)
					return api.OnLoadResult{
						Contents:   &css,
						ResolveDir: resolveDir,
						Loader:     api.LoaderCSS,
						WatchFiles: append([]string{args.Path}, imported...),
					}, nil
				})
			build.OnDispose(func() {
				if err := s.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to stop dart-sass")
				}
			})
		},
	}
}

// expandGlobImports replaces every wildcard @import with one @import per
// matching stylesheet below the load paths, in sorted order. It returns the
// rewritten source and the absolute paths of the matched stylesheets.
func expandGlobImports(src string, loadPaths []string, self string) (string, []string) {
	var imported []string

	out := globImportPattern.ReplaceAllStringFunc(src, func(stmt string) string {
		pattern := globImportPattern.FindStringSubmatch(stmt)[1]

		var b strings.Builder
		for i, match := range globStylesheets(pattern, loadPaths, self) {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "@import %q;", match.rel)
			imported = append(imported, match.path)
		}
		return b.String()
	})

	return out, imported
}

type stylesheet struct {
	rel  string
	path string
}

func globStylesheets(pattern string, loadPaths []string, self string) []stylesheet {
	g, err := pathglob.Compile(pattern)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var matches []stylesheet

	for _, dir := range loadPaths {
		_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if d.Name() == "node_modules" {
					return filepath.SkipDir
				}
				return nil
			}

			ext := filepath.Ext(p)
			if !slices.Contains(stylesheetExts, ext) {
				return nil
			}

			abs, err := filepath.Abs(p)
			if err != nil || abs == self {
				return nil
			}

			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if !g.Match(rel) && !g.Match(strings.TrimSuffix(rel, ext)) {
				return nil
			}
			if seen[rel] {
				return nil
			}
			seen[rel] = true

			matches = append(matches, stylesheet{rel: rel, path: abs})
			return nil
		})
	}

	slices.SortFunc(matches, func(a, b stylesheet) int {
		return strings.Compare(a.rel, b.rel)
	})

	return matches
}
