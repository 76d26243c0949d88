// Package registrar discovers async component files and generates the source
// text that registers each of them as a lazily loaded component.
package registrar

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/wolfeidau/frontbuild/internal/pathglob"
)

const (
	// DefaultPattern matches async components anywhere below the component root.
	DefaultPattern = "**/*.async.vue"

	// DefaultStatement registers a component with Vue, using the component name as
	// the chunk name of the dynamic import.
	DefaultStatement = `Vue.component('{{.Name}}', () => import(/* webpackChunkName: '{{.Name}}' */'./{{.RelativePath}}'));`
)

var defaultTemplate = template.Must(template.New("statement").Parse(DefaultStatement))

// ComponentFile is a file found by a scan of the component root.
type ComponentFile struct {
	// Path as discovered, prefixed with the component root.
	Path string
	// Name is the file name without the pattern suffix, e.g. UserCard for UserCard.async.vue.
	Name string
	// RelativePath is relative to the component root and always uses forward slashes.
	RelativePath string
}

// Valid reports whether the component name follows the naming convention.
func (c ComponentFile) Valid() bool {
	return IsComponentName(c.Name)
}

// Scan is the outcome of walking the component root.
type Scan struct {
	// Components holds the files whose names are valid, in discovery order.
	Components []ComponentFile
	// Skipped holds the matching files whose names are not valid component names.
	Skipped []ComponentFile
	// Dirs lists every directory visited, root included.
	Dirs []string
}

// Registrar generates registration statements for the components under Root.
type Registrar struct {
	root    string
	pattern string
	suffix  string
	matcher *pathglob.Matcher
	tmpl    *template.Template
}

// Option configures a Registrar.
type Option func(*Registrar) error

// WithStatement replaces the Vue registration statement. The template is
// executed with a ComponentFile.
func WithStatement(text string) Option {
	return func(r *Registrar) error {
		tmpl, err := template.New("statement").Parse(text)
		if err != nil {
			return fmt.Errorf("failed to parse statement template: %w", err)
		}
		r.tmpl = tmpl
		return nil
	}
}

// New creates a registrar for the files under root matching pattern, a glob
// relative to root in which ** spans directories.
func New(root, pattern string, opts ...Option) (*Registrar, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	matcher, err := pathglob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid component pattern: %w", err)
	}

	r := &Registrar{
		root:    root,
		pattern: pattern,
		suffix:  patternSuffix(pattern),
		matcher: matcher,
		tmpl:    defaultTemplate,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Root returns the component root.
func (r *Registrar) Root() string {
	return r.root
}

// Pattern returns the glob used to find component files.
func (r *Registrar) Pattern() string {
	return r.pattern
}

// Scan walks the component root, skipping hidden directories. A missing or
// unreadable root, or an unreadable directory below it, contributes no files.
func (r *Registrar) Scan() Scan {
	var scan Scan

	_ = filepath.WalkDir(r.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.IsDir() {
			// hidden directories are never searched, the root excepted
			if p != r.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			scan.Dirs = append(scan.Dirs, p)
			return nil
		}

		rel, err := filepath.Rel(r.root, p)
		if err != nil {
			return nil
		}
		rel = slashPath(rel)

		if !r.matcher.Match(rel) {
			return nil
		}

		file := ComponentFile{
			Path:         p,
			Name:         r.componentName(rel),
			RelativePath: rel,
		}

		if file.Valid() {
			scan.Components = append(scan.Components, file)
		} else {
			scan.Skipped = append(scan.Skipped, file)
		}

		return nil
	})

	return scan
}

// Generate returns one registration statement per valid component, joined
// with newlines in discovery order. Files with invalid names are omitted.
func (r *Registrar) Generate() string {
	return r.Statements(r.Scan())
}

// Statements renders the registration statements for the components of scan.
func (r *Registrar) Statements(scan Scan) string {
	statements := make([]string, 0, len(scan.Components))

	for _, file := range scan.Components {
		var b strings.Builder
		if err := r.tmpl.Execute(&b, file); err != nil {
			continue
		}
		statements = append(statements, b.String())
	}

	return strings.Join(statements, "\n")
}

// Generate returns the Vue registration block for the components under root
// matching pattern. An invalid pattern matches nothing.
func Generate(root, pattern string) string {
	r, err := New(root, pattern)
	if err != nil {
		return ""
	}
	return r.Generate()
}

func (r *Registrar) componentName(rel string) string {
	base := path.Base(rel)
	if r.suffix != "" {
		return strings.TrimSuffix(base, r.suffix)
	}
	name, _, _ := strings.Cut(base, ".")
	return name
}

// patternSuffix returns the literal text after the last wildcard of the
// final pattern segment, e.g. ".async.vue" for "**/*.async.vue".
func patternSuffix(pattern string) string {
	base := path.Base(pattern)
	idx := strings.LastIndexAny(base, "*?]}")
	if idx == -1 {
		return ""
	}
	return base[idx+1:]
}

func slashPath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
