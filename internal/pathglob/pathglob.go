// Package pathglob matches slash separated relative paths against globs in
// which a ** segment spans zero or more directories.
package pathglob

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher matches paths against a compiled pattern.
type Matcher struct {
	pattern string
	globs   []glob.Glob
}

// Compile compiles pattern. A ** segment matches any number of directories,
// including none, so "js/**/*" matches both "js/app.js" and "js/chunks/a.js".
func Compile(pattern string) (*Matcher, error) {
	variants := expand(strings.Split(pattern, "/"))

	globs := make([]glob.Glob, 0, len(variants))
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}

	return &Matcher{pattern: pattern, globs: globs}, nil
}

// MustCompile is like Compile but panics on an invalid pattern.
func MustCompile(pattern string) *Matcher {
	m, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether the slash separated path matches.
func (m *Matcher) Match(path string) bool {
	for _, g := range m.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func (m *Matcher) String() string {
	return m.pattern
}

// expand returns the pattern with every non final ** segment both kept and dropped.
func expand(segments []string) []string {
	if len(segments) == 0 {
		return []string{""}
	}

	head, rest := segments[0], segments[1:]
	tails := expand(rest)

	variants := make([]string, 0, 2*len(tails))
	for _, tail := range tails {
		if len(rest) == 0 {
			variants = append(variants, head)
			continue
		}
		variants = append(variants, head+"/"+tail)
		if head == "**" {
			variants = append(variants, tail)
		}
	}

	return dedupe(variants)
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
