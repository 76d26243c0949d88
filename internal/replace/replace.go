// Package replace implements the search-and-replace source transform used to
// splice generated code into placeholder tokens.
package replace

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
)

// AsyncComponentRegistration is the token replaced by the async component
// registration block.
const AsyncComponentRegistration = "/* {asyncComponentRegistration} */"

// Transform replaces every occurrence of Search with the output of Replace.
type Transform struct {
	Search  string
	Replace func() string
}

// Apply returns src with every occurrence of the search token replaced. Replace
// is only called when the token is present. The boolean reports whether a
// replacement happened.
func (t Transform) Apply(src []byte) ([]byte, bool) {
	if t.Search == "" || !bytes.Contains(src, []byte(t.Search)) {
		return src, false
	}

	var replacement string
	if t.Replace != nil {
		replacement = t.Replace()
	}

	return bytes.ReplaceAll(src, []byte(t.Search), []byte(replacement)), true
}

// Rule selects the files a transform applies to.
type Rule struct {
	// Test must match the file path.
	Test *regexp.Regexp
	// Include, when set, restricts matches to files below this directory.
	Include string
	// Exclude rejects file paths it matches.
	Exclude *regexp.Regexp
}

// Matches reports whether the file at path is subject to the rule.
func (r Rule) Matches(path string) bool {
	if r.Test != nil && !r.Test.MatchString(path) {
		return false
	}

	if r.Exclude != nil && r.Exclude.MatchString(path) {
		return false
	}

	if r.Include != "" && !within(r.Include, path) {
		return false
	}

	return true
}

func within(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
