package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/frontbuild/internal/pathglob"
)

// Clean removes the files below dist whose dist relative path matches one of
// the patterns. Patterns prefixed with ! protect the files they match, by
// relative path or by file name. Directories are left in place and a missing
// dist is not an error.
func Clean(dist string, patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}

	var include, exclude []*pathglob.Matcher
	for _, pattern := range patterns {
		negated := strings.HasPrefix(pattern, "!")
		g, err := pathglob.Compile(strings.TrimPrefix(pattern, "!"))
		if err != nil {
			return fmt.Errorf("%w: clean pattern %q: %w", ErrInvalidConfig, pattern, err)
		}
		if negated {
			exclude = append(exclude, g)
		} else {
			include = append(include, g)
		}
	}

	if _, err := os.Stat(dist); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	removed := 0
	err := filepath.WalkDir(dist, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dist, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !matchAny(include, rel) || matchAny(exclude, rel) || matchAny(exclude, path.Base(rel)) {
			return nil
		}

		if err := os.Remove(p); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return err
	}

	log.Debug().Str("dist", dist).Int("removed", removed).Msg("Cleaned output directory")

	return nil
}

func matchAny(globs []*pathglob.Matcher, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}
