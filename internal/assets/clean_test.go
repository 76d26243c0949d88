package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	dist := t.TempDir()
	for _, f := range []string{
		"js/tim.js",
		"js/UserCard.abc123.js",
		"js/.gitkeep",
		"js/chunks/shared.js",
		"css/tim.css",
		"layouts/index.html",
	} {
		p := filepath.Join(dist, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}

	require.NoError(t, Clean(dist, []string{"js/**/*", "!.gitkeep"}))

	for _, removed := range []string{"js/tim.js", "js/UserCard.abc123.js", "js/chunks/shared.js"} {
		require.NoFileExists(t, filepath.Join(dist, filepath.FromSlash(removed)))
	}
	for _, kept := range []string{"js/.gitkeep", "css/tim.css", "layouts/index.html"} {
		require.FileExists(t, filepath.Join(dist, filepath.FromSlash(kept)))
	}
	require.DirExists(t, filepath.Join(dist, "js", "chunks"))
}

func TestClean_MissingDist(t *testing.T) {
	require.NoError(t, Clean(filepath.Join(t.TempDir(), "missing"), []string{"js/**/*"}))
}

func TestClean_NoPatterns(t *testing.T) {
	dist := t.TempDir()
	p := filepath.Join(dist, "app.js")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))

	require.NoError(t, Clean(dist, nil))
	require.FileExists(t, p)
}

func TestClean_InvalidPattern(t *testing.T) {
	require.ErrorIs(t, Clean(t.TempDir(), []string{"["}), ErrInvalidConfig)
}
