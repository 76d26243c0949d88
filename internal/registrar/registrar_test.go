package registrar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("<template><div/></template>\n"), 0o600))
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name: "no files",
			want: nil,
		},
		{
			name:  "single component at root",
			files: []string{"UserCard.async.vue"},
			want: []string{
				`Vue.component('UserCard', () => import(/* webpackChunkName: 'UserCard' */'./UserCard.async.vue'));`,
			},
		},
		{
			name:  "nested component",
			files: []string{"nav/bar/NavBarItem.async.vue"},
			want: []string{
				`Vue.component('NavBarItem', () => import(/* webpackChunkName: 'NavBarItem' */'./nav/bar/NavBarItem.async.vue'));`,
			},
		},
		{
			name: "invalid names are skipped",
			files: []string{
				"userCard.async.vue",
				"User_Card.async.vue",
				"USER.async.vue",
				"U.async.vue",
				"User2.async.vue",
				"Valid.async.vue",
			},
			want: []string{
				`Vue.component('Valid', () => import(/* webpackChunkName: 'Valid' */'./Valid.async.vue'));`,
			},
		},
		{
			name: "non matching files are ignored",
			files: []string{
				"UserCard.vue",
				"UserCard.async.js",
				"Header.async.vue.bak",
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFiles(t, root, tt.files...)

			got := Generate(root, DefaultPattern)
			if tt.want == nil {
				require.Empty(t, got)
				return
			}
			require.Equal(t, strings.Join(tt.want, "\n"), got)
		})
	}
}

func TestGenerate_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")
	require.Empty(t, Generate(root, DefaultPattern))
}

func TestGenerate_InvalidPattern(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "UserCard.async.vue")
	require.Empty(t, Generate(root, "[*.async.vue"))
}

func TestGenerate_OneStatementPerFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"Alpha.async.vue",
		"forms/Beta.async.vue",
		"forms/inputs/Gamma.async.vue",
		"layout/Delta.async.vue",
	)

	lines := strings.Split(Generate(root, DefaultPattern), "\n")
	require.Len(t, lines, 4)

	seen := map[string]bool{}
	for _, line := range lines {
		require.True(t, strings.HasPrefix(line, "Vue.component('"), line)
		require.NotContains(t, line, `\`)
		seen[line] = true
	}
	require.Len(t, seen, 4)
}

func TestGenerate_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b/Beta.async.vue", "a/Alpha.async.vue", "Gamma.async.vue")

	first := Generate(root, DefaultPattern)
	require.NotEmpty(t, first)
	for range 5 {
		require.Equal(t, first, Generate(root, DefaultPattern))
	}
}

func TestRegistrar_Scan(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "cards/UserCard.async.vue", "cards/user_card.async.vue", "Other.vue")

	r, err := New(root, "")
	require.NoError(t, err)
	require.Equal(t, DefaultPattern, r.Pattern())

	scan := r.Scan()
	require.Equal(t, []ComponentFile{{
		Path:         filepath.Join(root, "cards", "UserCard.async.vue"),
		Name:         "UserCard",
		RelativePath: "cards/UserCard.async.vue",
	}}, scan.Components)

	require.Len(t, scan.Skipped, 1)
	require.Equal(t, "user_card", scan.Skipped[0].Name)
	require.False(t, scan.Skipped[0].Valid())

	require.ElementsMatch(t, []string{root, filepath.Join(root, "cards")}, scan.Dirs)
}

func TestRegistrar_ScanSkipsHiddenDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".components")
	writeFiles(t, root,
		"UserCard.async.vue",
		".storybook/StoryCard.async.vue",
		"cards/.cache/CachedCard.async.vue",
		"cards/NavBar.async.vue",
	)

	r, err := New(root, DefaultPattern)
	require.NoError(t, err)

	scan := r.Scan()
	names := make([]string, 0, len(scan.Components))
	for _, c := range scan.Components {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"UserCard", "NavBar"}, names)
	require.Empty(t, scan.Skipped)
	require.ElementsMatch(t, []string{root, filepath.Join(root, "cards")}, scan.Dirs)
}

func TestRegistrar_WithStatement(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "widgets/DatePicker.async.tsx")

	r, err := New(root, "**/*.async.tsx",
		WithStatement(`registry.set("{{.Name}}", () => import("./{{.RelativePath}}"));`))
	require.NoError(t, err)

	require.Equal(t, `registry.set("DatePicker", () => import("./widgets/DatePicker.async.tsx"));`, r.Generate())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(t.TempDir(), "[")
	require.Error(t, err)

	_, err = New(t.TempDir(), DefaultPattern, WithStatement("{{.Name"))
	require.Error(t, err)
}

func TestPatternSuffix(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{pattern: "**/*.async.vue", want: ".async.vue"},
		{pattern: "*.async.js", want: ".async.js"},
		{pattern: "widgets/**/*.lazy.tsx", want: ".lazy.tsx"},
		{pattern: "Fixed.vue", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			require.Equal(t, tt.want, patternSuffix(tt.pattern))
		})
	}
}

func TestSlashPath(t *testing.T) {
	require.Equal(t, "nav/bar/Item.async.vue", slashPath(`nav\bar\Item.async.vue`))
	require.Equal(t, "nav/bar/Item.async.vue", slashPath("nav/bar/Item.async.vue"))
}
