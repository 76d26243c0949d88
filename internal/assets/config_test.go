package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/frontbuild/internal/replace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	require.Equal(t, ModeProduction, cfg.Mode)
	require.Equal(t, "./src/components", cfg.Paths.Components)
	require.Equal(t, "/assets/", cfg.Paths.Public)
	require.Equal(t, map[string]string{"tim": "./src/scripts/tim.js"}, cfg.EntryPoints)
	require.Equal(t, "**/*.async.vue", cfg.ComponentPattern)
	require.Equal(t, replace.AsyncComponentRegistration, cfg.Placeholder)
	require.Equal(t, filepath.Join("../site/themes/tim/", "meta.json"), cfg.MetafilePath())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml overrides defaults", func(t *testing.T) {
		path := filepath.Join(dir, "frontbuild.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
mode: development
paths:
  components: ./ui/components
entryPoints:
  app: ./ui/app.js
loaders:
  .vue: js
`), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		require.Equal(t, ModeDevelopment, cfg.Mode)
		require.Equal(t, "./ui/components", cfg.Paths.Components)
		require.Equal(t, "../site/themes/tim/", cfg.Paths.Dist)
		require.Equal(t, map[string]string{"app": "./ui/app.js"}, cfg.EntryPoints)
		require.Equal(t, map[string]string{".vue": "js"}, cfg.Loaders)
	})

	t.Run("json by extension", func(t *testing.T) {
		path := filepath.Join(dir, "frontbuild.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"debug": true, "cleanPatterns": ["css/*"]}`), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.True(t, cfg.Debug)
		require.Equal(t, []string{"css/*"}, cfg.CleanPatterns)
		require.Equal(t, DefaultConfig().EntryPoints, cfg.EntryPoints)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mode: [unclosed"), 0o600))

		_, err := LoadConfig(path)
		require.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		errType error
	}{
		{
			name:    "unknown mode",
			modify:  func(c *Config) { c.Mode = "staging" },
			errType: ErrInvalidMode,
		},
		{
			name:    "no entry points",
			modify:  func(c *Config) { c.EntryPoints = nil },
			errType: ErrInvalidConfig,
		},
		{
			name:    "no dist",
			modify:  func(c *Config) { c.Paths.Dist = "" },
			errType: ErrInvalidConfig,
		},
		{
			name:    "no components",
			modify:  func(c *Config) { c.Paths.Components = "" },
			errType: ErrInvalidConfig,
		},
		{
			name:    "no placeholder",
			modify:  func(c *Config) { c.Placeholder = "" },
			errType: ErrInvalidConfig,
		},
		{
			name:    "unknown loader",
			modify:  func(c *Config) { c.Loaders = map[string]string{".vue": "vue"} },
			errType: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.errType)
		})
	}
}

func TestConfig_Aliases(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "vue/dist/vue.min.js", cfg.aliases()["vue"])

	cfg.Mode = ModeDevelopment
	require.Equal(t, "vue/dist/vue.js", cfg.aliases()["vue"])

	cfg.Alias = map[string]string{"vue": "vue/dist/vue.runtime.js", "lodash": "lodash-es"}
	require.Equal(t, map[string]string{"vue": "vue/dist/vue.runtime.js", "lodash": "lodash-es"}, cfg.aliases())
}

func TestConfig_MetafilePath(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Metafile = ""
	require.Empty(t, cfg.MetafilePath())

	abs := filepath.Join(t.TempDir(), "meta.json")
	cfg.Metafile = abs
	require.Equal(t, abs, cfg.MetafilePath())
}
