package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wolfeidau/frontbuild/internal/registrar"
	"github.com/wolfeidau/frontbuild/internal/replace"
	"gopkg.in/yaml.v3"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

type Config struct {
	// Build mode, development or production
	Mode string `yaml:"mode" json:"mode"`
	// Log a bundle analysis after each build
	Debug bool `yaml:"debug" json:"debug"`

	Paths Paths `yaml:"paths" json:"paths"`

	// Entry points keyed by output name, e.g. tim: src/scripts/tim.js
	EntryPoints map[string]string `yaml:"entryPoints" json:"entryPoints"`

	// Glob relative to Paths.Components selecting async components
	ComponentPattern string `yaml:"componentPattern" json:"componentPattern"`
	// Token replaced by the component registration block
	Placeholder string `yaml:"placeholder" json:"placeholder"`
	// Regular expression selecting the files that receive the registration block
	RegistryTest string `yaml:"registryTest" json:"registryTest"`
	// Optional text/template overriding the Vue registration statement
	Statement string `yaml:"statement" json:"statement"`

	// Import path aliases, overrides the mode specific defaults
	Alias map[string]string `yaml:"alias" json:"alias"`
	// Extensions tried when resolving imports without one
	ResolveExtensions []string `yaml:"resolveExtensions" json:"resolveExtensions"`
	// esbuild loader names keyed by file extension, e.g. .svg: text
	Loaders map[string]string `yaml:"loaders" json:"loaders"`

	// Globs relative to Paths.Dist removed before building, ! negates
	CleanPatterns []string `yaml:"cleanPatterns" json:"cleanPatterns"`

	Sass SassConfig `yaml:"sass" json:"sass"`

	// Path to metafile, relative paths are resolved against Paths.Dist
	Metafile string `yaml:"metafile" json:"metafile"`
}

type Paths struct {
	Src        string `yaml:"src" json:"src"`
	Components string `yaml:"components" json:"components"`
	Dist       string `yaml:"dist" json:"dist"`
	Public     string `yaml:"public" json:"public"`
}

type SassConfig struct {
	// Path to the dart-sass binary, sass compilation is disabled when empty
	Binary       string   `yaml:"binary" json:"binary"`
	IncludePaths []string `yaml:"includePaths" json:"includePaths"`
}

// DefaultConfig returns the configuration of the site theme build
func DefaultConfig() Config {
	return Config{
		Mode: ModeProduction,
		Paths: Paths{
			Src:        "./src",
			Components: "./src/components",
			Dist:       "../site/themes/tim/",
			Public:     "/assets/",
		},
		EntryPoints: map[string]string{
			"tim": "./src/scripts/tim.js",
		},
		ComponentPattern:  registrar.DefaultPattern,
		Placeholder:       replace.AsyncComponentRegistration,
		RegistryTest:      `async\.js$`,
		ResolveExtensions: []string{".js", ".vue", ".json"},
		CleanPatterns:     []string{"js/**/*", "!.gitkeep"},
		Metafile:          "meta.json",
	}
}

// LoadConfig reads a YAML or JSON (by extension) config file over the defaults
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	// entry points in the file replace the defaults rather than merging with them
	defaultEntryPoints := cfg.EntryPoints
	cfg.EntryPoints = nil

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if cfg.EntryPoints == nil {
		cfg.EntryPoints = defaultEntryPoints
	}

	return cfg, nil
}

// Validate checks the configuration is usable for a build
func (c Config) Validate() error {
	if c.Mode != ModeDevelopment && c.Mode != ModeProduction {
		return fmt.Errorf("%w: %q, must be %s or %s", ErrInvalidMode, c.Mode, ModeDevelopment, ModeProduction)
	}
	if len(c.EntryPoints) == 0 {
		return fmt.Errorf("%w: at least one entry point is required", ErrInvalidConfig)
	}
	if c.Paths.Dist == "" {
		return fmt.Errorf("%w: dist path is required", ErrInvalidConfig)
	}
	if c.Paths.Components == "" {
		return fmt.Errorf("%w: components path is required", ErrInvalidConfig)
	}
	if c.Placeholder == "" {
		return fmt.Errorf("%w: placeholder is required", ErrInvalidConfig)
	}
	for ext, name := range c.Loaders {
		if _, ok := loaders[name]; !ok {
			return fmt.Errorf("%w: unknown loader %q for %s", ErrInvalidConfig, name, ext)
		}
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}

// MetafilePath returns the metafile location
func (c Config) MetafilePath() string {
	if c.Metafile == "" || filepath.IsAbs(c.Metafile) {
		return c.Metafile
	}
	return filepath.Join(c.Paths.Dist, c.Metafile)
}

// aliases returns the configured aliases over the vue build matching the mode
func (c Config) aliases() map[string]string {
	alias := map[string]string{
		"vue": cond(c.IsDevelopment(), "vue/dist/vue.js", "vue/dist/vue.min.js"),
	}
	for k, v := range c.Alias {
		alias[k] = v
	}
	return alias
}
