package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/frontbuild/internal/assets"
	"github.com/wolfeidau/frontbuild/internal/telemetry"
)

type Globals struct {
	Debug     bool
	Telemetry bool
	Version   string
}

// ConfigFlags locate the asset config and override individual settings
type ConfigFlags struct {
	Config     string `help:"YAML/JSON config file path" env:"FRONTBUILD_CONFIG"`
	Mode       string `help:"build mode (development or production), overrides the config file" env:"FRONTBUILD_MODE"`
	Components string `help:"component root directory" env:"FRONTBUILD_COMPONENTS"`
	Dist       string `help:"output directory" env:"FRONTBUILD_DIST"`
	Public     string `help:"public path the output directory is served from" env:"FRONTBUILD_PUBLIC"`
	SassBinary string `help:"path to the dart-sass binary used to compile stylesheets" env:"FRONTBUILD_SASS_BINARY"`
	Analyze    bool   `help:"log a bundle analysis after each build" env:"FRONTBUILD_ANALYZE"`
}

// load returns the asset config with the flags applied over the config file, or the defaults
func (f *ConfigFlags) load() (assets.Config, error) {
	cfg := assets.DefaultConfig()
	if f.Config != "" {
		var err error
		if cfg, err = assets.LoadConfig(f.Config); err != nil {
			return cfg, err
		}
	}

	if f.Mode != "" {
		cfg.Mode = f.Mode
	}
	if f.Components != "" {
		cfg.Paths.Components = f.Components
	}
	if f.Dist != "" {
		cfg.Paths.Dist = f.Dist
	}
	if f.Public != "" {
		cfg.Paths.Public = f.Public
	}
	if f.SassBinary != "" {
		cfg.Sass.Binary = f.SassBinary
	}
	if f.Analyze {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// setupTelemetry starts the exporters when enabled and returns the function flushing them
func setupTelemetry(ctx context.Context, globals *Globals) func() {
	if !globals.Telemetry {
		return func() {}
	}

	shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
		ServiceName: "frontbuild",
		Version:     globals.Version,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
