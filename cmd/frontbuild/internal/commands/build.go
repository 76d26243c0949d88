package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/frontbuild/internal/assets"
)

type BuildCmd struct {
	ConfigFlags `embed:""`
}

func (b *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := b.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flush := setupTelemetry(ctx, globals)
	defer flush()

	log.Info().Str("version", globals.Version).Str("mode", cfg.Mode).Msg("Starting build")

	pipeline, err := assets.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create assets pipeline: %w", err)
	}

	if err := pipeline.Build(ctx); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	return nil
}
