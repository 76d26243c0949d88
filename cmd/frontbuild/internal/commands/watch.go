package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/frontbuild/internal/assets"
)

type WatchCmd struct {
	ConfigFlags `embed:""`
}

func (w *WatchCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := w.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flush := setupTelemetry(ctx, globals)
	defer flush()

	log.Info().Str("version", globals.Version).Str("mode", cfg.Mode).Msg("Starting watch")

	pipeline, err := assets.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create assets pipeline: %w", err)
	}

	return pipeline.Watch(ctx)
}
