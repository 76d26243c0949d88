package assets

import (
	"context"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

// Watch builds the assets and rebuilds them whenever an input changes, until
// ctx is cancelled. The output directory is cleaned once, before the first build.
func (p *Pipeline) Watch(ctx context.Context) error {
	opts, err := p.buildOptions(newDonePlugin(p.config.Mode), newWatchRunPlugin(p))
	if err != nil {
		return err
	}

	if err := Clean(p.config.Paths.Dist, p.config.CleanPatterns); err != nil {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		for _, msg := range ctxErr.Errors {
			logMessage(log.Error(), msg).Msg("Build error")
		}
		return fmt.Errorf("%w: failed to create build context", ErrBuildFailed)
	}
	defer buildCtx.Dispose()

	log.Info().
		Str("mode", p.config.Mode).
		Strs("entrypoints", entryPaths(opts.EntryPointsAdvanced)).
		Msg("Watching assets")

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("failed to start watching: %w", err)
	}

	<-ctx.Done()

	log.Info().Msg("Stopped watching assets")

	return nil
}
