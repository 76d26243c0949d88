package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/frontbuild/internal/assets"
	httpmiddleware "github.com/wolfeidau/frontbuild/internal/http"
	"golang.org/x/sync/errgroup"
)

type ServeCmd struct {
	ConfigFlags `embed:""`

	Listen      string   `help:"HTTP server listen address" default:"localhost:8080" env:"FRONTBUILD_LISTEN"`
	Template    string   `help:"HTML template rendered at / with the entry point scripts" env:"FRONTBUILD_TEMPLATE"`
	Title       string   `help:"page title passed to the template" default:"frontbuild"`
	CORSOrigins []string `help:"origins allowed to load the assets" default:"http://localhost:1313" env:"FRONTBUILD_CORS_ORIGINS"`
}

func (s *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := s.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flush := setupTelemetry(ctx, globals)
	defer flush()

	pipeline, err := s.pipeline(cfg)
	if err != nil {
		return fmt.Errorf("failed to create assets pipeline: %w", err)
	}

	handler, err := s.handler(pipeline)
	if err != nil {
		return err
	}

	srv := configureHTTPServer(s.Listen, handler)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pipeline.Watch(ctx)
	})

	g.Go(func() error {
		log.Info().Str("addr", s.Listen).Str("public", cfg.Paths.Public).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *ServeCmd) pipeline(cfg assets.Config) (*assets.Pipeline, error) {
	if s.Template == "" {
		return assets.New(cfg)
	}
	return assets.NewWithTemplate(cfg, s.Template)
}

// handler serves the output directory below the public path and, with a
// template, the page for the first entry point at /
func (s *ServeCmd) handler(pipeline *assets.Pipeline) (http.Handler, error) {
	cfg := pipeline.Config()

	mux := http.NewServeMux()
	mux.Handle(httpmiddleware.StaticPrefix(cfg.Paths.Public), httpmiddleware.Static(cfg.Paths.Public, cfg.Paths.Dist))

	if s.Template != "" {
		names := make([]string, 0, len(cfg.EntryPoints))
		for name := range cfg.EntryPoints {
			names = append(names, name)
		}
		slices.Sort(names)

		page, err := pipeline.Handler(filepath.Base(s.Template), s.Title, cfg.EntryPoints[names[0]], nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create page handler: %w", err)
		}
		mux.HandleFunc("GET /{$}", page)
	}

	return httpmiddleware.Chain(mux,
		httpmiddleware.RequestLogger(log.Logger),
		httpmiddleware.CORS(s.CORSOrigins),
		httpmiddleware.Compress(),
	), nil
}
