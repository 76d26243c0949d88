package assets

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/frontbuild/internal/registrar"
	"github.com/wolfeidau/frontbuild/internal/replace"
	"github.com/wolfeidau/frontbuild/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// asyncRegistrationPlugin splices the component registration block into the
// placeholder of every registry module matched by rule. The component root is
// scanned again for each registry module and its directories are watched so
// adding or removing a component triggers a rebuild.
func asyncRegistrationPlugin(reg *registrar.Registrar, rule replace.Rule, placeholder string) api.Plugin {
	return api.Plugin{
		Name: "async-component-registration",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: rule.Test.String(), Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					if !rule.Matches(args.Path) {
						return api.OnLoadResult{}, nil
					}

					src, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					var scan registrar.Scan
					transform := replace.Transform{
						Search: placeholder,
						Replace: func() string {
							scan = reg.Scan()
							return reg.Statements(scan)
						},
					}

					out, replaced := transform.Apply(src)
					if !replaced {
						return api.OnLoadResult{}, nil
					}

					m := telemetry.GetMetrics()
					m.ComponentsRegistered.Add(context.Background(), int64(len(scan.Components)))
					m.ComponentsSkipped.Add(context.Background(), int64(len(scan.Skipped)))

					log.Debug().
						Str("file", args.Path).
						Int("components", len(scan.Components)).
						Msg("Registered async components")

					contents := string(out)
					resolveDir := filepath.Dir(args.Path)

					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: resolveDir,
						Loader:     api.LoaderJS,
						WatchDirs:  scan.Dirs,
					}, nil
				})
		},
	}
}

// buildTimer tracks a single build from start to end
type buildTimer struct {
	mode    string
	mu      sync.Mutex
	started time.Time
	buildID string
}

// newDonePlugin logs and records metrics for every build it observes
func newDonePlugin(mode string) api.Plugin {
	t := &buildTimer{mode: mode}

	return api.Plugin{
		Name: "done",
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				t.start()
				return api.OnStartResult{}, nil
			})
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				t.finish(result)
				return api.OnEndResult{}, nil
			})
		},
	}
}

func (t *buildTimer) start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = time.Now()
	t.buildID = uuid.NewString()

	log.Debug().Str("build_id", t.buildID).Str("mode", t.mode).Msg("Build started")
}

func (t *buildTimer) finish(result *api.BuildResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	duration := time.Since(t.started)
	attrs := metric.WithAttributes(
		attribute.String("mode", t.mode),
		attribute.Bool("success", len(result.Errors) == 0),
	)

	m := telemetry.GetMetrics()
	m.BuildsTotal.Add(context.Background(), 1, attrs)
	m.BuildDuration.Record(context.Background(), float64(duration.Milliseconds()), attrs)
	if len(result.Errors) > 0 {
		m.BuildErrorsTotal.Add(context.Background(), int64(len(result.Errors)), attrs)
	}

	log.Info().
		Str("build_id", t.buildID).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Dur("duration", duration).
		Msg("Build finished")
}

// newWatchRunPlugin handles the result of every build made by a watch context
func newWatchRunPlugin(p *Pipeline) api.Plugin {
	var (
		mu     sync.Mutex
		builds int
	)

	return api.Plugin{
		Name: "watch-run",
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				mu.Lock()
				builds++
				n := builds
				mu.Unlock()

				if n > 1 {
					log.Info().Int("build", n).Msg("Change detected, rebuilding")
				}
				return api.OnStartResult{}, nil
			})
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if err := p.handleResult(result); err != nil {
					log.Error().Err(err).Msg("Rebuild failed")
				}
				return api.OnEndResult{}, nil
			})
		},
	}
}

func logMessage(event *zerolog.Event, msg api.Message) *zerolog.Event {
	event = event.Str("text", msg.Text)
	if msg.PluginName != "" {
		event = event.Str("plugin", msg.PluginName)
	}
	if msg.Location != nil {
		event = event.
			Str("file", msg.Location.File).
			Int("line", msg.Location.Line).
			Int("column", msg.Location.Column)
	}
	return event
}
