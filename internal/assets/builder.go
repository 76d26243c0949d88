package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/wolfeidau/frontbuild/internal/assets"

var loaders = map[string]api.Loader{
	"base64":     api.LoaderBase64,
	"binary":     api.LoaderBinary,
	"copy":       api.LoaderCopy,
	"css":        api.LoaderCSS,
	"dataurl":    api.LoaderDataURL,
	"default":    api.LoaderDefault,
	"empty":      api.LoaderEmpty,
	"file":       api.LoaderFile,
	"global-css": api.LoaderGlobalCSS,
	"js":         api.LoaderJS,
	"json":       api.LoaderJSON,
	"jsx":        api.LoaderJSX,
	"local-css":  api.LoaderLocalCSS,
	"text":       api.LoaderText,
	"ts":         api.LoaderTS,
	"tsx":        api.LoaderTSX,
}

// Build cleans the output directory, runs esbuild with the configured settings and loads metadata
func (p *Pipeline) Build(ctx context.Context) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "assets.Build")
	defer span.End()

	opts, err := p.buildOptions(newDonePlugin(p.config.Mode))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(
		attribute.String("mode", p.config.Mode),
		attribute.Int("entrypoints", len(opts.EntryPointsAdvanced)),
	)

	if err := Clean(p.config.Paths.Dist, p.config.CleanPatterns); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to clean output directory: %w", err)
	}

	log.Info().
		Str("mode", p.config.Mode).
		Strs("entrypoints", entryPaths(opts.EntryPointsAdvanced)).
		Msg("Building assets")

	result := api.Build(opts)

	if err := p.handleResult(&result); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// buildOptions translates the configuration into esbuild options
func (p *Pipeline) buildOptions(extra ...api.Plugin) (api.BuildOptions, error) {
	entryPoints, err := p.entryPoints()
	if err != nil {
		return api.BuildOptions{}, err
	}

	loader := make(map[string]api.Loader, len(p.config.Loaders))
	for ext, name := range p.config.Loaders {
		loader[ext] = loaders[name]
	}

	dev := p.config.IsDevelopment()

	plugins := []api.Plugin{
		asyncRegistrationPlugin(p.registrar, p.registry, p.config.Placeholder),
		sassPlugin(p.sass),
	}
	plugins = append(plugins, extra...)
	plugins = append(plugins, p.plugins...)

	return api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		Bundle:              true,
		Splitting:           true,
		Write:               true,
		Outdir:              p.config.Paths.Dist,
		EntryNames:          "[ext]/[name]",
		ChunkNames:          "[ext]/[name].[hash]",
		AssetNames:          "assets/[name].[hash]",
		PublicPath:          p.config.Paths.Public,
		Format:              api.FormatESModule,
		Alias:               p.config.aliases(),
		ResolveExtensions:   p.config.ResolveExtensions,
		Loader:              loader,
		MinifyWhitespace:    !dev,
		MinifyIdentifiers:   !dev,
		MinifySyntax:        !dev,
		Drop:                cond(dev, api.Drop(0), api.DropConsole),
		LegalComments:       cond(dev, api.LegalCommentsDefault, api.LegalCommentsNone),
		TreeShaking:         api.TreeShakingTrue,
		Sourcemap:           cond(dev, api.SourceMapInline, api.SourceMapNone),
		Metafile:            true,
		LogLevel:            api.LogLevelSilent,
		Plugins:             plugins,
	}, nil
}

// entryPoints returns the configured entry points that exist, sorted by name
func (p *Pipeline) entryPoints() ([]api.EntryPoint, error) {
	names := make([]string, 0, len(p.config.EntryPoints))
	for name := range p.config.EntryPoints {
		names = append(names, name)
	}
	slices.Sort(names)

	entryPoints := make([]api.EntryPoint, 0, len(names))
	for _, name := range names {
		input := p.config.EntryPoints[name]
		if _, err := os.Stat(input); err != nil {
			log.Warn().Err(err).Str("name", name).Str("path", input).Msg("Skipping missing entry point")
			continue
		}
		entryPoints = append(entryPoints, api.EntryPoint{InputPath: input, OutputPath: name})
	}

	if len(entryPoints) == 0 {
		return nil, ErrNoEntryPoints
	}

	return entryPoints, nil
}

// handleResult logs the build messages, writes the metafile and caches the metadata
func (p *Pipeline) handleResult(result *api.BuildResult) error {
	for _, msg := range result.Warnings {
		logMessage(log.Warn(), msg).Msg("Build warning")
	}

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			logMessage(log.Error(), msg).Msg("Build error")
		}
		return fmt.Errorf("%w: %d errors", ErrBuildFailed, len(result.Errors))
	}

	for _, file := range result.OutputFiles {
		log.Info().Str("file", file.Path).Msg("Built file")
	}

	if p.config.Debug {
		log.Info().Msg("Bundle analysis\n" + api.AnalyzeMetafile(result.Metafile, api.AnalyzeMetafileOptions{Verbose: true}))
	}

	// Write metafile
	if metafilePath := p.config.MetafilePath(); metafilePath != "" {
		if err := os.MkdirAll(filepath.Dir(metafilePath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(metafilePath, []byte(result.Metafile), 0o600); err != nil {
			return err
		}
	}

	// Parse and cache metadata
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return err
	}

	p.mu.Lock()
	p.metadata = &metadata
	p.mu.Unlock()

	return nil
}

// LoadScripts returns the ordered list of script paths needed for the given entrypoint
// and the main entrypoint file path
func (p *Pipeline) LoadScripts(entryPointPath string) ([]string, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, "", ErrNotBuilt
	}

	scripts := []string{}
	visited := make(map[string]bool)
	var entrypoint string

	// Find the output file for this entrypoint
	for outputPath, info := range p.metadata.Outputs {
		if path.Ext(outputPath) == ".js" && sameEntryPoint(info.EntryPoint, entryPointPath) {
			entrypoint = p.publicURL(outputPath)
			scripts = append(scripts, entrypoint)
			visited[outputPath] = true
			p.addDependencies(info, &scripts, visited)
			return scripts, entrypoint, nil
		}
	}

	return nil, "", ErrEntryPointNotFound
}

// LoadStyles returns the stylesheet extracted from the given entrypoint, if any
func (p *Pipeline) LoadStyles(entryPointPath string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, ErrNotBuilt
	}

	for _, info := range p.metadata.Outputs {
		if sameEntryPoint(info.EntryPoint, entryPointPath) && info.CSSBundle != "" {
			return []string{p.publicURL(info.CSSBundle)}, nil
		}
	}

	return []string{}, nil
}

func (p *Pipeline) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.Kind == "dynamic-import" {
			continue
		}
		if !visited[imp.Path] {
			visited[imp.Path] = true
			*scripts = append(*scripts, p.publicURL(imp.Path))

			if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
				p.addDependencies(chunkInfo, scripts, visited)
			}
		}
	}
}

// publicURL maps an output path from the metafile, relative to the working
// directory, to the URL it is served from
func (p *Pipeline) publicURL(outputPath string) string {
	rel := filepath.FromSlash(outputPath)
	dist, err := filepath.Abs(p.config.Paths.Dist)
	if err == nil {
		if out, err := filepath.Abs(rel); err == nil {
			if r, err := filepath.Rel(dist, out); err == nil {
				rel = r
			}
		}
	}

	public := p.config.Paths.Public
	if public == "" {
		public = "/"
	}
	return path.Join(public, filepath.ToSlash(rel))
}

// Handler returns an http.HandlerFunc that renders the given template and entrypoint with its scripts
func (p *Pipeline) Handler(templateName, title, entryPointPath string, contextFn func(ctx context.Context) any) (http.HandlerFunc, error) {
	if p.tmpl == nil {
		return nil, fmt.Errorf("template not loaded, use NewWithTemplate")
	}

	if contextFn == nil {
		contextFn = func(ctx context.Context) any {
			return nil
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		scripts, _, err := p.LoadScripts(entryPointPath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load scripts")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		styles, err := p.LoadStyles(entryPointPath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load styles")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		data := map[string]any{
			"Title":   title,
			"Scripts": scripts,
			"Styles":  styles,
			"Context": contextFn(r.Context()),
		}

		if err := p.tmpl.ExecuteTemplate(w, templateName, data); err != nil {
			log.Error().Err(err).Msg("Failed to render template")
		}
	}, nil
}

func sameEntryPoint(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(filepath.FromSlash(a))
	absB, errB := filepath.Abs(filepath.FromSlash(b))
	if errA != nil || errB != nil {
		return path.Clean(filepath.ToSlash(a)) == path.Clean(filepath.ToSlash(b))
	}
	return absA == absB
}

func entryPaths(entryPoints []api.EntryPoint) []string {
	paths := make([]string, 0, len(entryPoints))
	for _, ep := range entryPoints {
		paths = append(paths, ep.InputPath)
	}
	return paths
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
