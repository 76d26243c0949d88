package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"maps"
	"regexp"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/frontbuild/internal/registrar"
	"github.com/wolfeidau/frontbuild/internal/replace"
)

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Pipeline manages the asset build process and script loading
type Pipeline struct {
	config    Config
	registrar *registrar.Registrar
	registry  replace.Rule
	sass      *sassCompiler
	plugins   []api.Plugin
	metadata  *BuildMetadata
	tmpl      *template.Template
	mu        sync.RWMutex
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithPlugins appends esbuild plugins run after the built-in ones, e.g. a
// single file component compiler.
func WithPlugins(plugins ...api.Plugin) Option {
	return func(p *Pipeline) {
		p.plugins = append(p.plugins, plugins...)
	}
}

// New creates a new asset pipeline with the given configuration
func New(config Config, opts ...Option) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var statementOpts []registrar.Option
	if config.Statement != "" {
		statementOpts = append(statementOpts, registrar.WithStatement(config.Statement))
	}

	reg, err := registrar.New(config.Paths.Components, config.ComponentPattern, statementOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	registryTest := config.RegistryTest
	if registryTest == "" {
		registryTest = DefaultConfig().RegistryTest
	}
	test, err := regexp.Compile(registryTest)
	if err != nil {
		return nil, fmt.Errorf("%w: registry test: %w", ErrInvalidConfig, err)
	}

	p := &Pipeline{
		config:    config,
		registrar: reg,
		registry: replace.Rule{
			Test:    test,
			Include: config.Paths.Components,
			Exclude: regexp.MustCompile(`node_modules`),
		},
		sass: newSassCompiler(config.Sass, config.IsDevelopment()),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// NewWithTemplate creates a new asset pipeline and loads a single template
func NewWithTemplate(config Config, templatePath string, opts ...Option) (*Pipeline, error) {
	return NewWithTemplateAndFuncs(config, templatePath, nil, opts...)
}

// NewWithTemplateAndFuncs creates a new asset pipeline and loads a single template with custom functions
func NewWithTemplateAndFuncs(config Config, templatePath string, customFuncs template.FuncMap, opts ...Option) (*Pipeline, error) {
	p, err := New(config, opts...)
	if err != nil {
		return nil, err
	}

	funcs := template.FuncMap{
		"marshal": marshal,
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
	}

	// Merge custom functions
	maps.Copy(funcs, customFuncs)

	tmpl, err := template.New(templatePath).Funcs(funcs).ParseFiles(templatePath)
	if err != nil {
		return nil, err
	}
	p.tmpl = tmpl
	return p, nil
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() Config {
	return p.config
}

// Registrar returns the async component registrar used by the build
func (p *Pipeline) Registrar() *registrar.Registrar {
	return p.registrar
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
