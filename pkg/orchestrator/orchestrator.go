package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-qform/components/valuesets"
	"github.com/goliatone/go-qform/pkg/options"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
	"github.com/goliatone/go-qform/pkg/renderers/vanilla"
)

const (
	defaultRendererName = vanilla.Name
	defaultFetchTimeout = 10 * time.Second
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom document loader.
func WithLoader(loader *questionnaire.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithKeyGenerator replaces the uuid node/answer keys, mostly for tests and
// golden output.
func WithKeyGenerator(keys questionnaire.KeyGenerator) Option {
	return func(o *Orchestrator) {
		o.keys = keys
	}
}

// WithFetcher sets the value set fetcher backing answerValueSet questions.
// The default is the embedded valuesets catalog.
func WithFetcher(fetcher options.Fetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = fetcher
	}
}

// WithTerminologyServer chains a FHIR $expand fetcher behind the embedded
// catalog.
func WithTerminologyServer(baseURL string, timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.terminology = &options.HTTPFetcher{BaseURL: baseURL}
		if timeout > 0 {
			o.fetchTimeout = timeout
		}
	}
}

// WithOptionsCache shares fetched option sets across builds.
func WithOptionsCache(cache *options.Cache) Option {
	return func(o *Orchestrator) {
		o.cache = cache
	}
}

// WithPreload makes Build wait for value set fetches started while building,
// so the first render shows options instead of a loading indicator.
func WithPreload(enabled bool) Option {
	return func(o *Orchestrator) {
		o.preload = enabled
	}
}

// WithTransformers registers tree transformers run after building.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, transformers...)
	}
}

// WithLogger routes pipeline and fetch diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates loading, building and rendering questionnaires.
type Orchestrator struct {
	loader          *questionnaire.Loader
	registry        *render.Registry
	defaultRenderer string
	keys            questionnaire.KeyGenerator
	fetcher         options.Fetcher
	terminology     options.Fetcher
	fetchTimeout    time.Duration
	cache           *options.Cache
	preload         bool
	transformers    []Transformer
	logger          *zap.Logger

	themeSelector  theme.ThemeSelector
	themeFallbacks map[string]string

	initialiseErr error
}

// New constructs an Orchestrator. Missing dependencies are initialised with
// the built-in implementations.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		fetchTimeout:    defaultFetchTimeout,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one pipeline run.
type Request struct {
	// Source locates the definition. Optional when Definition is supplied.
	Source     questionnaire.Source
	Definition *questionnaire.Definition

	// ResponseSource or Response seed the answers.
	ResponseSource *questionnaire.Source
	Response       *questionnaire.Response

	// Issues maps linkId paths or answer keys to messages; see
	// render.ApplyIssues. Only Generate applies them.
	Issues map[string][]string

	// Renderer names the renderer to use; empty selects the default.
	Renderer string

	ThemeName    string
	ThemeVariant string

	RenderOptions render.RenderOptions
}

// Generate builds the tree for req and renders it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	tree, err := o.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(req.Issues) > 0 {
		leftover := render.ApplyIssues(tree, req.Issues)
		req.RenderOptions.FormIssues = render.MergeFormIssues(req.RenderOptions.FormIssues, leftover...)
	}
	return o.Render(ctx, tree, req)
}

// Build loads the definition and response named by req and returns the live
// tree with option providers attached and transformers applied.
func (o *Orchestrator) Build(ctx context.Context, req Request) (*questionnaire.Tree, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	def, err := o.resolveDefinition(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := o.resolveResponse(ctx, req)
	if err != nil {
		return nil, err
	}

	fetches := &pendingFetches{}
	buildOpts := []questionnaire.Option{questionnaire.WithOptionsResolver(o.resolver(fetches))}
	if o.keys != nil {
		buildOpts = append(buildOpts, questionnaire.WithKeyGenerator(o.keys))
	}
	tree, err := questionnaire.Build(def, resp, buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build tree: %w", err)
	}

	if o.preload {
		if err := fetches.wait(ctx); err != nil {
			return nil, err
		}
	}
	fetches.stop()

	for _, transformer := range o.transformers {
		if transformer == nil {
			continue
		}
		if err := transformer.Transform(ctx, tree); err != nil {
			return nil, fmt.Errorf("orchestrator: transform tree: %w", err)
		}
	}
	o.logger.Debug("questionnaire built",
		zap.String("questionnaire", def.Name),
		zap.Int("fetches", fetches.count()),
	)
	return tree, nil
}

// Render renders an existing tree, resolving the theme named by req.
func (o *Orchestrator) Render(ctx context.Context, tree *questionnaire.Tree, req Request) ([]byte, error) {
	if tree == nil {
		return nil, errors.New("orchestrator: tree is required")
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	renderOpts := req.RenderOptions
	if renderOpts.Theme == nil {
		cfg, err := o.themeConfig(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, err
		}
		renderOpts.Theme = cfg
	}

	output, err := renderer.Render(ctx, tree, renderOpts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Renderer returns the named renderer, or the default for an empty name.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	return o.rendererFor(name)
}

func (o *Orchestrator) resolveDefinition(ctx context.Context, req Request) (questionnaire.Definition, error) {
	if req.Definition != nil {
		return *req.Definition, nil
	}
	if req.Source.Location == "" {
		return questionnaire.Definition{}, errors.New("orchestrator: source or definition is required")
	}
	def, err := o.loader.LoadDefinition(ctx, req.Source)
	if err != nil {
		return questionnaire.Definition{}, fmt.Errorf("orchestrator: load definition: %w", err)
	}
	return def, nil
}

func (o *Orchestrator) resolveResponse(ctx context.Context, req Request) (*questionnaire.Response, error) {
	if req.Response != nil {
		return req.Response, nil
	}
	if req.ResponseSource == nil {
		return nil, nil
	}
	resp, err := o.loader.LoadResponse(ctx, *req.ResponseSource)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load response: %w", err)
	}
	return &resp, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	renderer, err := o.registry.Resolve(name, o.defaultRenderer)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = questionnaire.NewLoader()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.cache == nil {
		o.cache = options.NewCache(0, 0)
	}
	if o.fetcher == nil {
		catalog, err := valuesets.DefaultCatalog()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: value set catalog: %w", err)
		} else {
			o.fetcher = catalog
		}
	}
	if o.terminology != nil {
		o.fetcher = valuesets.Chain(o.fetcher, o.terminology)
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
