package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-qform/pkg/controls"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
	rendertemplate "github.com/goliatone/go-qform/pkg/render/template"
	gotemplate "github.com/goliatone/go-qform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-qform/pkg/renderers/vanilla/components"
)

// Name is the registry name of the HTML renderer.
const Name = "vanilla"

// ThemeStylesheetKey is the go-theme asset key of an optional theme
// stylesheet emitted after the built-in one.
const ThemeStylesheetKey = "vanilla.stylesheet"

const formTemplate = "templates/form.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	controls         map[string]Control
	assetPrefix      string
	lookupEndpoint   string
	widgets          map[string]components.Descriptor
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the widget registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithWidget registers or replaces one leaf widget on top of the component
// registry without modifying it.
func WithWidget(name string, descriptor components.Descriptor) Option {
	return func(cfg *config) {
		if cfg.widgets == nil {
			cfg.widgets = make(map[string]components.Descriptor)
		}
		cfg.widgets[name] = descriptor
	}
}

// WithControl binds a control name (see package controls) to a widget,
// replacing the built-in binding.
func WithControl(name string, control Control) Option {
	return func(cfg *config) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if cfg.controls == nil {
			cfg.controls = DefaultControls()
		}
		cfg.controls[name] = control
	}
}

// WithAssetPrefix rewrites the built-in /assets/ URLs, for hosts serving
// AssetsFS elsewhere.
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.assetPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithLookupEndpoint points lookup widgets backed by a remote value set at
// a search endpoint (see components/valuesets). The widget queries
// "<endpoint>?url=<value set>&q=<typed text>" as the user types.
func WithLookupEndpoint(endpoint string) Option {
	return func(cfg *config) {
		cfg.lookupEndpoint = strings.TrimSpace(endpoint)
	}
}

// Renderer renders a questionnaire tree as a server-side HTML form.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	components  *components.Registry
	controls    *controls.Registry[Control]
	assetPrefix string
	lookup      string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}
	if len(cfg.widgets) > 0 {
		registry, err := cfg.components.With(cfg.widgets)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		cfg.components = registry
	}
	if cfg.controls == nil {
		cfg.controls = DefaultControls()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:   renderer,
		components:  cfg.components,
		controls:    controls.NewDefaultRegistry(fallbackControl, cfg.controls),
		assetPrefix: cfg.assetPrefix,
		lookup:      cfg.lookupEndpoint,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Controls exposes the control registry so hosts can register extra
// definitions.
func (r *Renderer) Controls() *controls.Registry[Control] {
	return r.controls
}

func (r *Renderer) Render(ctx context.Context, tree *questionnaire.Tree, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if tree == nil {
		return nil, fmt.Errorf("vanilla renderer: questionnaire tree is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := newComponentRenderer(r.templates, r.components, r.controls, opts)
	state.lookupEndpoint = r.lookup
	var items strings.Builder
	for _, node := range orderRoots(render.SelectRoots(tree, opts.Roots), r.controls) {
		items.WriteString(state.renderNode(node))
	}
	if state.err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", state.err)
	}

	stylesheets, scripts := state.assets()
	stylesheets = r.prefixAssets(stylesheets)
	for i := range scripts {
		if scripts[i].Src != "" {
			scripts[i].Src = r.prefixAsset(scripts[i].Src)
		}
	}

	theme := buildThemeContext(opts.Theme)
	if theme.Stylesheet != "" {
		stylesheets = append(stylesheets, theme.Stylesheet)
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = tree.Title()
	}

	result, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"form": map[string]any{
			"title":         title,
			"reference":     tree.Reference(),
			"action":        opts.Action,
			"locale":        opts.Locale,
			"hidden":        render.SortedHiddenFields(opts.HiddenFields),
			"issues":        opts.FormIssues,
			"items":         items.String(),
			"stylesheets":   stylesheets,
			"scripts":       scripts,
			"theme":         theme,
			"action_field":  render.ActionField,
			"submit_action": render.Action{Verb: render.VerbSubmit}.String(),
			"submit_label":  opts.Message(render.MsgSubmit),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) prefixAssets(hrefs []string) []string {
	out := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		out = append(out, r.prefixAsset(href))
	}
	return out
}

func (r *Renderer) prefixAsset(href string) string {
	if r.assetPrefix == "" || !strings.HasPrefix(href, "/assets/") {
		return href
	}
	return r.assetPrefix + strings.TrimPrefix(href, "/assets")
}

// orderRoots moves header groups to the top and footer groups to the end,
// keeping the relative order within each band.
func orderRoots(nodes []*questionnaire.Node, reg *controls.Registry[Control]) []*questionnaire.Node {
	out := append([]*questionnaire.Node(nil), nodes...)
	band := func(node *questionnaire.Node) int {
		switch reg.Resolve(node).Renderer.Layout {
		case LayoutHeader:
			return 0
		case LayoutFooter:
			return 2
		default:
			return 1
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return band(out[i]) < band(out[j])
	})
	return out
}
