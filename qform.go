// Package qform renders FHIR-style questionnaires. The root package re-exports
// the common entry points; see pkg/orchestrator for the full pipeline and
// pkg/controls, pkg/scaffold and pkg/options for the rendering engine.
package qform

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-qform/pkg/orchestrator"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
)

// RenderOptions carries per-request renderer overrides.
type RenderOptions = render.RenderOptions

// Request describes one pipeline run.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads the questionnaire at source and renders it with the
// named renderer. An empty name selects the HTML renderer.
func GenerateHTML(ctx context.Context, source questionnaire.Source, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Source:   source,
		Renderer: rendererName,
	})
}

// GenerateHTMLFromDefinition renders an already decoded definition, seeding
// answers from resp when it is non-nil.
func GenerateHTMLFromDefinition(ctx context.Context, def questionnaire.Definition, resp *questionnaire.Response, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Definition: &def,
		Response:   resp,
		Renderer:   rendererName,
	})
}

// WithThemeSelector forwards a go-theme selector to the orchestrator.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeManifests registers go-theme manifests and the default selection.
func WithThemeManifests(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) orchestrator.Option {
	return orchestrator.WithThemeManifests(defaultTheme, defaultVariant, manifests...)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
