package orchestrator

import (
	"context"
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-qform/pkg/testsupport"
)

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	if s.err != nil {
		return nil, s.err
	}
	return s.selection, nil
}

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
		Templates: map[string]string{
			"forms.input": "themes/acme/input.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files: map[string]string{
				"qform.stylesheet": "theme.css",
				"qform.logo":       "https://cdn.example.com/logo.svg",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Templates: map[string]string{
					"forms.checkbox": "themes/acme/dark/checkbox.tmpl",
				},
				Assets: theme.Assets{
					Files: map[string]string{"qform.lookup": "lookup.dark.js"},
				},
			},
		},
	}
}

func TestOrchestrator_PassesThemeConfigToRenderer(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
	}
	selection := &theme.Selection{Theme: "acme", Variant: "custom-variant", Manifest: manifest}
	selector := &stubThemeSelector{selection: selection}

	orch, renderer := captureOrchestrator(WithThemeSelector(selector))
	def := testsupport.MustDefinition(t, testsupport.FixtureIntake)

	_, err := orch.Generate(context.Background(), Request{
		Definition:   &def,
		ThemeName:    "custom-theme",
		ThemeVariant: "custom-variant",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(selector.calls) != 1 {
		t.Fatalf("expected selector called once, got %d", len(selector.calls))
	}
	if selector.calls[0] != (selectorCall{name: "custom-theme", variant: "custom-variant"}) {
		t.Fatalf("unexpected selector args: %+v", selector.calls[0])
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "custom-variant" {
		t.Fatalf("selection mismatch: %s/%s", cfg.Theme, cfg.Variant)
	}
	if got, want := cfg.Partials["forms.input"], defaultThemeFallbacks()["forms.input"]; got != want {
		t.Fatalf("partials not merged with fallbacks: want %s, got %s", want, got)
	}
	if cfg.Tokens["brand"] != "#123456" || cfg.CSSVars["--brand"] != "#123456" {
		t.Fatalf("tokens not propagated: %v %v", cfg.Tokens, cfg.CSSVars)
	}
	if cfg.AssetURL == nil || cfg.AssetURL("missing") != "" {
		t.Fatalf("expected AssetURL resolver returning empty for unknown keys")
	}
}

func TestOrchestrator_ExplicitThemeConfigSkipsSelector(t *testing.T) {
	selector := &stubThemeSelector{err: errors.New("should not be called")}
	orch, renderer := captureOrchestrator(WithThemeSelector(selector))
	def := testsupport.MustDefinition(t, testsupport.FixtureIntake)

	req := Request{Definition: &def}
	req.RenderOptions.Theme = &theme.RendererConfig{Theme: "inline"}
	if _, err := orch.Generate(context.Background(), req); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(selector.calls) != 0 || renderer.options.Theme.Theme != "inline" {
		t.Fatalf("explicit config must win: calls=%d theme=%s", len(selector.calls), renderer.options.Theme.Theme)
	}
}

func TestOrchestrator_WithThemeManifestsUsesDefaults(t *testing.T) {
	orch, renderer := captureOrchestrator(WithThemeManifests("acme", "dark", acmeManifest()))
	def := testsupport.MustDefinition(t, testsupport.FixtureIntake)

	if _, err := orch.Generate(context.Background(), Request{Definition: &def}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("defaults not applied: %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.Partials["forms.input"] != "themes/acme/input.tmpl" {
		t.Fatalf("expected base template override, got %s", cfg.Partials["forms.input"])
	}
	if cfg.Partials["forms.checkbox"] != "themes/acme/dark/checkbox.tmpl" {
		t.Fatalf("expected variant template override, got %s", cfg.Partials["forms.checkbox"])
	}
	if cfg.Partials["forms.textarea"] != defaultThemeFallbacks()["forms.textarea"] {
		t.Fatalf("fallback partial not applied for textarea")
	}
	if cfg.Tokens["brand"] != "#654321" || cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("variant tokens should win, got %s", cfg.Tokens["brand"])
	}
	if got := cfg.AssetURL("qform.lookup"); got != "/assets/themes/acme/lookup.dark.js" {
		t.Fatalf("unexpected variant asset url: %s", got)
	}
	if got := cfg.AssetURL("qform.stylesheet"); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected stylesheet asset url: %s", got)
	}
	if got := cfg.AssetURL("qform.logo"); got != "https://cdn.example.com/logo.svg" {
		t.Fatalf("absolute urls must pass through, got %s", got)
	}
}

func TestOrchestrator_WithThemeManifestsRejectsUnknown(t *testing.T) {
	orch, _ := captureOrchestrator(WithThemeManifests("acme", "", acmeManifest()))
	def := testsupport.MustDefinition(t, testsupport.FixtureIntake)

	cases := []Request{
		{Definition: &def, ThemeName: "zenith"},
		{Definition: &def, ThemeName: "acme", ThemeVariant: "sepia"},
	}
	for _, req := range cases {
		_, err := orch.Generate(context.Background(), req)
		if !errors.Is(err, errThemeNotFound) {
			t.Fatalf("%s/%s: expected theme not found, got %v", req.ThemeName, req.ThemeVariant, err)
		}
	}

	if _, err := orch.Generate(context.Background(), Request{Definition: &def, ThemeName: "acme"}); err != nil {
		t.Fatalf("base theme without variant should render: %v", err)
	}
}

func TestOrchestrator_ThemeFallbacksOverrideDefaults(t *testing.T) {
	orch, renderer := captureOrchestrator(
		WithThemeManifests("acme", "", acmeManifest()),
		WithThemeFallbacks(map[string]string{"forms.textarea": "custom/textarea.tmpl"}),
	)
	def := testsupport.MustDefinition(t, testsupport.FixtureIntake)

	if _, err := orch.Generate(context.Background(), Request{Definition: &def}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := renderer.options.Theme.Partials["forms.textarea"]; got != "custom/textarea.tmpl" {
		t.Fatalf("custom fallback ignored, got %s", got)
	}
}
