package orchestrator

import (
	"errors"
	"fmt"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-qform/pkg/renderers/vanilla/components"
)

// WithThemeSelector resolves theme/variant choices ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeManifests selects among manifests by name, falling back to
// defaultTheme and defaultVariant when a request names neither.
func WithThemeManifests(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) Option {
	return func(o *Orchestrator) {
		o.themeSelector = newManifestSelector(defaultTheme, defaultVariant, manifests...)
	}
}

// WithThemeFallbacks adds partials used for widgets a theme does not
// override.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		if len(fallbacks) == 0 {
			return
		}
		if o.themeFallbacks == nil {
			o.themeFallbacks = make(map[string]string, len(fallbacks))
		}
		for key, value := range fallbacks {
			o.themeFallbacks[key] = value
		}
	}
}

// defaultThemeFallbacks maps every built-in widget partial to its embedded
// template.
func defaultThemeFallbacks() map[string]string {
	names := components.NewDefaultRegistry().Names()
	out := make(map[string]string, len(names))
	for _, name := range names {
		out["forms."+name] = "templates/components/" + name + ".tmpl"
	}
	return out
}

// themeConfig returns nil when no selector is configured.
func (o *Orchestrator) themeConfig(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	if selection == nil {
		return nil, nil
	}

	partials := defaultThemeFallbacks()
	for key, value := range o.themeFallbacks {
		partials[key] = value
	}
	tokens := map[string]string{}
	files := map[string]string{}
	prefix := ""

	if manifest := selection.Manifest; manifest != nil {
		merge(partials, manifest.Templates)
		merge(tokens, manifest.Tokens)
		merge(files, manifest.Assets.Files)
		prefix = manifest.Assets.Prefix
		if v, ok := manifest.Variants[selection.Variant]; ok {
			merge(partials, v.Templates)
			merge(tokens, v.Tokens)
			merge(files, v.Assets.Files)
			if v.Assets.Prefix != "" {
				prefix = v.Assets.Prefix
			}
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}, nil
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + path.Clean(file)
	}
}

func merge(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}

var errThemeNotFound = errors.New("theme not found")

// manifestSelector is a theme.ThemeSelector over a fixed set of manifests.
type manifestSelector struct {
	defaultTheme   string
	defaultVariant string
	manifests      map[string]*theme.Manifest
}

func newManifestSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) *manifestSelector {
	s := &manifestSelector{
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
	}
	for _, manifest := range manifests {
		if manifest == nil || manifest.Name == "" {
			continue
		}
		s.manifests[manifest.Name] = manifest
	}
	return s
}

func (s *manifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	variant = strings.TrimSpace(variant)
	if name == "" {
		name = s.defaultTheme
		if variant == "" {
			variant = s.defaultVariant
		}
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errThemeNotFound, name)
	}
	if _, ok := manifest.Variants[variant]; variant != "" && !ok {
		return nil, fmt.Errorf("%w: %q has no variant %q", errThemeNotFound, name, variant)
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}
