package vanilla

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

type rendererTheme struct {
	Name         string `json:"name,omitempty"`
	Variant      string `json:"variant,omitempty"`
	CSSVarsStyle string `json:"css_vars_style,omitempty"`
	Stylesheet   string `json:"stylesheet,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) rendererTheme {
	if cfg == nil {
		return rendererTheme{}
	}
	ctx := rendererTheme{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		ctx.Stylesheet = strings.TrimSpace(cfg.AssetURL(ThemeStylesheetKey))
	}
	return ctx
}

func themePartials(cfg *theme.RendererConfig) map[string]string {
	if cfg == nil {
		return nil
	}
	return cfg.Partials
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(".qform-form {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
