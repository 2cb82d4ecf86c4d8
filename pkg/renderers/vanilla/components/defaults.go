package components

import (
	"bytes"
	"fmt"
	"strings"
)

// builtins lists the shipped widgets and the script each one needs, if any.
// Every widget links the shared stylesheet.
var builtins = []struct {
	name   string
	script string
}{
	{NameInput, ""},
	{NameTextarea, ""},
	{NameNumber, ""},
	{NameQuantity, ""},
	{NameBoolean, ""},
	{NameSelect, ""},
	{NameRadio, ""},
	{NameCheckbox, ""},
	{NameAttachment, ""},
	{NameCustom, ""},
	{NameDisplay, ""},
	{NameUnsupported, ""},
	{NameSlider, SliderScriptPath},
	{NameLookup, LookupScriptPath},
}

// NewDefaultRegistry returns a registry holding the built-in widgets, each
// rendered from templates/components/<name>.tmpl.
func NewDefaultRegistry() *Registry {
	registry := New()
	for _, widget := range builtins {
		descriptor := Descriptor{
			Renderer:    TemplateRenderer(widget.name),
			Stylesheets: []string{StylesheetPath},
		}
		if widget.script != "" {
			descriptor.Scripts = []Script{{Src: widget.script, Defer: true}}
		}
		registry.MustRegister(widget.name, descriptor)
	}
	return registry
}

// TemplateRenderer renders the widget from its built-in template, or from
// the theme partial "forms.<name>" when the active theme supplies one. The
// template receives the props under "props".
func TemplateRenderer(name string) Renderer {
	partial := "forms." + name
	fallback := "templates/components/" + name + ".tmpl"

	return func(buf *bytes.Buffer, props WidgetProps, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: no template engine for widget %q", name)
		}
		tmpl := fallback
		if override := strings.TrimSpace(data.ThemePartials[partial]); override != "" {
			tmpl = override
		}
		out, err := data.Template.RenderTemplate(tmpl, map[string]any{"props": props})
		if err != nil {
			return fmt.Errorf("components: template %q: %w", tmpl, err)
		}
		buf.WriteString(out)
		return nil
	}
}
