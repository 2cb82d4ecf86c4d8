package components

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	rendertemplate "github.com/goliatone/go-qform/pkg/render/template"
)

// ErrUnknownComponent is returned when a control names a widget that is not
// registered.
var ErrUnknownComponent = errors.New("components: unknown component")

// Renderer writes one leaf widget into buf.
type Renderer func(buf *bytes.Buffer, props WidgetProps, data ComponentData) error

// ComponentData carries what component renderers need besides the props.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// ThemePartials maps partial keys ("forms.input") to replacement
	// template paths.
	ThemePartials map[string]string
}

// Script is a JavaScript dependency of a widget.
type Script struct {
	Src    string
	Inline string
	Defer  bool
	Module bool
}

func (s Script) key() string {
	if s.Src != "" {
		return "src:" + s.Src
	}
	return "inline:" + s.Inline
}

// Descriptor is a widget renderer plus the assets a page needs once the
// widget appears on it.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

// Registry maps widget names to descriptors. Names are case-insensitive.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{widgets: make(map[string]Descriptor)}
}

// Register adds or replaces the widget called name.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	name = normalize(name)
	switch {
	case name == "":
		return errors.New("components: widget name is required")
	case descriptor.Renderer == nil:
		return fmt.Errorf("components: widget %q has no renderer", name)
	}
	descriptor.Name = name

	r.mu.Lock()
	r.widgets[name] = descriptor
	r.mu.Unlock()
	return nil
}

// MustRegister is Register for setup code; it panics on error.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// With returns a copy of r with overrides registered on top. r is left
// untouched, so a shared default registry can be specialised per renderer.
func (r *Registry) With(overrides map[string]Descriptor) (*Registry, error) {
	r.mu.RLock()
	out := &Registry{widgets: maps.Clone(r.widgets)}
	r.mu.RUnlock()

	for name, descriptor := range overrides {
		if err := out.Register(name, descriptor); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.widgets[normalize(name)]
	return descriptor, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.widgets))
}

// Page starts a render pass. The pass records which widgets it rendered so
// the page links only their assets.
func (r *Registry) Page(data ComponentData) *Page {
	return &Page{registry: r, data: data}
}

// Page renders widgets for one document.
type Page struct {
	registry *Registry
	data     ComponentData
	used     []Descriptor
}

// Render writes the named widget and returns its markup.
func (p *Page) Render(name string, props WidgetProps) (string, error) {
	descriptor, ok := p.registry.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownComponent, name)
	}

	var buf bytes.Buffer
	if err := descriptor.Renderer(&buf, props, p.data); err != nil {
		return "", fmt.Errorf("components: render %q: %w", descriptor.Name, err)
	}
	if !slices.ContainsFunc(p.used, func(d Descriptor) bool { return d.Name == descriptor.Name }) {
		p.used = append(p.used, descriptor)
	}
	return buf.String(), nil
}

// Assets lists the stylesheets and scripts of the widgets rendered so far,
// each once, in the order the widgets first appeared.
func (p *Page) Assets() (stylesheets []string, scripts []Script) {
	seen := make(map[string]struct{})
	for _, descriptor := range p.used {
		for _, href := range descriptor.Stylesheets {
			if _, dup := seen["css:"+href]; href == "" || dup {
				continue
			}
			seen["css:"+href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, script := range descriptor.Scripts {
			if _, dup := seen[script.key()]; dup {
				continue
			}
			seen[script.key()] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
