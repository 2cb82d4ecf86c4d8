package render

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrRendererNotFound is returned for names nobody registered.
	ErrRendererNotFound = errors.New("render: renderer not found")
	// ErrRendererExists is returned by Register for duplicate names.
	ErrRendererExists = errors.New("render: renderer already registered")
)

// Registry holds the renderers a host can pick from by name. Names are
// case-insensitive.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds renderer under its Name.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	key := registryKey(renderer.Name())
	if key == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.renderers[key]; taken {
		return fmt.Errorf("%w: %q", ErrRendererExists, renderer.Name())
	}
	r.renderers[key] = renderer
	return nil
}

// MustRegister is Register for setup code; it panics on error.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the renderer called name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.renderers[registryKey(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
	}
	return renderer, nil
}

// Resolve picks the renderer for a request. A non-empty name must be
// registered. An empty name selects fallback, or the first registered name
// in sort order when fallback is not registered either.
func (r *Registry) Resolve(name, fallback string) (Renderer, error) {
	if strings.TrimSpace(name) != "" {
		return r.Get(name)
	}
	if renderer, err := r.Get(fallback); err == nil {
		return renderer, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.renderers) == 0 {
		return nil, fmt.Errorf("%w: registry is empty", ErrRendererNotFound)
	}
	return r.renderers[slices.Min(slices.Collect(maps.Keys(r.renderers)))], nil
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for _, renderer := range r.renderers {
		names = append(names, renderer.Name())
	}
	slices.Sort(names)
	return names
}

func registryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
