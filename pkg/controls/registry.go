package controls

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// PriorityFallback is the priority of the catch-all definition. No other
// definition can share it; registrations at this priority are raised by one.
const PriorityFallback = math.MinInt

// Shape is the snapshot matchers decide on. It deliberately carries no answer
// values, so the resolved control stays stable while the user edits.
type Shape struct {
	Kind       questionnaire.NodeKind
	Type       questionnaire.ItemType
	Control    questionnaire.ControlHint
	HasOptions bool
	Loading    bool
	Repeats    bool
	ReadOnly   bool
}

// ShapeOf captures the current shape of node.
func ShapeOf(node *questionnaire.Node) Shape {
	if node == nil {
		return Shape{}
	}
	kind := node.Kind
	if kind == "" {
		kind = node.Type.Kind()
	}
	return Shape{
		Kind:       kind,
		Type:       node.Type,
		Control:    node.Control,
		HasOptions: node.HasOptions(),
		Loading:    node.OptionsLoading(),
		Repeats:    node.Repeats,
		ReadOnly:   node.ReadOnly,
	}
}

// Matcher is a pure predicate over a shape.
type Matcher func(Shape) bool

// Definition pairs a named, prioritised matcher with a renderer.
type Definition[R any] struct {
	Name     string
	Priority int
	Match    Matcher
	Renderer R

	order    int
	fallback bool
}

// IsFallback reports whether d is the registry's catch-all.
func (d Definition[R]) IsFallback() bool {
	return d.fallback
}

// Registry resolves nodes to renderers. Definitions are kept sorted by
// priority (descending) with ties in registration order. Configure the
// registry during setup; it is read-only while rendering.
type Registry[R any] struct {
	mu    sync.RWMutex
	defs  []Definition[R]
	order int
}

// NewRegistry creates a registry holding only the catch-all definition,
// which renders with fallback.
func NewRegistry[R any](fallback R) *Registry[R] {
	return &Registry[R]{
		defs: []Definition[R]{{
			Name:     NameUnsupported,
			Priority: PriorityFallback,
			Match:    func(Shape) bool { return true },
			Renderer: fallback,
			fallback: true,
		}},
		order: 1,
	}
}

// Register appends definitions and re-sorts. Names are not required to be
// unique. Definitions without a name or matcher are ignored.
func (r *Registry[R]) Register(defs ...Definition[R]) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range defs {
		def.Name = strings.TrimSpace(def.Name)
		if def.Name == "" || def.Match == nil {
			continue
		}
		if def.Priority == PriorityFallback {
			def.Priority = PriorityFallback + 1
		}
		def.order = r.order
		def.fallback = false
		r.order++
		r.defs = append(r.defs, def)
	}
	sort.SliceStable(r.defs, func(i, j int) bool {
		if r.defs[i].Priority == r.defs[j].Priority {
			return r.defs[i].order < r.defs[j].order
		}
		return r.defs[i].Priority > r.defs[j].Priority
	})
}

// Unregister removes every definition named name. The catch-all is never
// removed.
func (r *Registry[R]) Unregister(name string) {
	if r == nil {
		return
	}
	name = strings.TrimSpace(name)
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.defs[:0]
	for _, def := range r.defs {
		if def.Name == name && !def.fallback {
			continue
		}
		kept = append(kept, def)
	}
	r.defs = kept
}

// SetFallback replaces the catch-all renderer.
func (r *Registry[R]) SetFallback(renderer R) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.defs {
		if r.defs[i].fallback {
			r.defs[i].Renderer = renderer
		}
	}
}

// Resolve returns the first definition matching node's current shape. It
// always returns a definition.
func (r *Registry[R]) Resolve(node *questionnaire.Node) Definition[R] {
	return r.ResolveShape(ShapeOf(node))
}

// ResolveShape is Resolve for a precomputed shape.
func (r *Registry[R]) ResolveShape(shape Shape) Definition[R] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, def := range r.defs {
		if def.Match(shape) {
			return def
		}
	}
	// Unreachable while the catch-all is present.
	return r.defs[len(r.defs)-1]
}

// List returns a copy of the definitions in resolution order.
func (r *Registry[R]) List() []Definition[R] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Definition[R](nil), r.defs...)
}
