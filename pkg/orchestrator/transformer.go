package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// Transformer mutates a freshly built tree before it is rendered.
type Transformer interface {
	Transform(ctx context.Context, tree *questionnaire.Tree) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, tree *questionnaire.Tree) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, tree *questionnaire.Tree) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, tree)
}

// PresetTransformer patches item presentation by linkId from a JSON or YAML
// document, letting deployments relabel or lock items without editing the
// definition:
//
//	items:
//	  name: {text: "Legal name", required: true}
//	  pain: {control: spinner}
//	  mrn:  {readOnly: true}
type PresetTransformer struct {
	items map[string]itemPatch
}

type presetDocument struct {
	Items map[string]itemPatch `json:"items" yaml:"items"`
}

type itemPatch struct {
	Text        *string `json:"text" yaml:"text"`
	Help        *string `json:"help" yaml:"help"`
	Placeholder *string `json:"placeholder" yaml:"placeholder"`
	Control     *string `json:"control" yaml:"control"`
	Required    *bool   `json:"required" yaml:"required"`
	ReadOnly    *bool   `json:"readOnly" yaml:"readOnly"`
}

// NewPresetTransformer parses a preset document.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	var document presetDocument
	if err := questionnaire.Decode(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{items: document.Items}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, name string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", name, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the patches to every instance of each linkId, including
// group instances added later.
func (p *PresetTransformer) Transform(_ context.Context, tree *questionnaire.Tree) error {
	if p == nil || tree == nil || len(p.items) == 0 {
		return nil
	}
	p.applyAll(tree)
	tree.Subscribe(func(event questionnaire.Event) {
		if event.Type == questionnaire.EventAnswerAdded {
			p.applyAll(tree)
		}
	})
	return nil
}

func (p *PresetTransformer) applyAll(tree *questionnaire.Tree) {
	tree.Walk(func(node *questionnaire.Node) bool {
		if patch, ok := p.items[node.LinkID]; ok {
			patch.apply(node)
		}
		return true
	})
}

func (p itemPatch) apply(node *questionnaire.Node) {
	if p.Text != nil {
		node.Text = *p.Text
	}
	if p.Help != nil {
		node.Help = *p.Help
	}
	if p.Placeholder != nil {
		node.Placeholder = *p.Placeholder
	}
	if p.Control != nil {
		node.Control = questionnaire.ParseControlHint(*p.Control)
	}
	if p.Required != nil {
		node.Required = *p.Required
	}
	if p.ReadOnly != nil {
		node.ReadOnly = *p.ReadOnly
	}
}
