package questionnaire

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-qform/pkg/options"
)

// Extension URLs folded into item metadata by Build.
const (
	ExtItemControl = "http://hl7.org/fhir/StructureDefinition/questionnaire-itemControl"
	ExtMinValue    = "http://hl7.org/fhir/StructureDefinition/minValue"
	ExtMaxValue    = "http://hl7.org/fhir/StructureDefinition/maxValue"
	ExtSliderStep  = "http://hl7.org/fhir/StructureDefinition/questionnaire-sliderStepValue"
	ExtUnit        = "http://hl7.org/fhir/StructureDefinition/questionnaire-unit"
	ExtEntryFormat = "http://hl7.org/fhir/StructureDefinition/entryFormat"
	ExtMinOccurs   = "http://hl7.org/fhir/StructureDefinition/questionnaire-minOccurs"
	ExtMaxOccurs   = "http://hl7.org/fhir/StructureDefinition/questionnaire-maxOccurs"
)

// OptionsResolver binds an answerValueSet reference to a provider. It is
// called once per node instance so providers are never shared between
// repeated group instances.
type OptionsResolver func(item DefinitionItem) options.Provider

// Option configures NewTree and Build.
type Option func(*config)

type config struct {
	keys     KeyGenerator
	resolver OptionsResolver
}

func newConfig(opts ...Option) config {
	cfg := config{keys: defaultKeys}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithKeyGenerator replaces the default UUID key generator.
func WithKeyGenerator(keys KeyGenerator) Option {
	return func(c *config) {
		if keys != nil {
			c.keys = keys
		}
	}
}

// WithOptionsResolver binds answerValueSet references. Without a resolver
// such questions report the value set as unavailable.
func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(c *config) {
		c.resolver = resolver
	}
}

// Build turns a definition into a live tree, seeding answers from resp when
// provided.
func Build(def Definition, resp *Response, opts ...Option) (*Tree, error) {
	if len(def.Item) == 0 {
		return nil, fmt.Errorf("questionnaire: definition %q has no items", def.Name)
	}
	seen := make(map[string]struct{})
	if err := checkLinkIDs(def.Item, seen); err != nil {
		return nil, err
	}

	cfg := newConfig(opts...)
	tree := &Tree{
		title:       firstNonEmpty(def.Title, def.Name),
		reference:   firstNonEmpty(def.URL, def.Name),
		keys:        cfg.keys,
		subscribers: make(map[int]func(Event)),
	}

	var seeds []ResponseItem
	if resp != nil {
		seeds = resp.Item
	}
	for _, item := range def.Item {
		node := cfg.newNode(item)
		tree.init(node, nil, seedsFor(seeds, node.LinkID))
		tree.roots = append(tree.roots, node)
	}
	return tree, nil
}

func checkLinkIDs(items []DefinitionItem, seen map[string]struct{}) error {
	for _, item := range items {
		id := strings.TrimSpace(item.LinkID)
		if id == "" {
			return fmt.Errorf("questionnaire: item %q has no linkId", item.Text)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("questionnaire: duplicate linkId %q", id)
		}
		seen[id] = struct{}{}
		if err := checkLinkIDs(item.Item, seen); err != nil {
			return err
		}
	}
	return nil
}

func (c config) newNode(item DefinitionItem) *Node {
	itemType := ItemType(strings.TrimSpace(item.Type))
	node := &Node{
		LinkID:      item.LinkID,
		Kind:        itemType.Kind(),
		Type:        itemType,
		Control:     ParseControlHint(item.Control),
		Text:        item.Text,
		Prefix:      item.Prefix,
		Help:        item.Help,
		Legal:       item.Legal,
		Flyover:     item.Flyover,
		Placeholder: item.Placeholder,
		Required:    item.Required,
		Repeats:     item.Repeats,
		ReadOnly:    item.ReadOnly,
		Min:         item.Min,
		Max:         item.Max,
		Step:        item.Step,
		Unit:        item.Unit,
		LowerLabel:  item.LowerLabel,
		UpperLabel:  item.UpperLabel,
		MaxLength:   item.MaxLength,
		MinOccurs:   item.MinOccurs,
		MaxOccurs:   item.MaxOccurs,
	}
	applyExtensions(node, item.Extension)

	node.AllowCustom = itemType == TypeOpenChoice ||
		item.AnswerConstraint == "optionsOrString" ||
		item.AnswerConstraint == "optionsOrType"

	switch {
	case len(item.AnswerOption) > 0:
		opts := make([]options.Option, 0, len(item.AnswerOption))
		for _, opt := range item.AnswerOption {
			value := opt.Get()
			if value == nil {
				continue
			}
			opts = append(opts, options.Option{Value: value})
			if opt.InitialSelected {
				node.Initial = append(node.Initial, value)
			}
		}
		node.Options = options.NewStatic(opts...)
	case item.AnswerValueSet != "":
		var provider options.Provider
		if c.resolver != nil {
			provider = c.resolver(item)
		}
		if provider == nil {
			provider = options.NewUnavailable(fmt.Sprintf("value set %s is not available", item.AnswerValueSet))
		}
		node.Options = provider
	}

	for _, initial := range item.Initial {
		if value := initial.Get(); value != nil {
			node.Initial = append(node.Initial, value)
		}
	}

	var children []DefinitionItem
	for _, child := range item.Item {
		if child.Type == string(TypeDisplay) && foldDisplayChild(node, child) {
			continue
		}
		children = append(children, child)
	}
	if len(children) > 0 {
		node.Children = func() []*Node {
			nodes := make([]*Node, 0, len(children))
			for _, child := range children {
				nodes = append(nodes, c.newNode(child))
			}
			return nodes
		}
	}
	return node
}

// foldDisplayChild moves help/legal/flyover/lower/upper display items into
// the parent's text fields.
func foldDisplayChild(parent *Node, child DefinitionItem) bool {
	control := strings.ToLower(strings.TrimSpace(child.Control))
	if control == "" {
		control = itemControlCode(child.Extension)
	}
	switch control {
	case "help":
		parent.Help = child.Text
	case "legal":
		parent.Legal = child.Text
	case "flyover":
		parent.Flyover = child.Text
	case "lower":
		parent.LowerLabel = child.Text
	case "upper":
		parent.UpperLabel = child.Text
	default:
		return false
	}
	return true
}

func itemControlCode(exts []Extension) string {
	for _, ext := range exts {
		if ext.URL != ExtItemControl || ext.ValueCodeableConcept == nil {
			continue
		}
		for _, coding := range ext.ValueCodeableConcept.Coding {
			if coding.Code != "" {
				return strings.ToLower(coding.Code)
			}
		}
	}
	return ""
}

func applyExtensions(node *Node, exts []Extension) {
	if code := itemControlCode(exts); code != "" && node.Control == ControlNone {
		node.Control = ParseControlHint(code)
	}
	for _, ext := range exts {
		switch ext.URL {
		case ExtMinValue:
			if node.Min == nil {
				node.Min = extNumber(ext)
			}
		case ExtMaxValue:
			if node.Max == nil {
				node.Max = extNumber(ext)
			}
		case ExtSliderStep:
			if node.Step == nil {
				node.Step = extNumber(ext)
			}
		case ExtUnit:
			if node.Unit == "" && ext.ValueCoding != nil {
				node.Unit = ext.ValueCoding.Label()
			}
		case ExtEntryFormat:
			if node.Placeholder == "" && ext.ValueString != nil {
				node.Placeholder = *ext.ValueString
			}
		case ExtMinOccurs:
			if node.MinOccurs == 0 && ext.ValueInteger != nil {
				node.MinOccurs = int(*ext.ValueInteger)
			}
		case ExtMaxOccurs:
			if node.MaxOccurs == 0 && ext.ValueInteger != nil {
				node.MaxOccurs = int(*ext.ValueInteger)
			}
		}
	}
}

func extNumber(ext Extension) *float64 {
	switch {
	case ext.ValueDecimal != nil:
		v := *ext.ValueDecimal
		return &v
	case ext.ValueInteger != nil:
		v := float64(*ext.ValueInteger)
		return &v
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
