package controls

import (
	q "github.com/goliatone/go-qform/pkg/questionnaire"
)

// Built-in control names.
const (
	NameUnsupported         = "unsupported"
	NameNumberWithSlider    = "number-with-slider"
	NameNumberWithSpinner   = "number-with-spinner"
	NameQuantityWithSlider  = "quantity-with-slider"
	NameQuantityWithSpinner = "quantity-with-spinner"
	NameGroupHeader         = "group-header"
	NameGroupFooter         = "group-footer"
	NameRadioButton         = "radio-button"
	NameCheckBox            = "check-box"
	NameLookup              = "lookup"
	NameDropdown            = "dropdown"
	NameString              = "string"
	NameText                = "text"
	NameURL                 = "url"
	NameInteger             = "integer"
	NameDecimal             = "decimal"
	NameDate                = "date"
	NameDateTime            = "date-time"
	NameTime                = "time"
	NameQuantity            = "quantity"
	NameCoding              = "coding"
	NameReference           = "reference"
	NameAttachment          = "attachment"
	NameBoolean             = "boolean"
	NameChoice              = "choice"
	NameGroup               = "group"
	NameDisplay             = "display"
)

// Priority bands of the built-in rules.
const (
	PriorityTypeControl = 120
	PriorityGroupChrome = 110
	PriorityOptionHint  = 100
	PriorityOptions     = 90
	PriorityType        = 10
)

// Rule is a renderer-less definition. Bind pairs rules with renderers.
type Rule struct {
	Name     string
	Priority int
	Match    Matcher
}

// Builtins returns the built-in rule set in registration order.
func Builtins() []Rule {
	rules := []Rule{
		{NameNumberWithSlider, PriorityTypeControl, typeControl(q.ControlSlider, q.TypeInteger, q.TypeDecimal)},
		{NameNumberWithSpinner, PriorityTypeControl, typeControl(q.ControlSpinner, q.TypeInteger, q.TypeDecimal)},
		{NameQuantityWithSlider, PriorityTypeControl, typeControl(q.ControlSlider, q.TypeQuantity)},
		{NameQuantityWithSpinner, PriorityTypeControl, typeControl(q.ControlSpinner, q.TypeQuantity)},

		{NameGroupHeader, PriorityGroupChrome, groupControl(q.ControlHeader)},
		{NameGroupFooter, PriorityGroupChrome, groupControl(q.ControlFooter)},

		{NameRadioButton, PriorityOptionHint, optionsControl(q.ControlRadioButton)},
		{NameCheckBox, PriorityOptionHint, optionsControl(q.ControlCheckBox)},
		{NameLookup, PriorityOptionHint, optionsControl(q.ControlLookup)},

		{NameDropdown, PriorityOptions, func(s Shape) bool {
			return s.Kind == q.KindQuestion && s.HasOptions
		}},

		{NameString, PriorityType, ofType(q.TypeString)},
		{NameText, PriorityType, ofType(q.TypeText)},
		{NameURL, PriorityType, ofType(q.TypeURL)},
		{NameInteger, PriorityType, ofType(q.TypeInteger)},
		{NameDecimal, PriorityType, ofType(q.TypeDecimal)},
		{NameDate, PriorityType, ofType(q.TypeDate)},
		{NameDateTime, PriorityType, ofType(q.TypeDateTime)},
		{NameTime, PriorityType, ofType(q.TypeTime)},
		{NameQuantity, PriorityType, ofType(q.TypeQuantity)},
		{NameCoding, PriorityType, ofType(q.TypeCoding)},
		{NameReference, PriorityType, ofType(q.TypeReference)},
		{NameAttachment, PriorityType, ofType(q.TypeAttachment)},
		{NameBoolean, PriorityType, ofType(q.TypeBoolean)},
		{NameChoice, PriorityType, ofType(q.TypeChoice, q.TypeOpenChoice)},
		{NameGroup, PriorityType, ofType(q.TypeGroup)},
		{NameDisplay, PriorityType, ofType(q.TypeDisplay)},
	}
	return rules
}

// Bind turns rules into definitions using renderers keyed by rule name.
// Rules without a renderer are skipped so hosts can ship a subset.
func Bind[R any](rules []Rule, renderers map[string]R) []Definition[R] {
	defs := make([]Definition[R], 0, len(rules))
	for _, rule := range rules {
		renderer, ok := renderers[rule.Name]
		if !ok {
			continue
		}
		defs = append(defs, Definition[R]{
			Name:     rule.Name,
			Priority: rule.Priority,
			Match:    rule.Match,
			Renderer: renderer,
		})
	}
	return defs
}

// NewDefaultRegistry builds a registry with the built-in rules bound to
// renderers and fallback as the catch-all.
func NewDefaultRegistry[R any](fallback R, renderers map[string]R) *Registry[R] {
	reg := NewRegistry(fallback)
	reg.Register(Bind(Builtins(), renderers)...)
	return reg
}

func ofType(types ...q.ItemType) Matcher {
	return func(s Shape) bool {
		for _, t := range types {
			if s.Type == t {
				return true
			}
		}
		return false
	}
}

func typeControl(control q.ControlHint, types ...q.ItemType) Matcher {
	matchType := ofType(types...)
	return func(s Shape) bool {
		return s.Control == control && matchType(s)
	}
}

func groupControl(control q.ControlHint) Matcher {
	return func(s Shape) bool {
		return s.Kind == q.KindGroup && s.Control == control
	}
}

func optionsControl(control q.ControlHint) Matcher {
	return func(s Shape) bool {
		return s.Kind == q.KindQuestion && s.HasOptions && s.Control == control
	}
}
