package vanilla

import (
	"github.com/goliatone/go-qform/pkg/controls"
	"github.com/goliatone/go-qform/pkg/renderers/vanilla/components"
)

// Layout selects the chrome wrapped around a resolved control.
type Layout string

const (
	// LayoutField wraps a leaf widget per answer row.
	LayoutField Layout = "field"
	// LayoutGroup renders a fieldset per group instance.
	LayoutGroup  Layout = "group"
	LayoutHeader Layout = "header"
	LayoutFooter Layout = "footer"
	// LayoutDisplay renders static text without answer rows.
	LayoutDisplay Layout = "display"
	// LayoutUnsupported renders the placeholder once per question.
	LayoutUnsupported Layout = "unsupported"
)

// Control is what the control registry resolves to in the HTML renderer: a
// widget from the component registry plus the chrome around it. InputType
// overrides the HTML input type for the "input" widget.
type Control struct {
	Component string
	Layout    Layout
	InputType string
}

var fallbackControl = Control{Component: components.NameUnsupported, Layout: LayoutUnsupported}

func field(component string) Control {
	return Control{Component: component, Layout: LayoutField}
}

func input(inputType string) Control {
	return Control{Component: components.NameInput, Layout: LayoutField, InputType: inputType}
}

// DefaultControls binds every built-in control name to a widget.
func DefaultControls() map[string]Control {
	return map[string]Control{
		controls.NameNumberWithSlider:    field(components.NameSlider),
		controls.NameNumberWithSpinner:   field(components.NameNumber),
		controls.NameQuantityWithSlider:  field(components.NameSlider),
		controls.NameQuantityWithSpinner: field(components.NameQuantity),

		controls.NameGroupHeader: {Layout: LayoutHeader},
		controls.NameGroupFooter: {Layout: LayoutFooter},
		controls.NameGroup:       {Layout: LayoutGroup},

		controls.NameRadioButton: field(components.NameRadio),
		controls.NameCheckBox:    field(components.NameCheckbox),
		controls.NameLookup:      field(components.NameLookup),
		controls.NameDropdown:    field(components.NameSelect),

		controls.NameString:     input("text"),
		controls.NameText:       field(components.NameTextarea),
		controls.NameURL:        input("url"),
		controls.NameInteger:    field(components.NameNumber),
		controls.NameDecimal:    field(components.NameNumber),
		controls.NameDate:       input("date"),
		controls.NameDateTime:   input("datetime-local"),
		controls.NameTime:       input("time"),
		controls.NameQuantity:   field(components.NameQuantity),
		controls.NameCoding:     input("text"),
		controls.NameReference:  input("text"),
		controls.NameAttachment: field(components.NameAttachment),
		controls.NameBoolean:    field(components.NameBoolean),
		controls.NameChoice:     input("text"),

		controls.NameDisplay: {Component: components.NameDisplay, Layout: LayoutDisplay},
	}
}
