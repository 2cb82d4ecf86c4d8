package questionnaire

import (
	"errors"
	"strings"
)

// ErrValueType is returned by Answer.SetValueByUser when the value does not
// match the question's declared type.
var ErrValueType = errors.New("questionnaire: value type does not match item type")

// NodeKind separates containers, questions and static text.
type NodeKind string

const (
	KindGroup    NodeKind = "group"
	KindQuestion NodeKind = "question"
	KindDisplay  NodeKind = "display"
)

// ItemType is the declared item type. Values read from documents are kept
// verbatim, so unknown types survive as-is and resolve to the unsupported
// control.
type ItemType string

const (
	TypeGroup      ItemType = "group"
	TypeDisplay    ItemType = "display"
	TypeString     ItemType = "string"
	TypeText       ItemType = "text"
	TypeURL        ItemType = "url"
	TypeInteger    ItemType = "integer"
	TypeDecimal    ItemType = "decimal"
	TypeDate       ItemType = "date"
	TypeDateTime   ItemType = "dateTime"
	TypeTime       ItemType = "time"
	TypeQuantity   ItemType = "quantity"
	TypeCoding     ItemType = "coding"
	TypeReference  ItemType = "reference"
	TypeAttachment ItemType = "attachment"
	TypeBoolean    ItemType = "boolean"
	TypeChoice     ItemType = "choice"
	TypeOpenChoice ItemType = "open-choice"
)

var knownTypes = map[ItemType]struct{}{
	TypeGroup: {}, TypeDisplay: {}, TypeString: {}, TypeText: {}, TypeURL: {},
	TypeInteger: {}, TypeDecimal: {}, TypeDate: {}, TypeDateTime: {}, TypeTime: {},
	TypeQuantity: {}, TypeCoding: {}, TypeReference: {}, TypeAttachment: {},
	TypeBoolean: {}, TypeChoice: {}, TypeOpenChoice: {},
}

// Known reports whether t is part of the supported enumeration.
func (t ItemType) Known() bool {
	_, ok := knownTypes[t]
	return ok
}

// IsNumeric reports integer and decimal types.
func (t ItemType) IsNumeric() bool {
	return t == TypeInteger || t == TypeDecimal
}

// IsChoice reports choice and open-choice types.
func (t ItemType) IsChoice() bool {
	return t == TypeChoice || t == TypeOpenChoice
}

// Kind derives the node kind for the type.
func (t ItemType) Kind() NodeKind {
	switch t {
	case TypeGroup:
		return KindGroup
	case TypeDisplay:
		return KindDisplay
	default:
		return KindQuestion
	}
}

// ControlHint is the optional rendering hint (FHIR itemControl).
type ControlHint string

const (
	ControlNone        ControlHint = ""
	ControlRadioButton ControlHint = "radio-button"
	ControlCheckBox    ControlHint = "check-box"
	ControlSlider      ControlHint = "slider"
	ControlSpinner     ControlHint = "spinner"
	ControlLookup      ControlHint = "lookup"
	ControlHeader      ControlHint = "header"
	ControlFooter      ControlHint = "footer"
)

// ParseControlHint normalises a control hint, accepting the common aliases
// used by questionnaire authoring tools.
func ParseControlHint(raw string) ControlHint {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "radio-button", "radio", "radiobutton":
		return ControlRadioButton
	case "check-box", "checkbox":
		return ControlCheckBox
	case "slider":
		return ControlSlider
	case "spinner":
		return ControlSpinner
	case "lookup", "autocomplete":
		return ControlLookup
	case "header":
		return ControlHeader
	case "footer":
		return ControlFooter
	default:
		return ControlNone
	}
}
