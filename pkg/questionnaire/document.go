package questionnaire

import (
	"github.com/goliatone/go-qform/pkg/datatype"
)

// Definition is the questionnaire document: the FHIR Questionnaire subset the
// builder understands plus a few authoring shorthands.
type Definition struct {
	ResourceType string           `json:"resourceType,omitempty" yaml:"resourceType,omitempty"`
	ID           string           `json:"id,omitempty" yaml:"id,omitempty"`
	URL          string           `json:"url,omitempty" yaml:"url,omitempty"`
	Name         string           `json:"name,omitempty" yaml:"name,omitempty"`
	Title        string           `json:"title,omitempty" yaml:"title,omitempty"`
	Status       string           `json:"status,omitempty" yaml:"status,omitempty"`
	Item         []DefinitionItem `json:"item,omitempty" yaml:"item,omitempty"`
}

// DefinitionItem describes one item. Extension entries carrying FHIR
// structure-definition URLs are folded into the shorthand fields by the
// builder.
type DefinitionItem struct {
	LinkID           string           `json:"linkId" yaml:"linkId"`
	Text             string           `json:"text,omitempty" yaml:"text,omitempty"`
	Prefix           string           `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Type             string           `json:"type" yaml:"type"`
	Required         bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Repeats          bool             `json:"repeats,omitempty" yaml:"repeats,omitempty"`
	ReadOnly         bool             `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	MaxLength        int              `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	AnswerOption     []AnswerOption   `json:"answerOption,omitempty" yaml:"answerOption,omitempty"`
	AnswerValueSet   string           `json:"answerValueSet,omitempty" yaml:"answerValueSet,omitempty"`
	AnswerConstraint string           `json:"answerConstraint,omitempty" yaml:"answerConstraint,omitempty"`
	Initial          []TypedValue     `json:"initial,omitempty" yaml:"initial,omitempty"`
	Extension        []Extension      `json:"extension,omitempty" yaml:"extension,omitempty"`
	Item             []DefinitionItem `json:"item,omitempty" yaml:"item,omitempty"`

	Control     string   `json:"control,omitempty" yaml:"control,omitempty"`
	Help        string   `json:"help,omitempty" yaml:"help,omitempty"`
	Legal       string   `json:"legal,omitempty" yaml:"legal,omitempty"`
	Flyover     string   `json:"flyover,omitempty" yaml:"flyover,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Min         *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Step        *float64 `json:"step,omitempty" yaml:"step,omitempty"`
	Unit        string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	LowerLabel  string   `json:"lowerLabel,omitempty" yaml:"lowerLabel,omitempty"`
	UpperLabel  string   `json:"upperLabel,omitempty" yaml:"upperLabel,omitempty"`
	MinOccurs   int      `json:"minOccurs,omitempty" yaml:"minOccurs,omitempty"`
	MaxOccurs   int      `json:"maxOccurs,omitempty" yaml:"maxOccurs,omitempty"`
}

// AnswerOption is one permitted answer.
type AnswerOption struct {
	TypedValue      `yaml:",inline"`
	InitialSelected bool `json:"initialSelected,omitempty" yaml:"initialSelected,omitempty"`
}

// Extension is the subset of FHIR extensions the builder reads.
type Extension struct {
	URL                  string           `json:"url" yaml:"url"`
	ValueString          *string          `json:"valueString,omitempty" yaml:"valueString,omitempty"`
	ValueCode            *string          `json:"valueCode,omitempty" yaml:"valueCode,omitempty"`
	ValueInteger         *int64           `json:"valueInteger,omitempty" yaml:"valueInteger,omitempty"`
	ValueDecimal         *float64         `json:"valueDecimal,omitempty" yaml:"valueDecimal,omitempty"`
	ValueCoding          *datatype.Coding `json:"valueCoding,omitempty" yaml:"valueCoding,omitempty"`
	ValueCodeableConcept *CodeableConcept `json:"valueCodeableConcept,omitempty" yaml:"valueCodeableConcept,omitempty"`
}

// CodeableConcept carries codings and free text.
type CodeableConcept struct {
	Coding []datatype.Coding `json:"coding,omitempty" yaml:"coding,omitempty"`
	Text   string            `json:"text,omitempty" yaml:"text,omitempty"`
}

// Response holds answers keyed by linkId, used both to seed a tree and to
// export one.
type Response struct {
	ResourceType  string         `json:"resourceType,omitempty" yaml:"resourceType,omitempty"`
	Questionnaire string         `json:"questionnaire,omitempty" yaml:"questionnaire,omitempty"`
	Status        string         `json:"status,omitempty" yaml:"status,omitempty"`
	Item          []ResponseItem `json:"item,omitempty" yaml:"item,omitempty"`
}

// ResponseItem is one answered item. Repeated group instances appear as
// sibling items sharing a linkId.
type ResponseItem struct {
	LinkID string           `json:"linkId" yaml:"linkId"`
	Text   string           `json:"text,omitempty" yaml:"text,omitempty"`
	Answer []ResponseAnswer `json:"answer,omitempty" yaml:"answer,omitempty"`
	Item   []ResponseItem   `json:"item,omitempty" yaml:"item,omitempty"`
}

// ResponseAnswer is one value plus the items nested under it.
type ResponseAnswer struct {
	TypedValue `yaml:",inline"`
	Item       []ResponseItem `json:"item,omitempty" yaml:"item,omitempty"`
}

// TypedValue is the value[x] choice shared by answers, options and initial
// values. At most one field is set.
type TypedValue struct {
	ValueString     *string              `json:"valueString,omitempty" yaml:"valueString,omitempty"`
	ValueInteger    *int64               `json:"valueInteger,omitempty" yaml:"valueInteger,omitempty"`
	ValueDecimal    *float64             `json:"valueDecimal,omitempty" yaml:"valueDecimal,omitempty"`
	ValueBoolean    *bool                `json:"valueBoolean,omitempty" yaml:"valueBoolean,omitempty"`
	ValueDate       *string              `json:"valueDate,omitempty" yaml:"valueDate,omitempty"`
	ValueDateTime   *string              `json:"valueDateTime,omitempty" yaml:"valueDateTime,omitempty"`
	ValueTime       *string              `json:"valueTime,omitempty" yaml:"valueTime,omitempty"`
	ValueURI        *string              `json:"valueUri,omitempty" yaml:"valueUri,omitempty"`
	ValueCoding     *datatype.Coding     `json:"valueCoding,omitempty" yaml:"valueCoding,omitempty"`
	ValueQuantity   *datatype.Quantity   `json:"valueQuantity,omitempty" yaml:"valueQuantity,omitempty"`
	ValueReference  *datatype.Reference  `json:"valueReference,omitempty" yaml:"valueReference,omitempty"`
	ValueAttachment *datatype.Attachment `json:"valueAttachment,omitempty" yaml:"valueAttachment,omitempty"`
}

// Get returns the set value using the model's value types, or nil.
func (v TypedValue) Get() any {
	switch {
	case v.ValueString != nil:
		return *v.ValueString
	case v.ValueInteger != nil:
		return *v.ValueInteger
	case v.ValueDecimal != nil:
		return *v.ValueDecimal
	case v.ValueBoolean != nil:
		return *v.ValueBoolean
	case v.ValueDate != nil:
		return *v.ValueDate
	case v.ValueDateTime != nil:
		return *v.ValueDateTime
	case v.ValueTime != nil:
		return *v.ValueTime
	case v.ValueURI != nil:
		return *v.ValueURI
	case v.ValueCoding != nil:
		return *v.ValueCoding
	case v.ValueQuantity != nil:
		return *v.ValueQuantity
	case v.ValueReference != nil:
		return *v.ValueReference
	case v.ValueAttachment != nil:
		return *v.ValueAttachment
	default:
		return nil
	}
}

// IsZero reports whether no value is set.
func (v TypedValue) IsZero() bool {
	return v.Get() == nil
}

// ValueOf wraps value for the given item type. String values are placed in
// the field matching the type (valueDate for date items and so on).
func ValueOf(itemType ItemType, value any) TypedValue {
	var out TypedValue
	switch v := value.(type) {
	case string:
		s := v
		switch itemType {
		case TypeDate:
			out.ValueDate = &s
		case TypeDateTime:
			out.ValueDateTime = &s
		case TypeTime:
			out.ValueTime = &s
		case TypeURL:
			out.ValueURI = &s
		default:
			out.ValueString = &s
		}
	case int64:
		i := v
		out.ValueInteger = &i
	case int:
		i := int64(v)
		out.ValueInteger = &i
	case float64:
		f := v
		out.ValueDecimal = &f
	case bool:
		b := v
		out.ValueBoolean = &b
	case datatype.Coding:
		c := v
		out.ValueCoding = &c
	case datatype.Quantity:
		q := v
		out.ValueQuantity = &q
	case datatype.Reference:
		r := v
		out.ValueReference = &r
	case datatype.Attachment:
		a := v
		out.ValueAttachment = &a
	}
	return out
}
