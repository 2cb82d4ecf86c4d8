// Package datatype holds the complex answer value shapes shared by the
// questionnaire model and the option providers. Primitive answers use plain Go
// values (string, int64, float64, bool); everything else is one of the structs
// below.
package datatype

import (
	"strconv"
	"strings"
)

// Coding identifies a concept in a code system.
type Coding struct {
	System  string `json:"system,omitempty" yaml:"system,omitempty"`
	Code    string `json:"code,omitempty" yaml:"code,omitempty"`
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
}

// Label returns the best human readable text for the coding.
func (c Coding) Label() string {
	if display := strings.TrimSpace(c.Display); display != "" {
		return display
	}
	return strings.TrimSpace(c.Code)
}

// IsZero reports whether the coding carries no identifying information.
func (c Coding) IsZero() bool {
	return c.System == "" && c.Code == "" && c.Display == ""
}

// Quantity is a measured amount with an optional unit.
type Quantity struct {
	Value  *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Unit   string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	System string   `json:"system,omitempty" yaml:"system,omitempty"`
	Code   string   `json:"code,omitempty" yaml:"code,omitempty"`
}

// Label renders the quantity as "<value> <unit>".
func (q Quantity) Label() string {
	var parts []string
	if q.Value != nil {
		parts = append(parts, strconv.FormatFloat(*q.Value, 'f', -1, 64))
	}
	if unit := strings.TrimSpace(q.Unit); unit != "" {
		parts = append(parts, unit)
	} else if code := strings.TrimSpace(q.Code); code != "" {
		parts = append(parts, code)
	}
	return strings.Join(parts, " ")
}

// Reference points at another resource.
type Reference struct {
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
	Display   string `json:"display,omitempty" yaml:"display,omitempty"`
}

// Label returns the display text, falling back to the literal reference.
func (r Reference) Label() string {
	if display := strings.TrimSpace(r.Display); display != "" {
		return display
	}
	return strings.TrimSpace(r.Reference)
}

// Attachment describes uploaded or linked content.
type Attachment struct {
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Size        int64  `json:"size,omitempty" yaml:"size,omitempty"`
}

// Label returns the attachment title or URL.
func (a Attachment) Label() string {
	if title := strings.TrimSpace(a.Title); title != "" {
		return title
	}
	return strings.TrimSpace(a.URL)
}

// Float is a small helper for building quantities and bounds inline.
func Float(v float64) *float64 {
	return &v
}
