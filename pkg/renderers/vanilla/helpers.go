package vanilla

import (
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/renderers/vanilla/components"
)

// writeAttr emits ` name="value"`, skipping empty values.
func writeAttr(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
}

// labelSupportsFor reports widgets with a single focusable input a <label
// for> can point at.
func labelSupportsFor(componentName string) bool {
	switch strings.TrimSpace(componentName) {
	case components.NameRadio, components.NameCheckbox, components.NameDisplay, components.NameUnsupported, "":
		return false
	default:
		return true
	}
}

func optionWidget(componentName string) bool {
	switch componentName {
	case components.NameSelect, components.NameRadio, components.NameCheckbox, components.NameLookup:
		return true
	default:
		return false
	}
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// inputTypeFor falls back to a text box when a stored temporal value has a
// precision the native picker cannot show (a bare year, a zoned timestamp).
func inputTypeFor(itemType questionnaire.ItemType, preferred, value string) string {
	if preferred == "" {
		preferred = "text"
	}
	if value == "" {
		return preferred
	}
	switch itemType {
	case questionnaire.TypeDate:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return "text"
		}
	case questionnaire.TypeDateTime:
		for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
			if _, err := time.Parse(layout, value); err == nil {
				return preferred
			}
		}
		return "text"
	}
	return preferred
}
