package questionnaire

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-qform/pkg/datatype"
)

// ErrInputFormat is returned by ParseInput when text cannot be read as the
// node's type.
var ErrInputFormat = errors.New("questionnaire: input does not match item type")

var (
	dateLayouts     = []string{"2006-01-02", "2006-01", "2006"}
	dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}
	timeLayouts     = []string{"15:04:05", "15:04"}
)

// ParseInput converts text typed into a form field or prompt into a value of
// node's type. Blank input clears the answer and returns (nil, nil).
// Option-backed nodes accept option tokens as well as free text when custom
// values are allowed.
func ParseInput(node *Node, raw string) (any, error) {
	text := strings.TrimSpace(raw)
	if text == "" || node == nil {
		return nil, nil
	}

	if node.Options != nil {
		if value, ok := node.Options.ValueForKey(text); ok {
			return value, nil
		}
	}

	switch node.Type {
	case TypeString, TypeText:
		return raw, nil
	case TypeURL:
		if _, err := url.ParseRequestURI(text); err != nil {
			return nil, inputError(node, text)
		}
		return text, nil
	case TypeDate:
		return parseTemporal(node, text, dateLayouts, "")
	case TypeDateTime:
		return parseTemporal(node, text, dateTimeLayouts, "")
	case TypeTime:
		return parseTemporal(node, text, timeLayouts, "15:04:05")
	case TypeInteger:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, inputError(node, text)
		}
		return v, nil
	case TypeDecimal:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, inputError(node, text)
		}
		return v, nil
	case TypeBoolean:
		switch strings.ToLower(text) {
		case "true", "on", "yes", "y", "1":
			return true, nil
		case "false", "off", "no", "n", "0":
			return false, nil
		}
		return nil, inputError(node, text)
	case TypeQuantity:
		return parseQuantity(node, text)
	case TypeReference:
		return datatype.Reference{Reference: text}, nil
	case TypeAttachment:
		return datatype.Attachment{URL: text}, nil
	case TypeCoding, TypeChoice, TypeOpenChoice:
		if node.AllowCustom || node.Type == TypeOpenChoice {
			return node.customValue(text), nil
		}
		if node.Options != nil {
			return nil, inputError(node, text)
		}
		return datatype.Coding{Display: text}, nil
	default:
		return raw, nil
	}
}

// FormatValue renders value as editable text, the inverse of ParseInput for
// free-entry controls. Quantities format as their number only.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case datatype.Quantity:
		if v.Value == nil {
			return ""
		}
		return strconv.FormatFloat(*v.Value, 'f', -1, 64)
	case datatype.Coding:
		return v.Label()
	case datatype.Reference:
		return v.Reference
	case datatype.Attachment:
		return v.URL
	default:
		return fmt.Sprint(value)
	}
}

func parseTemporal(node *Node, text string, layouts []string, normalize string) (any, error) {
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		if normalize != "" {
			return parsed.Format(normalize), nil
		}
		return text, nil
	}
	return nil, inputError(node, text)
}

// parseQuantity reads "<number>" or "<number> <unit>"; the node's unit is
// used when none is typed.
func parseQuantity(node *Node, text string) (any, error) {
	number, unit, _ := strings.Cut(text, " ")
	v, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return nil, inputError(node, text)
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = node.Unit
	}
	return datatype.Quantity{Value: &v, Unit: unit}, nil
}

func inputError(node *Node, text string) error {
	return fmt.Errorf("%w: %q is not a valid %s", ErrInputFormat, text, node.Type)
}
