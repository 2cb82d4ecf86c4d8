package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-qform/pkg/datatype"
)

// SpecifyOtherToken is the reserved token injected by a Tracker when the
// question accepts values outside of its option set. It never appears in a
// provider's own entries.
const SpecifyOtherToken = "__specify_other__"

// Entry is one renderable option. Tokens are opaque strings that are safe to
// emit as form values; use Provider.ValueForKey to recover the typed value.
type Entry struct {
	Token    string `json:"token"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Option pairs a typed answer value with its label. Providers derive their
// entries from options using TokenFor.
type Option struct {
	Value    any
	Label    string
	Disabled bool
}

// Entry converts the option into its renderable form.
func (o Option) Entry() Entry {
	label := strings.TrimSpace(o.Label)
	if label == "" {
		label = LabelFor(o.Value)
	}
	return Entry{
		Token:    TokenFor(o.Value),
		Label:    label,
		Disabled: o.Disabled,
	}
}

// Provider is the contract option-backed questions read from. Fetching,
// debouncing and caching are the provider's concern; consumers only observe
// the current loading/error/entries snapshot.
type Provider interface {
	Loading() bool
	Error() string
	Entries() []Entry
	ValueForKey(token string) (any, bool)
}

// TokenFor returns the canonical token for an answer value. Equal values
// always produce equal tokens so stored answers can be matched against live
// entries.
func TokenFor(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case datatype.Coding:
		if v.Code == "" && v.System == "" {
			return "coding:|" + v.Display
		}
		return "coding:" + v.System + "|" + v.Code
	case *datatype.Coding:
		if v == nil {
			return ""
		}
		return TokenFor(*v)
	case string:
		return "string:" + v
	case int:
		return "integer:" + strconv.Itoa(v)
	case int64:
		return "integer:" + strconv.FormatInt(v, 10)
	case float64:
		return "decimal:" + strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return "boolean:" + strconv.FormatBool(v)
	case datatype.Quantity:
		value := ""
		if v.Value != nil {
			value = strconv.FormatFloat(*v.Value, 'f', -1, 64)
		}
		return "quantity:" + value + "|" + v.System + "|" + v.Code
	case datatype.Reference:
		return "reference:" + v.Reference
	case datatype.Attachment:
		return "attachment:" + v.URL
	default:
		return fmt.Sprintf("%T:%v", value, value)
	}
}

// LabelFor returns a display label for an answer value.
func LabelFor(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case datatype.Coding:
		return v.Label()
	case *datatype.Coding:
		if v == nil {
			return ""
		}
		return v.Label()
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case datatype.Quantity:
		return v.Label()
	case datatype.Reference:
		return v.Label()
	case datatype.Attachment:
		return v.Label()
	default:
		return fmt.Sprint(value)
	}
}
