package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// Form field names shared by the HTML renderer and the session dispatcher.
// Answer inputs post under "a.<answerKey>", custom drafts under
// "custom.<answerKey>", and every button posts one "action" value.
const (
	AnswerFieldPrefix = "a."
	CustomFieldPrefix = "custom."
	ActionField       = "action"
)

// ErrMalformedAction is returned by ParseAction for values that do not follow
// the "<verb>:<target>" shape.
var ErrMalformedAction = errors.New("render: malformed action")

// ActionVerb names a user affordance posted by a button.
type ActionVerb string

const (
	VerbSubmit       ActionVerb = "submit"
	VerbAdd          ActionVerb = "add"
	VerbRemove       ActionVerb = "remove"
	VerbSelect       ActionVerb = "select"
	VerbCustomSubmit ActionVerb = "custom-submit"
	VerbCustomCancel ActionVerb = "custom-cancel"
)

// Action is a decoded button value. Target is a node key for VerbAdd and an
// answer key otherwise; Token is only set for VerbSelect.
type Action struct {
	Verb   ActionVerb
	Target string
	Token  string
}

// String encodes the action as a button value.
func (a Action) String() string {
	switch a.Verb {
	case VerbSubmit, "":
		return string(VerbSubmit)
	case VerbSelect:
		return string(a.Verb) + ":" + a.Target + ":" + a.Token
	default:
		return string(a.Verb) + ":" + a.Target
	}
}

// AnswerField is the input name carrying answer's value.
func AnswerField(answer *questionnaire.Answer) string {
	return AnswerFieldPrefix + answer.Key()
}

// CustomField is the input name carrying answer's custom draft.
func CustomField(answer *questionnaire.Answer) string {
	return CustomFieldPrefix + answer.Key()
}

// AddAction appends an answer (or group instance) to node.
func AddAction(node *questionnaire.Node) Action {
	return Action{Verb: VerbAdd, Target: node.Key()}
}

// RemoveAction removes answer from its node.
func RemoveAction(answer *questionnaire.Answer) Action {
	return Action{Verb: VerbRemove, Target: answer.Key()}
}

// SelectAction picks the option token for answer. Used for the
// specify-other entry, which has no value of its own.
func SelectAction(answer *questionnaire.Answer, token string) Action {
	return Action{Verb: VerbSelect, Target: answer.Key(), Token: token}
}

// CustomSubmitAction commits answer's custom draft.
func CustomSubmitAction(answer *questionnaire.Answer) Action {
	return Action{Verb: VerbCustomSubmit, Target: answer.Key()}
}

// CustomCancelAction discards answer's custom draft.
func CustomCancelAction(answer *questionnaire.Answer) Action {
	return Action{Verb: VerbCustomCancel, Target: answer.Key()}
}

// ParseAction decodes a posted button value. An empty value is a plain
// submit.
func ParseAction(raw string) (Action, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == string(VerbSubmit) {
		return Action{Verb: VerbSubmit}, nil
	}

	verb, rest, ok := strings.Cut(raw, ":")
	if !ok || rest == "" {
		return Action{}, fmt.Errorf("%w: %q", ErrMalformedAction, raw)
	}
	action := Action{Verb: ActionVerb(verb), Target: rest}
	switch action.Verb {
	case VerbAdd, VerbRemove, VerbCustomSubmit, VerbCustomCancel:
		return action, nil
	case VerbSelect:
		target, token, ok := strings.Cut(rest, ":")
		if !ok || target == "" || token == "" {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformedAction, raw)
		}
		action.Target, action.Token = target, token
		return action, nil
	default:
		return Action{}, fmt.Errorf("%w: unknown verb %q", ErrMalformedAction, verb)
	}
}

// HiddenField is a hidden input emitted alongside the items.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying token under name (for example
// "_csrf").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win on collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out[field.Name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields sorts hidden fields by name for deterministic output.
// Blank names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	result := make([]HiddenField, 0, len(fields))
	for name, value := range fields {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		result = append(result, HiddenField{Name: name, Value: value})
	}
	if len(result) == 0 {
		return nil
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
