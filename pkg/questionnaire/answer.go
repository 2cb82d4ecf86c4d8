package questionnaire

import (
	"fmt"

	"github.com/goliatone/go-qform/pkg/datatype"
)

// Answer is one value of a question, or one instance of a group. It owns the
// nodes scoped to it.
type Answer struct {
	key      string
	question *Node
	value    any
	issues   []string
	nodes    []*Node
	removed  bool
}

// Key is assigned at creation and never derived from position.
func (a *Answer) Key() string {
	return a.key
}

// Question returns the owning node. It is a back-reference for callbacks.
func (a *Answer) Question() *Node {
	return a.question
}

// Value returns the stored value, nil when unanswered.
func (a *Answer) Value() any {
	return a.value
}

// Nodes returns the items scoped to this answer.
func (a *Answer) Nodes() []*Node {
	return append([]*Node(nil), a.nodes...)
}

// Issues returns answer-level validation messages.
func (a *Answer) Issues() []string {
	return append([]string(nil), a.issues...)
}

// SetIssues replaces answer-level validation messages.
func (a *Answer) SetIssues(issues []string) {
	a.issues = append([]string(nil), issues...)
}

// Removed reports whether the answer has been removed from its question.
func (a *Answer) Removed() bool {
	return a.removed
}

// SetValueByUser stores value after checking it against the question type and
// notifies subscribers. Nil clears the answer. Writes to removed answers or
// read-only questions are ignored.
func (a *Answer) SetValueByUser(value any) error {
	if a.removed || a.question == nil || a.question.ReadOnly {
		return nil
	}
	normalized, err := coerceValue(a.question, value)
	if err != nil {
		return err
	}
	a.value = normalized
	a.question.tree.emit(Event{Type: EventValueChanged, NodeKey: a.question.key, AnswerKey: a.key})
	return nil
}

func (a *Answer) release() {
	a.removed = true
	for _, node := range a.nodes {
		node.release()
	}
}

func coerceValue(node *Node, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if node.AllowCustom {
		if s, ok := value.(string); ok {
			return s, nil
		}
	}

	switch node.Type {
	case TypeString, TypeText, TypeURL, TypeDate, TypeDateTime, TypeTime:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case TypeInteger:
		switch v := value.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		}
	case TypeDecimal:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		}
	case TypeBoolean:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case TypeQuantity:
		switch v := value.(type) {
		case datatype.Quantity:
			return v, nil
		case *datatype.Quantity:
			if v != nil {
				return *v, nil
			}
		}
	case TypeCoding, TypeChoice, TypeOpenChoice:
		switch v := value.(type) {
		case datatype.Coding:
			return v, nil
		case *datatype.Coding:
			if v != nil {
				return *v, nil
			}
		case string:
			if node.Type == TypeOpenChoice {
				return v, nil
			}
		}
		if node.Options != nil {
			// Option sets may carry primitive values (answerOption valueString etc).
			switch value.(type) {
			case string, int64, int, float64, bool:
				return normalizePrimitive(value), nil
			}
		}
	case TypeReference:
		switch v := value.(type) {
		case datatype.Reference:
			return v, nil
		case *datatype.Reference:
			if v != nil {
				return *v, nil
			}
		}
	case TypeAttachment:
		switch v := value.(type) {
		case datatype.Attachment:
			return v, nil
		case *datatype.Attachment:
			if v != nil {
				return *v, nil
			}
		}
	default:
		return value, nil
	}

	if node.Options != nil && node.Type.Kind() == KindQuestion {
		switch value.(type) {
		case datatype.Coding:
			// Any option-backed question can store a coding from its value set.
			return value, nil
		}
	}
	return nil, fmt.Errorf("%w: %s cannot hold %T", ErrValueType, node.Type, value)
}

func normalizePrimitive(value any) any {
	if v, ok := value.(int); ok {
		return int64(v)
	}
	return value
}
