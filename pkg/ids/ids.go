// Package ids derives element identifiers from node and answer keys. The
// functions are pure; uniqueness follows from key uniqueness and is not
// checked here.
package ids

import (
	"strings"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// Prefix starts every generated identifier so ids never begin with a digit.
const Prefix = "q-"

// Sanitize maps characters outside [A-Za-z0-9_-] to '-'.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func compose(key, suffix string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return Prefix + Sanitize(key) + "-" + suffix
}

func nodeKey(node *questionnaire.Node) string {
	if node == nil {
		return ""
	}
	return node.Key()
}

func answerKey(answer *questionnaire.Answer) string {
	if answer == nil {
		return ""
	}
	return answer.Key()
}

// LabelID identifies the question label.
func LabelID(node *questionnaire.Node) string { return compose(nodeKey(node), "label") }

// HelpID identifies the help text.
func HelpID(node *questionnaire.Node) string { return compose(nodeKey(node), "help") }

// LegalID identifies the legal text.
func LegalID(node *questionnaire.Node) string { return compose(nodeKey(node), "legal") }

// FlyoverID identifies the flyover text.
func FlyoverID(node *questionnaire.Node) string { return compose(nodeKey(node), "flyover") }

// QuestionErrorID identifies the node-level issue list.
func QuestionErrorID(node *questionnaire.Node) string { return compose(nodeKey(node), "errors") }

// GroupID identifies the wrapper of a node.
func GroupID(node *questionnaire.Node) string { return compose(nodeKey(node), "item") }

// InputID identifies the control of one answer.
func InputID(answer *questionnaire.Answer) string { return compose(answerKey(answer), "input") }

// ErrorID identifies the issue list of one answer.
func ErrorID(answer *questionnaire.Answer) string { return compose(answerKey(answer), "error") }

// RowID identifies the row wrapping one answer.
func RowID(answer *questionnaire.Answer) string { return compose(answerKey(answer), "row") }

// DescribedBy joins the description ids that apply to an answer's control:
// help, legal and flyover of the node, then the answer's error id when it has
// issues. It returns "" when nothing applies. The result is meant to be
// written into an attribute as-is.
func DescribedBy(node *questionnaire.Node, answer *questionnaire.Answer) string {
	parts := make([]string, 0, 4)
	if node != nil {
		if strings.TrimSpace(node.Help) != "" {
			parts = append(parts, HelpID(node))
		}
		if strings.TrimSpace(node.Legal) != "" {
			parts = append(parts, LegalID(node))
		}
		if strings.TrimSpace(node.Flyover) != "" {
			parts = append(parts, FlyoverID(node))
		}
	}
	if answer != nil && len(answer.Issues()) > 0 {
		parts = append(parts, ErrorID(answer))
	}
	return strings.Join(parts, " ")
}
