package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// IssueMapping splits a validator payload into node-level, answer-level and
// form-level messages. Nodes and Answers are keyed by instance key.
type IssueMapping struct {
	Nodes   map[string][]string
	Answers map[string][]string
	Form    []string
}

// MergeFormIssues concatenates and normalises form-level messages, trimming
// whitespace and dropping duplicates while preserving order.
func MergeFormIssues(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapIssues resolves validator paths against tree. A path is either an
// instance key or a linkId path where a numeric segment selects an answer:
//
//	"age"              node issues for the root item "age"
//	"age[0]"           issues for its first answer
//	"meds[1].dose"     node issues for "dose" inside the second "meds" instance
//	"/meds/1/dose/0"   the same, addressed as a JSON pointer, first answer
//
// A linkId segment that follows a node without an explicit index descends
// into that node's first answer. Unresolvable paths become form-level issues
// so messages are never lost.
func MapIssues(tree *questionnaire.Tree, payload map[string][]string) IssueMapping {
	mapping := IssueMapping{
		Nodes:   make(map[string][]string),
		Answers: make(map[string][]string),
	}
	if tree == nil || len(payload) == 0 {
		mapping.Nodes, mapping.Answers = nil, nil
		return mapping
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		node, answer, ok := resolveIssuePath(tree, rawPath)
		switch {
		case !ok:
			mapping.Form = append(mapping.Form, normalized...)
		case answer != nil:
			mapping.Answers[answer.Key()] = append(mapping.Answers[answer.Key()], normalized...)
		default:
			mapping.Nodes[node.Key()] = append(mapping.Nodes[node.Key()], normalized...)
		}
	}

	if len(mapping.Nodes) == 0 {
		mapping.Nodes = nil
	}
	if len(mapping.Answers) == 0 {
		mapping.Answers = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// ApplyIssues maps payload onto tree, replacing the issues of every node and
// answer, and returns the form-level remainder.
func ApplyIssues(tree *questionnaire.Tree, payload map[string][]string) []string {
	if tree == nil {
		return nil
	}
	mapping := MapIssues(tree, payload)
	tree.Walk(func(node *questionnaire.Node) bool {
		node.SetIssues(mapping.Nodes[node.Key()])
		for _, answer := range node.Answers() {
			answer.SetIssues(mapping.Answers[answer.Key()])
		}
		return true
	})
	return mapping.Form
}

func resolveIssuePath(tree *questionnaire.Tree, raw string) (*questionnaire.Node, *questionnaire.Answer, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return nil, nil, false
	}
	if answer, ok := tree.FindAnswer(trimmed); ok {
		return answer.Question(), answer, true
	}
	if node, ok := tree.FindNode(trimmed); ok {
		return node, nil, true
	}

	segments := dropWrapperSegments(parsePathSegments(trimmed))
	if len(segments) == 0 {
		return nil, nil, false
	}

	var (
		node   *questionnaire.Node
		answer *questionnaire.Answer
	)
	nodes := tree.Nodes()
	for _, segment := range segments {
		if index, err := strconv.Atoi(segment); err == nil {
			if node == nil || answer != nil {
				return nil, nil, false
			}
			answers := node.Answers()
			if index < 0 || index >= len(answers) {
				return nil, nil, false
			}
			answer = answers[index]
			continue
		}

		if node != nil {
			if answer == nil {
				answers := node.Answers()
				if len(answers) == 0 {
					return nil, nil, false
				}
				answer = answers[0]
			}
			nodes = answer.Nodes()
		}
		node, answer = findLinkID(nodes, segment), nil
		if node == nil {
			return nil, nil, false
		}
	}
	return node, answer, true
}

func findLinkID(nodes []*questionnaire.Node, linkID string) *questionnaire.Node {
	for _, node := range nodes {
		if node.LinkID == linkID {
			return node
		}
	}
	return nil
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 && isWrapperSegment(out[0]) {
		out = out[1:]
	}
	return out
}

func isWrapperSegment(segment string) bool {
	switch strings.ToLower(segment) {
	case "body", "payload", "response":
		return true
	default:
		return false
	}
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "questionnaire", "__all__":
		return true
	default:
		return false
	}
}
