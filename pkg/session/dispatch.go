package session

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-qform/pkg/options"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
)

// Result summarises one applied post.
type Result struct {
	Action render.Action
	// Invalid maps answer keys to the input errors recorded as answer issues.
	Invalid map[string]error
}

// Completed reports a submit that carried no input errors.
func (r Result) Completed() bool {
	return r.Action.Verb == render.VerbSubmit && len(r.Invalid) == 0
}

// Apply writes posted answer values and drafts into the tree, then performs
// the posted action. Input errors are stored as answer issues and reported
// in the result; only a malformed action fails the call. Fields and actions
// naming nodes or answers that no longer exist are ignored.
func (s *Session) Apply(form url.Values) (Result, error) {
	action, err := render.ParseAction(form.Get(render.ActionField))
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := Result{Action: action, Invalid: make(map[string]error)}
	clearIssues(s.tree)
	s.issues = nil

	for _, field := range sortedFields(form, render.CustomFieldPrefix) {
		answer, ok := s.tree.FindAnswer(strings.TrimPrefix(field, render.CustomFieldPrefix))
		if !ok {
			continue
		}
		if tracker := answer.Question().Tracker(); tracker != nil {
			tracker.Custom(answer).SetDraft(form.Get(field))
		}
	}

	for _, field := range sortedFields(form, render.AnswerFieldPrefix) {
		answer, ok := s.tree.FindAnswer(strings.TrimPrefix(field, render.AnswerFieldPrefix))
		if !ok {
			continue
		}
		if err := applyAnswer(answer, form[field]); err != nil {
			result.Invalid[answer.Key()] = err
		}
	}

	if err := s.dispatch(action, result.Invalid); err != nil {
		return result, err
	}

	for key, err := range result.Invalid {
		if answer, ok := s.tree.FindAnswer(key); ok {
			answer.SetIssues([]string{IssueMessage(err)})
		}
	}
	if len(result.Invalid) > 0 {
		s.issues = []string{fmt.Sprintf("%d answer(s) need attention.", len(result.Invalid))}
	}
	s.updated = s.now()
	return result, nil
}

func (s *Session) dispatch(action render.Action, invalid map[string]error) error {
	switch action.Verb {
	case render.VerbSubmit:
		return nil
	case render.VerbAdd:
		// the node may sit inside a group instance removed by an earlier post
		if node, ok := s.tree.FindNode(action.Target); ok {
			node.AddAnswer()
		}
		return nil
	case render.VerbRemove:
		// a second remove of the same answer is a no-op
		if answer, ok := s.tree.FindAnswer(action.Target); ok {
			answer.Question().RemoveAnswer(answer)
		}
		return nil
	}

	answer, ok := s.tree.FindAnswer(action.Target)
	if !ok {
		return nil
	}
	tracker := answer.Question().Tracker()
	if tracker == nil {
		return fmt.Errorf("%w: answer %q has no options", ErrUnknownAction, action.Target)
	}

	switch action.Verb {
	case render.VerbSelect:
		if err := tracker.Select(answer, action.Token); err != nil {
			invalid[answer.Key()] = err
		}
	case render.VerbCustomSubmit:
		if err := tracker.Custom(answer).Submit(); err != nil {
			invalid[answer.Key()] = err
		}
	case render.VerbCustomCancel:
		tracker.Custom(answer).Cancel()
	}
	return nil
}

// applyAnswer writes the posted values of one answer field. Option-backed
// answers take tokens (or labels, from lookups); a post that repeats the
// stored selection is a no-op so legacy values survive untouched.
func applyAnswer(answer *questionnaire.Answer, posted []string) error {
	node := answer.Question()
	if node == nil || node.ReadOnly || len(posted) == 0 {
		return nil
	}

	tracker := node.Tracker()
	if tracker == nil {
		parsed, err := questionnaire.ParseInput(node, posted[len(posted)-1])
		if err != nil {
			return err
		}
		return answer.SetValueByUser(parsed)
	}

	current := tracker.Selected(answer)
	value := strings.TrimSpace(pickToken(posted, current))
	switch {
	case value == current:
		return nil
	case value != "" && value == options.LabelFor(answer.Value()):
		return nil
	case value == "":
		return tracker.Select(answer, "")
	}
	if value == options.SpecifyOtherToken {
		return tracker.Select(answer, value)
	}
	if token, ok := tracker.Resolve(value); ok {
		return tracker.Select(answer, token)
	}
	if !tracker.AllowsCustom() {
		return fmt.Errorf("%w: %q", options.ErrUnknownToken, value)
	}
	parsed, err := questionnaire.ParseInput(node, value)
	if err != nil {
		return err
	}
	return answer.SetValueByUser(parsed)
}

// pickToken chooses among several values posted for one answer (check-box
// rows post every ticked box). A newly ticked token wins over the stored one.
func pickToken(posted []string, current string) string {
	if len(posted) == 1 {
		return posted[0]
	}
	keep := false
	for i := len(posted) - 1; i >= 0; i-- {
		value := posted[i]
		if value == "" {
			continue
		}
		if value != current {
			return value
		}
		keep = true
	}
	if keep {
		return current
	}
	return ""
}

// IssueMessage turns an input error into the text shown next to the control.
func IssueMessage(err error) string {
	switch {
	case errors.Is(err, questionnaire.ErrInputFormat):
		return "Enter a valid value."
	case errors.Is(err, options.ErrUnknownToken):
		return "Choose one of the listed options."
	case errors.Is(err, options.ErrEmptyDraft):
		return "Enter a value or cancel."
	case errors.Is(err, options.ErrCustomNotAllowed):
		return "Only the listed options are accepted."
	case errors.Is(err, questionnaire.ErrValueType):
		return "This value does not fit the question."
	default:
		return err.Error()
	}
}

func clearIssues(tree *questionnaire.Tree) {
	tree.Walk(func(node *questionnaire.Node) bool {
		node.SetIssues(nil)
		for _, answer := range node.Answers() {
			answer.SetIssues(nil)
		}
		return true
	})
}

func sortedFields(form url.Values, prefix string) []string {
	fields := make([]string, 0, len(form))
	for field := range form {
		if strings.HasPrefix(field, prefix) {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}
