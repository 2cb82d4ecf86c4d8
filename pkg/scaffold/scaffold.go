package scaffold

import (
	"strings"

	"github.com/goliatone/go-qform/pkg/ids"
	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// Default action labels.
const (
	DefaultAddLabel    = "Add another"
	DefaultRemoveLabel = "Remove"
)

// RowProps is everything a leaf control needs to render one answer.
type RowProps struct {
	Answer      *questionnaire.Answer
	Value       any
	SetValue    func(value any) error
	InputID     string
	LabelID     string
	DescribedBy string
	ReadOnly    bool
}

// Action is an add or remove affordance. Activate may be called even when
// Enabled is false; the model ignores the request.
type Action struct {
	Label    string
	Enabled  bool
	Activate func()
}

// Row is one rendered answer keyed by the answer's own key.
type Row[T any] struct {
	Key     string
	Content T
}

// AnswerList is the ordered rows of a node plus the optional add action.
type AnswerList[T any] struct {
	Rows []Row[T]
	Add  *Action
}

// ComposeAnswerList renders the visible answers of node with renderRow.
// Non-repeating nodes show only their first answer even when the model holds
// more. The add action exists only for repeating nodes.
func ComposeAnswerList[T any](node *questionnaire.Node, renderRow func(RowProps) T) AnswerList[T] {
	var list AnswerList[T]
	if node == nil || renderRow == nil {
		return list
	}

	answers := node.Answers()
	if !node.Repeats && len(answers) > 1 {
		answers = answers[:1]
	}
	list.Rows = make([]Row[T], 0, len(answers))
	for _, answer := range answers {
		list.Rows = append(list.Rows, Row[T]{
			Key:     answer.Key(),
			Content: renderRow(NewRowProps(node, answer)),
		})
	}

	if node.Repeats {
		list.Add = &Action{
			Label:   DefaultAddLabel,
			Enabled: node.CanAdd(),
			Activate: func() {
				node.AddAnswer()
			},
		}
	}
	return list
}

// NewRowProps builds the props for one answer of node.
func NewRowProps(node *questionnaire.Node, answer *questionnaire.Answer) RowProps {
	return RowProps{
		Answer:      answer,
		Value:       answer.Value(),
		SetValue:    answer.SetValueByUser,
		InputID:     ids.InputID(answer),
		LabelID:     ids.LabelID(node),
		DescribedBy: ids.DescribedBy(node, answer),
		ReadOnly:    node.ReadOnly,
	}
}

// AnswerScaffold lays out one answer: its control, the remove action, the
// nested nodes and the answer's issues.
type AnswerScaffold[T any] struct {
	Answer   *questionnaire.Answer
	Key      string
	RowID    string
	Control  T
	Remove   *Action
	Children []T
	Issues   []string
	ErrorID  string
}

// ComposeAnswer wraps control for answer. Children are rendered with
// renderNode only when the answer owns nodes.
func ComposeAnswer[T any](answer *questionnaire.Answer, control T, renderNode func(*questionnaire.Node) T) AnswerScaffold[T] {
	out := AnswerScaffold[T]{Control: control}
	if answer == nil {
		return out
	}
	out.Answer = answer
	out.Key = answer.Key()
	out.RowID = ids.RowID(answer)
	out.Issues = answer.Issues()
	if len(out.Issues) > 0 {
		out.ErrorID = ids.ErrorID(answer)
	}

	node := answer.Question()
	if node != nil && node.Repeats {
		out.Remove = &Action{
			Label:   DefaultRemoveLabel,
			Enabled: node.CanRemove(),
			Activate: func() {
				node.RemoveAnswer(answer)
			},
		}
	}

	if nodes := answer.Nodes(); len(nodes) > 0 && renderNode != nil {
		out.Children = make([]T, 0, len(nodes))
		for _, child := range nodes {
			out.Children = append(out.Children, renderNode(child))
		}
	}
	return out
}

// Header carries the label and description texts of a node with their ids.
// Ids are empty when the matching text is.
type Header struct {
	Text      string
	Prefix    string
	Required  bool
	LabelID   string
	Help      string
	HelpID    string
	Legal     string
	LegalID   string
	Flyover   string
	FlyoverID string
}

// OptionsIndicator is the loading/error state of an option-backed node.
type OptionsIndicator struct {
	Loading bool
	Error   string
}

// QuestionScaffold is the outer wrapper of a question or group.
type QuestionScaffold[T any] struct {
	Key     string
	LinkID  string
	ID      string
	Kind    questionnaire.NodeKind
	Header  Header
	Options *OptionsIndicator
	Body    T
	Issues  []string
	ErrorID string
}

// ComposeQuestion wraps body with the header, options indicator and
// node-level issues of node.
func ComposeQuestion[T any](node *questionnaire.Node, body T) QuestionScaffold[T] {
	out := QuestionScaffold[T]{Body: body}
	if node == nil {
		return out
	}
	out.Key = node.Key()
	out.LinkID = node.LinkID
	out.ID = ids.GroupID(node)
	out.Kind = node.Kind
	out.Header = Header{
		Text:     strings.TrimSpace(node.Text),
		Prefix:   strings.TrimSpace(node.Prefix),
		Required: node.Required,
		LabelID:  ids.LabelID(node),
	}
	if help := strings.TrimSpace(node.Help); help != "" {
		out.Header.Help, out.Header.HelpID = help, ids.HelpID(node)
	}
	if legal := strings.TrimSpace(node.Legal); legal != "" {
		out.Header.Legal, out.Header.LegalID = legal, ids.LegalID(node)
	}
	if flyover := strings.TrimSpace(node.Flyover); flyover != "" {
		out.Header.Flyover, out.Header.FlyoverID = flyover, ids.FlyoverID(node)
	}
	if out.Header.Text == "" && out.Header.Prefix == "" && node.Kind != questionnaire.KindDisplay {
		out.Header.Text = node.LinkID
	}

	if node.Options != nil {
		out.Options = &OptionsIndicator{
			Loading: node.Options.Loading(),
			Error:   node.Options.Error(),
		}
	}

	out.Issues = node.Issues()
	if len(out.Issues) > 0 {
		out.ErrorID = ids.QuestionErrorID(node)
	}
	return out
}
