package questionnaire

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-qform/pkg/datatype"
	"github.com/goliatone/go-qform/pkg/options"
)

// Node is one item of the questionnaire tree. The exported fields describe
// the item and are read by matchers and renderers; the answer sequence is
// only changed through AddAnswer/RemoveAnswer so subscribers are notified.
//
// Nodes are created detached and become live once attached to a Tree (as a
// root item) or produced by a parent's Children factory. A detached node has
// no answers and refuses AddAnswer/RemoveAnswer.
type Node struct {
	LinkID  string
	Kind    NodeKind
	Type    ItemType
	Control ControlHint

	Text        string
	Prefix      string
	Help        string
	Legal       string
	Flyover     string
	Placeholder string

	Required bool
	Repeats  bool
	ReadOnly bool

	Min        *float64
	Max        *float64
	Step       *float64
	Unit       string
	LowerLabel string
	UpperLabel string
	MaxLength  int

	// MinOccurs and MaxOccurs bound repeating answers. MaxOccurs zero means
	// unbounded.
	MinOccurs int
	MaxOccurs int

	// AllowCustom enables free-text answers alongside the option set.
	AllowCustom bool
	// Options backs choice-style controls; nil for free-entry questions.
	Options options.Provider
	// Initial values seed the answers when no response supplies them.
	Initial []any

	// Children builds the items owned by each answer (group instances or
	// answer-dependent sub-questions). It is invoked once per answer.
	Children func() []*Node

	key     string
	tree    *Tree
	owner   *Answer
	answers []*Answer
	issues  []string
	tracker *options.Tracker
}

// Key is the instance identity, unique across the whole tree.
func (n *Node) Key() string {
	return n.key
}

// Owner returns the answer this node is scoped to, or nil for root items.
func (n *Node) Owner() *Answer {
	return n.owner
}

// Tree returns the tree the node is attached to.
func (n *Node) Tree() *Tree {
	return n.tree
}

// Answers returns the current answers in order.
func (n *Node) Answers() []*Answer {
	return append([]*Answer(nil), n.answers...)
}

// HasOptions reports whether the node is option-backed.
func (n *Node) HasOptions() bool {
	return n.Options != nil
}

// OptionsLoading reports the provider's loading flag.
func (n *Node) OptionsLoading() bool {
	return n.Options != nil && n.Options.Loading()
}

// Issues returns node-level validation messages.
func (n *Node) Issues() []string {
	return append([]string(nil), n.issues...)
}

// SetIssues replaces node-level validation messages. Issues are produced by
// an external validator.
func (n *Node) SetIssues(issues []string) {
	n.issues = append([]string(nil), issues...)
}

// CanAdd reports whether another answer may be appended.
func (n *Node) CanAdd() bool {
	if !n.mutable() {
		return false
	}
	return n.MaxOccurs <= 0 || len(n.answers) < n.MaxOccurs
}

// CanRemove reports whether an answer may be removed.
func (n *Node) CanRemove() bool {
	if !n.mutable() {
		return false
	}
	return len(n.answers) > n.MinOccurs
}

func (n *Node) mutable() bool {
	return n.tree != nil && n.Repeats && !n.ReadOnly && n.Kind != KindDisplay
}

// AddAnswer appends an empty answer and returns it. It returns nil, without
// changing anything, when CanAdd is false.
func (n *Node) AddAnswer() *Answer {
	if !n.CanAdd() {
		return nil
	}
	answer := n.newAnswer(nil, nil)
	n.answers = append(n.answers, answer)
	n.tree.emit(Event{Type: EventAnswerAdded, NodeKey: n.key, AnswerKey: answer.key})
	return answer
}

// RemoveAnswer removes answer from the node. Calls on non-repeating nodes,
// below MinOccurs, or with an answer that is not (or no longer) present are
// ignored.
func (n *Node) RemoveAnswer(answer *Answer) {
	if answer == nil || !n.CanRemove() {
		return
	}
	idx := -1
	for i, candidate := range n.answers {
		if candidate == answer {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	n.answers = append(n.answers[:idx:idx], n.answers[idx+1:]...)
	answer.release()
	if n.tracker != nil {
		n.tracker.Forget(answer.key)
	}
	n.tree.emit(Event{Type: EventAnswerRemoved, NodeKey: n.key, AnswerKey: answer.key})
}

// Tracker returns the options tracker for option-backed nodes, creating it on
// first use. It returns nil when the node has no options.
func (n *Node) Tracker() *options.Tracker {
	if n.Options == nil {
		return nil
	}
	if n.tracker == nil {
		var opts []options.TrackerOption
		if n.AllowCustom {
			opts = append(opts, options.WithCustomValues(n.customValue))
		}
		n.tracker = options.NewTracker(n.Options, opts...)
	}
	return n.tracker
}

// Label returns the display label with its prefix.
func (n *Node) Label() string {
	text := strings.TrimSpace(n.Text)
	if prefix := strings.TrimSpace(n.Prefix); prefix != "" {
		if text == "" {
			return prefix
		}
		return prefix + " " + text
	}
	if text == "" {
		return n.LinkID
	}
	return text
}

func (n *Node) customValue(draft string) any {
	switch n.Type {
	case TypeInteger:
		if v, err := strconv.ParseInt(strings.TrimSpace(draft), 10, 64); err == nil {
			return v
		}
	case TypeDecimal:
		if v, err := strconv.ParseFloat(strings.TrimSpace(draft), 64); err == nil {
			return v
		}
	case TypeCoding:
		return datatype.Coding{Display: draft}
	}
	return draft
}

func (n *Node) newAnswer(value any, seeds []ResponseItem) *Answer {
	answer := &Answer{
		key:      n.tree.nextKey(),
		question: n,
		value:    value,
	}
	if n.Children != nil {
		for _, child := range n.Children() {
			if child == nil {
				continue
			}
			n.tree.init(child, answer, seedsFor(seeds, child.LinkID))
			answer.nodes = append(answer.nodes, child)
		}
	}
	return answer
}

func (n *Node) release() {
	if detacher, ok := n.Options.(interface{ Detach() }); ok {
		detacher.Detach()
	}
	for _, answer := range n.answers {
		answer.release()
	}
}
