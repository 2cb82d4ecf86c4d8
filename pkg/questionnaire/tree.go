package questionnaire

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// EventType names a change notification.
type EventType string

const (
	EventAnswerAdded   EventType = "answer-added"
	EventAnswerRemoved EventType = "answer-removed"
	EventValueChanged  EventType = "value-changed"
)

// Event is delivered to subscribers after a mutation has been applied.
type Event struct {
	Type      EventType
	NodeKey   string
	AnswerKey string
}

// KeyGenerator returns a new key on every call.
type KeyGenerator func() string

// SequentialKeys returns a generator producing prefix1, prefix2, ... for
// deterministic output in tests and golden files.
func SequentialKeys(prefix string) KeyGenerator {
	var counter atomic.Uint64
	return func() string {
		return prefix + strconv.FormatUint(counter.Add(1), 10)
	}
}

// Tree owns the root items of a questionnaire instance. It is not safe for
// concurrent mutation; hosts serialise access.
type Tree struct {
	title       string
	reference   string
	roots       []*Node
	keys        KeyGenerator
	subscribers map[int]func(Event)
	nextSub     int
}

// NewTree creates an empty tree.
func NewTree(opts ...Option) *Tree {
	cfg := newConfig(opts...)
	return &Tree{
		keys:        cfg.keys,
		subscribers: make(map[int]func(Event)),
	}
}

// Attach initialises nodes and appends them as root items. Nodes already
// attached elsewhere are ignored.
func (t *Tree) Attach(nodes ...*Node) {
	for _, node := range nodes {
		if node == nil || node.tree != nil {
			continue
		}
		t.init(node, nil, nil)
		t.roots = append(t.roots, node)
	}
}

// Title is the definition title (or name) the tree was built from.
func (t *Tree) Title() string {
	return t.title
}

// Reference identifies the definition (its URL, falling back to its name). It
// is exported as Response.Questionnaire.
func (t *Tree) Reference() string {
	return t.reference
}

// Nodes returns the root items in order.
func (t *Tree) Nodes() []*Node {
	return append([]*Node(nil), t.roots...)
}

// Walk visits every node depth-first in document order, descending through
// each answer's nodes. Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(*Node) bool) {
	if fn == nil {
		return
	}
	walkNodes(t.roots, fn)
}

func walkNodes(nodes []*Node, fn func(*Node) bool) {
	for _, node := range nodes {
		if !fn(node) {
			continue
		}
		for _, answer := range node.answers {
			walkNodes(answer.nodes, fn)
		}
	}
}

// FindNode looks up a live node by key.
func (t *Tree) FindNode(key string) (*Node, bool) {
	var found *Node
	t.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.key == key {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// FindAnswer looks up a live answer by key.
func (t *Tree) FindAnswer(key string) (*Answer, bool) {
	var found *Answer
	t.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		for _, answer := range n.answers {
			if answer.key == key {
				found = answer
				return false
			}
		}
		return true
	})
	return found, found != nil
}

// Subscribe registers fn for change events and returns a function that
// removes it.
func (t *Tree) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	id := t.nextSub
	t.nextSub++
	t.subscribers[id] = fn
	return func() {
		delete(t.subscribers, id)
	}
}

func (t *Tree) emit(event Event) {
	if t == nil {
		return
	}
	for id := 0; id < t.nextSub; id++ {
		if fn, ok := t.subscribers[id]; ok {
			fn(event)
		}
	}
}

func (t *Tree) nextKey() string {
	return t.keys()
}

// init binds node to the tree and materialises its initial answers, either
// from seeds or from the occurrence bounds.
func (t *Tree) init(node *Node, owner *Answer, seeds []ResponseItem) {
	if node.Kind == "" {
		node.Kind = node.Type.Kind()
	}
	if node.Type == "" {
		switch node.Kind {
		case KindGroup:
			node.Type = TypeGroup
		case KindDisplay:
			node.Type = TypeDisplay
		}
	}
	node.key = t.nextKey()
	node.tree = t
	node.owner = owner
	node.answers = nil

	if node.Kind == KindDisplay {
		return
	}

	if len(seeds) > 0 {
		if node.Kind == KindGroup {
			for _, item := range seeds {
				node.answers = append(node.answers, node.newAnswer(nil, item.Item))
			}
		} else {
			for _, item := range seeds {
				for _, answer := range item.Answer {
					node.answers = append(node.answers, node.newAnswer(seedValue(node, answer.Get()), answer.Item))
				}
			}
		}
		if len(node.answers) > 0 {
			return
		}
	}

	if node.Kind == KindQuestion {
		for _, value := range node.Initial {
			if value == nil {
				continue
			}
			node.answers = append(node.answers, node.newAnswer(seedValue(node, value), nil))
			if !node.Repeats {
				break
			}
		}
	}

	count := 1
	if node.Repeats && node.MinOccurs > count {
		count = node.MinOccurs
	}
	for len(node.answers) < count {
		node.answers = append(node.answers, node.newAnswer(nil, nil))
	}
}

// seedValue normalises a stored value when it fits the question type and
// keeps it untouched otherwise, so out-of-set values surface as legacy
// entries instead of being dropped.
func seedValue(node *Node, value any) any {
	if normalized, err := coerceValue(node, value); err == nil {
		return normalized
	}
	return value
}

func seedsFor(items []ResponseItem, linkID string) []ResponseItem {
	var out []ResponseItem
	for _, item := range items {
		if item.LinkID == linkID {
			out = append(out, item)
		}
	}
	return out
}

func defaultKeys() string {
	return uuid.NewString()
}
