package session

import (
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

var (
	// ErrNotFound is returned when a session id is unknown or expired.
	ErrNotFound = errors.New("session: not found")
	// ErrUnknownAction is returned when an option action targets an answer
	// that has no options.
	ErrUnknownAction = errors.New("session: unknown action target")
)

// Session is one fill-in of a questionnaire.
type Session struct {
	id            string
	questionnaire string
	created       time.Time
	now           func() time.Time

	mu      sync.Mutex
	tree    *questionnaire.Tree
	issues  []string
	updated time.Time
}

func newSession(id, name string, tree *questionnaire.Tree, now func() time.Time) *Session {
	started := now()
	return &Session{
		id:            id,
		questionnaire: name,
		tree:          tree,
		now:           now,
		created:       started,
		updated:       started,
	}
}

// ID is the opaque session identifier.
func (s *Session) ID() string {
	return s.id
}

// Questionnaire names the definition the session was started from.
func (s *Session) Questionnaire() string {
	return s.questionnaire
}

// Created reports when the session started.
func (s *Session) Created() time.Time {
	return s.created
}

// Updated reports the last applied post.
func (s *Session) Updated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated
}

// Do runs fn with exclusive access to the tree. Renderers and exporters must
// go through Do; the tree is not safe for concurrent use.
func (s *Session) Do(fn func(tree *questionnaire.Tree, formIssues []string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tree, append([]string(nil), s.issues...))
}

// Response exports the current answers.
func (s *Session) Response() questionnaire.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Response()
}

// close detaches live option providers so in-flight fetches are dropped.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Walk(func(node *questionnaire.Node) bool {
		if detacher, ok := node.Options.(interface{ Detach() }); ok {
			detacher.Detach()
		}
		return true
	})
}
