package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

const (
	DefaultExpiration      = 2 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithExpiration sets the idle timeout and the sweep interval. Every Get
// extends the session by the full timeout.
func WithExpiration(expiration, cleanup time.Duration) StoreOption {
	return func(s *Store) {
		if expiration > 0 {
			s.expiration = expiration
		}
		if cleanup > 0 {
			s.cleanup = cleanup
		}
	}
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger attaches a logger for lifecycle events.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps sessions in memory with sliding expiration.
type Store struct {
	cache      *gocache.Cache
	expiration time.Duration
	cleanup    time.Duration
	newID      func() string
	now        func() time.Time
	logger     *zap.Logger
}

// NewStore builds an in-memory store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		expiration: DefaultExpiration,
		cleanup:    DefaultCleanupInterval,
		newID:      uuid.NewString,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.cache = gocache.New(s.expiration, s.cleanup)
	s.cache.OnEvicted(func(id string, value any) {
		if session, ok := value.(*Session); ok {
			session.close()
			s.logger.Debug("session evicted", zap.String("session", id))
		}
	})
	return s
}

// Create registers a new session around tree.
func (s *Store) Create(name string, tree *questionnaire.Tree) *Session {
	session := newSession(s.newID(), strings.TrimSpace(name), tree, s.now)
	s.cache.Set(session.id, session, gocache.DefaultExpiration)
	s.logger.Info("session created",
		zap.String("session", session.id),
		zap.String("questionnaire", session.questionnaire),
	)
	return session
}

// Get returns the live session for id and extends its expiration.
func (s *Store) Get(id string) (*Session, error) {
	value, found := s.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	session, ok := value.(*Session)
	if !ok {
		s.logger.Error("wrong type assertion when getting session", zap.String("session", id))
		return nil, ErrNotFound
	}
	s.cache.Set(id, session, gocache.DefaultExpiration)
	return session, nil
}

// Delete ends a session and detaches its option providers.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Count reports the sessions currently held, expired ones included until the
// next sweep.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
