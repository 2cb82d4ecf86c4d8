package options

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Fetcher resolves a value set reference into options.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]Option, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, source string) ([]Option, error)

func (f FetcherFunc) Fetch(ctx context.Context, source string) ([]Option, error) {
	return f(ctx, source)
}

// RemoteOption configures a Remote provider.
type RemoteOption func(*Remote)

// WithCache shares a cache between remote providers.
func WithCache(cache *Cache) RemoteOption {
	return func(r *Remote) {
		r.cache = cache
	}
}

// WithLogger routes fetch failures to logger.
func WithLogger(logger *zap.Logger) RemoteOption {
	return func(r *Remote) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOnChange registers a callback fired after a fetch result is applied.
// The callback runs on the fetching goroutine.
func WithOnChange(fn func()) RemoteOption {
	return func(r *Remote) {
		r.onChange = fn
	}
}

// Remote is a Provider backed by an asynchronous Fetcher. Entries from the
// previous successful fetch stay visible while a refresh is in flight, so
// Loading and a non-empty Entries may be observed together.
type Remote struct {
	mu sync.RWMutex

	source   string
	fetcher  Fetcher
	cache    *Cache
	logger   *zap.Logger
	onChange func()

	loading    bool
	err        string
	entries    []Entry
	values     map[string]any
	generation uint64
	detached   bool
}

var _ Provider = (*Remote)(nil)

// NewRemote constructs a provider for source. Nothing is fetched until
// Refresh or Load is called.
func NewRemote(source string, fetcher Fetcher, opts ...RemoteOption) *Remote {
	r := &Remote{
		source:  strings.TrimSpace(source),
		fetcher: fetcher,
		logger:  zap.NewNop(),
		values:  make(map[string]any),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Source returns the value set reference this provider resolves.
func (r *Remote) Source() string {
	return r.source
}

func (r *Remote) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

func (r *Remote) Error() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

func (r *Remote) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Remote) ValueForKey(token string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.values[token]
	return value, ok
}

// Refresh starts a fetch in the background and returns a channel closed once
// the result has been applied (or discarded). Cached option sets are applied
// synchronously.
func (r *Remote) Refresh(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	if opts, ok := r.cache.Get(r.source); ok {
		r.apply(r.begin(), opts, nil)
		close(done)
		return done
	}

	generation := r.begin()
	go func() {
		defer close(done)
		opts, err := r.fetch(ctx)
		r.apply(generation, opts, err)
	}()
	return done
}

// Load fetches synchronously, returning the fetch error (which is also
// exposed through Error).
func (r *Remote) Load(ctx context.Context) error {
	if opts, ok := r.cache.Get(r.source); ok {
		r.apply(r.begin(), opts, nil)
		return nil
	}
	generation := r.begin()
	opts, err := r.fetch(ctx)
	r.apply(generation, opts, err)
	return err
}

// Detach marks the provider as abandoned; results arriving afterwards are
// dropped.
func (r *Remote) Detach() {
	r.mu.Lock()
	r.detached = true
	r.mu.Unlock()
}

func (r *Remote) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.loading = true
	return r.generation
}

func (r *Remote) fetch(ctx context.Context) ([]Option, error) {
	if r.fetcher == nil {
		return nil, errors.New("options: no fetcher configured")
	}
	if r.source == "" {
		return nil, errors.New("options: value set source is empty")
	}
	return r.fetcher.Fetch(ctx, r.source)
}

func (r *Remote) apply(generation uint64, opts []Option, err error) {
	r.mu.Lock()
	if r.detached || generation != r.generation {
		r.mu.Unlock()
		return
	}
	r.loading = false
	if err != nil {
		r.err = err.Error()
		r.mu.Unlock()
		r.logger.Warn("option fetch failed",
			zap.String("source", r.source),
			zap.Error(err),
		)
		r.notify()
		return
	}

	r.err = ""
	r.entries = make([]Entry, 0, len(opts))
	r.values = make(map[string]any, len(opts))
	for _, opt := range opts {
		entry := opt.Entry()
		if entry.Token == "" {
			continue
		}
		if _, exists := r.values[entry.Token]; exists {
			continue
		}
		r.values[entry.Token] = opt.Value
		r.entries = append(r.entries, entry)
	}
	r.mu.Unlock()

	r.cache.Set(r.source, opts)
	r.notify()
}

func (r *Remote) notify() {
	if r.onChange != nil {
		r.onChange()
	}
}
