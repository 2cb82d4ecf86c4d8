package valuesets

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-qform/pkg/options"
)

type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchTop  EmptySearchMode = "top"
)

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath       string
	URLParam        string
	SearchParam     string
	LimitParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc
	Timeout         time.Duration

	// Fetcher expands value sets; nil uses DefaultCatalog.
	Fetcher options.Fetcher
	Logger  *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       "/valuesets",
		URLParam:        "url",
		SearchParam:     "q",
		LimitParam:      "limit",
		DefaultLimit:    50,
		MaxLimit:        200,
		EmptySearchMode: EmptySearchTop,
		Timeout:         5 * time.Second,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	defaults := DefaultOptions()
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = defaults.DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = defaults.MaxLimit
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = defaults.EmptySearchMode
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaults.RoutePath
	}
	if opts.URLParam == "" {
		opts.URLParam = defaults.URLParam
	}
	if opts.SearchParam == "" {
		opts.SearchParam = defaults.SearchParam
	}
	if opts.LimitParam == "" {
		opts.LimitParam = defaults.LimitParam
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		o.RoutePath = path
	}
}

func WithURLParam(name string) OptionFn {
	return func(o *Options) {
		o.URLParam = name
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		o.LimitParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		o.MaxLimit = limit
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		o.EmptySearchMode = mode
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		o.Guard = guard
	}
}

// WithTimeout bounds each expansion.
func WithTimeout(timeout time.Duration) OptionFn {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithFetcher replaces the embedded catalog, typically with a Chain of the
// catalog and an options.HTTPFetcher.
func WithFetcher(fetcher options.Fetcher) OptionFn {
	return func(o *Options) {
		o.Fetcher = fetcher
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		o.Logger = logger
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
