package valuesets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-qform/pkg/options"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type entriesResponse struct {
	Data []options.Entry `json:"data"`
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeError(w, err, http.StatusForbidden)
				return
			}
		}

		query := r.URL.Query()
		source := strings.TrimSpace(query.Get(opts.URLParam))
		if source == "" {
			writeError(w, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("valuesets: missing %s parameter", opts.URLParam)}, http.StatusBadRequest)
			return
		}

		entries, err := expand(r.Context(), opts, source)
		if err != nil {
			opts.Logger.Warn("value set expansion failed", zap.String("url", source), zap.Error(err))
			writeError(w, classify(err), http.StatusBadGateway)
			return
		}

		results := Search(entries, query.Get(opts.SearchParam), parseInt(query.Get(opts.LimitParam)), opts)
		if results == nil {
			results = []options.Entry{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(entriesResponse{Data: results})
	})
}

func expand(ctx context.Context, opts Options, source string) ([]options.Entry, error) {
	fetcher := opts.Fetcher
	if fetcher == nil {
		catalog, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		fetcher = catalog
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	fetched, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return options.NewStatic(fetched...).Entries(), nil
}

func classify(err error) error {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return err
	case errors.Is(err, ErrUnknownValueSet):
		return StatusError{Code: http.StatusNotFound, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return StatusError{Code: http.StatusGatewayTimeout, Err: err}
	default:
		return StatusError{Code: http.StatusBadGateway, Err: err}
	}
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	code := fallback
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if status := httpErr.StatusCode(); status > 0 {
			code = status
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
