package valuesets

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-qform/pkg/datatype"
	"github.com/goliatone/go-qform/pkg/options"
)

//go:embed data/valuesets.yaml
var dataFS embed.FS

const defaultCatalogPath = "data/valuesets.yaml"

// ErrUnknownValueSet is returned for value set urls the fetcher cannot
// expand.
var ErrUnknownValueSet = errors.New("valuesets: unknown value set")

// ValueSet is a pre-expanded value set.
type ValueSet struct {
	URL     string            `yaml:"url" json:"url"`
	Title   string            `yaml:"title,omitempty" json:"title,omitempty"`
	Concept []datatype.Coding `yaml:"concept" json:"concept"`
}

// Options converts the concepts into option values.
func (v ValueSet) Options() []options.Option {
	out := make([]options.Option, 0, len(v.Concept))
	for _, coding := range v.Concept {
		out = append(out, options.Option{Value: coding, Label: coding.Label()})
	}
	return out
}

// Catalog is an immutable set of value sets keyed by canonical url.
type Catalog struct {
	sets map[string]ValueSet
}

var _ options.Fetcher = (*Catalog)(nil)

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultCatalogPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		defaultCatalog, defaultErr = LoadCatalog(f)
	})
	return defaultCatalog, defaultErr
}

// LoadCatalog decodes a YAML list of value sets. Later entries replace
// earlier ones with the same url.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	if r == nil {
		return nil, fmt.Errorf("valuesets: missing reader")
	}
	var sets []ValueSet
	if err := yaml.NewDecoder(r).Decode(&sets); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("valuesets: decode catalog: %w", err)
	}
	return NewCatalog(sets...), nil
}

// NewCatalog builds a catalog from sets. Sets without a url are ignored.
func NewCatalog(sets ...ValueSet) *Catalog {
	c := &Catalog{sets: make(map[string]ValueSet, len(sets))}
	for _, set := range sets {
		key := canonical(set.URL)
		if key == "" {
			continue
		}
		set.URL = key
		set.Concept = append([]datatype.Coding(nil), set.Concept...)
		c.sets[key] = set
	}
	return c
}

// Lookup returns the value set for url. A "|version" suffix is ignored.
func (c *Catalog) Lookup(url string) (ValueSet, bool) {
	if c == nil {
		return ValueSet{}, false
	}
	set, ok := c.sets[canonical(url)]
	return set, ok
}

// URLs lists the catalog urls in sorted order.
func (c *Catalog) URLs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.sets))
	for url := range c.sets {
		out = append(out, url)
	}
	sort.Strings(out)
	return out
}

// Fetch expands source from the catalog.
func (c *Catalog) Fetch(ctx context.Context, source string) ([]options.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set, ok := c.Lookup(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownValueSet, strings.TrimSpace(source))
	}
	return set.Options(), nil
}

// Chain tries each fetcher in order and moves on only when a fetcher does
// not know the value set. Other errors stop the chain.
func Chain(fetchers ...options.Fetcher) options.Fetcher {
	list := make([]options.Fetcher, 0, len(fetchers))
	for _, fetcher := range fetchers {
		if fetcher != nil {
			list = append(list, fetcher)
		}
	}
	return options.FetcherFunc(func(ctx context.Context, source string) ([]options.Option, error) {
		for _, fetcher := range list {
			opts, err := fetcher.Fetch(ctx, source)
			if errors.Is(err, ErrUnknownValueSet) {
				continue
			}
			return opts, err
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownValueSet, strings.TrimSpace(source))
	})
}

func canonical(url string) string {
	url = strings.TrimSpace(url)
	if idx := strings.IndexByte(url, '|'); idx >= 0 {
		url = url[:idx]
	}
	return url
}
