package questionnaire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceKind identifies where a document is read from.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source points at a definition or response document.
type Source struct {
	Kind     SourceKind
	Location string
}

// SourceFromFile returns a Source for an on-disk path.
func SourceFromFile(path string) Source {
	return Source{Kind: SourceKindFile, Location: filepath.Clean(path)}
}

// SourceFromFS returns a Source naming a file inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return Source{Kind: SourceKindFS, Location: name}
}

// SourceFromURL returns a Source for an HTTP(S) document.
func SourceFromURL(raw string) Source {
	return Source{Kind: SourceKindURL, Location: raw}
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem enables SourceKindFS sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables SourceKindURL sources using client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.http = client
	}
}

// WithRequestTimeout caps remote reads.
func WithRequestTimeout(timeout time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// Loader reads definitions and responses. JSON and YAML are both accepted.
// URL sources are disabled unless an HTTP client is configured.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// NewLoader constructs a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// LoadDefinition reads and decodes a questionnaire definition.
func (l *Loader) LoadDefinition(ctx context.Context, src Source) (Definition, error) {
	var def Definition
	data, err := l.read(ctx, src)
	if err != nil {
		return def, err
	}
	if err := Decode(data, &def); err != nil {
		return def, fmt.Errorf("questionnaire loader: decode %s: %w", src.Location, err)
	}
	if len(def.Item) == 0 {
		return def, fmt.Errorf("questionnaire loader: %s has no items", src.Location)
	}
	return def, nil
}

// LoadResponse reads and decodes a questionnaire response.
func (l *Loader) LoadResponse(ctx context.Context, src Source) (Response, error) {
	var resp Response
	data, err := l.read(ctx, src)
	if err != nil {
		return resp, err
	}
	if err := Decode(data, &resp); err != nil {
		return resp, fmt.Errorf("questionnaire loader: decode %s: %w", src.Location, err)
	}
	return resp, nil
}

// Decode unmarshals a JSON or YAML document into out. Documents starting
// with '{' or '[' are read as JSON.
func Decode(data []byte, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty document")
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	return yaml.Unmarshal(trimmed, out)
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	if src.Location == "" {
		return nil, errors.New("questionnaire loader: source location is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch src.Kind {
	case SourceKindFile:
		return os.ReadFile(src.Location)
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("questionnaire loader: filesystem is not configured")
		}
		return fs.ReadFile(l.fs, src.Location)
	case SourceKindURL:
		if l.http == nil {
			return nil, errors.New("questionnaire loader: http support disabled")
		}
		return l.readHTTP(ctx, src.Location)
	default:
		return nil, fmt.Errorf("questionnaire loader: unsupported source kind %q", src.Kind)
	}
}

func (l *Loader) readHTTP(ctx context.Context, location string) ([]byte, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("questionnaire loader: build request: %w", err)
	}
	req.Header.Set("Accept", "application/fhir+json, application/json, application/yaml")
	res, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("questionnaire loader: fetch %s: %w", location, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("questionnaire loader: fetch %s: unexpected status %d", location, res.StatusCode)
	}
	return io.ReadAll(res.Body)
}
