package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-qform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-qform/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if result != want || written != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q (writer %q)", want, result, written)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("registering a filter twice should fail")
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-filter.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_MarkupFilterSanitises(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("use-markup", map[string]any{
		"help": `<em>Daily</em> dose<script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "<p><em>Daily</em> dose</p>" {
		t.Fatalf("unexpected markup output %q", result)
	}
}

func TestEngine_RenderInlineAndStructs(t *testing.T) {
	engine := newEngine(t)

	type props struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	}
	result, err := engine.Render(`{{ label }}:{{ count }}`, props{Label: "rows", Count: 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "rows:2" {
		t.Fatalf("struct data should use json names, got %q", result)
	}
}

func TestEngine_RequiresTemplateSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected an error without base dir or fs")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
