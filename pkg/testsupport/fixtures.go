// Package testsupport holds fixtures and golden helpers shared by package
// tests.
package testsupport

import (
	"bytes"
	"context"
	"embed"
	"io"
	"os"
	"path"
	"testing"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

//go:embed testdata/*.yaml
var fixtures embed.FS

// Fixture names available through MustDefinition.
const (
	FixtureIntake   = "intake.yaml"
	FixtureKitchen  = "kitchen-sink.yaml"
	FixtureResponse = "intake-response.yaml"
)

// MustDefinition decodes an embedded definition fixture.
func MustDefinition(t testing.TB, name string) questionnaire.Definition {
	t.Helper()

	var def questionnaire.Definition
	mustDecode(t, name, &def)
	return def
}

// MustResponse decodes an embedded response fixture.
func MustResponse(t testing.TB, name string) questionnaire.Response {
	t.Helper()

	var resp questionnaire.Response
	mustDecode(t, name, &resp)
	return resp
}

// MustBuild builds def with deterministic keys ("k1", "k2", ...) unless opts
// supply another generator.
func MustBuild(t testing.TB, def questionnaire.Definition, resp *questionnaire.Response, opts ...questionnaire.Option) *questionnaire.Tree {
	t.Helper()

	opts = append([]questionnaire.Option{questionnaire.WithKeyGenerator(questionnaire.SequentialKeys("k"))}, opts...)
	tree, err := questionnaire.Build(def, resp, opts...)
	if err != nil {
		t.Fatalf("build questionnaire: %v", err)
	}
	return tree
}

// FixtureBytes returns the raw fixture payload.
func FixtureBytes(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(path.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

func mustDecode(t testing.TB, name string, out any) {
	t.Helper()
	if err := questionnaire.Decode(FixtureBytes(t, name), out); err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
}

// MustReadGoldenString reads an expected-output file.
func MustReadGoldenString(t testing.TB, file string) string {
	t.Helper()
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t testing.TB, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
