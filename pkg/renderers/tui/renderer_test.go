package tui

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-qform/pkg/options"
	q "github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
	"github.com/goliatone/go-qform/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	inputErr     error
	infoMessages []string
	selects      []SelectConfig
	multis       []SelectConfig
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputErr != nil {
		return "", s.inputErr
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.multis = append(s.multis, cfg)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawInfo(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func decodeDefinition(t *testing.T, doc string) q.Definition {
	t.Helper()
	var def q.Definition
	if err := q.Decode([]byte(doc), &def); err != nil {
		t.Fatalf("decode definition: %v", err)
	}
	return def
}

func decodeResponse(t *testing.T, doc string) *q.Response {
	t.Helper()
	var resp q.Response
	if err := q.Decode([]byte(doc), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &resp
}

func newRenderer(t *testing.T, driver PromptDriver, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(append([]Option{WithPromptDriver(driver)}, opts...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRender_IntakeWalkthrough(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "lots", "7", "Teal", "555-1", "555-2", "Ibuprofen", "200"},
		selectIdx: []int{3},
		confirm:   []bool{true, false, false},
	}
	tree := testsupport.MustBuild(t, testsupport.MustDefinition(t, testsupport.FixtureIntake), nil)

	out, err := newRenderer(t, driver).Render(context.Background(), tree, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if driver.inputPos != len(driver.inputs) || driver.confirmPos != len(driver.confirm) {
		t.Fatalf("prompts not consumed as expected: inputs=%d confirms=%d", driver.inputPos, driver.confirmPos)
	}
	if driver.infoMessages[0] != "Patient intake" {
		t.Fatalf("expected title first, got %q", driver.infoMessages[0])
	}
	if !driver.sawInfo("does not match") {
		t.Fatalf("expected validation message for the invalid pain score: %v", driver.infoMessages)
	}

	labels := driver.selects[0].Options
	want := []string{"Choose...", "Red", "Blue", "Other (please specify)"}
	if strings.Join(labels, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected choice labels: %v", labels)
	}

	var resp q.Response
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	byLink := make(map[string]q.ResponseItem)
	for _, item := range resp.Item {
		byLink[item.LinkID] = item
	}
	if got := byLink["pain"].Answer[0].ValueInteger; got == nil || *got != 7 {
		t.Fatalf("pain not recorded: %#v", byLink["pain"])
	}
	if got := byLink["color"].Answer[0].ValueString; got == nil || *got != "Teal" {
		t.Fatalf("custom colour not recorded: %#v", byLink["color"])
	}
	if got := len(byLink["phone"].Answer); got != 2 {
		t.Fatalf("expected two phone numbers, got %d", got)
	}
	if got := len(tree.Nodes()[4].Answers()); got != 1 {
		t.Fatalf("declined add must not create a medication, got %d", got)
	}
}

const colorsDefinition = `
item:
  - linkId: color
    text: Colour
    type: coding
    answerOption:
      - valueCoding: {system: "urn:colors", code: red, display: Red}
      - valueCoding: {system: "urn:colors", code: blue, display: Blue}
`

func TestRender_LegacyValueOfferedAsKeep(t *testing.T) {
	resp := decodeResponse(t, `
item:
  - linkId: color
    answer:
      - valueCoding: {system: "urn:colors", code: green, display: Green}
`)
	tree := testsupport.MustBuild(t, decodeDefinition(t, colorsDefinition), resp)
	driver := &stubDriver{selectIdx: []int{1}}

	if _, err := newRenderer(t, driver).Render(context.Background(), tree, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	cfg := driver.selects[0]
	if cfg.Options[1] != "Green (no longer available)" || cfg.DefaultIndex != 1 {
		t.Fatalf("legacy value should be offered and preselected: %#v", cfg)
	}
	if got := options.LabelFor(tree.Nodes()[0].Answers()[0].Value()); got != "Green" {
		t.Fatalf("keeping the legacy value must not change it, got %q", got)
	}
}

func TestRender_ChecklistReconcilesAnswers(t *testing.T) {
	def := decodeDefinition(t, `
item:
  - linkId: symptoms
    text: Symptoms
    type: coding
    repeats: true
    control: check-box
    answerOption:
      - valueCoding: {code: a, display: Aches}
      - valueCoding: {code: b, display: Blurred vision}
      - valueCoding: {code: c, display: Cough}
`)
	resp := decodeResponse(t, `
item:
  - linkId: symptoms
    answer:
      - valueCoding: {code: a, display: Aches}
      - valueCoding: {code: z, display: Zoster}
`)
	tree := testsupport.MustBuild(t, def, resp)
	driver := &stubDriver{multiIdx: [][]int{{1, 2}}}

	if _, err := newRenderer(t, driver).Render(context.Background(), tree, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := driver.multis[0].Defaults; len(got) != 1 || got[0] != 0 {
		t.Fatalf("current selection should be preselected, got %v", got)
	}

	var labels []string
	for _, answer := range tree.Nodes()[0].Answers() {
		labels = append(labels, options.LabelFor(answer.Value()))
	}
	if strings.Join(labels, ",") != "Blurred vision,Zoster,Cough" {
		t.Fatalf("unexpected answers after reconcile: %v", labels)
	}
}

func TestRender_ReadOnlyAndUnsupported(t *testing.T) {
	def := decodeDefinition(t, `
item:
  - linkId: mrn
    text: Record number
    type: string
    readOnly: true
    initial:
      - valueString: MRN-42
  - linkId: sig
    text: Signature
    type: signature
  - linkId: note
    type: display
    text: "Thanks for <b>waiting</b> &amp; welcome"
`)
	tree := testsupport.MustBuild(t, def, nil)
	driver := &stubDriver{}

	if _, err := newRenderer(t, driver).Render(context.Background(), tree, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"Record number: MRN-42",
		`Signature: Unsupported item type "signature"`,
		"Thanks for waiting & welcome",
	} {
		if !driver.sawInfo(want) {
			t.Fatalf("missing %q in %v", want, driver.infoMessages)
		}
	}
	if driver.inputPos != 0 {
		t.Fatalf("read-only and unsupported items must not prompt")
	}
}

func TestRender_OptionsFailureSkipsClosedChoice(t *testing.T) {
	def := decodeDefinition(t, `
item:
  - linkId: lang
    text: Language
    type: coding
    answerValueSet: urn:languages
`)
	tree := testsupport.MustBuild(t, def, nil, q.WithOptionsResolver(func(q.DefinitionItem) options.Provider {
		return options.NewUnavailable("terminology offline")
	}))
	driver := &stubDriver{}

	if _, err := newRenderer(t, driver).Render(context.Background(), tree, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !driver.sawInfo("Options could not be loaded: terminology offline") {
		t.Fatalf("expected options failure message: %v", driver.infoMessages)
	}
	if len(driver.selects) != 0 {
		t.Fatalf("no choice prompt expected without options")
	}
}

func TestRender_AbortPropagates(t *testing.T) {
	tree := testsupport.MustBuild(t, testsupport.MustDefinition(t, testsupport.FixtureIntake), nil)
	driver := &stubDriver{inputErr: ErrAborted}

	_, err := newRenderer(t, driver).Render(context.Background(), tree, render.RenderOptions{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected abort, got %v", err)
	}
}

func TestRender_FormAndPrettyOutput(t *testing.T) {
	def := decodeDefinition(t, `
item:
  - linkId: name
    text: Name
    type: string
  - linkId: smoker
    text: Smoker
    type: boolean
`)
	build := func() *q.Tree {
		return testsupport.MustBuild(t, def, nil)
	}

	driver := &stubDriver{inputs: []string{"Ada"}, confirm: []bool{true}}
	out, err := newRenderer(t, driver, WithOutputFormat(OutputFormatFormURLEncoded)).Render(context.Background(), build(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	values, err := url.ParseQuery(string(out))
	if err != nil {
		t.Fatalf("parse form output: %v", err)
	}
	if values.Get("a.k2") != "Ada" || values.Get("a.k4") != "true" || values.Get("action") != "submit" {
		t.Fatalf("unexpected form output: %s", out)
	}

	driver = &stubDriver{inputs: []string{"Ada"}, confirm: []bool{false}}
	out, err = newRenderer(t, driver, WithOutputFormat(OutputFormatPrettyText)).Render(context.Background(), build(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render pretty: %v", err)
	}
	if string(out) != "Name: Ada\nSmoker: No\n" {
		t.Fatalf("unexpected pretty output: %q", out)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
}

func TestRenderer_ContentType(t *testing.T) {
	cases := map[OutputFormat]string{
		OutputFormatJSON:           "application/json",
		OutputFormatYAML:           "application/yaml",
		OutputFormatFormURLEncoded: "application/x-www-form-urlencoded",
		OutputFormatPrettyText:     "text/plain; charset=utf-8",
	}
	for format, want := range cases {
		r := newRenderer(t, &stubDriver{}, WithOutputFormat(format))
		if got := r.ContentType(); got != want {
			t.Fatalf("%s: want %s, got %s", format, want, got)
		}
	}
}
