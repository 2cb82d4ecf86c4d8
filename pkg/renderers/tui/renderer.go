package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-qform/pkg/controls"
	"github.com/goliatone/go-qform/pkg/options"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
	"github.com/goliatone/go-qform/pkg/scaffold"
)

// Name identifies the renderer in a render.Registry.
const Name = "tui"

const (
	defaultOptionsWait = 5 * time.Second
	optionsPoll        = 50 * time.Millisecond
)

// Renderer implements render.Renderer for terminal-driven sessions. It walks
// the tree, prompts for every answer through the PromptDriver and serializes
// the collected response.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	prompts      map[string]Prompt
	registry     *controls.Registry[Prompt]
	optionsWait  time.Duration
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		optionsWait:  defaultOptionsWait,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.prompts == nil {
		r.prompts = DefaultPrompts()
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatYAML, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	r.registry = controls.NewDefaultRegistry(PromptUnsupported, r.prompts)
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatYAML:
		return "application/yaml"
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for the selected root items in order, writing every answer
// back into tree, and returns the serialized response.
func (r *Renderer) Render(ctx context.Context, tree *questionnaire.Tree, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}
	if tree == nil {
		return nil, errors.New("tui: tree is required")
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = tree.Title()
	}
	if title != "" {
		if err := r.info(ctx, title); err != nil {
			return nil, err
		}
	}
	for _, issue := range opts.FormIssues {
		if err := r.fail(ctx, issue); err != nil {
			return nil, err
		}
	}

	for _, node := range render.SelectRoots(tree, opts.Roots) {
		if err := r.promptNode(ctx, node, opts); err != nil {
			return nil, err
		}
	}
	return r.serialize(tree)
}

func (r *Renderer) promptNode(ctx context.Context, node *questionnaire.Node, opts render.RenderOptions) error {
	def := r.registry.Resolve(node)
	switch def.Renderer {
	case PromptDisplay:
		return r.info(ctx, plainText(node.Text))
	case PromptUnsupported:
		return r.fail(ctx, fmt.Sprintf("%s: %s", node.Label(), opts.Message(render.MsgUnsupported, string(node.Type))))
	case PromptGroup:
		if err := r.info(ctx, node.Label()); err != nil {
			return err
		}
	case PromptChecklist:
		if node.Repeats && node.Tracker() != nil {
			return r.promptChecklist(ctx, node, opts)
		}
	}
	for _, issue := range node.Issues() {
		if err := r.fail(ctx, issue); err != nil {
			return err
		}
	}

	row := func(props scaffold.RowProps) error {
		return r.promptRow(ctx, node, def.Renderer, props, opts)
	}
	var failed error
	list := scaffold.ComposeAnswerList(node, func(props scaffold.RowProps) error {
		if failed == nil {
			failed = row(props)
		}
		return failed
	})
	if failed != nil {
		return failed
	}
	return r.offerMore(ctx, node, list.Add, row, opts)
}

// offerMore asks for further answers while the node accepts them.
func (r *Renderer) offerMore(ctx context.Context, node *questionnaire.Node, add *scaffold.Action, row func(scaffold.RowProps) error, opts render.RenderOptions) error {
	for add != nil && add.Enabled {
		more, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: r.theme.PromptPrefix + node.Label() + ": " + opts.Message(render.MsgAdd) + "?",
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		add.Activate()
		answers := node.Answers()
		if err := row(scaffold.NewRowProps(node, answers[len(answers)-1])); err != nil {
			return err
		}
		add = scaffold.ComposeAnswerList(node, func(scaffold.RowProps) error { return nil }).Add
	}
	return nil
}

func (r *Renderer) promptRow(ctx context.Context, node *questionnaire.Node, prompt Prompt, props scaffold.RowProps, opts render.RenderOptions) error {
	answer := props.Answer
	for _, issue := range answer.Issues() {
		if err := r.fail(ctx, issue); err != nil {
			return err
		}
	}

	if prompt != PromptGroup {
		var err error
		if props.ReadOnly {
			err = r.info(ctx, node.Label()+": "+displayValue(answer.Value()))
		} else {
			err = r.promptValue(ctx, node, prompt, props, opts)
		}
		if err != nil {
			return err
		}
	}

	var failed error
	scaffold.ComposeAnswer(answer, error(nil), func(child *questionnaire.Node) error {
		if failed == nil {
			failed = r.promptNode(ctx, child, opts)
		}
		return failed
	})
	return failed
}

func (r *Renderer) promptValue(ctx context.Context, node *questionnaire.Node, prompt Prompt, props scaffold.RowProps, opts render.RenderOptions) error {
	switch prompt {
	case PromptConfirm:
		return r.promptBoolean(ctx, node, props)
	case PromptSelect, PromptChecklist:
		if tracker := node.Tracker(); tracker != nil {
			return r.promptChoice(ctx, node, tracker, props, opts)
		}
	}
	return r.promptText(ctx, node, prompt, props)
}

func (r *Renderer) promptText(ctx context.Context, node *questionnaire.Node, prompt Prompt, props scaffold.RowProps) error {
	label := r.theme.PromptPrefix + node.Label()
	help := helpText(node)
	current := questionnaire.FormatValue(props.Value)
	validate := func(text string) error {
		_, err := questionnaire.ParseInput(node, text)
		return err
	}

	for {
		var text string
		var err error
		if prompt == PromptTextArea {
			text, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: help})
		} else {
			text, err = r.driver.Input(ctx, InputConfig{Message: label, Default: current, Help: help, Validator: validate})
		}
		if err != nil {
			return err
		}

		value, err := questionnaire.ParseInput(node, text)
		if err == nil {
			err = props.SetValue(value)
		}
		if err == nil {
			return nil
		}
		if err := r.fail(ctx, err.Error()); err != nil {
			return err
		}
		current = text
	}
}

func (r *Renderer) promptBoolean(ctx context.Context, node *questionnaire.Node, props scaffold.RowProps) error {
	current, _ := props.Value.(bool)
	value, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: r.theme.PromptPrefix + node.Label(),
		Default: current,
		Help:    helpText(node),
	})
	if err != nil {
		return err
	}
	return props.SetValue(value)
}

func (r *Renderer) promptChoice(ctx context.Context, node *questionnaire.Node, tracker *options.Tracker, props scaffold.RowProps, opts render.RenderOptions) error {
	answer := props.Answer
	state, err := r.awaitOptions(ctx, tracker, opts)
	if err != nil {
		return err
	}
	if state.Error != "" || state.Loading {
		reason := state.Error
		if reason == "" {
			reason = opts.Message(render.MsgLoading)
		}
		if err := r.fail(ctx, opts.Message(render.MsgOptionsFailed, reason)); err != nil {
			return err
		}
		if !tracker.AllowsCustom() {
			return nil
		}
		return r.promptCustom(ctx, tracker, answer, opts)
	}

	labels, tokens := []string{}, []string{}
	if !node.Required {
		labels, tokens = append(labels, opts.Message(render.MsgChoose)), append(tokens, "")
	}
	if legacy, ok := tracker.Legacy(answer); ok {
		labels = append(labels, opts.Message(render.MsgLegacyOption, legacy.Label))
		tokens = append(tokens, legacy.Token)
	}
	for _, entry := range tracker.SelectableEntries() {
		label := entry.Label
		if entry.Token == options.SpecifyOtherToken {
			label = opts.Message(render.MsgSpecifyOther)
		}
		labels, tokens = append(labels, label), append(tokens, entry.Token)
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.theme.PromptPrefix + node.Label(),
		Options:      labels,
		DefaultIndex: slices.Index(tokens, tracker.Selected(answer)),
		Help:         helpText(node),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(tokens) {
		return nil
	}

	token := tokens[idx]
	if token == options.SpecifyOtherToken {
		return r.promptCustom(ctx, tracker, answer, opts)
	}
	if err := tracker.Select(answer, token); err != nil {
		return r.fail(ctx, err.Error())
	}
	return nil
}

// promptCustom collects a specify-other value. A blank entry cancels and
// keeps the committed value.
func (r *Renderer) promptCustom(ctx context.Context, tracker *options.Tracker, answer *questionnaire.Answer, opts render.RenderOptions) error {
	custom, err := tracker.BeginCustom(answer)
	if err != nil {
		return r.fail(ctx, err.Error())
	}
	for {
		draft, err := r.driver.Input(ctx, InputConfig{
			Message: r.theme.PromptPrefix + opts.Message(render.MsgCustomPrompt),
			Default: custom.Draft(),
		})
		if err != nil {
			custom.Cancel()
			return err
		}
		custom.SetDraft(draft)
		err = custom.Submit()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, options.ErrEmptyDraft):
			custom.Cancel()
			return nil
		}
		if err := r.fail(ctx, err.Error()); err != nil {
			custom.Cancel()
			return err
		}
	}
}

// promptChecklist asks for all selections of a repeating choice at once and
// reconciles the answers with the picked entries. Answers holding values that
// are no longer offered are left untouched.
func (r *Renderer) promptChecklist(ctx context.Context, node *questionnaire.Node, opts render.RenderOptions) error {
	tracker := node.Tracker()
	state, err := r.awaitOptions(ctx, tracker, opts)
	if err != nil {
		return err
	}
	if state.Error != "" || state.Loading {
		reason := state.Error
		if reason == "" {
			reason = opts.Message(render.MsgLoading)
		}
		return r.fail(ctx, opts.Message(render.MsgOptionsFailed, reason))
	}

	offered := make(map[string]bool)
	var labels, tokens []string
	for _, entry := range tracker.SelectableEntries() {
		if entry.Token == options.SpecifyOtherToken {
			continue
		}
		offered[entry.Token] = true
		labels, tokens = append(labels, entry.Label), append(tokens, entry.Token)
	}

	var slots []*questionnaire.Answer
	chosen := make(map[string]bool)
	for _, answer := range node.Answers() {
		token := tracker.Selected(answer)
		if token != "" && !offered[token] {
			continue
		}
		slots = append(slots, answer)
		chosen[token] = true
	}
	var defaults []int
	for i, token := range tokens {
		if chosen[token] {
			defaults = append(defaults, i)
		}
	}

	picked, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  r.theme.PromptPrefix + node.Label(),
		Options:  labels,
		Defaults: defaults,
		Help:     helpText(node),
	})
	if err != nil {
		return err
	}

	for i, idx := range picked {
		if idx < 0 || idx >= len(tokens) {
			continue
		}
		var answer *questionnaire.Answer
		if i < len(slots) {
			answer = slots[i]
		} else if answer = node.AddAnswer(); answer == nil {
			return r.fail(ctx, fmt.Sprintf("%s: at most %d answers", node.Label(), node.MaxOccurs))
		}
		if err := tracker.Select(answer, tokens[idx]); err != nil {
			return r.fail(ctx, err.Error())
		}
	}
	for i := len(picked); i < len(slots); i++ {
		if node.CanRemove() {
			node.RemoveAnswer(slots[i])
			continue
		}
		if err := tracker.Select(slots[i], ""); err != nil {
			return err
		}
	}
	return nil
}

// awaitOptions waits up to optionsWait for a loading provider to settle.
func (r *Renderer) awaitOptions(ctx context.Context, tracker *options.Tracker, opts render.RenderOptions) (options.State, error) {
	state := tracker.State()
	if !state.Loading || r.optionsWait <= 0 {
		return state, nil
	}
	if err := r.info(ctx, opts.Message(render.MsgLoading)); err != nil {
		return state, err
	}

	deadline := time.NewTimer(r.optionsWait)
	defer deadline.Stop()
	ticker := time.NewTicker(optionsPoll)
	defer ticker.Stop()
	for state.Loading {
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-deadline.C:
			return state, nil
		case <-ticker.C:
			state = tracker.State()
		}
	}
	return state, nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	if strings.TrimSpace(msg) == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) fail(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func helpText(node *questionnaire.Node) string {
	parts := make([]string, 0, 3)
	if help := plainText(node.Help); help != "" {
		parts = append(parts, help)
	}
	if node.Min != nil && node.Max != nil {
		parts = append(parts, fmt.Sprintf("%s to %s", questionnaire.FormatValue(*node.Min), questionnaire.FormatValue(*node.Max)))
	}
	if node.Unit != "" {
		parts = append(parts, node.Unit)
	}
	return strings.Join(parts, " · ")
}

func displayValue(value any) string {
	if label := options.LabelFor(value); label != "" {
		return label
	}
	return questionnaire.FormatValue(value)
}

var (
	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

// plainText strips author markup for terminal output.
func plainText(raw string) string {
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(raw)))
}
