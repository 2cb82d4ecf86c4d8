package vanilla

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-qform/pkg/controls"
	"github.com/goliatone/go-qform/pkg/datatype"
	"github.com/goliatone/go-qform/pkg/ids"
	"github.com/goliatone/go-qform/pkg/options"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
	"github.com/goliatone/go-qform/pkg/render/template"
	"github.com/goliatone/go-qform/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-qform/pkg/scaffold"
)

// componentRenderer holds the state of one Render call: the widgets used so
// far and the first widget error. Composers return plain strings, so errors
// are collected here instead of threaded through them.
type componentRenderer struct {
	controls *controls.Registry[Control]
	opts     render.RenderOptions

	lookupEndpoint string
	page           *components.Page
	err            error
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, reg *controls.Registry[Control], opts render.RenderOptions) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		controls: reg,
		opts:     opts,
		page: registry.Page(components.ComponentData{
			Template:      templates,
			ThemePartials: themePartials(opts.Theme),
		}),
	}
}

func (r *componentRenderer) fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *componentRenderer) renderNode(node *questionnaire.Node) string {
	if node == nil {
		return ""
	}
	def := r.controls.Resolve(node)
	control := def.Renderer
	switch control.Layout {
	case LayoutGroup, LayoutHeader, LayoutFooter:
		return r.renderGroup(node, control, def.Name)
	case LayoutDisplay:
		return r.renderDisplay(node, control)
	case LayoutUnsupported:
		return r.renderUnsupported(node, control, def.Name)
	default:
		return r.renderQuestion(node, control, def.Name)
	}
}

func (r *componentRenderer) renderQuestion(node *questionnaire.Node, control Control, controlName string) string {
	list := scaffold.ComposeAnswerList(node, func(props scaffold.RowProps) string {
		widget := r.renderWidget(node, control, props)
		return answerMarkup(scaffold.ComposeAnswer(props.Answer, widget, r.renderNode), r.opts)
	})

	var body strings.Builder
	writeAnswerList(&body, node, list, r.opts)

	labelFor := ""
	if answers := node.Answers(); !node.Repeats && len(answers) > 0 && labelSupportsFor(control.Component) {
		labelFor = ids.InputID(answers[0])
	}
	return questionMarkup(scaffold.ComposeQuestion(node, body.String()), controlName, labelFor, r.opts)
}

func (r *componentRenderer) renderGroup(node *questionnaire.Node, control Control, controlName string) string {
	list := scaffold.ComposeAnswerList(node, func(props scaffold.RowProps) string {
		return answerMarkup(scaffold.ComposeAnswer(props.Answer, "", r.renderNode), r.opts)
	})

	var body strings.Builder
	writeAnswerList(&body, node, list, r.opts)
	markup := groupMarkup(scaffold.ComposeQuestion(node, body.String()), controlName, r.opts)

	switch control.Layout {
	case LayoutHeader:
		return `<header class="qform-group-header">` + markup + `</header>`
	case LayoutFooter:
		return `<footer class="qform-group-footer">` + markup + `</footer>`
	default:
		return markup
	}
}

func (r *componentRenderer) renderDisplay(node *questionnaire.Node, control Control) string {
	return r.renderComponent(node, control.Component, components.WidgetProps{
		Component: control.Component,
		Type:      string(node.Type),
		InputID:   ids.GroupID(node),
		Text:      node.Text,
	})
}

func (r *componentRenderer) renderUnsupported(node *questionnaire.Node, control Control, controlName string) string {
	placeholder := r.renderComponent(node, control.Component, components.WidgetProps{
		Component: control.Component,
		Type:      string(node.Type),
		LabelID:   ids.LabelID(node),
		Message:   r.opts.Message(render.MsgUnsupported, string(node.Type)),
	})
	return questionMarkup(scaffold.ComposeQuestion(node, placeholder), controlName, "", r.opts)
}

func (r *componentRenderer) renderWidget(node *questionnaire.Node, control Control, row scaffold.RowProps) string {
	props := r.widgetProps(node, control, row)
	out := r.renderComponent(node, control.Component, props)
	if props.Custom != nil {
		out += r.renderComponent(node, components.NameCustom, props)
	}
	return out
}

func (r *componentRenderer) renderComponent(node *questionnaire.Node, name string, props components.WidgetProps) string {
	out, err := r.page.Render(name, props)
	if err != nil {
		r.fail(fmt.Errorf("item %q: %w", node.LinkID, err))
		return ""
	}
	return out
}

func (r *componentRenderer) widgetProps(node *questionnaire.Node, control Control, row scaffold.RowProps) components.WidgetProps {
	answer := row.Answer
	props := components.WidgetProps{
		Component:   control.Component,
		Name:        render.AnswerField(answer),
		Value:       questionnaire.FormatValue(row.Value),
		InputID:     row.InputID,
		LabelID:     row.LabelID,
		DescribedBy: row.DescribedBy,
		Label:       node.Label(),
		Type:        string(node.Type),
		InputType:   control.InputType,
		Placeholder: node.Placeholder,
		ReadOnly:    row.ReadOnly,
		Required:    node.Required,
		Invalid:     len(answer.Issues()) > 0,
		Min:         formatBound(node.Min),
		Max:         formatBound(node.Max),
		Step:        formatBound(node.Step),
		Unit:        node.Unit,
		LowerLabel:  node.LowerLabel,
		UpperLabel:  node.UpperLabel,
		MaxLength:   node.MaxLength,
		Messages: components.WidgetMessages{
			Choose:  r.opts.Message(render.MsgChoose),
			Loading: r.opts.Message(render.MsgLoading),
		},
	}

	switch v := row.Value.(type) {
	case bool:
		props.Checked = v
	case datatype.Quantity:
		if props.Unit == "" {
			props.Unit = v.Unit
		}
	}
	if control.Component == components.NameInput {
		props.InputType = inputTypeFor(node.Type, control.InputType, props.Value)
	}

	if tracker := node.Tracker(); tracker != nil && optionWidget(control.Component) {
		r.applyOptions(&props, tracker, answer)
	}
	return props
}

// searchURL is empty unless the provider resolves a value set reference.
func (r *componentRenderer) searchURL(provider options.Provider) string {
	sourced, ok := provider.(interface{ Source() string })
	if r.lookupEndpoint == "" || !ok || sourced.Source() == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(r.lookupEndpoint, "?") {
		sep = "&"
	}
	return r.lookupEndpoint + sep + "url=" + url.QueryEscape(sourced.Source())
}

func (r *componentRenderer) applyOptions(props *components.WidgetProps, tracker *options.Tracker, answer *questionnaire.Answer) {
	state := tracker.State()
	props.Loading = state.Loading
	props.Error = state.Error

	selected := tracker.Selected(answer)
	custom := tracker.Mode(answer) == options.ModeEnteringCustom
	legacy, hasLegacy := tracker.Legacy(answer)

	entries := tracker.DisplayEntries(answer)
	lookup := props.Component == components.NameLookup
	if lookup {
		entries = tracker.SelectableEntries()
	}

	selectedDisabled := false
	for i, entry := range entries {
		if lookup && entry.Token == options.SpecifyOtherToken {
			continue
		}
		opt := components.OptionProps{
			Token:    entry.Token,
			Label:    entry.Label,
			ID:       props.InputID + "-" + strconv.Itoa(i),
			Disabled: entry.Disabled,
			Selected: !custom && selected != "" && entry.Token == selected,
		}
		switch {
		case entry.Token == options.SpecifyOtherToken:
			opt.Label = r.opts.Message(render.MsgSpecifyOther)
			opt.Selected = custom
		case hasLegacy && entry.Token == legacy.Token && entry.Disabled:
			if tracker.AllowsCustom() {
				// a committed custom value stays selectable
				opt.Disabled = false
			} else {
				opt.Label = r.opts.Message(render.MsgLegacyOption, entry.Label)
			}
		}
		if opt.Selected && opt.Disabled {
			selectedDisabled = true
		}
		props.Options = append(props.Options, opt)
	}
	props.Clearable = props.Component == components.NameCheckbox && !selectedDisabled

	if lookup {
		props.Value = lookupValue(tracker, answer, selected)
		props.SearchURL = r.searchURL(tracker.Provider())
		if tracker.AllowsCustom() && !custom {
			props.Other = &components.ActionProps{
				Name:  render.ActionField,
				Value: render.SelectAction(answer, options.SpecifyOtherToken).String(),
				Label: r.opts.Message(render.MsgSpecifyOther),
			}
		}
	} else {
		props.Value = selected
	}

	if custom {
		props.Custom = &components.CustomProps{
			Name:    render.CustomField(answer),
			InputID: props.InputID + "-custom",
			Draft:   tracker.Custom(answer).Draft(),
			Prompt:  r.opts.Message(render.MsgCustomPrompt),
			Submit: components.ActionProps{
				Name:  render.ActionField,
				Value: render.CustomSubmitAction(answer).String(),
				Label: r.opts.Message(render.MsgCustomSubmit),
			},
			Cancel: components.ActionProps{
				Name:  render.ActionField,
				Value: render.CustomCancelAction(answer).String(),
				Label: r.opts.Message(render.MsgCustomCancel),
			},
		}
	}
}

// lookupValue is the text shown in a lookup box: the label of the stored
// value, which is also what the box posts back.
func lookupValue(tracker *options.Tracker, answer *questionnaire.Answer, selected string) string {
	if selected == "" {
		return ""
	}
	for _, entry := range tracker.DisplayEntries(answer) {
		if entry.Token == selected {
			return entry.Label
		}
	}
	return questionnaire.FormatValue(answer.Value())
}

func (r *componentRenderer) assets() (stylesheets []string, scripts []components.Script) {
	return r.page.Assets()
}

func writeAnswerList(b *strings.Builder, node *questionnaire.Node, list scaffold.AnswerList[string], opts render.RenderOptions) {
	b.WriteString(`<div class="`)
	b.WriteString(ClassAnswers.String())
	b.WriteString(`">`)
	for _, row := range list.Rows {
		b.WriteString(row.Content)
	}
	b.WriteString(`</div>`)

	if list.Add != nil {
		writeButton(b, render.AddAction(node).String(), opts.Message(render.MsgAdd), list.Add.Enabled)
	}
}

func answerMarkup(answer scaffold.AnswerScaffold[string], opts render.RenderOptions) string {
	var b strings.Builder
	b.WriteString(`<div class="`)
	b.WriteString(ClassAnswer.String())
	b.WriteString(`"`)
	writeAttr(&b, "id", answer.RowID)
	writeAttr(&b, "data-answer-key", answer.Key)
	b.WriteString(`>`)

	if answer.Control != "" || answer.Remove != nil {
		b.WriteString(`<div class="`)
		b.WriteString(ClassAnswerRow.String())
		b.WriteString(`">`)
		b.WriteString(answer.Control)
		if answer.Remove != nil {
			writeButton(&b, render.RemoveAction(answer.Answer).String(), opts.Message(render.MsgRemove), answer.Remove.Enabled)
		}
		b.WriteString(`</div>`)
	}
	writeIssues(&b, answer.ErrorID, answer.Issues)
	if len(answer.Children) > 0 {
		b.WriteString(`<div class="`)
		b.WriteString(ClassChildren.String())
		b.WriteString(`">`)
		for _, child := range answer.Children {
			b.WriteString(child)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func questionMarkup(question scaffold.QuestionScaffold[string], controlName, labelFor string, opts render.RenderOptions) string {
	var b strings.Builder
	b.Grow(len(question.Body) + 256)

	b.WriteString(`<div class="`)
	b.WriteString(ClassItem.String())
	b.WriteString(`"`)
	writeAttr(&b, "id", question.ID)
	writeAttr(&b, "data-link-id", question.LinkID)
	writeAttr(&b, "data-control", controlName)
	b.WriteString(`>`)

	tag := "div"
	if labelFor != "" {
		tag = "label"
	}
	writeHeader(&b, tag, labelFor, question.Header, opts)
	writeDescriptions(&b, question.Header)
	writeOptionsState(&b, question.Options, opts)
	b.WriteString(question.Body)
	writeLegal(&b, question.Header)
	writeIssues(&b, question.ErrorID, question.Issues)
	b.WriteString(`</div>`)
	return b.String()
}

func groupMarkup(question scaffold.QuestionScaffold[string], controlName string, opts render.RenderOptions) string {
	var b strings.Builder
	b.Grow(len(question.Body) + 256)

	b.WriteString(`<fieldset class="`)
	b.WriteString(ClassGroup.String())
	b.WriteString(`"`)
	writeAttr(&b, "id", question.ID)
	writeAttr(&b, "data-link-id", question.LinkID)
	writeAttr(&b, "data-control", controlName)
	writeAttr(&b, "aria-labelledby", question.Header.LabelID)
	if question.Header.HelpID != "" {
		writeAttr(&b, "aria-describedby", question.Header.HelpID)
	}
	b.WriteString(`>`)

	writeHeader(&b, "legend", "", question.Header, opts)
	writeDescriptions(&b, question.Header)
	b.WriteString(question.Body)
	writeLegal(&b, question.Header)
	writeIssues(&b, question.ErrorID, question.Issues)
	b.WriteString(`</fieldset>`)
	return b.String()
}

func writeHeader(b *strings.Builder, tag, labelFor string, header scaffold.Header, opts render.RenderOptions) {
	b.WriteString(`<`)
	b.WriteString(tag)
	b.WriteString(` class="`)
	b.WriteString(ClassLabel.String())
	b.WriteString(`"`)
	writeAttr(b, "id", header.LabelID)
	if labelFor != "" {
		writeAttr(b, "for", labelFor)
	}
	b.WriteString(`>`)
	if header.Prefix != "" {
		b.WriteString(`<span class="qform-prefix">`)
		b.WriteString(html.EscapeString(header.Prefix))
		b.WriteString(`</span>`)
	}
	b.WriteString(html.EscapeString(header.Text))
	if header.Required {
		b.WriteString(`<span class="qform-required"`)
		writeAttr(b, "title", opts.Message(render.MsgRequired))
		b.WriteString(`>*</span>`)
	}
	b.WriteString(`</`)
	b.WriteString(tag)
	b.WriteString(`>`)
}

func writeDescriptions(b *strings.Builder, header scaffold.Header) {
	if header.Flyover != "" {
		b.WriteString(`<small class="`)
		b.WriteString(ClassFlyover.String())
		b.WriteString(`"`)
		writeAttr(b, "id", header.FlyoverID)
		b.WriteString(`>`)
		b.WriteString(html.EscapeString(header.Flyover))
		b.WriteString(`</small>`)
	}
	if header.Help != "" {
		b.WriteString(`<div class="`)
		b.WriteString(ClassHelp.String())
		b.WriteString(`"`)
		writeAttr(b, "id", header.HelpID)
		b.WriteString(`>`)
		b.WriteString(render.SanitizeMarkup(header.Help))
		b.WriteString(`</div>`)
	}
}

func writeLegal(b *strings.Builder, header scaffold.Header) {
	if header.Legal == "" {
		return
	}
	b.WriteString(`<div class="`)
	b.WriteString(ClassLegal.String())
	b.WriteString(`"`)
	writeAttr(b, "id", header.LegalID)
	b.WriteString(`>`)
	b.WriteString(render.SanitizeMarkup(header.Legal))
	b.WriteString(`</div>`)
}

func writeOptionsState(b *strings.Builder, state *scaffold.OptionsIndicator, opts render.RenderOptions) {
	if state == nil {
		return
	}
	switch {
	case state.Error != "":
		b.WriteString(`<p class="`)
		b.WriteString(ClassOptionsState.String())
		b.WriteString(`" data-state="error" role="alert">`)
		b.WriteString(html.EscapeString(opts.Message(render.MsgOptionsFailed, state.Error)))
		b.WriteString(`</p>`)
	case state.Loading:
		b.WriteString(`<p class="`)
		b.WriteString(ClassOptionsState.String())
		b.WriteString(`" data-state="loading" role="status">`)
		b.WriteString(html.EscapeString(opts.Message(render.MsgLoading)))
		b.WriteString(`</p>`)
	}
}

func writeIssues(b *strings.Builder, id string, issues []string) {
	if len(issues) == 0 {
		return
	}
	b.WriteString(`<ul class="`)
	b.WriteString(ClassIssues.String())
	b.WriteString(`"`)
	writeAttr(b, "id", id)
	b.WriteString(` role="alert">`)
	for _, issue := range issues {
		b.WriteString(`<li>`)
		b.WriteString(html.EscapeString(issue))
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
}

func writeButton(b *strings.Builder, action, label string, enabled bool) {
	b.WriteString(`<button type="submit" class="`)
	b.WriteString(ClassButton.String())
	b.WriteString(`"`)
	writeAttr(b, "name", render.ActionField)
	writeAttr(b, "value", action)
	b.WriteString(` formnovalidate`)
	if !enabled {
		b.WriteString(` disabled`)
	}
	b.WriteString(`>`)
	b.WriteString(html.EscapeString(label))
	b.WriteString(`</button>`)
}
