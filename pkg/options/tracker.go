package options

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownToken is returned when a selection does not name a live,
	// selectable entry.
	ErrUnknownToken = errors.New("options: unknown option token")
	// ErrEmptyDraft is returned when a blank custom value is submitted.
	ErrEmptyDraft = errors.New("options: custom value is empty")
	// ErrCustomNotAllowed is returned when the question only accepts listed
	// options.
	ErrCustomNotAllowed = errors.New("options: custom values are not allowed")
)

// DefaultSpecifyOtherLabel is the label of the injected specify-other entry.
const DefaultSpecifyOtherLabel = "Other (please specify)"

// Answer is the slice of an answer instance the tracker reads and writes.
type Answer interface {
	Key() string
	Value() any
	SetValueByUser(value any) error
}

// Mode is the per-answer browsing/custom-entry axis.
type Mode string

const (
	ModeBrowsing       Mode = "browsing"
	ModeEnteringCustom Mode = "entering-custom"
)

// State is the snapshot consumers render the options indicator from.
type State struct {
	Loading bool
	Error   string
	Entries []Entry
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithCustomValues enables the specify-other entry. convert turns the
// submitted draft into a value of the question's type.
func WithCustomValues(convert func(draft string) any) TrackerOption {
	return func(t *Tracker) {
		if convert == nil {
			return
		}
		t.allowCustom = true
		t.customValue = convert
	}
}

// WithSpecifyOtherLabel overrides the label of the specify-other entry.
func WithSpecifyOtherLabel(label string) TrackerOption {
	return func(t *Tracker) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			t.otherLabel = trimmed
		}
	}
}

// Tracker layers legacy entries and the custom-option state machine over a
// Provider for one question. Custom drafts are tracked per answer key so
// repeated rows keep independent state. A Tracker is not safe for concurrent
// use; callers serialise access alongside the answers it mutates.
type Tracker struct {
	provider    Provider
	allowCustom bool
	customValue func(string) any
	otherLabel  string
	custom      map[string]*CustomOption
}

// NewTracker wraps provider. A nil provider behaves like an empty option set.
func NewTracker(provider Provider, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		provider:   provider,
		otherLabel: DefaultSpecifyOtherLabel,
		custom:     make(map[string]*CustomOption),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// Provider exposes the wrapped provider.
func (t *Tracker) Provider() Provider {
	return t.provider
}

// AllowsCustom reports whether the specify-other entry is offered.
func (t *Tracker) AllowsCustom() bool {
	return t.allowCustom
}

// State returns the provider's loading/error flags and live entries.
func (t *Tracker) State() State {
	if t.provider == nil {
		return State{}
	}
	return State{
		Loading: t.provider.Loading(),
		Error:   t.provider.Error(),
		Entries: t.provider.Entries(),
	}
}

// SelectableEntries lists the entries offered for a new choice: enabled live
// entries plus the specify-other entry when custom values are allowed.
func (t *Tracker) SelectableEntries() []Entry {
	live := t.State().Entries
	out := make([]Entry, 0, len(live)+1)
	for _, entry := range live {
		if entry.Disabled {
			continue
		}
		out = append(out, entry)
	}
	if t.allowCustom {
		out = append(out, Entry{Token: SpecifyOtherToken, Label: t.otherLabel})
	}
	return out
}

// DisplayEntries lists what a control renders for answer: every live entry,
// a disabled legacy entry when the stored value has no live match, and the
// specify-other entry when custom values are allowed.
func (t *Tracker) DisplayEntries(answer Answer) []Entry {
	live := t.State().Entries
	out := make([]Entry, 0, len(live)+2)
	out = append(out, live...)
	if legacy, ok := t.Legacy(answer); ok {
		out = append(out, legacy)
	}
	if t.allowCustom {
		out = append(out, Entry{Token: SpecifyOtherToken, Label: t.otherLabel})
	}
	return out
}

// Legacy synthesises a disabled entry for a stored value that no longer
// matches any live entry.
func (t *Tracker) Legacy(answer Answer) (Entry, bool) {
	if answer == nil {
		return Entry{}, false
	}
	value := answer.Value()
	token := TokenFor(value)
	if token == "" {
		return Entry{}, false
	}
	for _, entry := range t.State().Entries {
		if entry.Token == token {
			return Entry{}, false
		}
	}
	label := LabelFor(value)
	if label == "" {
		label = token
	}
	return Entry{Token: token, Label: label, Disabled: true}, true
}

// Selected returns the token of answer's stored value, or "".
func (t *Tracker) Selected(answer Answer) string {
	if answer == nil {
		return ""
	}
	return TokenFor(answer.Value())
}

// Select applies a token chosen by the user. An empty token clears the
// answer, the specify-other token opens a custom draft, and re-selecting the
// currently stored token is a no-op.
func (t *Tracker) Select(answer Answer, token string) error {
	if answer == nil {
		return nil
	}
	switch token {
	case "":
		delete(t.custom, answer.Key())
		return answer.SetValueByUser(nil)
	case SpecifyOtherToken:
		_, err := t.BeginCustom(answer)
		return err
	}
	if token == t.Selected(answer) {
		delete(t.custom, answer.Key())
		return nil
	}
	for _, entry := range t.SelectableEntries() {
		if entry.Token != token {
			continue
		}
		value, ok := t.provider.ValueForKey(token)
		if !ok {
			break
		}
		delete(t.custom, answer.Key())
		return answer.SetValueByUser(value)
	}
	return ErrUnknownToken
}

// Resolve finds the selectable entry typed by a user, matching the token
// first and then the label ignoring case. Lookup controls post labels.
func (t *Tracker) Resolve(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	entries := t.SelectableEntries()
	for _, entry := range entries {
		if entry.Token == text {
			return entry.Token, true
		}
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Label, text) {
			return entry.Token, true
		}
	}
	return "", false
}

// Mode reports whether answer is browsing options or composing a custom value.
func (t *Tracker) Mode(answer Answer) Mode {
	if answer == nil {
		return ModeBrowsing
	}
	if _, ok := t.custom[answer.Key()]; ok {
		return ModeEnteringCustom
	}
	return ModeBrowsing
}

// Custom returns the open draft for answer, or nil while browsing.
func (t *Tracker) Custom(answer Answer) *CustomOption {
	if answer == nil {
		return nil
	}
	return t.custom[answer.Key()]
}

// BeginCustom moves answer into custom-entry mode. An existing draft is
// returned unchanged.
func (t *Tracker) BeginCustom(answer Answer) (*CustomOption, error) {
	if !t.allowCustom {
		return nil, ErrCustomNotAllowed
	}
	if answer == nil {
		return nil, nil
	}
	if current, ok := t.custom[answer.Key()]; ok {
		return current, nil
	}
	draft := &CustomOption{tracker: t, answer: answer}
	if current, ok := answer.Value().(string); ok {
		draft.draft = current
	}
	t.custom[answer.Key()] = draft
	return draft, nil
}

// Forget drops any draft held for the answer key, used when the answer is
// removed from its question.
func (t *Tracker) Forget(answerKey string) {
	delete(t.custom, answerKey)
}

// CustomOption is the in-progress specify-other entry for one answer.
type CustomOption struct {
	tracker *Tracker
	answer  Answer
	draft   string
}

// Draft returns the text typed so far.
func (c *CustomOption) Draft() string {
	if c == nil {
		return ""
	}
	return c.draft
}

// SetDraft replaces the draft without touching the committed answer.
func (c *CustomOption) SetDraft(draft string) {
	if c == nil {
		return
	}
	c.draft = draft
}

// Submit commits the draft, exactly as typed, as the answer value and
// returns to browsing. A blank draft leaves the state untouched.
func (c *CustomOption) Submit() error {
	if c == nil {
		return nil
	}
	if strings.TrimSpace(c.draft) == "" {
		return ErrEmptyDraft
	}
	if err := c.answer.SetValueByUser(c.tracker.customValue(c.draft)); err != nil {
		return err
	}
	c.close()
	return nil
}

// Cancel discards the draft and returns to browsing; the committed value is
// left as it was.
func (c *CustomOption) Cancel() {
	if c == nil {
		return
	}
	c.close()
}

func (c *CustomOption) close() {
	if current, ok := c.tracker.custom[c.answer.Key()]; ok && current == c {
		delete(c.tracker.custom, c.answer.Key())
	}
}
