package components

// WidgetProps is the flattened view of one answer row handed to a leaf
// widget. Values are preformatted strings so templates never format numbers.
type WidgetProps struct {
	Component   string `json:"component"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	InputID     string `json:"input_id"`
	LabelID     string `json:"label_id"`
	DescribedBy string `json:"described_by,omitempty"`
	Label       string `json:"label"`

	// Type is the questionnaire item type; InputType the HTML input type.
	Type        string `json:"type"`
	InputType   string `json:"input_type,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	ReadOnly    bool   `json:"read_only,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Invalid     bool   `json:"invalid,omitempty"`

	Min        string `json:"min,omitempty"`
	Max        string `json:"max,omitempty"`
	Step       string `json:"step,omitempty"`
	Unit       string `json:"unit,omitempty"`
	LowerLabel string `json:"lower_label,omitempty"`
	UpperLabel string `json:"upper_label,omitempty"`
	MaxLength  int    `json:"max_length,omitempty"`
	Checked    bool   `json:"checked,omitempty"`

	Options []OptionProps `json:"options,omitempty"`
	// Clearable adds a hidden empty value so unticking a box clears it.
	Clearable bool   `json:"clearable,omitempty"`
	Loading   bool   `json:"loading,omitempty"`
	Error     string `json:"error,omitempty"`
	// Other is the button value that opens a custom draft, for widgets that
	// cannot post the specify-other token themselves.
	Other *ActionProps `json:"other,omitempty"`
	// SearchURL lets lookups query a value set search endpoint.
	SearchURL string `json:"search_url,omitempty"`

	Custom *CustomProps `json:"custom,omitempty"`

	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`

	Messages WidgetMessages `json:"messages"`
}

// OptionProps is one rendered option entry.
type OptionProps struct {
	Token    string `json:"token"`
	Label    string `json:"label"`
	ID       string `json:"id"`
	Selected bool   `json:"selected,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// ActionProps is a submit button posting Value under the action field.
type ActionProps struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// CustomProps describes the open specify-other draft of an answer.
type CustomProps struct {
	Name    string      `json:"name"`
	InputID string      `json:"input_id"`
	Draft   string      `json:"draft"`
	Prompt  string      `json:"prompt"`
	Submit  ActionProps `json:"submit"`
	Cancel  ActionProps `json:"cancel"`
}

// WidgetMessages carries the translated strings widgets print.
type WidgetMessages struct {
	Choose  string `json:"choose,omitempty"`
	Loading string `json:"loading,omitempty"`
}

// HasOptions reports whether the widget renders an option list.
func (p WidgetProps) HasOptions() bool {
	return len(p.Options) > 0
}
