package tui

import "time"

// OutputFormat controls how the collected response is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the response document as JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML emits the response document as YAML.
	OutputFormatYAML OutputFormat = "yaml"
	// OutputFormatFormURLEncoded emits the answers as a form post using the
	// a.<answerKey> field names.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional formatting hints the driver can apply when printing
// messages.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithPrompt binds a control name to a prompt kind, replacing the default.
func WithPrompt(control string, prompt Prompt) Option {
	return func(r *Renderer) {
		if r.prompts == nil {
			r.prompts = DefaultPrompts()
		}
		r.prompts[control] = prompt
	}
}

// WithOptionsWait bounds how long a choice prompt waits for options that are
// still loading. Zero prompts immediately.
func WithOptionsWait(wait time.Duration) Option {
	return func(r *Renderer) {
		if wait >= 0 {
			r.optionsWait = wait
		}
	}
}
