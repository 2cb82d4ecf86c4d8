package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data renderers use to customise their
// output without touching the questionnaire tree.
type RenderOptions struct {
	// Title overrides the definition title shown above the form.
	Title string
	// Action is the URL the HTML form posts to. Renderers that cannot post
	// ignore it.
	Action string
	// HiddenFields are emitted verbatim as hidden inputs (CSRF tokens, session
	// hints).
	HiddenFields map[string]string
	// Roots limits rendering to the root items with these linkIds. Empty
	// renders every root item.
	Roots []string
	// FormIssues are form-level messages shown above the items. Item-level
	// issues live on the tree (see ApplyIssues).
	FormIssues []string

	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler

	// Theme carries the resolved go-theme selection: partial overrides,
	// tokens and asset URLs.
	Theme *theme.RendererConfig
}
