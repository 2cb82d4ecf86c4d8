package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// Translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to show when a key cannot be
// translated. fallback is the built-in English message with args applied.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

// Message keys for the chrome strings renderers emit.
const (
	MsgAdd           = "qform.answer.add"
	MsgRemove        = "qform.answer.remove"
	MsgSubmit        = "qform.form.submit"
	MsgRequired      = "qform.item.required"
	MsgUnsupported   = "qform.control.unsupported"
	MsgLoading       = "qform.options.loading"
	MsgChoose        = "qform.options.choose"
	MsgSpecifyOther  = "qform.options.specifyOther"
	MsgLegacyOption  = "qform.options.legacy"
	MsgCustomSubmit  = "qform.custom.submit"
	MsgCustomCancel  = "qform.custom.cancel"
	MsgCustomPrompt  = "qform.custom.prompt"
	MsgOptionsFailed = "qform.options.failed"
)

var defaultMessages = map[string]string{
	MsgAdd:           "Add another",
	MsgRemove:        "Remove",
	MsgSubmit:        "Save",
	MsgRequired:      "required",
	MsgUnsupported:   "Unsupported item type %q",
	MsgLoading:       "Loading options...",
	MsgChoose:        "Choose...",
	MsgSpecifyOther:  "Other (please specify)",
	MsgLegacyOption:  "%s (no longer available)",
	MsgCustomSubmit:  "Use this value",
	MsgCustomCancel:  "Cancel",
	MsgCustomPrompt:  "Your answer",
	MsgOptionsFailed: "Options could not be loaded: %s",
}

// DefaultMessage returns the built-in English text for key with args applied.
func DefaultMessage(key string, args ...any) string {
	format, ok := defaultMessages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Message translates key using the configured Translator, falling back to the
// built-in text.
func (o RenderOptions) Message(key string, args ...any) string {
	return translate(o.Locale, key, DefaultMessage(key, args...), args, o.Translator, o.OnMissing)
}

// TemplateFuncs exposes the message catalog to templates as
// `translate(key, args...)` bound to the request locale.
func (o RenderOptions) TemplateFuncs() map[string]any {
	return map[string]any{
		"translate": func(key string, args ...any) string {
			return o.Message(key, args...)
		},
		"current_locale": func() string {
			return o.Locale
		},
	}
}

func translate(locale, key, fallback string, args []any, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, fallback, ErrMissingTranslator)
		}
		return fallback
	}

	result, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if onMissing != nil {
		return onMissing(locale, key, fallback, err)
	}
	return fallback
}
