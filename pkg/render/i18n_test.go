package render_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-qform/pkg/render"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestMessage_UsesTranslatorAndFallbacks(t *testing.T) {
	opts := render.RenderOptions{
		Locale:     "es",
		Translator: stubTranslator{render.MsgAdd: "Añadir otro"},
	}

	if got := opts.Message(render.MsgAdd); got != "Añadir otro" {
		t.Fatalf("expected translated label, got %q", got)
	}
	if got := opts.Message(render.MsgRemove); got != "Remove" {
		t.Fatalf("expected built-in fallback, got %q", got)
	}
	if got := opts.Message(render.MsgUnsupported, "signature"); got != `Unsupported item type "signature"` {
		t.Fatalf("expected formatted fallback, got %q", got)
	}
	if got := opts.Message("custom.key"); got != "custom.key" {
		t.Fatalf("unknown keys render as themselves, got %q", got)
	}
}

func TestMessage_OnMissingSeesErrors(t *testing.T) {
	var seen []error
	opts := render.RenderOptions{
		Locale: "fr",
		OnMissing: func(locale, key, fallback string, err error) string {
			seen = append(seen, err)
			return "[" + locale + ":" + key + "]"
		},
	}

	if got := opts.Message(render.MsgSubmit); got != "[fr:qform.form.submit]" {
		t.Fatalf("unexpected missing output %q", got)
	}
	if len(seen) != 1 || !errors.Is(seen[0], render.ErrMissingTranslator) {
		t.Fatalf("expected ErrMissingTranslator, got %v", seen)
	}
}

func TestTemplateFuncs_BindLocale(t *testing.T) {
	opts := render.RenderOptions{Locale: "es", Translator: stubTranslator{render.MsgSubmit: "Guardar"}}
	funcs := opts.TemplateFuncs()

	translateFn, ok := funcs["translate"].(func(string, ...any) string)
	if !ok {
		t.Fatalf("translate helper has unexpected type %T", funcs["translate"])
	}
	if got := translateFn(render.MsgSubmit); got != "Guardar" {
		t.Fatalf("translate helper: got %q", got)
	}
	localeFn := funcs["current_locale"].(func() string)
	if got := localeFn(); got != "es" {
		t.Fatalf("current_locale: got %q", got)
	}
}
