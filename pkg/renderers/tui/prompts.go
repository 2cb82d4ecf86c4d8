package tui

import "github.com/goliatone/go-qform/pkg/controls"

// Prompt is what the control registry resolves to in the terminal renderer.
type Prompt string

const (
	PromptText        Prompt = "text"
	PromptTextArea    Prompt = "textarea"
	PromptConfirm     Prompt = "confirm"
	PromptSelect      Prompt = "select"
	PromptChecklist   Prompt = "checklist"
	PromptGroup       Prompt = "group"
	PromptDisplay     Prompt = "display"
	PromptUnsupported Prompt = "unsupported"
)

// DefaultPrompts binds every built-in control name to a prompt kind.
func DefaultPrompts() map[string]Prompt {
	return map[string]Prompt{
		controls.NameNumberWithSlider:    PromptText,
		controls.NameNumberWithSpinner:   PromptText,
		controls.NameQuantityWithSlider:  PromptText,
		controls.NameQuantityWithSpinner: PromptText,

		controls.NameGroupHeader: PromptGroup,
		controls.NameGroupFooter: PromptGroup,
		controls.NameGroup:       PromptGroup,

		controls.NameRadioButton: PromptSelect,
		controls.NameCheckBox:    PromptChecklist,
		controls.NameLookup:      PromptSelect,
		controls.NameDropdown:    PromptSelect,

		controls.NameString:     PromptText,
		controls.NameText:       PromptTextArea,
		controls.NameURL:        PromptText,
		controls.NameInteger:    PromptText,
		controls.NameDecimal:    PromptText,
		controls.NameDate:       PromptText,
		controls.NameDateTime:   PromptText,
		controls.NameTime:       PromptText,
		controls.NameQuantity:   PromptText,
		controls.NameCoding:     PromptText,
		controls.NameReference:  PromptText,
		controls.NameAttachment: PromptText,
		controls.NameBoolean:    PromptConfirm,
		controls.NameChoice:     PromptText,

		controls.NameDisplay: PromptDisplay,
	}
}
