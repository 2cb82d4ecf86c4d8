package components

// Built-in component names.
const (
	NameInput       = "input"
	NameTextarea    = "textarea"
	NameNumber      = "number"
	NameSlider      = "slider"
	NameQuantity    = "quantity"
	NameBoolean     = "boolean"
	NameSelect      = "select"
	NameRadio       = "radio"
	NameCheckbox    = "checkbox"
	NameLookup      = "lookup"
	NameAttachment  = "attachment"
	NameCustom      = "custom"
	NameDisplay     = "display"
	NameUnsupported = "unsupported"
)

// Asset paths served by the host (see vanilla.AssetsFS).
const (
	StylesheetPath   = "/assets/qform.css"
	LookupScriptPath = "/assets/qform-lookup.js"
	SliderScriptPath = "/assets/qform-slider.js"
)
