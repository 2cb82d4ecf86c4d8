package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassItem         ChromeClass = "qform-item"
	ClassGroup        ChromeClass = "qform-group"
	ClassLabel        ChromeClass = "qform-label"
	ClassHelp         ChromeClass = "qform-help"
	ClassLegal        ChromeClass = "qform-legal"
	ClassFlyover      ChromeClass = "qform-flyover"
	ClassAnswers      ChromeClass = "qform-answers"
	ClassAnswer       ChromeClass = "qform-answer"
	ClassAnswerRow    ChromeClass = "qform-answer-row"
	ClassChildren     ChromeClass = "qform-children"
	ClassIssues       ChromeClass = "qform-issues"
	ClassOptionsState ChromeClass = "qform-options-state"
	ClassButton       ChromeClass = "qform-button"
)

func (c ChromeClass) String() string {
	return string(c)
}
