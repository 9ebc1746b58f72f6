package i18n

import "fmt"

// Translator retrieves the human-readable message for a failure code.
// data provides optional metadata to embed in the message (for example the
// offending "value" or a "suggestion").
type Translator interface {
	Message(code string, data map[string]string) string
}

// Failure codes understood by the built-in Translator.
const (
	CodeRequired      = "required"
	CodeInvalidURL    = "invalid_url"
	CodeInvalidEmail  = "invalid_email"
	CodeInvalidChoice = "invalid_choice"
	CodeInvalidDate   = "invalid_date"
	CodeInvalidTime   = "invalid_time"
	CodeNotTrue       = "not_true"
	CodeMarshal       = "marshal_error"
)

// dictTranslator is the built-in dictionary-based Translator. Its output is
// the message contract callers may match on verbatim, so changing any of
// these strings is a breaking change.
type dictTranslator struct{}

func (dictTranslator) Message(code string, data map[string]string) string {
	switch code {
	case CodeRequired:
		return "Missing data for required field."
	case CodeInvalidURL:
		if s, ok := data["suggestion"]; ok {
			return fmt.Sprintf("%q is not a valid URL. Did you mean: %q?", data["value"], s)
		}
		return fmt.Sprintf("%q is not a valid URL.", data["value"])
	case CodeInvalidEmail:
		return fmt.Sprintf("%q is not a valid email address.", data["value"])
	case CodeInvalidChoice:
		return fmt.Sprintf("'%s' is not a valid choice for this field.", data["value"])
	case CodeInvalidDate:
		return fmt.Sprintf("'%s' cannot be formatted as a date.", data["value"])
	case CodeInvalidTime:
		return fmt.Sprintf("'%s' cannot be formatted as a time.", data["value"])
	case CodeNotTrue:
		return fmt.Sprintf("%s is not True", data["value"])
	case CodeMarshal:
		if c, ok := data["cause"]; ok {
			return fmt.Sprintf("cannot marshal value: %s", c)
		}
		return "cannot marshal value"
	}
	return code
}

var currentTranslator Translator = dictTranslator{}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). Passing nil restores the built-in dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
