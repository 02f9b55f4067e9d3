package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "formflow-form"
	ClassField    ChromeClass = "formflow-field"
	ClassLabel    ChromeClass = "formflow-label"
	ClassControl  ChromeClass = "formflow-control"
	ClassHint     ChromeClass = "formflow-hint"
	ClassFieldset ChromeClass = "formflow-fieldset"
	ClassChoice   ChromeClass = "formflow-choice"
)

// Classes overrides the chrome classes. Empty entries keep the default.
type Classes struct {
	Form     string
	Field    string
	Label    string
	Control  string
	Hint     string
	Fieldset string
	Choice   string
}

func (c Classes) withDefaults() Classes {
	pick := func(value string, fallback ChromeClass) string {
		if value != "" {
			return value
		}
		return string(fallback)
	}
	return Classes{
		Form:     pick(c.Form, ClassForm),
		Field:    pick(c.Field, ClassField),
		Label:    pick(c.Label, ClassLabel),
		Control:  pick(c.Control, ClassControl),
		Hint:     pick(c.Hint, ClassHint),
		Fieldset: pick(c.Fieldset, ClassFieldset),
		Choice:   pick(c.Choice, ClassChoice),
	}
}
