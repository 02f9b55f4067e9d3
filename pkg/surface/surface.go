// Package surface abstracts the interactive display a form is rendered onto.
// Renderers create controls and mutual-exclusion groups through the Surface
// capability interface and read them back by identity, so the dispatch and
// collection logic stays testable without a real display.
package surface

import "errors"

var (
	// ErrUnknownControl is returned when an interaction targets an id that was
	// never created (or was discarded by Clear).
	ErrUnknownControl = errors.New("surface: unknown control")
	// ErrUnknownOption signals a choice outside the control's options.
	ErrUnknownOption = errors.New("surface: unknown option")
	// ErrKindMismatch signals an interaction that does not fit the control kind
	// (for example checking a text input).
	ErrKindMismatch = errors.New("surface: control kind mismatch")
)

// Kind identifies the interaction model of a control.
type Kind int

const (
	// KindInput is a single-line text input.
	KindInput Kind = iota
	// KindTextArea is a multi-line text container.
	KindTextArea
	// KindSelect is a closed choice with a "no choice" placeholder.
	KindSelect
	// KindCheckbox holds a binary checked state.
	KindCheckbox
	// KindRadio is one peer inside a mutual-exclusion group.
	KindRadio
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTextArea:
		return "textarea"
	case KindSelect:
		return "select"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	default:
		return "unknown"
	}
}

// Control describes one interactive element. Label and Hint are plain text;
// surfaces that emit markup are responsible for escaping them.
type Control struct {
	ID          string
	Kind        Kind
	InputType   string
	Label       string
	Placeholder string
	Hint        string
	// Options lists the selectable values of a KindSelect control.
	Options []string
	// PlaceholderOption is the label of the non-selectable "no choice" entry
	// of a KindSelect control.
	PlaceholderOption string
	// Group names the mutual-exclusion group of a KindRadio peer.
	Group string
	// Value is the value a KindRadio peer contributes when active.
	Value string
}

// Group declares a mutual-exclusion group. Peers are added afterwards with
// CreateControl using Kind KindRadio and the group's Name.
type Group struct {
	Name  string
	Label string
	Hint  string
}

// State is the live interaction state of a control.
type State struct {
	Text    string
	Checked bool
}

// Surface is the capability interface renderers depend on.
type Surface interface {
	// Clear discards every control, group and interaction state.
	Clear()
	// CreateControl appends a control in its initial state (empty text,
	// unchecked, nothing selected).
	CreateControl(ctrl Control) error
	// SetGroup declares a mutual-exclusion group.
	SetGroup(group Group) error
	// ReadControl returns the current state of the control with the given id.
	ReadControl(id string) (State, bool)
	// ReadGroup returns the value of the active peer in a group. The boolean
	// is false when the group does not exist.
	ReadGroup(name string) (string, bool)
}
