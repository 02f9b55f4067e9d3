package render

import "github.com/goliatone/go-formflow/pkg/schema"

// RequiredMarker is appended to the label of required fields. It is
// decoration only; required-ness is enforced by the backend validator.
const RequiredMarker = " *"

// ControlIDPrefix prefixes every control identity.
const ControlIDPrefix = "fld_"

// ControlID derives the stable identity of the control rendered for a field
// name. Renderers and the collector both use it, so no traversal state is
// needed to find a control again.
func ControlID(name string) string {
	return ControlIDPrefix + name
}

// FieldLabel returns the display label decorated with the required marker.
func FieldLabel(field schema.FieldSpec) string {
	label := field.DisplayLabel()
	if field.Required {
		label += RequiredMarker
	}
	return label
}

// ConstraintsHint renders an object-valued constraints map as a read-only
// hint. The map is never interpreted locally.
func ConstraintsHint(field schema.FieldSpec) string {
	if !field.Constraints.IsObject() {
		return ""
	}
	return "Constraints: " + field.Constraints.Compact()
}
