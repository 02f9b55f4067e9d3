package render

import (
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/surface"
)

// Collect rebuilds a submission from the controls currently on the surface.
// Every schema field yields exactly one entry, looked up by its name-derived
// identity; missing controls degrade to "" or false instead of failing.
func Collect(s surface.Surface, sch schema.Schema) schema.Submission {
	submission := make(schema.Submission, len(sch.Fields))
	for _, field := range sch.Fields {
		submission[field.Name] = collectField(s, field)
	}
	return submission
}

func collectField(s surface.Surface, field schema.FieldSpec) any {
	id := ControlID(field.Name)
	switch field.Type.Resolve() {
	case schema.FieldTypeCheckbox:
		state, ok := s.ReadControl(id)
		return ok && state.Checked
	case schema.FieldTypeRadio:
		value, _ := s.ReadGroup(id)
		return value
	default:
		state, ok := s.ReadControl(id)
		if !ok {
			return ""
		}
		return state.Text
	}
}

// Collect reads the renderer's surface for the given schema.
func (r *FormRenderer) Collect(sch schema.Schema) schema.Submission {
	return Collect(r.surface, sch)
}
