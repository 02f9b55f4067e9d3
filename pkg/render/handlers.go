package render

import (

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/surface"
)

// SelectPlaceholder labels the non-selectable "no choice" entry of select
// controls.
const SelectPlaceholder = "Select..."

// NewDefaultRegistry constructs a registry with a handler for every field
// type in the schema vocabulary.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()

	registry.MustRegister(schema.FieldTypeText, inputHandler("text"))
	registry.MustRegister(schema.FieldTypeEmail, inputHandler("email"))
	registry.MustRegister(schema.FieldTypeNumber, inputHandler("number"))
	registry.MustRegister(schema.FieldTypeDate, inputHandler("date"))
	registry.MustRegister(schema.FieldTypePhone, inputHandler("tel"))
	registry.MustRegister(schema.FieldTypeTextarea, textareaHandler)
	registry.MustRegister(schema.FieldTypeSelect, selectHandler)
	registry.MustRegister(schema.FieldTypeCheckbox, checkboxHandler)
	registry.MustRegister(schema.FieldTypeRadio, radioHandler)

	return registry
}

func inputHandler(inputType string) Handler {
	return func(s surface.Surface, field schema.FieldSpec, id string) (surface.Kind, error) {
		return surface.KindInput, s.CreateControl(surface.Control{
			ID:          id,
			Kind:        surface.KindInput,
			InputType:   inputType,
			Label:       FieldLabel(field),
			Placeholder: field.Placeholder,
			Hint:        ConstraintsHint(field),
		})
	}
}

func textareaHandler(s surface.Surface, field schema.FieldSpec, id string) (surface.Kind, error) {
	return surface.KindTextArea, s.CreateControl(surface.Control{
		ID:          id,
		Kind:        surface.KindTextArea,
		Label:       FieldLabel(field),
		Placeholder: field.Placeholder,
		Hint:        ConstraintsHint(field),
	})
}

func selectHandler(s surface.Surface, field schema.FieldSpec, id string) (surface.Kind, error) {
	return surface.KindSelect, s.CreateControl(surface.Control{
		ID:                id,
		Kind:              surface.KindSelect,
		Label:             FieldLabel(field),
		Placeholder:       field.Placeholder,
		Hint:              ConstraintsHint(field),
		Options:           field.Options,
		PlaceholderOption: SelectPlaceholder,
	})
}

func checkboxHandler(s surface.Surface, field schema.FieldSpec, id string) (surface.Kind, error) {
	return surface.KindCheckbox, s.CreateControl(surface.Control{
		ID:          id,
		Kind:        surface.KindCheckbox,
		InputType:   "checkbox",
		Label:       FieldLabel(field),
		Placeholder: field.Placeholder,
		Hint:        ConstraintsHint(field),
	})
}

// radioHandler declares one group keyed by the field identity and one peer per
// option. Peers carry no placeholder.
func radioHandler(s surface.Surface, field schema.FieldSpec, id string) (surface.Kind, error) {
	if err := s.SetGroup(surface.Group{
		Name:  id,
		Label: FieldLabel(field),
		Hint:  ConstraintsHint(field),
	}); err != nil {
		return surface.KindRadio, err
	}
	for _, option := range field.Options {
		if err := s.CreateControl(surface.Control{
			Kind:      surface.KindRadio,
			InputType: "radio",
			Label:     option,
			Group:     id,
			Value:     option,
		}); err != nil {
			return surface.KindRadio, err
		}
	}
	return surface.KindRadio, nil
}
