package schema

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FieldType is the closed set of field kinds a schema may declare. Unknown
// spellings are preserved on the FieldSpec but Resolve maps them onto the text
// family so renderers never fail on a type they do not recognise.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypePhone    FieldType = "phone"
)

// FieldTypes lists every known field type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextarea,
		FieldTypeSelect,
		FieldTypeCheckbox,
		FieldTypeRadio,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypeDate,
		FieldTypePhone,
	}
}

// ParseFieldType normalises a raw type string (trimmed, lower-cased). Blank
// input yields FieldTypeText.
func ParseFieldType(raw string) FieldType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return FieldTypeText
	}
	return FieldType(normalized)
}

// Known reports whether t is one of the declared field types.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeSelect, FieldTypeCheckbox,
		FieldTypeRadio, FieldTypeEmail, FieldTypeNumber, FieldTypeDate, FieldTypePhone:
		return true
	default:
		return false
	}
}

// Resolve returns t when known and FieldTypeText otherwise.
func (t FieldType) Resolve() FieldType {
	if t.Known() {
		return t
	}
	return FieldTypeText
}

// FieldSpec describes one named, typed entry of a schema. Name is the only
// join key between the field definition, its rendered control and its collected value.
type FieldSpec struct {
	Name        string    `json:"name"`
	Label       string    `json:"label,omitempty"`
	Type        FieldType `json:"type,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
	// Constraints is interpreted by the backend validator only.
	Constraints Value `json:"constraints,omitempty"`
}

// DisplayLabel returns the label shown next to the control: the declared
// label, then the name, then a generic fallback.
func (f FieldSpec) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return f.Label
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		return f.Name
	}
	return "Field"
}

type fieldSpecWire struct {
	Name        Value `json:"name"`
	Label       Value `json:"label"`
	Type        Value `json:"type"`
	Required    Value `json:"required"`
	Placeholder Value `json:"placeholder"`
	Options     Value `json:"options"`
	Constraints Value `json:"constraints"`
}

// UnmarshalJSON decodes a field leniently: scalar members of the wrong JSON
// type are stringified instead of failing the whole schema.
func (f *FieldSpec) UnmarshalJSON(data []byte) error {
	var wire fieldSpecWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*f = FieldSpec{
		Name:        wire.Name.Text(),
		Label:       wire.Label.Text(),
		Type:        ParseFieldType(wire.Type.Text()),
		Required:    truthy(wire.Required),
		Placeholder: wire.Placeholder.Text(),
		Constraints: wire.Constraints,
	}
	var options []Value
	if raw := bytes.TrimSpace(wire.Options.raw); len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &options); err != nil {
			return err
		}
	}
	if len(options) > 0 {
		f.Options = make([]string, 0, len(options))
		for _, option := range options {
			f.Options = append(f.Options, option.Text())
		}
	}
	return nil
}

// MarshalJSON omits absent constraints so re-encoded schemas stay compact.
func (f FieldSpec) MarshalJSON() ([]byte, error) {
	type plain struct {
		Name        string    `json:"name"`
		Label       string    `json:"label,omitempty"`
		Type        FieldType `json:"type,omitempty"`
		Required    bool      `json:"required,omitempty"`
		Placeholder string    `json:"placeholder,omitempty"`
		Options     []string  `json:"options,omitempty"`
		Constraints *Value    `json:"constraints,omitempty"`
	}
	out := plain{
		Name:        f.Name,
		Label:       f.Label,
		Type:        f.Type,
		Required:    f.Required,
		Placeholder: f.Placeholder,
		Options:     f.Options,
	}
	if !f.Constraints.IsZero() {
		constraints := f.Constraints
		out.Constraints = &constraints
	}
	return json.Marshal(out)
}

func truthy(v Value) bool {
	raw := bytes.TrimSpace(v.raw)
	if bytes.Equal(raw, []byte("true")) {
		return true
	}
	if v.IsString() {
		return strings.EqualFold(strings.TrimSpace(v.Text()), "true")
	}
	return false
}
