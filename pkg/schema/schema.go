package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Schema is the server-authored description of a form. Fields are ordered;
// their order drives rendering and collection. A Schema is treated as
// immutable once received and is replaced wholesale on every generation.
type Schema struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Fields      []FieldSpec `json:"fields"`

	raw json.RawMessage
}

type schemaWire struct {
	Title       Value `json:"title"`
	Description Value `json:"description"`
	Fields      Value `json:"fields"`
}

// Parse decodes a schema document. Non-object payloads are rejected; members
// with unexpected JSON types degrade to their zero value.
func Parse(raw []byte) (Schema, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Schema{}, errors.New("schema: raw document is empty")
	}
	var s Schema
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return Schema{}, fmt.Errorf("schema: decode: %w", err)
	}
	return s, nil
}

// MustParse panics when raw cannot be parsed. Useful for tests.
func MustParse(raw string) Schema {
	s, err := Parse([]byte(raw))
	if err != nil {
		panic(err)
	}
	return s
}

// UnmarshalJSON implements lenient decoding and keeps the raw document for
// previews.
func (s *Schema) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("schema: expected object, got %q", preview(trimmed))
	}

	var wire schemaWire
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return err
	}

	var fields []FieldSpec
	if raw := bytes.TrimSpace(wire.Fields.raw); len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("schema: decode fields: %w", err)
		}
	}

	*s = Schema{
		Title:       wire.Title.Text(),
		Description: wire.Description.Text(),
		Fields:      fields,
		raw:         append(json.RawMessage(nil), trimmed...),
	}
	return nil
}

// MarshalJSON re-emits the original document when available so previews and
// round-trips show exactly what the backend sent.
func (s Schema) MarshalJSON() ([]byte, error) {
	if len(s.raw) > 0 {
		return s.raw, nil
	}
	type plain Schema
	fields := s.Fields
	if fields == nil {
		fields = []FieldSpec{}
	}
	out := plain{Title: s.Title, Description: s.Description, Fields: fields}
	return json.Marshal(out)
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		names = append(names, field.Name)
	}
	return names
}

// DisplayTitle returns the title or a generic heading.
func (s Schema) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return "Generated Form"
}

// Preview pretty-prints the schema document.
func (s Schema) Preview() string {
	payload, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return NewValue(payload).Indent("{}")
}

func preview(raw []byte) string {
	const max = 32
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
