package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is an opaque JSON value received from the backend. It keeps the raw
// bytes so the client can display or echo payloads it does not understand
// without losing member order or numeric precision.
type Value struct {
	raw json.RawMessage
}

// NewValue wraps raw JSON bytes. The input is copied.
func NewValue(raw []byte) Value {
	if len(raw) == 0 {
		return Value{}
	}
	return Value{raw: append(json.RawMessage(nil), raw...)}
}

// ValueOf marshals v into a Value. It is mainly useful in tests and fakes.
func ValueOf(v any) (Value, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("schema: marshal value: %w", err)
	}
	return Value{raw: payload}, nil
}

// MustValueOf panics when v cannot be marshalled.
func MustValueOf(v any) Value {
	value, err := ValueOf(v)
	if err != nil {
		panic(err)
	}
	return value
}

// IsZero reports whether the value is absent or JSON null.
func (v Value) IsZero() bool {
	trimmed := bytes.TrimSpace(v.raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// IsObject reports whether the value is a JSON object.
func (v Value) IsObject() bool {
	trimmed := bytes.TrimSpace(v.raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// IsString reports whether the value is a JSON string.
func (v Value) IsString() bool {
	trimmed := bytes.TrimSpace(v.raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

// Raw returns a copy of the underlying bytes.
func (v Value) Raw() []byte {
	return append([]byte(nil), v.raw...)
}

// Decode unmarshals the value into target.
func (v Value) Decode(target any) error {
	if v.IsZero() {
		return nil
	}
	return json.Unmarshal(v.raw, target)
}

// Compact renders the value as single-line JSON. Absent values render as
// "null".
func (v Value) Compact() string {
	if len(bytes.TrimSpace(v.raw)) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v.raw); err != nil {
		return string(v.raw)
	}
	return buf.String()
}

// Indent pretty-prints the value with two-space indentation. When the value
// is absent, fallback is rendered instead.
func (v Value) Indent(fallback string) string {
	if v.IsZero() {
		return fallback
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, v.raw, "", "  "); err != nil {
		return string(v.raw)
	}
	return buf.String()
}

// Text renders scalar values the way a form displays them: strings without
// quotes, every other value as compact JSON.
func (v Value) Text() string {
	if v.IsString() {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	if v.IsZero() {
		return ""
	}
	return v.Compact()
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(v.raw)) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	v.raw = append(json.RawMessage(nil), data...)
	return nil
}
