package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FormID is the opaque form identifier issued by the backend. The raw JSON
// token (number or string) is preserved and echoed back verbatim.
type FormID struct {
	raw json.RawMessage
}

// NewFormID builds a string identifier.
func NewFormID(id string) FormID {
	payload, _ := json.Marshal(id)
	return FormID{raw: payload}
}

// IsZero reports whether the identifier is absent, null or an empty string.
func (id FormID) IsZero() bool {
	trimmed := bytes.TrimSpace(id.raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	return bytes.Equal(trimmed, []byte(`""`))
}

// String renders the identifier without JSON quoting, suitable for URL path
// segments and status text.
func (id FormID) String() string {
	if id.IsZero() {
		return ""
	}
	return NewValue(id.raw).Text()
}

// Equal compares two identifiers by their rendered form.
func (id FormID) Equal(other FormID) bool {
	return id.String() == other.String()
}

// MarshalJSON implements json.Marshaler.
func (id FormID) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(id.raw)) == 0 {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *FormID) UnmarshalJSON(data []byte) error {
	id.raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

// Submission maps a field name to its collected value (string or bool). A
// collected submission always carries exactly one entry per schema field.
type Submission map[string]any

// FieldError pairs a field name with the validator's message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is an ordered list of field errors. It decodes from a JSON
// object and keeps the member order used by the server.
type FieldErrors []FieldError

// Lookup returns the message recorded for field.
func (e FieldErrors) Lookup(field string) (string, bool) {
	for _, entry := range e {
		if entry.Field == field {
			return entry.Message, true
		}
	}
	return "", false
}

// MarshalJSON encodes the errors as a JSON object.
func (e FieldErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, entry := range e {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Field)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Message)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving member order. Non-string
// messages are rendered as compact JSON. Non-object payloads decode to an
// empty list.
func (e *FieldErrors) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*e = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return err
	}

	var out FieldErrors
	for dec.More() {
		token, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("schema: unexpected error key %v", token)
		}
		var message Value
		if err := dec.Decode(&message); err != nil {
			return err
		}
		out = append(out, FieldError{Field: key, Message: message.Text()})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*e = out
	return nil
}

// ValidationResult is the backend's verdict on a submission. Errors is only
// meaningful when Valid is false.
type ValidationResult struct {
	Valid        bool        `json:"valid"`
	Errors       FieldErrors `json:"errors,omitempty"`
	SubmissionID Value       `json:"submission_id,omitempty"`
}

// CreateFormResult is returned by the backend after schema generation.
type CreateFormResult struct {
	FormID FormID `json:"form_id"`
	Schema Schema `json:"schema"`
}

// Recovery carries opaque suggestions for fixing a submission.
type Recovery struct {
	Suggestions  Value `json:"suggestions"`
	SubmissionID Value `json:"submission_id,omitempty"`
}

// Analytics aggregates submission insights for one form.
type Analytics struct {
	TotalSubmissions int   `json:"total_submissions"`
	Insights         Value `json:"insights"`
}

// CountLabel renders the submission counter shown in the analytics region.
func (a Analytics) CountLabel() string {
	return fmt.Sprintf("%d submissions", a.TotalSubmissions)
}

// InsightsText pretty-prints the insights payload, "{}" when absent.
func (a Analytics) InsightsText() string {
	return a.Insights.Indent("{}")
}
