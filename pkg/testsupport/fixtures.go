package testsupport

import (
	"testing"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ContactSchema is the single-field form used by the contact-form scenario.
const ContactSchema = `{"title":"Contact","fields":[{"name":"email","type":"email","required":true}]}`

// MixedSchema exercises every field family.
const MixedSchema = `{
  "title": "Signup",
  "description": "Tell us about you",
  "fields": [
    {"name": "full_name", "label": "Full name", "type": "text", "required": true},
    {"name": "email", "type": "email", "required": true},
    {"name": "age", "type": "number", "constraints": {"min": 18}},
    {"name": "plan", "type": "select", "options": ["free", "pro"]},
    {"name": "size", "type": "radio", "options": ["S", "M"]},
    {"name": "agree", "type": "checkbox"},
    {"name": "notes", "type": "textarea"}
  ]
}`

// MustSchema parses a schema literal, failing the test on error.
func MustSchema(t *testing.T, raw string) schema.Schema {
	t.Helper()

	sch, err := schema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return sch
}

// CreateResult builds a create_form response for the given id and schema.
func CreateResult(t *testing.T, id, raw string) schema.CreateFormResult {
	t.Helper()
	return schema.CreateFormResult{FormID: schema.NewFormID(id), Schema: MustSchema(t, raw)}
}
