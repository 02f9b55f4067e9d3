package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formflow/pkg/schema"
)

func TestParse_NarrowsConsumedMembers(t *testing.T) {
	doc := `{
		"title": "Contact",
		"fields": [
			{"name": "email", "type": "Email ", "required": true, "placeholder": "you@example.com"},
			{"name": "plan", "type": "radio", "options": ["A", 2, true]},
			{"name": "age", "type": "number", "constraints": {"min": 18, "max": 99}},
			{"name": "mystery", "type": "color"},
			{"name": "notes"}
		]
	}`

	s, err := schema.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if s.Title != "Contact" {
		t.Fatalf("title mismatch: %q", s.Title)
	}

	want := []schema.FieldSpec{
		{Name: "email", Type: schema.FieldTypeEmail, Required: true, Placeholder: "you@example.com"},
		{Name: "plan", Type: schema.FieldTypeRadio, Options: []string{"A", "2", "true"}},
		{Name: "age", Type: schema.FieldTypeNumber},
		{Name: "mystery", Type: schema.FieldType("color")},
		{Name: "notes", Type: schema.FieldTypeText},
	}
	if diff := cmp.Diff(want, s.Fields, cmpopts.IgnoreFields(schema.FieldSpec{}, "Constraints")); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if got := s.Fields[2].Constraints.Compact(); got != `{"min":18,"max":99}` {
		t.Fatalf("constraints should keep member order, got %s", got)
	}
	if !s.Fields[0].Constraints.IsZero() {
		t.Fatalf("expected absent constraints to be zero")
	}
}

func TestParse_ToleratesMalformedMembers(t *testing.T) {
	s, err := schema.Parse([]byte(`{"title": 7, "fields": "nope"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Title != "7" {
		t.Fatalf("expected stringified title, got %q", s.Title)
	}
	if len(s.Fields) != 0 {
		t.Fatalf("expected no fields, got %d", len(s.Fields))
	}

	if _, err := schema.Parse([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected error for non-object schema")
	}
	if _, err := schema.Parse(nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestFieldType_ResolveFallsBackToText(t *testing.T) {
	for _, ft := range schema.FieldTypes() {
		if ft.Resolve() != ft {
			t.Fatalf("known type %q should resolve to itself", ft)
		}
	}
	if got := schema.ParseFieldType("slider").Resolve(); got != schema.FieldTypeText {
		t.Fatalf("unknown type should resolve to text, got %q", got)
	}
	if got := schema.ParseFieldType("  "); got != schema.FieldTypeText {
		t.Fatalf("blank type should parse to text, got %q", got)
	}
}

func TestFieldSpec_DisplayLabel(t *testing.T) {
	cases := []struct {
		field schema.FieldSpec
		want  string
	}{
		{schema.FieldSpec{Name: "email", Label: "Email address"}, "Email address"},
		{schema.FieldSpec{Name: "email"}, "email"},
		{schema.FieldSpec{}, "Field"},
	}
	for _, tc := range cases {
		if got := tc.field.DisplayLabel(); got != tc.want {
			t.Fatalf("DisplayLabel(%+v) = %q, want %q", tc.field, got, tc.want)
		}
	}
}

func TestSchema_MarshalPreservesOriginalDocument(t *testing.T) {
	raw := `{"title":"T","fields":[{"name":"a","type":"text","x-extra":1}]}`
	s := schema.MustParse(raw)

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != raw {
		t.Fatalf("expected original document, got %s", out)
	}

	built := schema.Schema{Fields: []schema.FieldSpec{{Name: "a", Type: schema.FieldTypeCheckbox}}}
	out, err = json.Marshal(built)
	if err != nil {
		t.Fatalf("marshal built: %v", err)
	}
	if string(out) != `{"fields":[{"name":"a","type":"checkbox"}]}` {
		t.Fatalf("unexpected encoding: %s", out)
	}
}

func TestFieldErrors_PreserveServerOrder(t *testing.T) {
	var result schema.ValidationResult
	payload := `{"valid": false, "errors": {"zeta": "required", "alpha": {"code": 3}, "mid": "bad"}}`
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := schema.FieldErrors{
		{Field: "zeta", Message: "required"},
		{Field: "alpha", Message: `{"code":3}`},
		{Field: "mid", Message: "bad"},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if msg, ok := result.Errors.Lookup("mid"); !ok || msg != "bad" {
		t.Fatalf("lookup mismatch: %q %v", msg, ok)
	}

	encoded, err := json.Marshal(result.Errors)
	if err != nil {
		t.Fatalf("marshal errors: %v", err)
	}
	if string(encoded) != `{"zeta":"required","alpha":"{\"code\":3}","mid":"bad"}` {
		t.Fatalf("unexpected encoding: %s", encoded)
	}
}

func TestFormID_EchoesRawToken(t *testing.T) {
	var res schema.CreateFormResult
	if err := json.Unmarshal([]byte(`{"form_id": 42, "schema": {"fields": []}}`), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.FormID.String() != "42" {
		t.Fatalf("expected 42, got %q", res.FormID.String())
	}
	out, err := json.Marshal(map[string]any{"form_id": res.FormID})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"form_id":42}` {
		t.Fatalf("numeric id should round-trip verbatim, got %s", out)
	}

	if !(schema.FormID{}).IsZero() || !schema.NewFormID("").IsZero() {
		t.Fatalf("empty identifiers should be zero")
	}
	if schema.NewFormID("f1").String() != "f1" {
		t.Fatalf("string ids render unquoted")
	}
}

func TestAnalytics_Labels(t *testing.T) {
	var a schema.Analytics
	if err := json.Unmarshal([]byte(`{"total_submissions": 3, "insights": {"avgTime": 12}}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.CountLabel() != "3 submissions" {
		t.Fatalf("count label mismatch: %q", a.CountLabel())
	}
	if a.InsightsText() != "{\n  \"avgTime\": 12\n}" {
		t.Fatalf("insights mismatch: %q", a.InsightsText())
	}
	if (schema.Analytics{}).InsightsText() != "{}" {
		t.Fatalf("absent insights should render {}")
	}
}
