package devbackend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Validation messages returned to clients.
const (
	MsgRequired     = "This field is required."
	MsgInvalidEmail = "Invalid email format."
	MsgNotNumber    = "Must be a number."
	MsgInvalidDate  = "Invalid date format (expected YYYY-MM-DD)."
	MsgNotAnOption  = "Must be one of the listed options."
)

// DateLayout is the accepted layout for date fields.
const DateLayout = "2006-01-02"

type issueCode int

const (
	issueRequired issueCode = iota
	issueEmail
	issueNumber
	issueBelowMin
	issueAboveMax
	issueDate
	issueOption
)

type bound struct {
	value float64
	text  string
}

// issue is one failed check. bound is set for min/max issues.
type issue struct {
	code    issueCode
	message string
	bound   bound
}

// Validate checks submission against the schema rules and returns the errors
// in schema order.
func Validate(sch schema.Schema, submission map[string]any) schema.FieldErrors {
	var errs schema.FieldErrors
	for _, field := range sch.Fields {
		if found, ok := checkField(field, submission[field.Name]); ok {
			errs = append(errs, schema.FieldError{Field: field.Name, Message: found.message})
		}
	}
	return errs
}

func checkField(field schema.FieldSpec, value any) (issue, bool) {
	missing := isMissing(value)
	if field.Type == schema.FieldTypeCheckbox && field.Required && value == false {
		missing = true
	}
	if missing {
		if field.Required {
			return issue{code: issueRequired, message: MsgRequired}, true
		}
		return issue{}, false
	}

	switch field.Type.Resolve() {
	case schema.FieldTypeEmail:
		text := fmt.Sprint(value)
		if !strings.Contains(text, "@") || !strings.Contains(text, ".") {
			return issue{code: issueEmail, message: MsgInvalidEmail}, true
		}
	case schema.FieldTypeNumber:
		number, ok := toNumber(value)
		if !ok {
			return issue{code: issueNumber, message: MsgNotNumber}, true
		}
		// max wins when both fail, matching the order checks are applied.
		limits := numericConstraints(field.Constraints)
		var found *issue
		if limit, ok := limits["min"]; ok && number < limit.value {
			found = &issue{code: issueBelowMin, message: "Must be >= " + limit.text, bound: limit}
		}
		if limit, ok := limits["max"]; ok && number > limit.value {
			found = &issue{code: issueAboveMax, message: "Must be <= " + limit.text, bound: limit}
		}
		if found != nil {
			return *found, true
		}
	case schema.FieldTypeDate:
		if _, err := time.Parse(DateLayout, strings.TrimSpace(fmt.Sprint(value))); err != nil {
			return issue{code: issueDate, message: MsgInvalidDate}, true
		}
	case schema.FieldTypeSelect, schema.FieldTypeRadio:
		if len(field.Options) > 0 && !slices.Contains(field.Options, fmt.Sprint(value)) {
			return issue{code: issueOption, message: MsgNotAnOption}, true
		}
	}
	return issue{}, false
}

func isMissing(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// toNumber accepts JSON numbers, numeric strings and booleans.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// numericConstraints extracts numeric min/max entries, keeping the JSON
// spelling for messages. Non-numeric entries are ignored.
func numericConstraints(raw schema.Value) map[string]bound {
	if !raw.IsObject() {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw.Raw()))
	dec.UseNumber()
	var members map[string]any
	if err := dec.Decode(&members); err != nil {
		return nil
	}
	out := make(map[string]bound, 2)
	for _, key := range []string{"min", "max"} {
		number, ok := members[key].(json.Number)
		if !ok {
			continue
		}
		value, err := number.Float64()
		if err != nil {
			continue
		}
		out[key] = bound{value: value, text: number.String()}
	}
	return out
}
