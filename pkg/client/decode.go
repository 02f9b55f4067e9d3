package client

import (
	"encoding/json"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Lenient decodes a response body. Valid JSON is kept as-is; anything else,
// including an empty body, is wrapped as {"raw": <text>} so callers always
// have something to display.
func Lenient(body []byte) schema.Value {
	if len(body) > 0 && json.Valid(body) {
		return schema.NewValue(body)
	}
	wrapped, err := json.Marshal(map[string]string{"raw": string(body)})
	if err != nil {
		return schema.Value{}
	}
	return schema.NewValue(wrapped)
}

type createFormWire struct {
	FormID schema.FormID `json:"form_id"`
	Schema schema.Value  `json:"schema"`
}

type validationWire struct {
	Valid        schema.Value       `json:"valid"`
	Errors       schema.FieldErrors `json:"errors"`
	SubmissionID schema.Value       `json:"submission_id"`
}

type recoveryWire struct {
	Suggestions  schema.Value `json:"suggestions"`
	SubmissionID schema.Value `json:"submission_id"`
}

type analyticsWire struct {
	TotalSubmissions schema.Value `json:"total_submissions"`
	Insights         schema.Value `json:"insights"`
}

// decodeObject unmarshals payload into target when it is a JSON object and
// leaves target untouched otherwise.
func decodeObject(payload schema.Value, target any) error {
	if !payload.IsObject() {
		return nil
	}
	return payload.Decode(target)
}

func decodeCreateForm(payload schema.Value) (schema.CreateFormResult, error) {
	var wire createFormWire
	if err := decodeObject(payload, &wire); err != nil {
		return schema.CreateFormResult{}, err
	}
	if wire.FormID.IsZero() {
		return schema.CreateFormResult{}, malformed("create_form response has no form_id", payload)
	}
	if !wire.Schema.IsObject() {
		return schema.CreateFormResult{}, malformed("create_form response has no schema object", payload)
	}
	sch, err := schema.Parse(wire.Schema.Raw())
	if err != nil {
		return schema.CreateFormResult{}, malformed(err.Error(), payload)
	}
	return schema.CreateFormResult{FormID: wire.FormID, Schema: sch}, nil
}

func decodeValidation(payload schema.Value) (schema.ValidationResult, error) {
	var wire validationWire
	if err := decodeObject(payload, &wire); err != nil {
		return schema.ValidationResult{}, err
	}
	result := schema.ValidationResult{
		Valid:        wire.Valid.Compact() == "true",
		SubmissionID: wire.SubmissionID,
	}
	if !result.Valid {
		result.Errors = wire.Errors
	}
	return result, nil
}

func decodeRecovery(payload schema.Value) (schema.Recovery, error) {
	var wire recoveryWire
	if err := decodeObject(payload, &wire); err != nil {
		return schema.Recovery{}, err
	}
	return schema.Recovery{Suggestions: wire.Suggestions, SubmissionID: wire.SubmissionID}, nil
}

func decodeAnalytics(payload schema.Value) (schema.Analytics, error) {
	var wire analyticsWire
	if err := decodeObject(payload, &wire); err != nil {
		return schema.Analytics{}, err
	}
	var total float64
	if err := wire.TotalSubmissions.Decode(&total); err != nil {
		total = 0
	}
	return schema.Analytics{TotalSubmissions: int(total), Insights: wire.Insights}, nil
}
