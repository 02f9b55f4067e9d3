package devbackend

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Thresholds used when turning field statistics into suggestions.
const (
	optionalThreshold = 0.5
	errorThreshold    = 0.3
	unusedThreshold   = 0.8
)

// FieldStat summarises how one field behaves across submissions.
type FieldStat struct {
	MissingRate float64 `json:"missing_rate"`
	ErrorRate   float64 `json:"error_rate"`
}

// Insights is the analytics payload for one form.
type Insights struct {
	FieldStats  map[string]FieldStat `json:"field_stats"`
	Suggestions []string             `json:"suggestions"`
}

// Analyze computes field statistics over the stored submissions.
func Analyze(sch schema.Schema, records []SubmissionRecord) Insights {
	out := Insights{
		FieldStats:  make(map[string]FieldStat, len(sch.Fields)),
		Suggestions: []string{},
	}

	type decoded struct {
		data   map[string]any
		errors map[string]any
	}
	rows := make([]decoded, 0, len(records))
	for _, record := range records {
		var row decoded
		_ = json.Unmarshal(record.Data, &row.data)
		if len(record.Errors) > 0 {
			_ = json.Unmarshal(record.Errors, &row.errors)
		}
		rows = append(rows, row)
	}

	total := float64(len(rows))
	for _, field := range sch.Fields {
		var missing, failed int
		for _, row := range rows {
			value := row.data[field.Name]
			if isMissing(value) || (field.Type == schema.FieldTypeCheckbox && value == false) {
				missing++
			}
			if _, ok := row.errors[field.Name]; ok {
				failed++
			}
		}
		stat := FieldStat{}
		if total > 0 {
			stat.MissingRate = round2(float64(missing) / total)
			stat.ErrorRate = round2(float64(failed) / total)
		}
		out.FieldStats[field.Name] = stat

		if total == 0 {
			continue
		}
		label := field.DisplayLabel()
		switch {
		case field.Required && stat.MissingRate >= optionalThreshold:
			out.Suggestions = append(out.Suggestions, fmt.Sprintf(
				"Consider making %q optional: it is left empty in %s of submissions.", label, percent(stat.MissingRate)))
		case !field.Required && stat.MissingRate >= unusedThreshold:
			out.Suggestions = append(out.Suggestions, fmt.Sprintf(
				"%q is rarely filled in (%s empty); consider removing it.", label, percent(stat.MissingRate)))
		}
		if stat.ErrorRate >= errorThreshold {
			out.Suggestions = append(out.Suggestions, fmt.Sprintf(
				"%q fails validation in %s of submissions; add a hint or placeholder.", label, percent(stat.ErrorRate)))
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(rate float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(rate*100)))
}
