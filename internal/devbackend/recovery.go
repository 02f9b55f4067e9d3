package devbackend

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Suggestion proposes a fix for one field. SuggestedValue is nil when no
// value can be inferred.
type Suggestion struct {
	SuggestedValue any    `json:"suggested_value"`
	Message        string `json:"message"`
}

var dateRepairLayouts = []string{
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// Suggest re-validates submission and proposes a fix for every failing
// field. It also returns the errors it found.
func Suggest(sch schema.Schema, submission map[string]any) (map[string]Suggestion, schema.FieldErrors) {
	suggestions := map[string]Suggestion{}
	var errs schema.FieldErrors
	for _, field := range sch.Fields {
		value := submission[field.Name]
		found, ok := checkField(field, value)
		if !ok {
			continue
		}
		errs = append(errs, schema.FieldError{Field: field.Name, Message: found.message})
		suggestions[field.Name] = suggestFor(field, value, found)
	}
	return suggestions, errs
}

func suggestFor(field schema.FieldSpec, value any, found issue) Suggestion {
	label := field.DisplayLabel()
	switch found.code {
	case issueRequired:
		switch {
		case field.Type == schema.FieldTypeCheckbox:
			return Suggestion{SuggestedValue: true, Message: fmt.Sprintf("Tick %q to continue.", label)}
		case len(field.Options) > 0:
			return Suggestion{Message: fmt.Sprintf("Choose one of: %s.", strings.Join(field.Options, ", "))}
		default:
			return Suggestion{Message: fmt.Sprintf("Provide a value for %q.", label)}
		}
	case issueEmail:
		if repaired, ok := repairEmail(fmt.Sprint(value)); ok {
			return Suggestion{SuggestedValue: repaired, Message: "Did you mean " + repaired + "?"}
		}
		return Suggestion{Message: "Enter an address like name@example.com."}
	case issueNumber:
		if repaired, ok := repairNumber(fmt.Sprint(value)); ok {
			return Suggestion{SuggestedValue: repaired, Message: "Use digits only."}
		}
		return Suggestion{Message: "Use digits only."}
	case issueBelowMin:
		return Suggestion{SuggestedValue: found.bound.value, Message: "Use a value of at least " + found.bound.text + "."}
	case issueAboveMax:
		return Suggestion{SuggestedValue: found.bound.value, Message: "Use a value of at most " + found.bound.text + "."}
	case issueDate:
		if repaired, ok := repairDate(fmt.Sprint(value)); ok {
			return Suggestion{SuggestedValue: repaired, Message: "Dates use the YYYY-MM-DD format."}
		}
		return Suggestion{Message: "Dates use the YYYY-MM-DD format."}
	case issueOption:
		if match, ok := closestOption(field.Options, fmt.Sprint(value)); ok {
			return Suggestion{SuggestedValue: match, Message: fmt.Sprintf("Did you mean %q?", match)}
		}
		return Suggestion{Message: fmt.Sprintf("Choose one of: %s.", strings.Join(field.Options, ", "))}
	}
	return Suggestion{Message: found.message}
}

// repairEmail strips whitespace, lower-cases and rewrites a spelled-out " at ".
func repairEmail(raw string) (string, bool) {
	candidate := strings.ToLower(strings.TrimSpace(raw))
	candidate = strings.ReplaceAll(candidate, " at ", "@")
	candidate = strings.ReplaceAll(candidate, " dot ", ".")
	candidate = strings.Join(strings.Fields(candidate), "")
	at := strings.Index(candidate, "@")
	if at <= 0 || !strings.Contains(candidate[at:], ".") {
		return "", false
	}
	return candidate, true
}

// repairNumber keeps digits, sign and decimal point.
func repairNumber(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0, false
	}
	number, err := strconv.ParseFloat(cleaned, 64)
	return number, err == nil
}

func repairDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateRepairLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format(DateLayout), true
		}
	}
	return "", false
}

// closestOption matches case-insensitively, then by prefix.
func closestOption(options []string, raw string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return "", false
	}
	for _, option := range options {
		if strings.ToLower(option) == needle {
			return option, true
		}
	}
	for _, option := range options {
		if strings.HasPrefix(strings.ToLower(option), needle) {
			return option, true
		}
	}
	return "", false
}
