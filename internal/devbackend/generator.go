package devbackend

import (
	"context"
	"strings"
	"unicode"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Generator turns a free-text description into a form schema.
type Generator interface {
	Generate(ctx context.Context, description string) (schema.Schema, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, description string) (schema.Schema, error)

// Generate implements Generator.
func (fn GeneratorFunc) Generate(ctx context.Context, description string) (schema.Schema, error) {
	return fn(ctx, description)
}

type keywordRule struct {
	keywords []string
	fields   []schema.FieldSpec
}

func constraints(v map[string]any) schema.Value {
	return schema.MustValueOf(v)
}

var (
	fieldFullName = schema.FieldSpec{Name: "full_name", Label: "Full name", Type: schema.FieldTypeText, Required: true}
	fieldEmail    = schema.FieldSpec{Name: "email", Label: "Email", Type: schema.FieldTypeEmail, Required: true, Placeholder: "name@example.com"}
	fieldPhone    = schema.FieldSpec{Name: "phone", Label: "Phone", Type: schema.FieldTypePhone}
	fieldMessage  = schema.FieldSpec{Name: "message", Label: "Message", Type: schema.FieldTypeTextarea, Required: true}
	fieldAge      = schema.FieldSpec{Name: "age", Label: "Age", Type: schema.FieldTypeNumber, Required: true, Constraints: constraints(map[string]any{"min": 18, "max": 120})}
	fieldDate     = schema.FieldSpec{Name: "date", Label: "Date", Type: schema.FieldTypeDate, Required: true}
	fieldGuests   = schema.FieldSpec{Name: "guests", Label: "Number of guests", Type: schema.FieldTypeNumber, Required: true, Constraints: constraints(map[string]any{"min": 1, "max": 20})}
	fieldRating   = schema.FieldSpec{Name: "rating", Label: "Rating", Type: schema.FieldTypeRadio, Required: true, Options: []string{"1", "2", "3", "4", "5"}}
	fieldComments = schema.FieldSpec{Name: "comments", Label: "Comments", Type: schema.FieldTypeTextarea}
	fieldPlan     = schema.FieldSpec{Name: "plan", Label: "Plan", Type: schema.FieldTypeSelect, Required: true, Options: []string{"Free", "Pro", "Team"}}
	fieldTerms    = schema.FieldSpec{Name: "accept_terms", Label: "I accept the terms", Type: schema.FieldTypeCheckbox, Required: true}
	fieldNews     = schema.FieldSpec{Name: "newsletter", Label: "Subscribe to the newsletter", Type: schema.FieldTypeCheckbox}
)

// Rules are matched in order and their fields merged by name.
var keywordRules = []keywordRule{
	{keywords: []string{"contact", "enquiry", "inquiry"}, fields: []schema.FieldSpec{fieldFullName, fieldEmail, fieldPhone, fieldMessage}},
	{keywords: []string{"signup", "sign up", "register", "registration", "account"}, fields: []schema.FieldSpec{fieldFullName, fieldEmail, fieldAge, fieldPlan, fieldTerms, fieldNews}},
	{keywords: []string{"booking", "reservation", "reserve", "book"}, fields: []schema.FieldSpec{fieldFullName, fieldEmail, fieldDate, fieldGuests}},
	{keywords: []string{"feedback", "survey", "review"}, fields: []schema.FieldSpec{fieldEmail, fieldRating, fieldComments}},
	{keywords: []string{"email"}, fields: []schema.FieldSpec{fieldEmail}},
	{keywords: []string{"phone", "telephone", "mobile"}, fields: []schema.FieldSpec{fieldPhone}},
	{keywords: []string{"age", "years old"}, fields: []schema.FieldSpec{fieldAge}},
	{keywords: []string{"date", "when", "birthday"}, fields: []schema.FieldSpec{fieldDate}},
	{keywords: []string{"newsletter", "subscribe"}, fields: []schema.FieldSpec{fieldNews}},
	{keywords: []string{"terms", "consent", "agree"}, fields: []schema.FieldSpec{fieldTerms}},
	{keywords: []string{"message"}, fields: []schema.FieldSpec{fieldMessage}},
	{keywords: []string{"comment", "notes"}, fields: []schema.FieldSpec{fieldComments}},
}

var fallbackFields = []schema.FieldSpec{fieldFullName, fieldEmail, fieldComments}

// KeywordGenerator builds schemas from a fixed keyword table. It is
// deterministic, which keeps the development backend usable offline.
type KeywordGenerator struct{}

// Generate implements Generator.
func (KeywordGenerator) Generate(ctx context.Context, description string) (schema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return schema.Schema{}, err
	}
	text := normalizeWords(description)

	var (
		fields []schema.FieldSpec
		seen   = map[string]bool{}
	)
	for _, rule := range keywordRules {
		if !containsAny(text, rule.keywords) {
			continue
		}
		for _, field := range rule.fields {
			if seen[field.Name] {
				continue
			}
			seen[field.Name] = true
			fields = append(fields, field)
		}
	}
	if len(fields) == 0 {
		fields = append(fields, fallbackFields...)
	}

	return schema.Schema{
		Title:       titleFor(description),
		Description: strings.TrimSpace(description),
		Fields:      fields,
	}, nil
}

// normalizeWords lower-cases description and reduces it to space-separated
// words with a leading and trailing space, so keywords match whole words.
func normalizeWords(description string) string {
	words := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(words, " ") + " "
}

// containsAny matches whole words, tolerating a plural "s".
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, " "+keyword+" ") || strings.Contains(text, " "+keyword+"s ") {
			return true
		}
	}
	return false
}

// titleFor capitalises the first few words of the description.
func titleFor(description string) string {
	const maxWords = 6
	words := strings.Fields(description)
	if len(words) == 0 {
		return "Untitled"
	}
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	title := strings.Join(words, " ")
	title = strings.TrimRightFunc(title, func(r rune) bool { return unicode.IsPunct(r) })
	runes := []rune(title)
	if len(runes) == 0 {
		return "Untitled"
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
