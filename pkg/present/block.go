package present

import (
	"html"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
)

const (
	// PassIndicator is shown when the backend accepted a submission.
	PassIndicator = "Looks good! ✅"
	// FailIndicator is shown when the backend rejected a submission.
	FailIndicator = "Please fix the issues below ❌"
)

// PartKind tags one piece of the output block.
type PartKind int

const (
	// PartVerdict is the pass/fail indicator.
	PartVerdict PartKind = iota
	// PartErrors is the ordered list of field errors.
	PartErrors
	// PartSuggestions is a preformatted suggestions dump.
	PartSuggestions
)

// Part is one rendered element of a Block.
type Part struct {
	Kind   PartKind
	Valid  bool
	Errors schema.FieldErrors
	Text   string
}

// Block is the validation/suggestion output region. Validation replaces the
// block; suggestions are appended to whatever is already there.
type Block struct {
	mu    sync.RWMutex
	parts []Part
}

// NewBlock constructs an empty output block.
func NewBlock() *Block {
	return &Block{}
}

// ShowValidation replaces the block with the verdict and, only when invalid,
// the ordered error list.
func (b *Block) ShowValidation(result schema.ValidationResult) {
	parts := []Part{{Kind: PartVerdict, Valid: result.Valid}}
	if !result.Valid && len(result.Errors) > 0 {
		parts = append(parts, Part{
			Kind:   PartErrors,
			Errors: append(schema.FieldErrors(nil), result.Errors...),
		})
	}

	b.mu.Lock()
	b.parts = parts
	b.mu.Unlock()
}

// AppendSuggestions appends the suggestions structure verbatim, pretty
// printed. Absent suggestions print as an empty object.
func (b *Block) AppendSuggestions(suggestions schema.Value) {
	part := Part{Kind: PartSuggestions, Text: suggestions.Indent("{}")}

	b.mu.Lock()
	b.parts = append(b.parts, part)
	b.mu.Unlock()
}

// Reset empties the block.
func (b *Block) Reset() {
	b.mu.Lock()
	b.parts = nil
	b.mu.Unlock()
}

// Parts returns a copy of the block contents.
func (b *Block) Parts() []Part {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Part, len(b.parts))
	copy(out, b.parts)
	return out
}

// HTML renders the block as escaped markup.
func (b *Block) HTML() string {
	return PartsHTML(b.Parts())
}

// PartsHTML renders parts as markup. Every field name, message and
// suggestion is escaped before insertion.
func PartsHTML(parts []Part) string {
	var builder strings.Builder
	for _, part := range parts {
		switch part.Kind {
		case PartVerdict:
			if part.Valid {
				builder.WriteString(`<div class="verdict verdict--pass">`)
				builder.WriteString(html.EscapeString(PassIndicator))
			} else {
				builder.WriteString(`<div class="verdict verdict--fail">`)
				builder.WriteString(html.EscapeString(FailIndicator))
			}
			builder.WriteString("</div>")
		case PartErrors:
			builder.WriteString(`<ul class="errors">`)
			for _, fieldErr := range part.Errors {
				builder.WriteString(`<li class="error"><b>`)
				builder.WriteString(html.EscapeString(fieldErr.Field))
				builder.WriteString("</b>: ")
				builder.WriteString(html.EscapeString(fieldErr.Message))
				builder.WriteString("</li>")
			}
			builder.WriteString("</ul>")
		case PartSuggestions:
			builder.WriteString(`<pre class="suggestions">`)
			builder.WriteString(html.EscapeString(part.Text))
			builder.WriteString("</pre>")
		}
	}
	return Sanitize(builder.String())
}
