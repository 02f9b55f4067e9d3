package present

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the terminal styles used by the text renderers.
type Styles struct {
	Title lipgloss.Style
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Field lipgloss.Style
	Muted lipgloss.Style
	Pre   lipgloss.Style
}

// DefaultStyles returns the colour palette used by the terminal UI.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Pass:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		Fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Field: lipgloss.NewStyle().Bold(true),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Pre: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			PaddingLeft(2),
	}
}

// PlainStyles renders without decoration.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Title: plain, Pass: plain, Fail: plain, Field: plain, Muted: plain, Pre: plain}
}

// Text renders the block for a terminal.
func (b *Block) Text(styles Styles) string {
	return PartsText(b.Parts(), styles)
}

// PartsText renders parts as styled terminal lines.
func PartsText(parts []Part, styles Styles) string {
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part.Kind {
		case PartVerdict:
			if part.Valid {
				lines = append(lines, styles.Pass.Render(PassIndicator))
			} else {
				lines = append(lines, styles.Fail.Render(FailIndicator))
			}
		case PartErrors:
			for _, fieldErr := range part.Errors {
				lines = append(lines, "  • "+styles.Field.Render(fieldErr.Field)+": "+fieldErr.Message)
			}
		case PartSuggestions:
			lines = append(lines, styles.Pre.Render(part.Text))
		}
	}
	return strings.Join(lines, "\n")
}
