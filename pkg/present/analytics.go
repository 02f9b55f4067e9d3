package present

import (
	"html"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// AnalyticsView is the formatted analytics region.
type AnalyticsView struct {
	Count    string
	Insights string
}

// NewAnalyticsView formats an analytics response: "<n> submissions" plus the
// insights pretty printed.
func NewAnalyticsView(analytics schema.Analytics) AnalyticsView {
	return AnalyticsView{
		Count:    analytics.CountLabel(),
		Insights: analytics.InsightsText(),
	}
}

// HTML renders the analytics region as escaped markup.
func (v AnalyticsView) HTML() string {
	var builder strings.Builder
	builder.WriteString(`<p class="analytics-count">`)
	builder.WriteString(html.EscapeString(v.Count))
	builder.WriteString(`</p><pre class="analytics-insights">`)
	builder.WriteString(html.EscapeString(v.Insights))
	builder.WriteString("</pre>")
	return Sanitize(builder.String())
}

// Text renders the analytics region for a terminal.
func (v AnalyticsView) Text(styles Styles) string {
	return styles.Title.Render(v.Count) + "\n" + styles.Pre.Render(v.Insights)
}

// FormSummary is the header shown after a successful generation.
type FormSummary struct {
	Title       string
	Description string
	Meta        string
	Preview     string
}

// NewFormSummary builds the header for a freshly generated form.
func NewFormSummary(id schema.FormID, sch schema.Schema) FormSummary {
	return FormSummary{
		Title:       sch.DisplayTitle(),
		Description: sch.Description,
		Meta:        "form_id: " + id.String(),
		Preview:     sch.Preview(),
	}
}

// HTML renders the form header as escaped markup.
func (s FormSummary) HTML() string {
	var builder strings.Builder
	builder.WriteString(`<h2 class="form-title">`)
	builder.WriteString(html.EscapeString(s.Title))
	builder.WriteString("</h2>")
	if s.Description != "" {
		builder.WriteString(`<p class="form-description">`)
		builder.WriteString(html.EscapeString(s.Description))
		builder.WriteString("</p>")
	}
	builder.WriteString(`<small class="form-meta">`)
	builder.WriteString(html.EscapeString(s.Meta))
	builder.WriteString("</small>")
	if s.Preview != "" {
		builder.WriteString(`<pre class="schema-preview">`)
		builder.WriteString(html.EscapeString(s.Preview))
		builder.WriteString("</pre>")
	}
	return Sanitize(builder.String())
}

// Text renders the form header for a terminal.
func (s FormSummary) Text(styles Styles) string {
	lines := []string{styles.Title.Render(s.Title)}
	if s.Description != "" {
		lines = append(lines, s.Description)
	}
	lines = append(lines, styles.Muted.Render(s.Meta))
	if s.Preview != "" {
		lines = append(lines, styles.Pre.Render(s.Preview))
	}
	return strings.Join(lines, "\n")
}
