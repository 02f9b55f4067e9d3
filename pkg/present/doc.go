// Package present turns backend verdicts, recovery suggestions and analytics
// into read-only output. Markup output escapes every user- or server-derived
// string before insertion and then passes through an allow-list sanitizer;
// terminal output uses lipgloss styles.
package present
