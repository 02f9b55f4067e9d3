// Package schema defines the data exchanged with the form backend: the
// server-authored form Schema and its FieldSpec entries, the Submission the
// client collects, and the ValidationResult, Recovery and Analytics payloads
// returned by the backend. Decoding is lenient by default: only the members the
// client actually consumes (name, type, label, required, placeholder, options)
// are narrowed into Go types, everything else (constraints, suggestions,
// insights) stays an opaque Value carrying the original JSON bytes.
package schema
