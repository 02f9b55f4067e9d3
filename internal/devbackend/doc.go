// Package devbackend is a self-contained implementation of the form backend
// HTTP contract. Schemas come from a deterministic keyword generator,
// validation applies fixed rules and everything is stored in SQLite.
//
// It exists for local development and end-to-end tests. The client packages
// never import it.
package devbackend
