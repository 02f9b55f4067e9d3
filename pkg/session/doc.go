// Package session owns the single "current form" session and sequences the
// user-triggered operations against the backend.
//
// Every operation captures a Snapshot when it starts and uses that identifier
// and schema throughout. Before applying any update it checks that the
// snapshot is still current; results that belong to a superseded form are
// logged and dropped, and the operation returns ErrSuperseded.
package session
