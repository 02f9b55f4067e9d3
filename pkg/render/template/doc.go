// Package template defines the page rendering seam used by the web front end.
// Engines live in sub-packages; pongo is the default one.
package template
