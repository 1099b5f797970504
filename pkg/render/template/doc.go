// Package template defines the template renderer contract used by the meta
// box renderer and its pongo2-backed implementation in gotemplate.
package template
