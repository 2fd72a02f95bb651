// Package template defines the template engine contract used for renderer
// chrome, with a pongo2 implementation in the pongo subpackage.
package template
