// Package template defines the engine-agnostic template contract used by the
// HTML renderer. The gotemplate subpackage provides the pongo2 implementation.
package template
