// Package render defines the renderer contract shared by the HTML and
// terminal renderers, plus the per-request pieces they all need: render
// options, the message catalog, validator issue mapping, hidden fields and
// the form posting protocol.
package render
