// Package orchestrator wires the load → build → transform → render pipeline
// behind a single entry point. Defaults cover the common case (embedded
// value set catalog, vanilla renderer); every stage can be replaced through
// options.
package orchestrator
