// Package options implements the option side of option-backed questions: the
// Provider contract (loading, error, entries, token lookup), a static provider
// for inline answer options, a remote provider that expands value sets through
// a Fetcher with a shared go-cache backed Cache, and the per-question Tracker.
//
// The Tracker adds two behaviours on top of a provider. Stored values that no
// longer match a live entry are surfaced as disabled legacy entries, visible in
// DisplayEntries but never in SelectableEntries. Questions that accept free
// text get a reserved specify-other entry; selecting it opens a CustomOption
// draft which is either submitted as the new value or cancelled without
// touching the committed one. Loading and error flags stay observable while a
// draft is open.
package options
