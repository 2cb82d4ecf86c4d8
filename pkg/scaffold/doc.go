// Package scaffold composes answer rows, answer wrappers and question
// wrappers from a live node. It is generic over the renderable type T, so the
// same composition drives HTML strings and terminal prompts.
//
// Composers are pure given the node's current state; hosts call them again
// after every mutation instead of caching results.
package scaffold
