// Package controls resolves questionnaire nodes to renderers.
//
// A Registry holds prioritised definitions and always contains one catch-all
// at PriorityFallback, so Resolve never comes back empty: unknown item types
// render the "unsupported" placeholder instead of nothing. Matchers see only
// a Shape (type, control hint, kind, options presence, loading flag), never
// answer values.
//
// The renderer type is a type parameter so the HTML and terminal renderers
// share the rule set:
//
//	reg := controls.NewDefaultRegistry(unsupported, map[string]Widget{
//		controls.NameString:   textInput,
//		controls.NameDropdown: selectInput,
//	})
//	def := reg.Resolve(node)
package controls
