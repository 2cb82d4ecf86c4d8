// Package questionnaire models a questionnaire instance as a tree of nodes,
// each holding an ordered list of answers. Group answers are group instances
// whose nodes are the child items, so repeating groups and repeating answers
// share one add/remove lifecycle.
//
// Definitions and responses use a FHIR Questionnaire subset and are read by
// Loader (JSON or YAML). Build combines the two into a Tree:
//
//	def, _ := questionnaire.NewLoader().LoadDefinition(ctx, questionnaire.SourceFromFile("intake.yaml"))
//	tree, err := questionnaire.Build(def, nil)
//
// Trees are not safe for concurrent mutation. Mutations notify subscribers
// registered through Tree.Subscribe after they are applied.
package questionnaire
