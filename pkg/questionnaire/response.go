package questionnaire

// Response exports the current answers. Unanswered questions and empty
// group instances are omitted.
func (t *Tree) Response() Response {
	return Response{
		ResourceType:  "QuestionnaireResponse",
		Questionnaire: t.reference,
		Status:        "in-progress",
		Item:          exportNodes(t.roots),
	}
}

func exportNodes(nodes []*Node) []ResponseItem {
	var items []ResponseItem
	for _, node := range nodes {
		switch node.Kind {
		case KindDisplay:
			continue
		case KindGroup:
			for _, answer := range node.answers {
				children := exportNodes(answer.nodes)
				if len(children) == 0 {
					continue
				}
				items = append(items, ResponseItem{
					LinkID: node.LinkID,
					Text:   node.Text,
					Item:   children,
				})
			}
		default:
			var answers []ResponseAnswer
			for _, answer := range node.answers {
				if answer.value == nil {
					continue
				}
				answers = append(answers, ResponseAnswer{
					TypedValue: ValueOf(node.Type, answer.value),
					Item:       exportNodes(answer.nodes),
				})
			}
			if len(answers) == 0 {
				continue
			}
			items = append(items, ResponseItem{
				LinkID: node.LinkID,
				Text:   node.Text,
				Answer: answers,
			})
		}
	}
	return items
}
