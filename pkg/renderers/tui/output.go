package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-qform/pkg/options"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
)

func (r *Renderer) serialize(tree *questionnaire.Tree) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatYAML:
		out, err := yaml.Marshal(tree.Response())
		if err != nil {
			return nil, fmt.Errorf("tui: encode yaml: %w", err)
		}
		return out, nil
	case OutputFormatFormURLEncoded:
		return []byte(formValues(tree).Encode()), nil
	case OutputFormatPrettyText:
		var buf bytes.Buffer
		writePretty(&buf, tree.Nodes(), 0)
		return buf.Bytes(), nil
	default:
		out, err := json.MarshalIndent(tree.Response(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return append(out, '\n'), nil
	}
}

// formValues encodes the answers the way the HTML form posts them, so the
// output can be replayed against a session.
func formValues(tree *questionnaire.Tree) url.Values {
	values := url.Values{}
	values.Set(render.ActionField, string(render.VerbSubmit))
	tree.Walk(func(node *questionnaire.Node) bool {
		if node.Kind != questionnaire.KindQuestion {
			return true
		}
		for _, answer := range node.Answers() {
			value := answer.Value()
			if value == nil {
				continue
			}
			text := questionnaire.FormatValue(value)
			if node.HasOptions() {
				text = options.TokenFor(value)
			}
			values.Add(render.AnswerField(answer), text)
		}
		return true
	})
	return values
}

func writePretty(buf *bytes.Buffer, nodes []*questionnaire.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		if node.Kind == questionnaire.KindDisplay {
			continue
		}
		for _, answer := range node.Answers() {
			if node.Kind == questionnaire.KindGroup {
				fmt.Fprintf(buf, "%s%s\n", indent, node.Label())
			} else if value := answer.Value(); value != nil {
				fmt.Fprintf(buf, "%s%s: %s\n", indent, node.Label(), displayValue(value))
			}
			writePretty(buf, answer.Nodes(), depth+1)
		}
	}
}
