package render

import (
	"strings"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// SelectRoots returns the root nodes of tree whose linkId appears in
// linkIDs, in tree order. Entries may themselves be comma separated lists.
// An empty filter selects every root.
func SelectRoots(tree *questionnaire.Tree, linkIDs []string) []*questionnaire.Node {
	if tree == nil {
		return nil
	}
	roots := tree.Nodes()
	wanted := parseTokenList(linkIDs)
	if len(wanted) == 0 {
		return roots
	}

	out := make([]*questionnaire.Node, 0, len(roots))
	for _, node := range roots {
		if _, ok := wanted[strings.ToLower(node.LinkID)]; ok {
			out = append(out, node)
		}
	}
	return out
}

func parseTokenList(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if token := strings.ToLower(strings.TrimSpace(part)); token != "" {
				out[token] = struct{}{}
			}
		}
	}
	return out
}
