package ids

import (
	"testing"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"abc-DEF_09": "abc-DEF_09",
		"a b/c.d":    "a-b-c-d",
		"ünï":        "-n-",
		"":           "",
		"1.2.3":      "1-2-3",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q): want %q, got %q", in, want, got)
		}
	}
}

func TestIdentifiersDeriveFromKeys(t *testing.T) {
	node := &questionnaire.Node{LinkID: "q.1", Type: questionnaire.TypeString}
	tree := questionnaire.NewTree(questionnaire.WithKeyGenerator(questionnaire.SequentialKeys("key:")))
	tree.Attach(node)
	answer := node.Answers()[0]

	if got := LabelID(node); got != "q-key-1-label" {
		t.Fatalf("label id: got %q", got)
	}
	if got := InputID(answer); got != "q-key-2-input" {
		t.Fatalf("input id: got %q", got)
	}
	if got := ErrorID(answer); got != "q-key-2-error" {
		t.Fatalf("error id: got %q", got)
	}
	if LabelID(nil) != "" || InputID(nil) != "" {
		t.Fatalf("nil identities compose to empty ids")
	}
}

func TestDescribedBy(t *testing.T) {
	node := &questionnaire.Node{LinkID: "q", Type: questionnaire.TypeString}
	tree := questionnaire.NewTree(questionnaire.WithKeyGenerator(questionnaire.SequentialKeys("k")))
	tree.Attach(node)
	answer := node.Answers()[0]

	if got := DescribedBy(node, answer); got != "" {
		t.Fatalf("nothing applies: want empty, got %q", got)
	}

	node.Help = "Help"
	node.Flyover = "More"
	answer.SetIssues([]string{"Required"})
	want := "q-k1-help q-k1-flyover q-k2-error"
	if got := DescribedBy(node, answer); got != want {
		t.Fatalf("describedBy: want %q, got %q", want, got)
	}

	node.Legal = "Legal"
	want = "q-k1-help q-k1-legal q-k1-flyover q-k2-error"
	if got := DescribedBy(node, answer); got != want {
		t.Fatalf("describedBy order: want %q, got %q", want, got)
	}
}
