package questionnaire

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-qform/pkg/datatype"
	"github.com/goliatone/go-qform/pkg/options"
)

const intakeYAML = `
resourceType: Questionnaire
name: intake
title: Patient intake
item:
  - linkId: name
    text: Full name
    type: string
    required: true
    item:
      - linkId: name.help
        type: display
        text: As printed on your ID card.
        extension:
          - url: http://hl7.org/fhir/StructureDefinition/questionnaire-itemControl
            valueCodeableConcept:
              coding:
                - code: help
  - linkId: pain
    prefix: "2."
    text: Pain score
    type: integer
    extension:
      - url: http://hl7.org/fhir/StructureDefinition/questionnaire-itemControl
        valueCodeableConcept:
          coding:
            - code: slider
      - url: http://hl7.org/fhir/StructureDefinition/minValue
        valueInteger: 0
      - url: http://hl7.org/fhir/StructureDefinition/maxValue
        valueInteger: 10
  - linkId: color
    text: Favourite colour
    type: open-choice
    answerOption:
      - valueCoding: {system: "urn:colors", code: red, display: Red}
      - valueCoding: {system: "urn:colors", code: blue, display: Blue}
        initialSelected: true
  - linkId: meds
    text: Medications
    type: group
    repeats: true
    item:
      - linkId: meds.drug
        text: Drug
        type: coding
        answerValueSet: http://example.org/vs/drugs
      - linkId: meds.dose
        text: Dose
        type: quantity
`

func decodeIntake(t *testing.T) Definition {
	t.Helper()
	var def Definition
	if err := Decode([]byte(intakeYAML), &def); err != nil {
		t.Fatalf("decode definition: %v", err)
	}
	return def
}

func rootByLinkID(tree *Tree, linkID string) *Node {
	for _, node := range tree.Nodes() {
		if node.LinkID == linkID {
			return node
		}
	}
	return nil
}

func TestBuild_MapsDefinitionItems(t *testing.T) {
	def := decodeIntake(t)

	var resolved []string
	tree, err := Build(def, nil,
		WithKeyGenerator(SequentialKeys("k")),
		WithOptionsResolver(func(item DefinitionItem) options.Provider {
			resolved = append(resolved, item.AnswerValueSet)
			return options.NewStatic(options.Option{Value: datatype.Coding{System: "urn:drugs", Code: "asp", Display: "Aspirin"}})
		}),
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	name := rootByLinkID(tree, "name")
	if name.Help != "As printed on your ID card." {
		t.Fatalf("help display child should fold into Help, got %q", name.Help)
	}
	if name.Children != nil {
		t.Fatalf("folded display children should not be materialised")
	}

	pain := rootByLinkID(tree, "pain")
	if pain.Control != ControlSlider || pain.Min == nil || *pain.Min != 0 || pain.Max == nil || *pain.Max != 10 {
		t.Fatalf("extension metadata not applied: control=%q min=%v max=%v", pain.Control, pain.Min, pain.Max)
	}
	if pain.Label() != "2. Pain score" {
		t.Fatalf("label: got %q", pain.Label())
	}

	color := rootByLinkID(tree, "color")
	if !color.AllowCustom {
		t.Fatalf("open-choice should allow custom values")
	}
	want := datatype.Coding{System: "urn:colors", Code: "blue", Display: "Blue"}
	if diff := cmp.Diff(want, color.Answers()[0].Value()); diff != "" {
		t.Fatalf("initialSelected option should seed the answer (-want +got):\n%s", diff)
	}

	meds := rootByLinkID(tree, "meds")
	if meds.Kind != KindGroup || len(meds.Answers()) != 1 {
		t.Fatalf("repeating group should start with one instance")
	}
	meds.AddAnswer()
	if len(resolved) != 2 {
		t.Fatalf("resolver should run once per instance, got %d", len(resolved))
	}
	drug := meds.Answers()[1].Nodes()[0]
	if drug.OptionsLoading() || len(drug.Options.Entries()) != 1 {
		t.Fatalf("resolved provider not bound to the new instance")
	}
}

func TestBuild_UnresolvedValueSetIsReportedAsData(t *testing.T) {
	tree, err := Build(decodeIntake(t), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	drug := rootByLinkID(tree, "meds").Answers()[0].Nodes()[0]
	state := drug.Tracker().State()
	if !strings.Contains(state.Error, "http://example.org/vs/drugs") {
		t.Fatalf("expected unavailable value set error, got %#v", state)
	}
}

func TestBuild_RejectsDuplicateLinkIDs(t *testing.T) {
	def := Definition{Item: []DefinitionItem{
		{LinkID: "a", Type: "group", Item: []DefinitionItem{{LinkID: "b", Type: "string"}}},
		{LinkID: "b", Type: "string"},
	}}
	if _, err := Build(def, nil); err == nil || !strings.Contains(err.Error(), `duplicate linkId "b"`) {
		t.Fatalf("expected duplicate linkId error, got %v", err)
	}
}

func TestBuild_SeedsFromResponseAndExports(t *testing.T) {
	def := Definition{Item: []DefinitionItem{
		{LinkID: "name", Type: "string"},
		{LinkID: "nick", Type: "string"},
		{LinkID: "contact", Type: "group", Repeats: true, Item: []DefinitionItem{
			{LinkID: "contact.phone", Type: "string"},
		}},
		{LinkID: "smoker", Type: "boolean", Item: []DefinitionItem{
			{LinkID: "smoker.packs", Type: "integer"},
		}},
	}}

	resp := Response{}
	if err := Decode([]byte(`{
		"item": [
			{"linkId": "name", "answer": [{"valueString": "Ada"}]},
			{"linkId": "nick", "answer": [{"valueString": "A"}, {"valueString": "Lovelace"}]},
			{"linkId": "contact", "item": [{"linkId": "contact.phone", "answer": [{"valueString": "555-0100"}]}]},
			{"linkId": "contact", "item": [{"linkId": "contact.phone", "answer": [{"valueString": "555-0199"}]}]},
			{"linkId": "smoker", "answer": [{"valueBoolean": true, "item": [
				{"linkId": "smoker.packs", "answer": [{"valueInteger": 2}]}
			]}]}
		]
	}`), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	tree, err := Build(def, &resp)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if got := len(rootByLinkID(tree, "nick").Answers()); got != 2 {
		t.Fatalf("extra answers on a non-repeating question are kept, got %d", got)
	}
	contact := rootByLinkID(tree, "contact")
	if got := len(contact.Answers()); got != 2 {
		t.Fatalf("expected two group instances, got %d", got)
	}
	packs := rootByLinkID(tree, "smoker").Answers()[0].Nodes()[0]
	if got := packs.Answers()[0].Value(); got != int64(2) {
		t.Fatalf("nested answer seed: got %#v", got)
	}

	exported := tree.Response()
	exported.ResourceType = ""
	exported.Status = ""
	if diff := cmp.Diff(resp, exported); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}
