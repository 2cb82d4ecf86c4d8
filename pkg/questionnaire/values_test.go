package questionnaire

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-qform/pkg/datatype"
	"github.com/goliatone/go-qform/pkg/options"
)

func TestParseInput(t *testing.T) {
	colors := options.NewStatic(
		options.Option{Value: datatype.Coding{System: "urn:colors", Code: "red", Display: "Red"}},
	)
	redToken := options.TokenFor(datatype.Coding{System: "urn:colors", Code: "red", Display: "Red"})

	cases := []struct {
		name string
		node *Node
		raw  string
		want any
	}{
		{"blank clears", &Node{Type: TypeInteger}, "  ", nil},
		{"string keeps spacing", &Node{Type: TypeString}, " Ada ", " Ada "},
		{"integer", &Node{Type: TypeInteger}, "42", int64(42)},
		{"decimal", &Node{Type: TypeDecimal}, "2.5", 2.5},
		{"boolean on", &Node{Type: TypeBoolean}, "on", true},
		{"boolean no", &Node{Type: TypeBoolean}, "No", false},
		{"date partial", &Node{Type: TypeDate}, "1815-12", "1815-12"},
		{"date time local", &Node{Type: TypeDateTime}, "2024-05-01T09:30", "2024-05-01T09:30"},
		{"time normalised", &Node{Type: TypeTime}, "07:15", "07:15:00"},
		{"url", &Node{Type: TypeURL}, "https://example.org", "https://example.org"},
		{"quantity default unit", &Node{Type: TypeQuantity, Unit: "mg"}, "200", datatype.Quantity{Value: datatype.Float(200), Unit: "mg"}},
		{"quantity typed unit", &Node{Type: TypeQuantity, Unit: "mg"}, "1.5 g", datatype.Quantity{Value: datatype.Float(1.5), Unit: "g"}},
		{"reference", &Node{Type: TypeReference}, "Practitioner/7", datatype.Reference{Reference: "Practitioner/7"}},
		{"attachment", &Node{Type: TypeAttachment}, "https://x/scan.png", datatype.Attachment{URL: "https://x/scan.png"}},
		{"coding token", &Node{Type: TypeCoding, Options: colors}, redToken, datatype.Coding{System: "urn:colors", Code: "red", Display: "Red"}},
		{"coding free text", &Node{Type: TypeCoding}, "Teal", datatype.Coding{Display: "Teal"}},
		{"open choice custom", &Node{Type: TypeOpenChoice, Options: colors, AllowCustom: true}, "Teal", "Teal"},
		{"unknown type", &Node{Type: "signature"}, "x", "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseInput(tc.node, tc.raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseInput_Rejects(t *testing.T) {
	colors := options.NewStatic(options.Option{Value: "red"})
	cases := map[string]*Node{
		"twelve":     {Type: TypeInteger},
		"1,5":        {Type: TypeDecimal},
		"maybe":      {Type: TypeBoolean},
		"12/31/2024": {Type: TypeDate},
		"25:00":      {Type: TypeTime},
		"not a url":  {Type: TypeURL},
		"kg":         {Type: TypeQuantity},
		"blue":       {Type: TypeChoice, Options: colors},
	}
	for raw, node := range cases {
		if _, err := ParseInput(node, raw); !errors.Is(err, ErrInputFormat) {
			t.Fatalf("%s %q: expected ErrInputFormat, got %v", node.Type, raw, err)
		}
	}
}

func TestFormatValue_RoundTripsFreeEntry(t *testing.T) {
	nodes := []*Node{
		{Type: TypeInteger},
		{Type: TypeDecimal},
		{Type: TypeBoolean},
		{Type: TypeQuantity, Unit: "mg"},
		{Type: TypeReference},
		{Type: TypeTime},
	}
	inputs := []string{"-3", "0.25", "true", "12.5", "Patient/1", "08:00:00"}

	for i, node := range nodes {
		value, err := ParseInput(node, inputs[i])
		if err != nil {
			t.Fatalf("parse %q: %v", inputs[i], err)
		}
		if got := FormatValue(value); got != inputs[i] {
			t.Fatalf("%s: want %q, got %q", node.Type, inputs[i], got)
		}
	}
}
