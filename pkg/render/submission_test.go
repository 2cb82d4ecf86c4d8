package render_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-qform/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	merged := render.MergeHiddenFields(base,
		render.CSRFToken("_csrf", "token123"),
		render.Hidden("session", 42),
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"existing": "keep",
		"_csrf":    "token123",
		"session":  "42",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "existing", Value: "keep"},
		{Name: "session", Value: "42"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAction(t *testing.T) {
	cases := []struct {
		raw  string
		want render.Action
	}{
		{"", render.Action{Verb: render.VerbSubmit}},
		{"submit", render.Action{Verb: render.VerbSubmit}},
		{"add:k1", render.Action{Verb: render.VerbAdd, Target: "k1"}},
		{"remove:k2", render.Action{Verb: render.VerbRemove, Target: "k2"}},
		{"select:k3:__specify_other__", render.Action{Verb: render.VerbSelect, Target: "k3", Token: "__specify_other__"}},
		{"select:k3:coding:http://loinc.org|1234", render.Action{Verb: render.VerbSelect, Target: "k3", Token: "coding:http://loinc.org|1234"}},
		{"custom-submit:k4", render.Action{Verb: render.VerbCustomSubmit, Target: "k4"}},
		{"custom-cancel:k4", render.Action{Verb: render.VerbCustomCancel, Target: "k4"}},
	}
	for _, tc := range cases {
		got, err := render.ParseAction(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("parse %q mismatch (-want +got):\n%s", tc.raw, diff)
		}
		if tc.raw != "" {
			reparsed, err := render.ParseAction(got.String())
			if err != nil || reparsed != got {
				t.Fatalf("String() of %q does not round trip: %q (%v)", tc.raw, got.String(), err)
			}
		}
	}

	for _, raw := range []string{"add", "add:", "select:k1", "jump:k1", "select::tok"} {
		if _, err := render.ParseAction(raw); !errors.Is(err, render.ErrMalformedAction) {
			t.Fatalf("expected ErrMalformedAction for %q, got %v", raw, err)
		}
	}
}
