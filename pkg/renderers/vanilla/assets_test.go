package vanilla

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/renderers/vanilla/components"
)

func TestAssetsFSServesBuiltinAssets(t *testing.T) {
	for _, name := range []string{StylesheetName, LookupScriptName, SliderScriptName} {
		data, err := fs.ReadFile(AssetsFS(), name)
		if err != nil {
			t.Fatalf("expected %s to be readable: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
	for _, path := range []string{components.StylesheetPath, components.LookupScriptPath, components.SliderScriptPath} {
		if _, err := fs.Stat(AssetsFS(), strings.TrimPrefix(path, "/assets/")); err != nil {
			t.Fatalf("component asset %s has no embedded file: %v", path, err)
		}
	}
}

func TestTemplatesFSShipsEveryWidget(t *testing.T) {
	for _, name := range components.NewDefaultRegistry().Names() {
		if _, err := fs.Stat(TemplatesFS(), "templates/components/"+name+".tmpl"); err != nil {
			t.Fatalf("widget %s has no template: %v", name, err)
		}
	}
}

func TestInputTypeFor(t *testing.T) {
	cases := []struct {
		itemType  string
		preferred string
		value     string
		want      string
	}{
		{"date", "date", "", "date"},
		{"date", "date", "2024-02-29", "date"},
		{"date", "date", "2024", "text"},
		{"dateTime", "datetime-local", "2024-02-29T10:30", "datetime-local"},
		{"dateTime", "datetime-local", "2024-02-29T10:30:00+01:00", "text"},
		{"string", "", "x", "text"},
	}
	for _, tc := range cases {
		if got := inputTypeFor(questionnaire.ItemType(tc.itemType), tc.preferred, tc.value); got != tc.want {
			t.Errorf("%s %q: want %s, got %s", tc.itemType, tc.value, tc.want, got)
		}
	}
}
