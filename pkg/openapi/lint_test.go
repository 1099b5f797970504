package openapi

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLint(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "lint.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	violations, err := Lint(context.Background(), data)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}

	locations := make([]string, 0, len(violations))
	for _, v := range violations {
		locations = append(locations, v.Location)
	}
	want := []string{
		"components > schemas > Venue > properties.kind",
		"components > schemas > Venue > properties.open",
		"components > schemas > Venue > properties.rank",
		"components > schemas > Venue > properties.size > colour",
		"components > schemas > Venue > properties.size > type",
		"operation > post /venues > requestBody > properties.city",
	}
	if diff := cmp.Diff(want, locations); diff != "" {
		t.Fatalf("violation locations mismatch (-want +got):\n%s", diff)
	}

	messages := map[string]string{}
	for _, v := range violations {
		messages[v.Location] = v.Message
	}
	if !strings.Contains(messages["components > schemas > Venue > properties.kind"], "2 labels for 1 enum values") {
		t.Fatalf("unexpected enum label message: %v", messages)
	}
	if !strings.Contains(messages["components > schemas > Venue > properties.size > type"], `unknown field type "slider"`) {
		t.Fatalf("unexpected type message: %v", messages)
	}
	if !strings.Contains(messages["operation > post /venues > requestBody > properties.city"], ExtensionOrder) {
		t.Fatalf("unexpected order message: %v", messages)
	}
}

func TestLintFixtureFlagsBrokenComponent(t *testing.T) {
	violations, err := Lint(context.Background(), readFixture(t))
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(violations) != 1 || violations[0].Location != "components > schemas > Broken > properties.bad" {
		t.Fatalf("unexpected violations: %v", violations)
	}
	if !strings.Contains(violations[0].String(), "must be an object") {
		t.Fatalf("unexpected message: %s", violations[0])
	}
}

func TestFieldAttributes(t *testing.T) {
	names := FieldAttributes()
	for _, name := range []string{"type", "visibility", "no_empty", "date_multiple"} {
		if !slices.Contains(names, name) {
			t.Fatalf("missing %q in %v", name, names)
		}
	}
	if slices.Contains(names, "key") || !slices.IsSorted(names) {
		t.Fatalf("unexpected attribute list %v", names)
	}
}
