package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSortedHiddenFields(t *testing.T) {
	fields := []HiddenField{
		NonceField("_ctmb_nonce", "first"),
		Hidden(" ", "dropped"),
		Hidden("version", 3),
		NonceField("_ctmb_nonce", "second"),
	}

	want := []HiddenField{
		{Name: "_ctmb_nonce", Value: "second"},
		{Name: "version", Value: "3"},
	}
	if diff := cmp.Diff(want, SortedHiddenFields(fields)); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
	if SortedHiddenFields(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}
