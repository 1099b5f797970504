package testsupport

import "testing"

func TestEventBoxFixtureMatchesJSON(t *testing.T) {
	loaded := MustLoadMetaBox(t, FixturePath("event_box.json"))
	if diff := CompareGolden(EventBox(), loaded); diff != "" {
		t.Fatalf("fixture drift (-go +json):\n%s", diff)
	}
}

func TestForm(t *testing.T) {
	form := Form("tags[]", "a", "tags[]", "b", "dangling")
	if got := form["tags[]"]; len(got) != 2 || got[1] != "b" {
		t.Fatalf("unexpected form %v", form)
	}
	if _, ok := form["dangling"]; ok {
		t.Fatalf("odd trailing key should be ignored")
	}
}
