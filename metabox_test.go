package metabox_test

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	metabox "github.com/goliatone/go-metabox"
	"github.com/goliatone/go-metabox/pkg/testsupport"
)

func TestRenderHTML(t *testing.T) {
	ctx := context.Background()

	html, err := metabox.RenderHTML(ctx, testsupport.EventBox(), map[string]string{"kind": "notice", "venue": "Hall"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	body := string(html)
	if !strings.Contains(body, `<option value="notice" selected="selected">Notice</option>`) || !strings.Contains(body, `value="Hall"`) {
		t.Fatalf("saved values not shown:\n%s", body)
	}

	html, err = metabox.RenderHTML(ctx, testsupport.EventBox(), nil)
	if err != nil {
		t.Fatalf("render defaults: %v", err)
	}
	if !strings.Contains(string(html), `<option value="event" selected="selected">Event</option>`) {
		t.Fatalf("defaults not shown:\n%s", html)
	}
}

func TestLoadFS(t *testing.T) {
	files := fstest.MapFS{
		"boxes/speaker.yaml": {Data: []byte("id: speaker\nfields:\n  name:\n    type: text\n")},
		"README.md":          {Data: []byte("ignored")},
	}
	boxes, err := metabox.LoadFS(files)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(boxes) != 1 || boxes[0].ID() != "speaker" {
		t.Fatalf("unexpected boxes: %v", boxes)
	}

	if _, err := metabox.LoadDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestImportOpenAPI(t *testing.T) {
	box, err := metabox.ImportOpenAPI(context.Background(), filepath.Join("pkg", "openapi", "testdata", "events.json"), "createSpeaker")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if box.ID != "create_speaker" || len(box.Fields) != 2 {
		t.Fatalf("unexpected box: %+v", box)
	}
}

func TestEmbeddedFS(t *testing.T) {
	if _, err := fs.ReadFile(metabox.AssetsFS(), "metabox.js"); err != nil {
		t.Fatalf("expected client script: %v", err)
	}
	if _, err := fs.ReadFile(metabox.AssetsFS(), "metabox.css"); err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
	if _, err := fs.ReadFile(metabox.EmbeddedTemplates(), "field.tmpl"); err != nil {
		t.Fatalf("expected field template: %v", err)
	}
}
