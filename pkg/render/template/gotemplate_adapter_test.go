package template_test

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-metabox/pkg/render/template/gotemplate"
	"github.com/goliatone/go-metabox/pkg/testsupport"
)

func templatesFS() fstest.MapFS {
	return fstest.MapFS{
		"hello.tmpl":      {Data: []byte(`Hello {{ name }}!`)},
		"use-global.tmpl": {Data: []byte(`env={{ settings.env }}`)},
		"use-filter.tmpl": {Data: []byte(`{{ name|shout }}`)},
		"label.tmpl":      {Data: []byte(`<p>{{ desc|label_html }}</p>`)},
		"attrs.tmpl":      {Data: []byte(`<div{{ attrs|attrs }}></div>`)},
		"lower.tmpl":      {Data: []byte(`{{ name|lowerfirst }} {{ pad|trim }}`)},
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "<Ada>"}, w)
	})

	want := "Hello &lt;Ada&gt;!"
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})
	if result != "env=staging" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"}, w)
	})
	if result != "ADA!" {
		t.Fatalf("unexpected output %q", result)
	}

	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestGoTemplateEngine_LabelFilter(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("label", map[string]any{
		"desc": `Use <strong>bold</strong><br><script>alert(1)</script> <a href="https://example.com" onclick="x()">links</a>`,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(result, "<strong>bold</strong>") || !strings.Contains(result, `<a href="https://example.com"`) {
		t.Fatalf("allowed markup removed: %s", result)
	}
	if strings.Contains(result, "script") || strings.Contains(result, "onclick") {
		t.Fatalf("unsafe markup kept: %s", result)
	}
}

func TestGoTemplateEngine_AttrsFilter(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("attrs", map[string]any{
		"attrs": []map[string]string{
			{"name": "data-id", "value": `7"8`},
			{"name": "bad name", "value": "x"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != `<div data-id="7&#34;8"></div>` {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_BuiltinFilters(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("lower", map[string]any{"name": "Event", "pad": "  x  "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "event x" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_TemplateFuncGlobals(t *testing.T) {
	engine, err := gotemplate.New(
		gotemplate.WithFS(fstest.MapFS{"greet.tmpl": {Data: []byte(`{{ greet(name) }}`)}}),
		gotemplate.WithTemplateFunc(map[string]any{
			"greet": func(name string) string { return "Hi " + name },
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.RenderTemplate("greet", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hi Ada" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RenderString(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.Render(`{{ a }}-{{ b }}`, map[string]any{"a": "one", "b": "two"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "one-two" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without templates fs")
	}
}
