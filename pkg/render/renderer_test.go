package render_test

import (
	"context"
	"encoding/json"
	"html"
	"io/fs"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-metabox/pkg/datelist"
	"github.com/goliatone/go-metabox/pkg/model"
	"github.com/goliatone/go-metabox/pkg/render"
	"github.com/goliatone/go-metabox/pkg/testsupport"
)

func newRenderer(t *testing.T, opts ...render.Option) *render.Renderer {
	t.Helper()
	renderer, err := render.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("output missing %q:\n%s", fragment, output)
		}
	}
}

func TestRenderer_Contract(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != "metabox" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderer_RenderBox(t *testing.T) {
	renderer := newRenderer(t)

	output, err := renderer.Render(testsupport.Context(), testsupport.EventBox(), render.RenderOptions{
		Values: map[string]string{
			"kind":     "notice",
			"venue":    `Hall "A"`,
			"dates":    "2024-03-03",
			"featured": "1",
		},
		Hidden: []render.HiddenField{render.NonceField("_ctmb_nonce", "tok")},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(output)

	assertContains(t, html,
		`<div id="ctmb-meta-box-event" class="ctmb-meta-box"`,
		`<h2 class="ctmb-title">Event details</h2>`,
		`<input type="hidden" name="_ctmb_nonce" value="tok" />`,
		`&quot;venue&quot;`,
		`<div id="ctmb-field-kind" class="ctmb-field ctmb-field-type-select">`,
		`<div id="ctmb-field-venue" class="ctmb-field ctmb-field-type-text" style="display: none">`,
		`value="Hall &#34;A&#34;"`,
		`<option value="notice" selected="selected">Notice</option>`,
		`<span class="ctmb-localized-date">March 3, 2024`,
		`value="1" checked="checked"`,
	)
	if strings.Contains(html, `{"venue"`) {
		t.Fatalf("visibility payload must be attribute escaped:\n%s", html)
	}
	if strings.Contains(html, `" hidden>`) {
		t.Fatalf("box with visible fields must not be hidden:\n%s", html)
	}
	if strings.Index(html, "ctmb-field-kind") > strings.Index(html, "ctmb-field-starts") {
		t.Fatalf("fields must render in declaration order")
	}
}

func TestRenderer_HiddenWhenNothingVisible(t *testing.T) {
	renderer := newRenderer(t)
	box := model.MetaBox{
		ID: "only",
		Fields: model.Fields{
			{Key: "a", Type: model.FieldTypeText, Visibility: model.Conditions{{Field: "b", Value: "yes"}}},
			{Key: "c", Type: model.FieldTypeText, Hidden: true},
		},
	}

	output, err := renderer.Render(context.Background(), box, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(output)
	assertContains(t, html, `" hidden>`, `class="ctmb-field ctmb-field-type-text ctmb-hidden" style="display: none"`)
}

func TestRenderer_SkipsUnknownAndHonoursCustomRender(t *testing.T) {
	renderer := newRenderer(t)
	box := model.MetaBox{
		ID: "misc",
		Fields: model.Fields{
			{Key: "shade", Type: "color", Name: "Shade"},
			{Key: "empty", Type: model.FieldTypeSelect, Name: "Empty"},
			{
				Key:  "custom",
				Type: "color",
				Name: "Custom",
				CustomRender: func(data model.RenderData) string {
					return `<em data-id="` + data.ElementID + `">` + data.Value + `</em>`
				},
			},
		},
	}

	output, err := renderer.Render(context.Background(), box, render.RenderOptions{
		Values: map[string]string{"custom": "hi"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(output)
	if strings.Contains(html, "ctmb-field-shade") || strings.Contains(html, "ctmb-field-empty") {
		t.Fatalf("fields without a control must be skipped:\n%s", html)
	}
	assertContains(t, html, `<em data-id="ctmb-input-custom">hi</em>`)
}

func TestRenderer_FieldChrome(t *testing.T) {
	renderer := newRenderer(t)

	text, err := renderer.RenderField(context.Background(), model.Field{
		Key:             "price",
		Type:            model.FieldTypeNumber,
		Name:            "Price",
		AfterName:       "(net)",
		AfterInput:      "EUR",
		Desc:            `Use <b>digits</b><script>x</script>`,
		FieldClass:      "wide",
		FieldAttributes: map[string]string{"data-group": "money"},
	}, render.RenderOptions{Values: map[string]string{"price": "12"}})
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	assertContains(t, text,
		`<div id="ctmb-field-price" class="ctmb-field ctmb-field-type-number wide" data-group="money">`,
		`Price <span>(net)</span>`,
		`<span class="ctmb-after-input">EUR</span>`,
		`<b>digits</b>`,
	)
	if strings.Contains(text, "<script>") {
		t.Fatalf("description must be filtered:\n%s", text)
	}

	area, err := renderer.RenderField(context.Background(), model.Field{
		Key:        "notes",
		Type:       model.FieldTypeTextarea,
		AfterInput: "ignored",
	}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if strings.Contains(area, "ctmb-after-input") {
		t.Fatalf("textarea must not render after_input:\n%s", area)
	}
}

func TestRenderer_PageTemplateGate(t *testing.T) {
	renderer := newRenderer(t)
	field := model.Field{Key: "hero", Type: model.FieldTypeText, PageTemplates: []string{"landing.php"}}

	hidden, err := renderer.RenderField(context.Background(), field, render.RenderOptions{PageTemplate: "default"})
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	assertContains(t, hidden, `style="display: none"`)

	shown, err := renderer.RenderField(context.Background(), field, render.RenderOptions{PageTemplate: "landing.php"})
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if strings.Contains(shown, "display: none") {
		t.Fatalf("field should be visible for its template:\n%s", shown)
	}
}

func TestRenderer_TranslatesAndLocalizesDates(t *testing.T) {
	renderer := newRenderer(t, render.WithTranslator(stubTranslator{"Dates": "Fechas", "Add date": "Añadir"}))

	output, err := renderer.Render(context.Background(), testsupport.EventBox(), render.RenderOptions{
		Locale: "es",
		Values: map[string]string{"dates": "2024-03-03"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertContains(t, string(output), "Fechas", ">Añadir</a>", "3 de marzo de 2024")
}

var calendarAttr = regexp.MustCompile(`data-ctmb-datepicker="([^"]*)"`)

func TestRenderer_CalendarSettings(t *testing.T) {
	renderer := newRenderer(t, render.WithLocale("es"), render.WithTimeFormat("H:i"))

	output, err := renderer.Render(testsupport.Context(), testsupport.EventBox(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	match := calendarAttr.FindStringSubmatch(string(output))
	if match == nil {
		t.Fatalf("missing calendar settings:\n%s", output)
	}
	var settings datelist.ClientSettings
	if err := json.Unmarshal([]byte(html.UnescapeString(match[1])), &settings); err != nil {
		t.Fatalf("decode calendar settings %q: %v", match[1], err)
	}
	if settings.TimeFormat != "H:i" || settings.Language.FirstDay != 1 {
		t.Fatalf("unexpected calendar settings: %+v", settings)
	}
	if settings.WeekDays[0] != "domingo" || settings.Language.Months[0] != "enero" {
		t.Fatalf("calendar settings not localized: %+v", settings)
	}

	plain := model.MetaBox{ID: "plain", Fields: model.Fields{{Key: "title", Type: model.FieldTypeText}}}
	output, err = renderer.Render(testsupport.Context(), plain, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render plain: %v", err)
	}
	if strings.Contains(string(output), "data-ctmb-datepicker") {
		t.Fatalf("box without date or time fields carries calendar settings:\n%s", output)
	}
}

func TestRenderer_ThemePartialsAndVars(t *testing.T) {
	files := fstest.MapFS{
		"compact.tmpl": {Data: []byte(`<p class="compact">{{ key }}:{{ control|safe }}</p>`)},
	}
	for _, name := range []string{"field.tmpl", "metabox.tmpl"} {
		data, err := fs.ReadFile(render.TemplatesFS(), name)
		if err != nil {
			t.Fatalf("read embedded %s: %v", name, err)
		}
		files[name] = &fstest.MapFile{Data: data}
	}

	renderer := newRenderer(t, render.WithTemplatesFS(files))
	output, err := renderer.Render(context.Background(), model.MetaBox{
		ID:     "themed",
		Fields: model.Fields{{Key: "title", Type: model.FieldTypeText}},
	}, render.RenderOptions{
		Theme: &theme.RendererConfig{
			Theme:    "acme",
			Variant:  "dark",
			Partials: map[string]string{render.PartialField: "compact"},
			CSSVars: map[string]string{
				"--ctmb-accent": "#123456",
				"--evil":        "red;} body{display:none",
				"color":         "red",
			},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(output)
	assertContains(t, html,
		"--ctmb-accent: #123456;",
		`class="ctmb-meta-box ctmb-theme-acme ctmb-variant-dark"`,
		`<p class="compact">title:<input type="text"`,
	)
	if strings.Contains(html, "evil") || strings.Contains(html, "color: red") {
		t.Fatalf("unsafe css vars must be dropped:\n%s", html)
	}
}

func TestRenderer_Assets(t *testing.T) {
	renderer := newRenderer(t)
	styles, scripts := renderer.Assets(testsupport.EventBox())
	if len(styles) != 1 || styles[0] != "metabox.css" {
		t.Fatalf("unexpected stylesheets %v", styles)
	}
	if len(scripts) != 1 || scripts[0].Src != "metabox.js" {
		t.Fatalf("unexpected scripts %v", scripts)
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	renderer := newRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, testsupport.EventBox(), render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestAssetURL(t *testing.T) {
	if got := render.AssetURL(nil, "/static/", "metabox.js"); got != "/static/metabox.js" {
		t.Fatalf("unexpected url %q", got)
	}
	cfg := &theme.RendererConfig{AssetURL: func(name string) string { return "/themes/acme/" + name }}
	if got := render.AssetURL(cfg, "/static", "metabox.css"); got != "/themes/acme/metabox.css" {
		t.Fatalf("unexpected themed url %q", got)
	}
}
