package components

import (
	"bytes"
	"html"
	"strings"

	"github.com/goliatone/go-metabox/pkg/model"
	"github.com/goliatone/go-metabox/pkg/sanitize"
	"github.com/goliatone/go-metabox/pkg/visibility"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// controls for every field type.
func NewDefaultRegistry() *Registry {
	registry := New()

	builtins := map[model.FieldType]Renderer{
		model.FieldTypeText:             inputRenderer("text"),
		model.FieldTypeURL:              inputRenderer("text"),
		model.FieldTypeTime:             inputRenderer("text"),
		model.FieldTypeNumber:           inputRenderer("number"),
		model.FieldTypeRange:            inputRenderer("range"),
		model.FieldTypeTextarea:         textareaRenderer,
		model.FieldTypeCheckbox:         checkboxRenderer,
		model.FieldTypeCheckboxMultiple: checkboxMultipleRenderer,
		model.FieldTypeRadio:            radioRenderer,
		model.FieldTypeSelect:           selectRenderer,
		model.FieldTypeUpload:           uploadRenderer,
		model.FieldTypeUploadTextarea:   uploadTextareaRenderer,
		model.FieldTypeDate:             dateRenderer,
	}
	for fieldType, renderer := range builtins {
		registry.MustRegister(fieldType, Descriptor{
			Renderer:    renderer,
			Stylesheets: []string{visibility.StylesheetName},
			Scripts:     []Script{{Src: visibility.ScriptName, Defer: true}},
		})
	}
	return registry
}

func inputRenderer(inputType string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		buf.WriteString(`<input type="`)
		buf.WriteString(inputType)
		buf.WriteString(`" `)
		buf.WriteString(commonAttrs(field, data))
		writeID(buf, data.ElementID)
		buf.WriteString(` value="`)
		buf.WriteString(html.EscapeString(data.Value))
		buf.WriteString(`" />`)
		return nil
	}
}

func textareaRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	buf.WriteString(`<textarea `)
	buf.WriteString(commonAttrs(field, data))
	writeID(buf, data.ElementID)
	buf.WriteByte('>')
	buf.WriteString(html.EscapeString(data.Value))
	buf.WriteString(`</textarea>`)
	return nil
}

func checkboxRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	common := commonAttrs(field, data)

	// An unchecked box still posts the empty hidden value.
	buf.WriteString(`<input type="hidden" `)
	buf.WriteString(common)
	buf.WriteString(` value="" />`)

	buf.WriteString(`<label for="`)
	buf.WriteString(html.EscapeString(data.ElementID))
	buf.WriteString(`"><input type="checkbox" `)
	buf.WriteString(common)
	writeID(buf, data.ElementID)
	buf.WriteString(` value="1"`)
	if strings.TrimSpace(data.Value) == "1" {
		buf.WriteString(` checked="checked"`)
	}
	buf.WriteString(` />`)
	if label := strings.TrimSpace(field.CheckboxLabel); label != "" {
		buf.WriteByte(' ')
		buf.WriteString(sanitize.LabelPolicy().Sanitize(label))
	}
	buf.WriteString(`</label>`)
	return nil
}

func checkboxMultipleRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	selected := make(map[string]struct{})
	for _, value := range strings.Split(data.Value, ",") {
		selected[strings.TrimSpace(value)] = struct{}{}
	}
	common := commonAttrs(field, data)
	for _, option := range field.Options {
		_, checked := selected[option.Value]
		writeChoice(buf, "checkbox", "ctmb-checkbox-multiple-container", common, data.ElementID, option, checked)
	}
	return nil
}

func radioRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	common := commonAttrs(field, data)
	for _, option := range field.Options {
		writeChoice(buf, "radio", "ctmb-radio-container", common, data.ElementID, option, option.Value == data.Value)
	}
	return nil
}

func writeChoice(buf *bytes.Buffer, inputType, container, common, elementID string, option model.Option, checked bool) {
	id := html.EscapeString(elementID + "-" + option.Value)
	buf.WriteString(`<div class="`)
	buf.WriteString(container)
	buf.WriteString(`"><label for="`)
	buf.WriteString(id)
	buf.WriteString(`"><input type="`)
	buf.WriteString(inputType)
	buf.WriteString(`" `)
	buf.WriteString(common)
	buf.WriteString(` id="`)
	buf.WriteString(id)
	buf.WriteString(`" value="`)
	buf.WriteString(html.EscapeString(option.Value))
	buf.WriteByte('"')
	if checked {
		buf.WriteString(` checked="checked"`)
	}
	buf.WriteString(` /> `)
	buf.WriteString(html.EscapeString(option.Label))
	buf.WriteString(`</label></div>`)
}

func selectRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if len(field.Options) == 0 {
		return nil
	}
	buf.WriteString(`<select `)
	buf.WriteString(commonAttrs(field, data))
	writeID(buf, data.ElementID)
	buf.WriteByte('>')
	for _, option := range field.Options {
		buf.WriteString(`<option value="`)
		buf.WriteString(html.EscapeString(option.Value))
		buf.WriteByte('"')
		if option.Value == data.Value {
			buf.WriteString(` selected="selected"`)
		}
		buf.WriteByte('>')
		buf.WriteString(html.EscapeString(option.Label))
		buf.WriteString(`</option>`)
	}
	buf.WriteString(`</select>`)
	return nil
}

func uploadRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if err := inputRenderer("text")(buf, field, data); err != nil {
		return err
	}
	writeUploadButton(buf, field)
	return nil
}

func uploadTextareaRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if err := textareaRenderer(buf, field, data); err != nil {
		return err
	}
	writeUploadButton(buf, field)
	return nil
}

func writeUploadButton(buf *bytes.Buffer, field model.Field) {
	buf.WriteString(` <input type="button" value="`)
	buf.WriteString(html.EscapeString(field.UploadButton))
	buf.WriteString(`" class="upload_button button ctmb-upload-file" data-ctmb-upload-type="`)
	buf.WriteString(html.EscapeString(field.UploadType))
	buf.WriteString(`" data-ctmb-upload-title="`)
	buf.WriteString(html.EscapeString(field.UploadTitle))
	buf.WriteString(`" />`)
}

func dateRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	id := html.EscapeString(data.ElementID)
	count := 0
	if strings.TrimSpace(data.Value) != "" {
		count = len(strings.Split(data.Value, ","))
	}

	buf.WriteString(`<div class="ctmb-date-container`)
	if field.DateMultiple {
		buf.WriteString(` ctmb-date-multiple`)
	}
	if count < 2 {
		buf.WriteString(` ctmb-date-button-after`)
	}
	buf.WriteByte('"')
	if data.LocalizeURL != "" {
		buf.WriteString(` data-ctmb-localize-url="`)
		buf.WriteString(html.EscapeString(data.LocalizeURL))
		buf.WriteString(`" data-ctmb-localize-nonce="`)
		buf.WriteString(html.EscapeString(data.LocalizeNonce))
		buf.WriteByte('"')
	}
	buf.WriteByte('>')

	buf.WriteString(`<div id="`)
	buf.WriteString(id)
	buf.WriteString(`-formatted" class="ctmb-date-formatted">`)
	if data.Localizer != nil {
		buf.WriteString(data.Localizer.Markup(data.Value))
	}
	buf.WriteString(`</div>`)

	buf.WriteString(`<div id="`)
	buf.WriteString(id)
	buf.WriteString(`-button-container" class="ctmb-date-button-container"><a href="#" id="`)
	buf.WriteString(id)
	buf.WriteString(`-button" class="ctmb-date-button button">`)
	buf.WriteString(html.EscapeString(field.DateButton))
	buf.WriteString(`</a><input type="date" class="ctmb-date-picker" tabindex="-1" aria-hidden="true" /></div>`)

	buf.WriteString(`<input type="text" `)
	buf.WriteString(commonAttrs(field, data))
	writeID(buf, data.ElementID)
	buf.WriteString(` value="`)
	buf.WriteString(html.EscapeString(data.Value))
	buf.WriteString(`" data-date-multiple="`)
	if field.DateMultiple {
		buf.WriteByte('1')
	}
	buf.WriteString(`" />`)

	buf.WriteString(`</div>`)
	return nil
}

func writeID(buf *bytes.Buffer, id string) {
	buf.WriteString(` id="`)
	buf.WriteString(html.EscapeString(id))
	buf.WriteByte('"')
}
