package components

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-metabox/pkg/model"
)

// ElementPrefix prefixes the id of every primary control.
const ElementPrefix = "ctmb-input-"

var defaultClasses = map[model.FieldType]string{
	model.FieldTypeText:   "regular-text",
	model.FieldTypeURL:    "regular-text",
	model.FieldTypeUpload: "regular-text",
	model.FieldTypeNumber: "small-text",
	model.FieldTypeTime:   "regular-text",
}

var attrNamePattern = regexp.MustCompile(`^[A-Za-z_:][-A-Za-z0-9_:.]*$`)

// Attr is a single name/value attribute pair.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SortedAttrs returns custom attributes in name order, dropping names that
// are not valid attribute identifiers.
func SortedAttrs(attrs map[string]string) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(attrs))
	for name, value := range attrs {
		name = strings.TrimSpace(name)
		if !attrNamePattern.MatchString(name) {
			continue
		}
		out = append(out, Attr{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WriteAttrs renders attrs as ` name="value"` pairs.
func WriteAttrs(b *strings.Builder, attrs []Attr) {
	for _, attr := range attrs {
		b.WriteByte(' ')
		b.WriteString(attr.Name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Value))
		b.WriteByte('"')
	}
}

// ElementID returns the id of the field's primary control.
func ElementID(key string) string {
	return ElementPrefix + key
}

// InputName returns the posted name for the field.
func InputName(field model.Field) string {
	if field.Type == model.FieldTypeCheckboxMultiple {
		return field.Key + "[]"
	}
	return field.Key
}

// Classes builds the control class list: the type class, the stock class for
// the type and the field's custom class.
func Classes(field model.Field) string {
	classes := []string{"ctmb-" + string(field.Type)}
	if stock := defaultClasses[field.Type]; stock != "" {
		classes = append(classes, stock)
	}
	if custom := strings.TrimSpace(field.Class); custom != "" {
		classes = append(classes, custom)
	}
	return strings.Join(classes, " ")
}

// Data builds the ComponentData for a field and its resolved value.
func Data(field model.Field, value string) ComponentData {
	return ComponentData{
		Value:     value,
		ElementID: ElementID(field.Key),
		Name:      InputName(field),
		Classes:   Classes(field),
	}
}

// commonAttrs renders the name, class and custom attributes shared by every
// control of a field.
func commonAttrs(field model.Field, data ComponentData) string {
	var b strings.Builder
	b.WriteString(`name="`)
	b.WriteString(html.EscapeString(data.Name))
	b.WriteString(`" class="`)
	b.WriteString(html.EscapeString(data.Classes))
	b.WriteByte('"')
	WriteAttrs(&b, SortedAttrs(field.Attributes))
	return b.String()
}
