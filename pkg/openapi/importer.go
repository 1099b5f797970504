package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-metabox/pkg/model"
)

const (
	// ExtensionField overrides field attributes on a property.
	ExtensionField = "x-metabox"
	// ExtensionOrder positions a property; unordered properties sort last by
	// key.
	ExtensionOrder = "x-order"
	// ExtensionEnumLabels lists display labels aligned with enum values.
	ExtensionEnumLabels = "x-enum-labels"

	componentPrefix = "#/components/schemas/"

	// Strings at least this long render as a textarea.
	textareaMinLength = 256
)

// ErrTargetNotFound is returned when no component or operation matches.
var ErrTargetNotFound = errors.New("openapi: target not found")

// Parse loads a document with kin-openapi, resolving local references.
func Parse(ctx context.Context, data []byte) (*openapi3.T, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}

// Import builds a meta box from the component schema or operation named by
// target. The box id is the snake_case form of the resolved name.
func Import(ctx context.Context, data []byte, target string) (model.MetaBox, error) {
	doc, err := Parse(ctx, data)
	if err != nil {
		return model.MetaBox{}, err
	}
	name, schema, err := SchemaFor(doc, target)
	if err != nil {
		return model.MetaBox{}, err
	}
	return BoxFromSchema(snakeCase(name), schema)
}

// LoadBox fetches src with loader and imports target from it.
func LoadBox(ctx context.Context, loader *Loader, src Source, target string) (model.MetaBox, error) {
	if loader == nil {
		loader = NewLoader()
	}
	data, err := loader.Load(ctx, src)
	if err != nil {
		return model.MetaBox{}, err
	}
	return Import(ctx, data, target)
}

// SchemaFor resolves target to an object schema. Targets may be a component
// name, a "#/components/schemas/" reference or an operation id, in which case
// the operation's request body is used.
func SchemaFor(doc *openapi3.T, target string) (string, *openapi3.Schema, error) {
	if doc == nil {
		return "", nil, errors.New("openapi: document is nil")
	}
	name := strings.TrimPrefix(strings.TrimSpace(target), componentPrefix)
	if name == "" {
		return "", nil, errors.New("openapi: target is required")
	}

	if doc.Components != nil {
		if ref, ok := doc.Components.Schemas[name]; ok && ref != nil && ref.Value != nil {
			return name, ref.Value, nil
		}
	}

	if doc.Paths != nil {
		for _, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for _, op := range item.Operations() {
				if op == nil || op.OperationID != name {
					continue
				}
				schema := requestSchema(op.RequestBody)
				if schema == nil {
					return "", nil, fmt.Errorf("openapi: operation %q has no request body schema", name)
				}
				return name, schema, nil
			}
		}
	}
	return "", nil, fmt.Errorf("%w: %q", ErrTargetNotFound, target)
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "application/json", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// BoxFromSchema converts an object schema's properties into fields.
func BoxFromSchema(id string, schema *openapi3.Schema) (model.MetaBox, error) {
	if schema == nil {
		return model.MetaBox{}, errors.New("openapi: schema is nil")
	}
	if strings.TrimSpace(id) == "" {
		return model.MetaBox{}, errors.New("openapi: box id is required")
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, key := range schema.Required {
		required[key] = struct{}{}
	}

	keys := make([]string, 0, len(schema.Properties))
	for key, ref := range schema.Properties {
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		oi, iok := order(schema.Properties[keys[i]].Value)
		oj, jok := order(schema.Properties[keys[j]].Value)
		switch {
		case iok && jok && oi != oj:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})

	box := model.MetaBox{
		ID:     id,
		Title:  schema.Title,
		Fields: make(model.Fields, 0, len(keys)),
	}
	if box.Title == "" {
		box.Title = humanize(id)
	}
	for _, key := range keys {
		_, isRequired := required[key]
		field, err := FieldFromSchema(key, schema.Properties[key].Value, isRequired)
		if err != nil {
			return model.MetaBox{}, err
		}
		box.Fields = append(box.Fields, field)
	}
	return box, nil
}

// FieldFromSchema derives one field from a property schema.
func FieldFromSchema(key string, schema *openapi3.Schema, required bool) (model.Field, error) {
	field := model.Field{
		Key:  key,
		Type: model.FieldTypeText,
		Name: schema.Title,
		Desc: schema.Description,
	}
	if field.Name == "" {
		field.Name = humanize(key)
	}

	switch schemaType(schema) {
	case openapi3.TypeBoolean:
		field.Type = model.FieldTypeCheckbox
	case openapi3.TypeInteger, openapi3.TypeNumber:
		field.Type = model.FieldTypeNumber
		if len(schema.Enum) > 0 {
			field.Type = model.FieldTypeSelect
			field.Options = enumOptions(schema)
			break
		}
		if schema.Min != nil || schema.Max != nil {
			field.Attributes = map[string]string{}
			if schema.Min != nil {
				field.Attributes["min"] = formatNumber(*schema.Min)
			}
			if schema.Max != nil {
				field.Attributes["max"] = formatNumber(*schema.Max)
			}
		}
	case openapi3.TypeArray:
		var items *openapi3.Schema
		if schema.Items != nil {
			items = schema.Items.Value
		}
		switch {
		case items != nil && len(items.Enum) > 0:
			field.Type = model.FieldTypeCheckboxMultiple
			field.Options = enumOptions(items)
		case items != nil && items.Format == "date":
			field.Type = model.FieldTypeDate
			field.DateMultiple = true
		}
	default:
		switch {
		case len(schema.Enum) > 0:
			field.Type = model.FieldTypeSelect
			field.Options = enumOptions(schema)
		case schema.Format == "date":
			field.Type = model.FieldTypeDate
		case schema.Format == "time":
			field.Type = model.FieldTypeTime
		case schema.Format == "uri" || schema.Format == "url":
			field.Type = model.FieldTypeURL
		case schema.Format == "html":
			field.Type = model.FieldTypeTextarea
			field.AllowHTML = true
		case schema.Format == "textarea" || (schema.MaxLength != nil && *schema.MaxLength >= textareaMinLength):
			field.Type = model.FieldTypeTextarea
		}
	}

	field.Default = stringify(schema.Default)
	if required && field.Default != "" {
		field.NoEmpty = true
	}

	if raw, ok := schema.Extensions[ExtensionField]; ok {
		attrs, ok := raw.(map[string]any)
		if !ok {
			return model.Field{}, fmt.Errorf("openapi: property %q: %s must be an object", key, ExtensionField)
		}
		merged, err := field.Merge(attrs)
		if err != nil {
			return model.Field{}, fmt.Errorf("openapi: property %q: %w", key, err)
		}
		field = merged
	}
	return field, nil
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil {
		return ""
	}
	for _, value := range schema.Type.Slice() {
		if value != openapi3.TypeNull {
			return value
		}
	}
	return ""
}

func enumOptions(schema *openapi3.Schema) model.Options {
	var labels []any
	if raw, ok := schema.Extensions[ExtensionEnumLabels].([]any); ok {
		labels = raw
	}
	options := make(model.Options, 0, len(schema.Enum))
	for idx, value := range schema.Enum {
		text := stringify(value)
		if text == "" {
			continue
		}
		label := text
		if idx < len(labels) {
			if custom := stringify(labels[idx]); custom != "" {
				label = custom
			}
		}
		options = append(options, model.Option{Value: text, Label: label})
	}
	return options
}

func order(schema *openapi3.Schema) (float64, bool) {
	switch value := schema.Extensions[ExtensionOrder].(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		return parsed, err == nil
	}
	return 0, false
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	case float64:
		return formatNumber(v)
	case int:
		return strconv.Itoa(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if text := stringify(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func humanize(key string) string {
	words := strings.FieldsFunc(snakeCase(key), func(r rune) bool { return r == '_' })
	if len(words) == 0 {
		return key
	}
	text := strings.Join(words, " ")
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(name))
	for idx, r := range runes {
		switch {
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if idx > 0 && runes[idx-1] != '_' && !unicode.IsUpper(runes[idx-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
