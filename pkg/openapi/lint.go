package openapi

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-metabox/pkg/model"
)

// Violation is one unsupported or malformed extension found by Lint.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// Lint checks the metabox extensions on every component schema and operation
// request body of the document. Violations are sorted by location.
func Lint(ctx context.Context, data []byte) ([]Violation, error) {
	doc, err := Parse(ctx, data)
	if err != nil {
		return nil, err
	}

	l := &linter{seen: make(map[*openapi3.Schema]struct{})}
	if doc.Components != nil {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if ref := doc.Components.Schemas[name]; ref != nil && ref.Value != nil {
				l.schema([]string{"components", "schemas", name}, ref.Value)
			}
		}
	}
	if doc.Paths != nil {
		items := doc.Paths.Map()
		paths := make([]string, 0, len(items))
		for path := range items {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			item := items[path]
			if item == nil {
				continue
			}
			methods := make([]string, 0, 8)
			operations := item.Operations()
			for method := range operations {
				methods = append(methods, method)
			}
			sort.Strings(methods)
			for _, method := range methods {
				op := operations[method]
				if op == nil {
					continue
				}
				id := op.OperationID
				if id == "" {
					id = method + " " + path
				}
				if schema := requestSchema(op.RequestBody); schema != nil {
					l.schema([]string{"operation", id, "requestBody"}, schema)
				}
			}
		}
	}

	sort.SliceStable(l.violations, func(i, j int) bool {
		if l.violations[i].Location == l.violations[j].Location {
			return l.violations[i].Message < l.violations[j].Message
		}
		return l.violations[i].Location < l.violations[j].Location
	})
	return l.violations, nil
}

type linter struct {
	seen       map[*openapi3.Schema]struct{}
	violations []Violation
}

func (l *linter) report(path []string, format string, args ...any) {
	l.violations = append(l.violations, Violation{
		Location: strings.Join(path, " > "),
		Message:  fmt.Sprintf(format, args...),
	})
}

func (l *linter) schema(path []string, schema *openapi3.Schema) {
	// Shared component references are checked once.
	if _, done := l.seen[schema]; done {
		return
	}
	l.seen[schema] = struct{}{}

	l.extensions(path, schema)

	keys := make([]string, 0, len(schema.Properties))
	for key := range schema.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if ref := schema.Properties[key]; ref != nil && ref.Value != nil {
			l.schema(appendPath(path, "properties."+key), ref.Value)
		}
	}
	if schema.Items != nil && schema.Items.Value != nil {
		l.schema(appendPath(path, "items"), schema.Items.Value)
	}
}

func (l *linter) extensions(path []string, schema *openapi3.Schema) {
	if raw, ok := schema.Extensions[ExtensionField]; ok {
		l.fieldExtension(path, raw)
	}
	if raw, ok := schema.Extensions[ExtensionOrder]; ok {
		switch value := raw.(type) {
		case float64, int:
		case string:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				l.report(path, "%s must be a number, found %q", ExtensionOrder, value)
			}
		default:
			l.report(path, "%s must be a number, found %T", ExtensionOrder, raw)
		}
	}
	if raw, ok := schema.Extensions[ExtensionEnumLabels]; ok {
		labels, isList := raw.([]any)
		switch {
		case !isList:
			l.report(path, "%s must be an array, found %T", ExtensionEnumLabels, raw)
		case len(schema.Enum) == 0:
			l.report(path, "%s has no enum to label", ExtensionEnumLabels)
		case len(labels) > len(schema.Enum):
			l.report(path, "%s lists %d labels for %d enum values", ExtensionEnumLabels, len(labels), len(schema.Enum))
		}
	}
}

func (l *linter) fieldExtension(path []string, raw any) {
	attrs, ok := raw.(map[string]any)
	if !ok {
		l.report(path, "%s must be an object, found %T", ExtensionField, raw)
		return
	}

	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	allowed := fieldAttributes()
	valid := true
	for _, key := range keys {
		if _, ok := allowed[key]; !ok {
			l.report(appendPath(path, key), "unsupported %s key %q (supported: %s)", ExtensionField, key, strings.Join(FieldAttributes(), ", "))
			valid = false
		}
	}
	if typ, ok := attrs["type"].(string); ok && !model.FieldType(typ).Known() {
		l.report(appendPath(path, "type"), "unknown field type %q", typ)
		valid = false
	}
	if !valid {
		return
	}
	if _, err := (model.Field{Key: "lint"}).Merge(attrs); err != nil {
		l.report(path, "%v", err)
	}
}

var (
	fieldAttributesOnce sync.Once
	fieldAttributeSet   map[string]struct{}
	fieldAttributeNames []string
)

func fieldAttributes() map[string]struct{} {
	fieldAttributesOnce.Do(func() {
		fieldAttributeSet = make(map[string]struct{})
		typ := reflect.TypeOf(model.Field{})
		for i := 0; i < typ.NumField(); i++ {
			name, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
			if name == "" || name == "-" || name == "key" {
				continue
			}
			fieldAttributeSet[name] = struct{}{}
			fieldAttributeNames = append(fieldAttributeNames, name)
		}
		sort.Strings(fieldAttributeNames)
	})
	return fieldAttributeSet
}

// FieldAttributes lists the keys accepted inside the x-metabox extension.
func FieldAttributes() []string {
	fieldAttributes()
	return append([]string(nil), fieldAttributeNames...)
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}
