package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField represents a hidden input emitted inside the meta box, such as
// the anti-forgery token.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// NonceField constructs the hidden input carrying the anti-forgery token.
// Callers supply the input name the save handler reads back.
func NonceField(name, token string) HiddenField {
	return Hidden(name, token)
}

// SortedHiddenFields normalises hidden fields for deterministic rendering.
// Empty names are dropped and later fields win on name collisions.
func SortedHiddenFields(fields []HiddenField) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	clean := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		clean[name] = field.Value
	}
	if len(clean) == 0 {
		return nil
	}

	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{
			Name:  name,
			Value: clean[name],
		})
	}
	return result
}
