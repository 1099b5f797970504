// Package visibility decides whether meta box fields are shown based on the
// current values of other fields. The same rules run in the browser through
// the embedded client script; this package is the server side reference.
package visibility

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goliatone/go-metabox/pkg/model"
)

// Values exposes the current value of each controlling field.
type Values map[string]string

// Evaluator determines whether a field should be visible given the current
// form values.
type Evaluator interface {
	Visible(field model.Field, values Values) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field model.Field, values Values) bool

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(field model.Field, values Values) bool {
	return fn(field, values)
}

// Default evaluates declared conditions with Visible.
var Default Evaluator = EvaluatorFunc(Visible)

// Visible reports whether every condition on the field holds. Fields without
// conditions are always visible.
func Visible(field model.Field, values Values) bool {
	for _, condition := range field.Visibility {
		if !Met(condition, values[condition.Field]) {
			return false
		}
	}
	return true
}

// Met evaluates one condition against the controlling field's current value.
func Met(condition model.Condition, current string) bool {
	equal := Equal(condition.Value, current)
	if condition.Op() == model.OperatorNotEqual {
		return !equal
	}
	return equal
}

// Equal compares two form values loosely: trimmed strings match, numbers
// match by value ("1.0" equals "1") and boolean-like values match by truth
// ("1", "on", "yes", "true" against each other; "", "0", "off", "no", "false"
// against each other).
func Equal(a, b string) bool {
	a, b = trim(a), trim(b)
	if a == b {
		return true
	}
	if numberPattern.MatchString(a) && numberPattern.MatchString(b) {
		return number(a) == number(b)
	}
	ta, okA := truth(a)
	tb, okB := truth(b)
	return okA && okB && ta == tb
}

var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// trim drops the union of the Unicode space set and the byte order mark, the
// same set the client script strips.
func trim(value string) string {
	return strings.TrimFunc(value, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// number parses a value already matched by numberPattern. Out of range
// numerals become signed infinity.
func number(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func truth(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "1", "true", "on", "yes":
		return true, true
	case "", "0", "false", "off", "no":
		return false, true
	default:
		return false, false
	}
}

// State is the outcome for one field.
type State struct {
	Key     string
	Visible bool
	// Managed is false for fields hidden by configuration; the client script
	// leaves those alone.
	Managed bool
}

// Evaluate computes the state of every field in order. Fields hidden by
// configuration are never visible. Fields limited to page templates are only
// visible when the template matches. A nil evaluator uses Default.
func Evaluate(eval Evaluator, fields model.Fields, values Values, pageTemplate string) []State {
	if eval == nil {
		eval = Default
	}
	out := make([]State, 0, len(fields))
	for _, field := range fields {
		state := State{Key: field.Key, Managed: !field.Hidden}
		if !field.Hidden {
			state.Visible = eval.Visible(field, values) && field.AllowsTemplate(pageTemplate)
		}
		out = append(out, state)
	}
	return out
}

// Rule is the client side shape of a field's visibility settings.
type Rule struct {
	Conditions    []model.Condition `json:"conditions"`
	PageTemplates []string          `json:"page_templates,omitempty"`
}

// Rules collects the rules for every visible-by-configuration field that
// declares conditions or page templates.
func Rules(fields model.Fields) map[string]Rule {
	out := make(map[string]Rule)
	for _, field := range fields {
		if field.Hidden {
			continue
		}
		if len(field.Visibility) == 0 && len(field.PageTemplates) == 0 {
			continue
		}
		conditions := make([]model.Condition, 0, len(field.Visibility))
		for _, condition := range field.Visibility {
			condition.Operator = condition.Op()
			conditions = append(conditions, condition)
		}
		out[field.Key] = Rule{
			Conditions:    conditions,
			PageTemplates: append([]string(nil), field.PageTemplates...),
		}
	}
	return out
}

// Payload encodes Rules as the JSON document read by the client script.
func Payload(fields model.Fields) (string, error) {
	raw, err := json.Marshal(Rules(fields))
	if err != nil {
		return "", fmt.Errorf("visibility: encode payload: %w", err)
	}
	return string(raw), nil
}
