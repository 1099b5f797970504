package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// UnmarshalJSON accepts either a list of {value,label} objects or an object
// mapping values to labels. Object key order is preserved.
func (o *Options) UnmarshalJSON(data []byte) error {
	switch firstToken(data) {
	case '[':
		var list []Option
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("model: decode options: %w", err)
		}
		*o = list
		return nil
	case '{':
		var out Options
		err := walkJSONObject(data, func(key string, raw json.RawMessage) error {
			label, err := jsonScalar(raw)
			if err != nil {
				return fmt.Errorf("option %q: %w", key, err)
			}
			out = append(out, Option{Value: key, Label: label})
			return nil
		})
		if err != nil {
			return fmt.Errorf("model: decode options: %w", err)
		}
		*o = out
		return nil
	case 'n':
		*o = nil
		return nil
	default:
		return fmt.Errorf("model: decode options: expected array or object")
	}
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML sequences and mappings.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []Option
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("model: decode options: %w", err)
		}
		*o = list
		return nil
	case yaml.MappingNode:
		out := make(Options, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return fmt.Errorf("model: decode options: option %q label must be a scalar (line %d)", key.Value, value.Line)
			}
			out = append(out, Option{Value: key.Value, Label: value.Value})
		}
		*o = out
		return nil
	default:
		return fmt.Errorf("model: decode options: expected sequence or mapping (line %d)", node.Line)
	}
}

// UnmarshalJSON accepts a list of condition objects or the compact mapping
// form where each key names the controlling field and the value is either the
// required value or a [value, operator] pair.
func (c *Conditions) UnmarshalJSON(data []byte) error {
	switch firstToken(data) {
	case '[':
		var list []map[string]json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("model: decode visibility: %w", err)
		}
		out := make(Conditions, 0, len(list))
		for idx, entry := range list {
			var cond Condition
			var err error
			if raw, ok := entry["field"]; ok {
				if cond.Field, err = jsonScalar(raw); err != nil {
					return fmt.Errorf("model: decode visibility[%d].field: %w", idx, err)
				}
			}
			if raw, ok := entry["value"]; ok {
				if cond.Value, err = jsonScalar(raw); err != nil {
					return fmt.Errorf("model: decode visibility[%d].value: %w", idx, err)
				}
			}
			if raw, ok := entry["operator"]; ok {
				op, err := jsonScalar(raw)
				if err != nil {
					return fmt.Errorf("model: decode visibility[%d].operator: %w", idx, err)
				}
				cond.Operator = Operator(op)
			}
			out = append(out, cond)
		}
		*c = out
		return validateConditions(*c)
	case '{':
		var out Conditions
		err := walkJSONObject(data, func(key string, raw json.RawMessage) error {
			cond := Condition{Field: key}
			if firstToken(raw) == '[' {
				var pair []json.RawMessage
				if err := json.Unmarshal(raw, &pair); err != nil {
					return err
				}
				if len(pair) == 0 || len(pair) > 2 {
					return fmt.Errorf("condition %q: expected [value, operator]", key)
				}
				value, err := jsonScalar(pair[0])
				if err != nil {
					return fmt.Errorf("condition %q: %w", key, err)
				}
				cond.Value = value
				if len(pair) == 2 {
					op, err := jsonScalar(pair[1])
					if err != nil {
						return fmt.Errorf("condition %q: %w", key, err)
					}
					cond.Operator = Operator(op)
				}
			} else {
				value, err := jsonScalar(raw)
				if err != nil {
					return fmt.Errorf("condition %q: %w", key, err)
				}
				cond.Value = value
			}
			out = append(out, cond)
			return nil
		})
		if err != nil {
			return fmt.Errorf("model: decode visibility: %w", err)
		}
		*c = out
		return validateConditions(*c)
	case 'n':
		*c = nil
		return nil
	default:
		return fmt.Errorf("model: decode visibility: expected array or object")
	}
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (c *Conditions) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []Condition
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("model: decode visibility: %w", err)
		}
		*c = list
		return validateConditions(*c)
	case yaml.MappingNode:
		out := make(Conditions, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			cond := Condition{Field: key.Value}
			switch value.Kind {
			case yaml.ScalarNode:
				cond.Value = value.Value
			case yaml.SequenceNode:
				if len(value.Content) == 0 || len(value.Content) > 2 {
					return fmt.Errorf("model: decode visibility: condition %q expects [value, operator] (line %d)", key.Value, value.Line)
				}
				cond.Value = value.Content[0].Value
				if len(value.Content) == 2 {
					cond.Operator = Operator(value.Content[1].Value)
				}
			default:
				return fmt.Errorf("model: decode visibility: condition %q must be a scalar or pair (line %d)", key.Value, value.Line)
			}
			out = append(out, cond)
		}
		*c = out
		return validateConditions(*c)
	default:
		return fmt.Errorf("model: decode visibility: expected sequence or mapping (line %d)", node.Line)
	}
}

func validateConditions(conds Conditions) error {
	for _, cond := range conds {
		if cond.Field == "" {
			return fmt.Errorf("model: visibility condition is missing its field")
		}
		switch cond.Operator {
		case "", OperatorEqual, OperatorNotEqual:
		default:
			return fmt.Errorf("model: visibility condition on %q uses unsupported operator %q", cond.Field, cond.Operator)
		}
	}
	return nil
}

// UnmarshalJSON accepts a list of fields (each carrying its key) or an object
// keyed by field key, preserving declaration order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	switch firstToken(data) {
	case '[':
		var list []Field
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("model: decode fields: %w", err)
		}
		*f = list
		return nil
	case '{':
		var out Fields
		err := walkJSONObject(data, func(key string, raw json.RawMessage) error {
			var field Field
			if err := json.Unmarshal(raw, &field); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			field.Key = key
			out = append(out, field)
			return nil
		})
		if err != nil {
			return fmt.Errorf("model: decode fields: %w", err)
		}
		*f = out
		return nil
	case 'n':
		*f = nil
		return nil
	default:
		return fmt.Errorf("model: decode fields: expected array or object")
	}
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []Field
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("model: decode fields: %w", err)
		}
		*f = list
		return nil
	case yaml.MappingNode:
		out := make(Fields, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			var field Field
			if err := value.Decode(&field); err != nil {
				return fmt.Errorf("model: decode fields: field %q: %w", key.Value, err)
			}
			field.Key = key.Value
			out = append(out, field)
		}
		*f = out
		return nil
	default:
		return fmt.Errorf("model: decode fields: expected sequence or mapping (line %d)", node.Line)
	}
}

func firstToken(data []byte) byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func walkJSONObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func jsonScalar(raw json.RawMessage) (string, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("expected scalar, got %T", value)
	}
}

// Merge overlays attrs, keyed by configuration name, onto the field and
// returns the result. The key and callbacks are kept.
func (f Field) Merge(attrs map[string]any) (Field, error) {
	if len(attrs) == 0 {
		return f, nil
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return f, err
	}
	merged := map[string]any{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return f, err
	}
	for name, value := range attrs {
		merged[name] = value
	}
	raw, err = json.Marshal(merged)
	if err != nil {
		return f, err
	}
	var out Field
	if err := json.Unmarshal(raw, &out); err != nil {
		return f, fmt.Errorf("model: merge %q: %w", f.Key, err)
	}
	out.Key = f.Key
	out.CustomRender = f.CustomRender
	out.CustomSanitize = f.CustomSanitize
	return out, nil
}
