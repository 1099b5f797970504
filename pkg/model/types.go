package model

import "strings"

// FieldType tags the control a field renders and the sanitization it receives.
type FieldType string

const (
	FieldTypeText             FieldType = "text"
	FieldTypeURL              FieldType = "url"
	FieldTypeTextarea         FieldType = "textarea"
	FieldTypeUpload           FieldType = "upload"
	FieldTypeUploadTextarea   FieldType = "upload_textarea"
	FieldTypeCheckbox         FieldType = "checkbox"
	FieldTypeCheckboxMultiple FieldType = "checkbox_multiple"
	FieldTypeRadio            FieldType = "radio"
	FieldTypeSelect           FieldType = "select"
	FieldTypeNumber           FieldType = "number"
	FieldTypeRange            FieldType = "range"
	FieldTypeDate             FieldType = "date"
	FieldTypeTime             FieldType = "time"
)

// FieldTypes lists the built-in types in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeURL,
		FieldTypeTextarea,
		FieldTypeUpload,
		FieldTypeUploadTextarea,
		FieldTypeCheckbox,
		FieldTypeCheckboxMultiple,
		FieldTypeRadio,
		FieldTypeSelect,
		FieldTypeNumber,
		FieldTypeRange,
		FieldTypeDate,
		FieldTypeTime,
	}
}

// Known reports whether t is one of the built-in field types.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes() {
		if candidate == t {
			return true
		}
	}
	return false
}

// Choice reports whether the type restricts values to its option list.
func (t FieldType) Choice() bool {
	switch t {
	case FieldTypeRadio, FieldTypeSelect, FieldTypeCheckboxMultiple:
		return true
	default:
		return false
	}
}

// Operator compares a controlling field's value against a condition value.
type Operator string

const (
	OperatorEqual    Operator = "=="
	OperatorNotEqual Operator = "!="
)

// Option is a single value/label pair offered by a choice field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Options keeps choice entries in declaration order.
type Options []Option

// Has reports whether value is one of the declared option values.
func (o Options) Has(value string) bool {
	for _, option := range o {
		if option.Value == value {
			return true
		}
	}
	return false
}

// Values returns the option values in order.
func (o Options) Values() []string {
	if len(o) == 0 {
		return nil
	}
	out := make([]string, 0, len(o))
	for _, option := range o {
		out = append(out, option.Value)
	}
	return out
}

// Condition makes a field's display depend on another field's value.
type Condition struct {
	Field    string   `json:"field" yaml:"field"`
	Value    string   `json:"value" yaml:"value"`
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
}

// Op returns the condition operator, defaulting to equality.
func (c Condition) Op() Operator {
	if c.Operator == OperatorNotEqual {
		return OperatorNotEqual
	}
	return OperatorEqual
}

// Conditions are combined with logical AND.
type Conditions []Condition

// RenderData is handed to custom render callbacks. Value is the resolved value
// (saved or default) before escaping.
type RenderData struct {
	Key       string
	Field     Field
	Value     string
	ElementID string
	Name      string
	Classes   string
}

// RenderFunc replaces the built-in control markup for a field. The returned
// string is inserted verbatim, so implementations own their escaping.
type RenderFunc func(data RenderData) string

// SanitizeFunc post-processes a field value after type sanitization.
type SanitizeFunc func(value string) string

// BoxSanitizeFunc post-processes the full map of sanitized values before save.
type BoxSanitizeFunc func(values map[string]string) map[string]string

// Field is the declarative description of one form field.
type Field struct {
	Key        string    `json:"key" yaml:"key"`
	Type       FieldType `json:"type" yaml:"type"`
	Name       string    `json:"name,omitempty" yaml:"name,omitempty"`
	AfterName  string    `json:"after_name,omitempty" yaml:"after_name,omitempty"`
	AfterInput string    `json:"after_input,omitempty" yaml:"after_input,omitempty"`
	Desc       string    `json:"desc,omitempty" yaml:"desc,omitempty"`

	CheckboxLabel string `json:"checkbox_label,omitempty" yaml:"checkbox_label,omitempty"`

	Default   string  `json:"default,omitempty" yaml:"default,omitempty"`
	NoEmpty   bool    `json:"no_empty,omitempty" yaml:"no_empty,omitempty"`
	AllowHTML bool    `json:"allow_html,omitempty" yaml:"allow_html,omitempty"`
	Options   Options `json:"options,omitempty" yaml:"options,omitempty"`

	Class           string            `json:"class,omitempty" yaml:"class,omitempty"`
	FieldClass      string            `json:"field_class,omitempty" yaml:"field_class,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	FieldAttributes map[string]string `json:"field_attributes,omitempty" yaml:"field_attributes,omitempty"`

	UploadButton string `json:"upload_button,omitempty" yaml:"upload_button,omitempty"`
	UploadTitle  string `json:"upload_title,omitempty" yaml:"upload_title,omitempty"`
	UploadType   string `json:"upload_type,omitempty" yaml:"upload_type,omitempty"`

	DateButton   string `json:"date_button,omitempty" yaml:"date_button,omitempty"`
	DateMultiple bool   `json:"date_multiple,omitempty" yaml:"date_multiple,omitempty"`

	PageTemplates []string   `json:"page_templates,omitempty" yaml:"page_templates,omitempty"`
	Visibility    Conditions `json:"visibility,omitempty" yaml:"visibility,omitempty"`

	// Hidden fields are rendered but never shown; set when a field is left out
	// of the visible-field list during preparation.
	Hidden bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`

	CustomRender   RenderFunc   `json:"-" yaml:"-"`
	CustomSanitize SanitizeFunc `json:"-" yaml:"-"`
}

// AllowsTemplate reports whether the field applies to the given page template.
// Fields without a template list apply everywhere.
func (f Field) AllowsTemplate(template string) bool {
	if len(f.PageTemplates) == 0 {
		return true
	}
	for _, candidate := range f.PageTemplates {
		if candidate == template {
			return true
		}
	}
	return false
}

// Fields keeps field definitions in declaration order.
type Fields []Field

// Get returns the field registered under key.
func (f Fields) Get(key string) (Field, bool) {
	for _, field := range f {
		if field.Key == key {
			return field, true
		}
	}
	return Field{}, false
}

// Keys returns every field key in order.
func (f Fields) Keys() []string {
	out := make([]string, 0, len(f))
	for _, field := range f {
		out = append(out, field.Key)
	}
	return out
}

// MetaBox is the configuration for one admin panel and its fields.
type MetaBox struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	PostType string `json:"post_type,omitempty" yaml:"post_type,omitempty"`
	Context  string `json:"context,omitempty" yaml:"context,omitempty"`
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty"`
	Fields   Fields `json:"fields" yaml:"fields"`

	CustomSanitize BoxSanitizeFunc `json:"-" yaml:"-"`
}

// HasDateField reports whether any field renders the date-list widget.
func (m MetaBox) HasDateField() bool {
	for _, field := range m.Fields {
		if field.Type == FieldTypeDate {
			return true
		}
	}
	return false
}

// IsEmptyValue mirrors the emptiness rule used for default fallback: blank
// strings (after trimming) count as empty.
func IsEmptyValue(value string) bool {
	return strings.TrimSpace(value) == ""
}

// ResolveValue picks the value shown for a field: the saved value when
// present, otherwise the default when the field may not be empty or when the
// record is being created.
func ResolveValue(field Field, saved string, firstAdd bool) string {
	if !IsEmptyValue(saved) {
		return saved
	}
	if IsEmptyValue(field.Default) {
		return ""
	}
	if field.NoEmpty || firstAdd {
		return field.Default
	}
	return ""
}
