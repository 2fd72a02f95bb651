package module

import "regexp"

// FieldType enumerates the field kinds a module author can expose to editors.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeTextarea  FieldType = "textarea"
	FieldTypeWYSIWYG   FieldType = "wysiwyg"
	FieldTypeImage     FieldType = "image"
	FieldTypeURL       FieldType = "url"
	FieldTypeSelect    FieldType = "select"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeTrueFalse FieldType = "true_false"
	FieldTypeRepeater  FieldType = "repeater"
)

// FieldTypes lists the known field types in editor display order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeWYSIWYG,
	FieldTypeImage,
	FieldTypeURL,
	FieldTypeSelect,
	FieldTypeCheckbox,
	FieldTypeTrueFalse,
	FieldTypeRepeater,
}

// Known reports whether the type is one of the built-in field types.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

const (
	DefaultCategory = "custom"
	DefaultIcon     = "admin-post"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name is usable as a field or placeholder
// identifier.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// FieldSpec describes a single editable input slot. SubFields is only
// meaningful for repeaters and is always flat.
type FieldSpec struct {
	Name      string      `json:"name" yaml:"name" mapstructure:"name"`
	Label     string      `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Type      FieldType   `json:"type" yaml:"type" mapstructure:"type"`
	Default   string      `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
	Required  bool        `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	SubFields []FieldSpec `json:"sub_fields,omitempty" yaml:"sub_fields,omitempty" mapstructure:"sub_fields"`
}

// DisplayLabel returns Label, falling back to the capitalised field name.
func (f FieldSpec) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return capitalize(f.Name)
}

// Definition is a reusable content module: the fields an editor fills in plus
// the raw HTML, CSS and JS sources authored for it. A Definition is treated as
// an immutable snapshot for the duration of a render.
type Definition struct {
	ID           string      `json:"id" yaml:"id" mapstructure:"id"`
	Slug         string      `json:"slug,omitempty" yaml:"slug,omitempty" mapstructure:"slug"`
	Label        string      `json:"label" yaml:"label" mapstructure:"label"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Category     string      `json:"category,omitempty" yaml:"category,omitempty" mapstructure:"category"`
	Icon         string      `json:"icon,omitempty" yaml:"icon,omitempty" mapstructure:"icon"`
	Fields       []FieldSpec `json:"fields,omitempty" yaml:"fields,omitempty" mapstructure:"fields"`
	HTMLTemplate string      `json:"html,omitempty" yaml:"html,omitempty" mapstructure:"html"`
	CSSSource    string      `json:"css,omitempty" yaml:"css,omitempty" mapstructure:"css"`
	JSSource     string      `json:"js,omitempty" yaml:"js,omitempty" mapstructure:"js"`
	Compact      bool        `json:"compact,omitempty" yaml:"compact,omitempty" mapstructure:"compact"`
	Active       bool        `json:"active" yaml:"active" mapstructure:"active"`
}

// DisplayLabel returns the label shown to editors, falling back to the id.
func (d Definition) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.ID
}

// Field looks up a top-level field spec by name.
func (d Definition) Field(name string) (FieldSpec, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// WithDefaults fills the descriptive attributes editors usually leave blank:
// category, icon and slug.
func (d Definition) WithDefaults() Definition {
	out := d
	if out.Category == "" {
		out.Category = DefaultCategory
	}
	if out.Icon == "" {
		out.Icon = DefaultIcon
	}
	if out.Slug == "" {
		out.Slug = Slugify(out.DisplayLabel())
	}
	return out
}
