package values

import "github.com/goliatone/go-blockkit/pkg/module"

// Sample returns raw preview values for fields, one stand-in per field type.
// Repeaters receive two rows built from their sub-fields. Fields of unknown
// type fall back to their display label.
func Sample(fields []module.FieldSpec) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		if field.Type == module.FieldTypeRepeater {
			rows := make([]any, 0, 2)
			for i := 0; i < 2; i++ {
				rows = append(rows, Sample(field.SubFields))
			}
			out[field.Name] = rows
			continue
		}
		out[field.Name] = sampleScalar(field)
	}
	return out
}

func sampleScalar(field module.FieldSpec) any {
	switch field.Type {
	case module.FieldTypeText:
		return "Sample Text"
	case module.FieldTypeTextarea:
		return "Sample paragraph text with multiple lines.\nThis is line two.\nThis is line three."
	case module.FieldTypeWYSIWYG:
		return "<p>Sample <strong>rich text</strong> content with <em>formatting</em>.</p>"
	case module.FieldTypeImage:
		return 1
	case module.FieldTypeURL:
		return "https://example.com"
	case module.FieldTypeSelect:
		return "Option 1"
	case module.FieldTypeCheckbox:
		return "checked"
	case module.FieldTypeTrueFalse:
		return true
	default:
		return field.DisplayLabel()
	}
}

// WithDefaults returns a copy of raw where fields that are absent or nil take
// their declared Default. Explicitly supplied values, including "", are kept.
func WithDefaults(fields []module.FieldSpec, raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw)+len(fields))
	for key, value := range raw {
		out[key] = value
	}
	for _, field := range fields {
		if field.Default == "" || field.Type == module.FieldTypeRepeater {
			continue
		}
		if current, ok := out[field.Name]; !ok || current == nil {
			out[field.Name] = field.Default
		}
	}
	return out
}
