package module

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseSubFields reads the line-oriented repeater declaration format, one
// sub-field per line as `name|Label|type`. Blank lines are skipped, the label
// defaults to the capitalised name and the type defaults to text.
func ParseSubFields(text string) []FieldSpec {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []FieldSpec
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, "|")
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}
		field := FieldSpec{
			Name: name,
			Type: FieldTypeText,
		}
		if len(parts) > 1 {
			field.Label = strings.TrimSpace(parts[1])
		}
		if field.Label == "" {
			field.Label = capitalize(name)
		}
		if len(parts) > 2 {
			if kind := strings.TrimSpace(parts[2]); kind != "" {
				field.Type = FieldType(kind)
			}
		}
		out = append(out, field)
	}
	return out
}

// FormatSubFields is the inverse of ParseSubFields.
func FormatSubFields(fields []FieldSpec) string {
	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		kind := field.Type
		if kind == "" {
			kind = FieldTypeText
		}
		lines = append(lines, field.Name+"|"+field.DisplayLabel()+"|"+string(kind))
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
