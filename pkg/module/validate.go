package module

import (
	"errors"
	"fmt"
)

// ValidationError points at the field path that failed a structural check.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "module: " + e.Message
	}
	return fmt.Sprintf("module: %s: %s", e.Path, e.Message)
}

// Validate checks field names, duplicates, types and repeater nesting. All
// problems are reported together via errors.Join; nil means the definition is
// structurally sound. Rendering never requires a valid definition, this is
// an authoring aid.
func Validate(def Definition) error {
	var errs []error
	if def.ID == "" && def.Label == "" {
		errs = append(errs, &ValidationError{Message: "definition needs an id or a label"})
	}
	errs = append(errs, validateFields(def.Fields, "", false)...)
	return errors.Join(errs...)
}

func validateFields(fields []FieldSpec, prefix string, nested bool) []error {
	var errs []error
	seen := make(map[string]struct{}, len(fields))
	for idx, field := range fields {
		path := field.Name
		if path == "" {
			path = fmt.Sprintf("[%d]", idx)
		}
		if prefix != "" {
			path = prefix + "." + path
		}

		if !ValidName(field.Name) {
			errs = append(errs, &ValidationError{Path: path, Message: fmt.Sprintf("invalid name %q (want [A-Za-z_][A-Za-z0-9_]*)", field.Name)})
		}
		if _, dup := seen[field.Name]; dup {
			errs = append(errs, &ValidationError{Path: path, Message: "duplicate field name"})
		}
		seen[field.Name] = struct{}{}

		kind := field.Type
		if kind == "" {
			kind = FieldTypeText
		}
		if !kind.Known() {
			errs = append(errs, &ValidationError{Path: path, Message: fmt.Sprintf("unknown field type %q", field.Type)})
		}

		switch {
		case kind == FieldTypeRepeater && nested:
			errs = append(errs, &ValidationError{Path: path, Message: "repeaters cannot be nested"})
		case kind == FieldTypeRepeater:
			errs = append(errs, validateFields(field.SubFields, path, true)...)
		case len(field.SubFields) > 0:
			errs = append(errs, &ValidationError{Path: path, Message: "sub-fields are only allowed on repeaters"})
		}
	}
	return errs
}
