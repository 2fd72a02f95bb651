package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-blockkit/pkg/module"
)

// CollectValues asks for a value for every field and returns them keyed by
// field name in the raw shape the renderer accepts. Repeaters collect rows
// until the user declines another one.
func CollectValues(ctx context.Context, driver Driver, fields []module.FieldSpec) (map[string]any, error) {
	if driver == nil {
		return nil, errors.New("prompt: driver is required")
	}

	out := make(map[string]any, len(fields))
	for _, field := range fields {
		var (
			value any
			err   error
		)
		if field.Type == module.FieldTypeRepeater {
			value, err = collectRows(ctx, driver, field)
		} else {
			value, err = collectScalar(ctx, driver, field, "")
		}
		if err != nil {
			return nil, fmt.Errorf("prompt: field %q: %w", field.Name, err)
		}
		out[field.Name] = value
	}
	return out, nil
}

func collectRows(ctx context.Context, driver Driver, field module.FieldSpec) ([]any, error) {
	var rows []any
	for {
		more, err := driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add a row to %s?", field.DisplayLabel()),
			Default: len(rows) == 0,
		})
		if err != nil {
			return nil, err
		}
		if !more {
			return rows, nil
		}

		if err := driver.Info(ctx, fmt.Sprintf("%s row %d", field.DisplayLabel(), len(rows)+1)); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(field.SubFields))
		for _, sub := range field.SubFields {
			if sub.Type == module.FieldTypeRepeater {
				continue
			}
			value, err := collectScalar(ctx, driver, sub, field.DisplayLabel()+" / ")
			if err != nil {
				return nil, fmt.Errorf("sub-field %q: %w", sub.Name, err)
			}
			row[sub.Name] = value
		}
		rows = append(rows, row)
	}
}

func collectScalar(ctx context.Context, driver Driver, field module.FieldSpec, prefix string) (any, error) {
	message := prefix + field.DisplayLabel()

	switch field.Type {
	case module.FieldTypeTextarea, module.FieldTypeWYSIWYG:
		return driver.TextArea(ctx, TextAreaConfig{Message: message, Default: field.Default})

	case module.FieldTypeCheckbox, module.FieldTypeTrueFalse:
		def, _ := strconv.ParseBool(field.Default)
		return driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def})

	case module.FieldTypeImage:
		answer, err := driver.Input(ctx, InputConfig{
			Message:   message + " (attachment id)",
			Default:   field.Default,
			Validator: imageValidator(field.Required),
		})
		if err != nil || strings.TrimSpace(answer) == "" {
			return "", err
		}
		return strconv.Atoi(strings.TrimSpace(answer))

	default:
		var validate func(string) error
		if field.Required {
			validate = requiredValidator
		}
		return driver.Input(ctx, InputConfig{Message: message, Default: field.Default, Validator: validate})
	}
}

func requiredValidator(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func imageValidator(required bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if required {
				return errors.New("a value is required")
			}
			return nil
		}
		if id, err := strconv.Atoi(s); err != nil || id <= 0 {
			return errors.New("enter a positive attachment id")
		}
		return nil
	}
}
