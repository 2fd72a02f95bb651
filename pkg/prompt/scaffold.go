package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-blockkit/pkg/module"
)

// Categories offered when scaffolding a module.
var Categories = []string{module.DefaultCategory, "layout", "content", "media", "navigation"}

// Scaffold walks the user through defining a new module and returns the
// definition together with any validation error it still has.
func Scaffold(ctx context.Context, driver Driver) (module.Definition, error) {
	if driver == nil {
		return module.Definition{}, errors.New("prompt: driver is required")
	}

	label, err := driver.Input(ctx, InputConfig{Message: "Module label", Validator: requiredValidator})
	if err != nil {
		return module.Definition{}, err
	}
	def := module.Definition{Label: strings.TrimSpace(label), Active: true}

	id, err := driver.Input(ctx, InputConfig{
		Message:   "Module id",
		Default:   module.Slugify(def.Label),
		Validator: requiredValidator,
	})
	if err != nil {
		return module.Definition{}, err
	}
	def.ID = strings.TrimSpace(id)

	if def.Description, err = driver.Input(ctx, InputConfig{Message: "Description"}); err != nil {
		return module.Definition{}, err
	}

	idx, err := driver.Select(ctx, SelectConfig{Message: "Category", Options: Categories})
	if err != nil {
		return module.Definition{}, err
	}
	if idx >= 0 && idx < len(Categories) {
		def.Category = Categories[idx]
	}

	if def.Fields, err = scaffoldFields(ctx, driver); err != nil {
		return module.Definition{}, err
	}

	html, err := driver.TextArea(ctx, TextAreaConfig{
		Message: "HTML template",
		Default: DefaultTemplate(def),
		Help:    "Use {{field}} for values and {{#repeater}}...{{/repeater}} for rows.",
	})
	if err != nil {
		return module.Definition{}, err
	}
	def.HTMLTemplate = html

	if def.Compact, err = driver.Confirm(ctx, ConfirmConfig{Message: "Minify CSS and JS?"}); err != nil {
		return module.Definition{}, err
	}

	def = def.WithDefaults()
	return def, module.Validate(def)
}

func scaffoldFields(ctx context.Context, driver Driver) ([]module.FieldSpec, error) {
	types := make([]string, len(module.FieldTypes))
	for i, t := range module.FieldTypes {
		types[i] = string(t)
	}

	var fields []module.FieldSpec
	for {
		more, err := driver.Confirm(ctx, ConfirmConfig{Message: "Add a field?", Default: len(fields) == 0})
		if err != nil {
			return nil, err
		}
		if !more {
			return fields, nil
		}

		name, err := driver.Input(ctx, InputConfig{Message: "Field name", Validator: nameValidator})
		if err != nil {
			return nil, err
		}
		field := module.FieldSpec{Name: strings.TrimSpace(name)}

		if field.Label, err = driver.Input(ctx, InputConfig{Message: "Field label", Default: field.DisplayLabel()}); err != nil {
			return nil, err
		}
		idx, err := driver.Select(ctx, SelectConfig{Message: "Field type", Options: types})
		if err != nil {
			return nil, err
		}
		if idx >= 0 && idx < len(types) {
			field.Type = module.FieldType(types[idx])
		} else {
			field.Type = module.FieldTypeText
		}
		if field.Required, err = driver.Confirm(ctx, ConfirmConfig{Message: "Required?"}); err != nil {
			return nil, err
		}

		if field.Type == module.FieldTypeRepeater {
			text, err := driver.TextArea(ctx, TextAreaConfig{
				Message: "Sub-fields",
				Help:    "One per line as name|Label|type.",
			})
			if err != nil {
				return nil, err
			}
			field.SubFields = module.ParseSubFields(text)
		}
		fields = append(fields, field)
	}
}

func nameValidator(s string) error {
	if !module.ValidName(strings.TrimSpace(s)) {
		return fmt.Errorf("%q is not a valid field name", s)
	}
	return nil
}

// DefaultTemplate builds a starter HTML template referencing every field.
func DefaultTemplate(def module.Definition) string {
	class := def.Slug
	if class == "" {
		class = module.Slugify(def.DisplayLabel())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<div class=%q>\n", class)
	for _, field := range def.Fields {
		if field.Type == module.FieldTypeRepeater {
			fmt.Fprintf(&b, "  <ul class=\"%s__%s\">\n  {{#%s}}\n    <li>", class, field.Name, field.Name)
			for i, sub := range field.SubFields {
				if i > 0 {
					b.WriteString(" ")
				}
				fmt.Fprintf(&b, "{{%s}}", sub.Name)
			}
			fmt.Fprintf(&b, "</li>\n  {{/%s}}\n  </ul>\n", field.Name)
			continue
		}
		fmt.Fprintf(&b, "  <div class=\"%s__%s\">{{%s}}</div>\n", class, field.Name, field.Name)
	}
	b.WriteString("</div>\n")
	return b.String()
}
