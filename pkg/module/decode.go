package module

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// storedKeys maps the prefixed key names used by stored module records onto
// the canonical decoding keys.
var storedKeys = map[string]string{
	"module_label":        "label",
	"module_description":  "description",
	"module_category":     "category",
	"module_icon":         "icon",
	"module_fields":       "fields",
	"module_html":         "html",
	"module_css":          "css",
	"module_js":           "js",
	"module_compact_code": "compact",
	"module_status":       "active",
	"field_name":          "name",
	"field_label":         "label",
	"field_type":          "type",
	"field_default":       "default",
	"field_required":      "required",
	"field_sub_fields":    "sub_fields",
	"subFields":           "sub_fields",
}

// Decode converts a loosely typed map (as produced by YAML/JSON decoding or a
// key/value store) into a Definition. Input is weakly typed: booleans stored
// as "1"/"0" or 1/0 are accepted, and sub_fields may be either a list of
// field maps or the line-oriented `name|Label|type` text. Missing Active
// defaults to true.
func Decode(raw map[string]any) (Definition, error) {
	def := Definition{Active: true}
	if len(raw) == 0 {
		return def, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &def,
		TagName:          "mapstructure",
		DecodeHook:       subFieldsHook,
	})
	if err != nil {
		return Definition{}, fmt.Errorf("module: build decoder: %w", err)
	}

	if err := decoder.Decode(canonicalKeys(raw)); err != nil {
		return Definition{}, fmt.Errorf("module: decode definition: %w", err)
	}
	return def, nil
}

func canonicalKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		name := strings.TrimSpace(key)
		if mapped, ok := storedKeys[name]; ok {
			name = mapped
		}
		out[name] = canonicalValue(value)
	}
	return out
}

func canonicalValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return canonicalKeys(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, item := range v {
			converted[fmt.Sprint(key)] = item
		}
		return canonicalKeys(converted)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = canonicalValue(item)
		}
		return out
	default:
		return value
	}
}

var fieldSpecSliceType = reflect.TypeOf([]FieldSpec(nil))

func subFieldsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != fieldSpecSliceType || from.Kind() != reflect.String {
		return data, nil
	}
	parsed := ParseSubFields(reflect.ValueOf(data).String())
	out := make([]map[string]any, 0, len(parsed))
	for _, field := range parsed {
		out = append(out, map[string]any{
			"name":  field.Name,
			"label": field.Label,
			"type":  string(field.Type),
		})
	}
	return out, nil
}
