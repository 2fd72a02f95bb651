package values

import (
	"html"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-blockkit/pkg/module"
)

// Normalize builds the canonical value map for fields from the raw values a
// host supplies. Escaping happens here, once, according to each field type so
// the expander can substitute values verbatim:
//
//   - wysiwyg keeps a constrained rich-text subset (see CleanHTML)
//   - url is validated against an allow-list of schemes (see CleanURL)
//   - image collapses to a positive integer id or ""
//   - repeater rows are normalized per sub-field with the same policies
//   - every other type, including unknown ones, is entity-encoded text
//
// Missing, nil and false raw values become "" (or zero rows). Normalize never
// fails; a malformed value degrades to "".
func Normalize(fields []module.FieldSpec, raw map[string]any) Map {
	var out Map
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out.Set(field.Name, normalizeField(field, raw[field.Name]))
	}
	return out
}

func normalizeField(field module.FieldSpec, raw any) Value {
	if field.Type == module.FieldTypeRepeater {
		return Rows(normalizeRows(field.SubFields, raw))
	}
	return Scalar(normalizeScalar(field.Type, raw))
}

func normalizeScalar(kind module.FieldType, raw any) string {
	switch kind {
	case module.FieldTypeWYSIWYG:
		return CleanHTML(scalarOf(raw))
	case module.FieldTypeURL:
		return CleanURL(scalarOf(raw))
	case module.FieldTypeImage:
		return imageID(raw)
	default:
		return html.EscapeString(scalarOf(raw))
	}
}

func normalizeRows(subFields []module.FieldSpec, raw any) []Row {
	records := rowRecords(raw)
	if len(records) == 0 {
		return nil
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		var row Row
		if len(subFields) == 0 {
			names := make([]string, 0, len(record))
			for name := range record {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				row.Set(name, normalizeSubValue(module.FieldTypeText, record[name]))
			}
		} else {
			for _, sub := range subFields {
				if sub.Name == "" {
					continue
				}
				row.Set(sub.Name, normalizeSubValue(sub.Type, record[sub.Name]))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// normalizeSubValue applies the scalar policy to a repeater cell. Array-shaped
// cells are blanked; only image cells may carry an attachment map.
func normalizeSubValue(kind module.FieldType, raw any) string {
	if kind == module.FieldTypeRepeater {
		return ""
	}
	if isCollection(raw) && kind != module.FieldTypeImage {
		return ""
	}
	return normalizeScalar(kind, raw)
}

func rowRecords(raw any) []map[string]any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []map[string]any:
		return v
	case []map[string]string:
		out := make([]map[string]any, 0, len(v))
		for _, record := range v {
			converted := make(map[string]any, len(record))
			for key, value := range record {
				converted[key] = value
			}
			out = append(out, converted)
		}
		return out
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if record, ok := asStringMap(item); ok {
				out = append(out, record)
			}
		}
		return out
	default:
		return nil
	}
}

// scalarOf coerces a raw value to text. A map carrying a "value" key (the
// value/label pair shape select fields often return) unwraps to that key; any
// other collection becomes "".
func scalarOf(raw any) string {
	if record, ok := asStringMap(raw); ok {
		inner, has := record["value"]
		if !has || isCollection(inner) {
			return ""
		}
		return scalarOf(inner)
	}

	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case interface{ String() string }:
		return v.String()
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	case reflect.Bool:
		if rv.Bool() {
			return "1"
		}
	}
	return ""
}

func imageID(raw any) string {
	if record, ok := asStringMap(raw); ok {
		for _, key := range []string{"id", "ID"} {
			if inner, has := record[key]; has && !isCollection(inner) {
				return imageID(inner)
			}
		}
		return ""
	}

	switch v := raw.(type) {
	case float64:
		if v >= 1 && v == math.Trunc(v) && v < 1<<53 {
			return strconv.FormatInt(int64(v), 10)
		}
		return ""
	case bool:
		return ""
	}

	text := strings.TrimSpace(scalarOf(raw))
	end := 0
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	id, err := strconv.ParseInt(text[:end], 10, 64)
	if err != nil || id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func asStringMap(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = value
		}
		return out, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			name, ok := key.(string)
			if !ok {
				continue
			}
			out[name] = value
		}
		return out, true
	}
	return nil, false
}

func isCollection(raw any) bool {
	if raw == nil {
		return false
	}
	switch reflect.ValueOf(raw).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	return false
}
