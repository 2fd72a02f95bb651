package values

// Kind distinguishes scalar values from repeater rows.
type Kind int

const (
	KindScalar Kind = iota
	KindRows
)

// Value is either an already-escaped scalar or a list of repeater rows.
type Value struct {
	kind   Kind
	scalar string
	rows   []Row
}

// Scalar wraps an escaped string value.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// Rows wraps repeater rows. A nil or empty slice is a repeater with no rows.
func Rows(rows []Row) Value {
	return Value{kind: KindRows, rows: rows}
}

// Kind reports the value shape.
func (v Value) Kind() Kind { return v.kind }

// IsRows reports whether the value holds repeater rows.
func (v Value) IsRows() bool { return v.kind == KindRows }

// String returns the scalar value. Repeater rows coerce to the empty string.
func (v Value) String() string {
	if v.kind == KindRows {
		return ""
	}
	return v.scalar
}

// RowList returns the repeater rows, or nil for scalars.
func (v Value) RowList() []Row {
	if v.kind != KindRows {
		return nil
	}
	return v.rows
}

// Row is one repeater record: sub-field names mapped to escaped scalars,
// kept in sub-field declaration order.
type Row struct {
	names  []string
	values map[string]string
}

// NewRow builds a row from alternating name/value pairs.
func NewRow(pairs ...string) Row {
	var row Row
	for i := 0; i+1 < len(pairs); i += 2 {
		row.Set(pairs[i], pairs[i+1])
	}
	return row
}

// Set assigns a sub-field value, keeping first-insertion order.
func (r *Row) Set(name, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, exists := r.values[name]; !exists {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns a sub-field value.
func (r Row) Get(name string) (string, bool) {
	value, ok := r.values[name]
	return value, ok
}

// Names returns the sub-field names in order.
func (r Row) Names() []string {
	return append([]string(nil), r.names...)
}

// Len reports the number of sub-fields in the row.
func (r Row) Len() int { return len(r.names) }

// Entry is a single name/value pair from a Map.
type Entry struct {
	Name  string
	Value Value
}

// Map is the canonical, ordered value map handed to the expander. It is
// built fresh for every render and never shared between renders.
type Map struct {
	names  []string
	values map[string]Value
}

// NewMap builds a map from entries in order.
func NewMap(entries ...Entry) Map {
	var m Map
	for _, entry := range entries {
		m.Set(entry.Name, entry.Value)
	}
	return m
}

// Set assigns a value, keeping first-insertion order.
func (m *Map) Set(name string, value Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, exists := m.values[name]; !exists {
		m.names = append(m.names, name)
	}
	m.values[name] = value
}

// Get looks up a value by field name.
func (m Map) Get(name string) (Value, bool) {
	value, ok := m.values[name]
	return value, ok
}

// Len reports the number of entries.
func (m Map) Len() int { return len(m.names) }

// Entries returns the entries in iteration order.
func (m Map) Entries() []Entry {
	out := make([]Entry, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, Entry{Name: name, Value: m.values[name]})
	}
	return out
}
