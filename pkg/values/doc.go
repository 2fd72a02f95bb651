// Package values turns the raw field values a host supplies into the
// canonical, already-escaped value map the template expander consumes.
//
// Escaping is applied per field type at normalization time, never at
// substitution time, so the expander stays escaping-agnostic. A bad value
// never fails a render: it degrades to the empty string.
package values
