package expand

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/values"
)

// residualToken matches any placeholder-shaped token left after substitution.
var residualToken = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Expand substitutes values into template. Entries are processed in map
// order:
//
//   - repeater rows expand the first {{#name}}...{{/name}} block once per
//     row, replacing {{sub}} placeholders inside the body with the row's
//     values; zero rows remove the block; no block leaves the template as is
//   - every other value replaces each literal {{name}}
//
// Entries whose name is not a valid identifier are never substituted. Finally
// every remaining {{...}} token is removed so a typo or a field missing from
// this render never leaks a raw placeholder. Values are inserted verbatim;
// they must already be escaped.
func Expand(template string, vals values.Map) string {
	out := template
	for _, entry := range vals.Entries() {
		if !module.ValidName(entry.Name) {
			continue
		}
		if entry.Value.IsRows() {
			if expanded, ok := expandLoop(out, entry.Name, entry.Value.RowList()); ok {
				out = expanded
				continue
			}
		}
		out = strings.ReplaceAll(out, "{{"+entry.Name+"}}", entry.Value.String())
	}
	return StripPlaceholders(out)
}

// StripPlaceholders removes every {{...}} token. Removal repeats until none
// remain because deleting one token can join the braces around it into a new
// one ("{{a}{{b}}}" becomes "{{a}}").
func StripPlaceholders(s string) string {
	for residualToken.MatchString(s) {
		s = residualToken.ReplaceAllLiteralString(s, "")
	}
	return s
}

// EscapeTokens rewrites the opening braces of any placeholder-shaped token
// as character references. Browsers display the same text but the output no
// longer contains a {{...}} token. Text without such tokens is returned as is.
func EscapeTokens(s string) string {
	if !residualToken.MatchString(s) {
		return s
	}
	return strings.ReplaceAll(s, "{{", "&#123;&#123;")
}

// expandLoop replaces the first loop block for name. It reports false when
// the template holds no complete block for that name.
func expandLoop(template, name string, rows []values.Row) (string, bool) {
	open := "{{#" + name + "}}"
	closing := "{{/" + name + "}}"

	start := strings.Index(template, open)
	if start < 0 {
		return template, false
	}
	bodyStart := start + len(open)
	end := strings.Index(template[bodyStart:], closing)
	if end < 0 {
		return template, false
	}
	body := template[bodyStart : bodyStart+end]
	blockEnd := bodyStart + end + len(closing)

	var b strings.Builder
	b.Grow(len(template) - (blockEnd - start) + len(body)*len(rows))
	b.WriteString(template[:start])
	for _, row := range rows {
		b.WriteString(expandRow(body, row))
	}
	b.WriteString(template[blockEnd:])
	return b.String(), true
}

func expandRow(body string, row values.Row) string {
	out := body
	for _, name := range row.Names() {
		value, _ := row.Get(name)
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}
