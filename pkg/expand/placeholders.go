package expand

import (
	"regexp"
	"sort"
)

var (
	scalarToken = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)
	loopToken   = regexp.MustCompile(`\{\{#([A-Za-z_][A-Za-z0-9_]*)\}\}`)
)

// References lists the placeholder names a template mentions.
type References struct {
	Scalars []string
	Loops   []string
}

// Placeholders scans template for well-formed {{name}} and {{#name}} tokens.
// Names are de-duplicated and sorted. Scalar names include placeholders used
// inside loop bodies (repeater sub-fields).
func Placeholders(template string) References {
	return References{
		Scalars: uniqueSubmatches(scalarToken, template),
		Loops:   uniqueSubmatches(loopToken, template),
	}
}

func uniqueSubmatches(pattern *regexp.Regexp, s string) []string {
	matches := pattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		if _, ok := seen[match[1]]; ok {
			continue
		}
		seen[match[1]] = struct{}{}
		out = append(out, match[1])
	}
	sort.Strings(out)
	return out
}
