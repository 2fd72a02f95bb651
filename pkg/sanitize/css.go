package sanitize

import (
	"regexp"
	"strings"
)

var cssDenylist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)expression\s*\(`),
	regexp.MustCompile(`(?i)behavior\s*:`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)@import`),
	regexp.MustCompile(`(?i)-moz-binding`),
}

var cssMarkup = regexp.MustCompile(`(?i)</?[a-z!/?][^>]*>|<!--|-->`)

// CSS removes denied tokens and markup from stylesheet text. Passes repeat
// until the text stops changing, so removing one token can not leave another
// behind and CSS(CSS(x)) == CSS(x).
func CSS(css string) string {
	out := css
	for {
		next := cssPass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func cssPass(css string) string {
	out := strings.ReplaceAll(css, "\x00", "")
	out = cssMarkup.ReplaceAllString(out, "")
	for _, re := range cssDenylist {
		out = re.ReplaceAllString(out, "")
	}
	return out
}
