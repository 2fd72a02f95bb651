package values

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicyOnce sync.Once
	richTextPolicy     *bluemonday.Policy
)

// CleanHTML reduces rich text to the safe formatting subset: structural and
// inline formatting tags survive, script-capable elements, event handler
// attributes and unsafe URL schemes are removed.
func CleanHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return richTextSanitizer().Sanitize(raw)
}

func richTextSanitizer() *bluemonday.Policy {
	richTextPolicyOnce.Do(func() {
		richTextPolicy = PostContentPolicy()
	})
	return richTextPolicy
}

// PostContentPolicy returns a new policy permitting the markup usually
// allowed in post bodies: the UGC element set, class names, data attributes,
// a conservative set of inline styles and link targets.
func PostContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowStyling()
	policy.AllowDataAttributes()
	policy.AllowElements("figure", "figcaption", "mark", "small", "sub", "sup", "u", "section", "article", "header", "footer", "aside", "nav", "main")
	policy.AllowAttrs("target").Matching(regexp.MustCompile(`^_(blank|self)$`)).OnElements("a")
	policy.AllowStyles(
		"color", "background-color", "text-align", "font-size", "font-weight",
		"font-style", "text-decoration", "margin", "padding", "border",
		"width", "height", "max-width", "display",
	).Globally()
	return policy
}

// allowedSchemes mirrors the protocol allow-list commonly applied to user
// supplied links.
var allowedSchemes = map[string]struct{}{
	"http": {}, "https": {}, "ftp": {}, "ftps": {}, "mailto": {}, "news": {},
	"irc": {}, "gopher": {}, "nntp": {}, "feed": {}, "telnet": {}, "mms": {},
	"rtsp": {}, "sms": {}, "svn": {}, "tel": {}, "fax": {}, "xmpp": {},
	"webcal": {}, "urn": {},
}

var (
	schemePattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*$`)
	phpEntryPattern = regexp.MustCompile(`(?i)^[a-z0-9\-]+?\.php`)
)

// CleanURL validates raw as a link target and returns it escaped for use in
// an HTML attribute. Surrounding whitespace is trimmed, interior spaces are
// percent-encoded and control characters are removed, so split-up schemes
// ("java\tscript:") are caught. Links with a scheme outside the allow-list,
// including javascript:, data: and vbscript:, become "". Bare host names gain
// an http:// prefix; relative references pass through.
func CleanURL(raw string) string {
	cleaned := strings.TrimFunc(raw, isURLSpace)
	cleaned = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, cleaned)
	cleaned = strings.ReplaceAll(cleaned, " ", "%20")
	if cleaned == "" {
		return ""
	}

	if scheme, ok := urlScheme(cleaned); ok {
		if !schemePattern.MatchString(scheme) {
			return ""
		}
		if _, allowed := allowedSchemes[strings.ToLower(scheme)]; !allowed {
			return ""
		}
	} else if !strings.ContainsAny(cleaned[:1], "/#?") && !phpEntryPattern.MatchString(cleaned) {
		cleaned = "http://" + cleaned
	}

	return html.EscapeString(cleaned)
}

func isURLSpace(r rune) bool {
	return r <= 0x20 || r == 0x7f
}

// urlScheme returns the text before the first ':' when that colon precedes
// any path, query or fragment delimiter.
func urlScheme(u string) (string, bool) {
	colon := strings.IndexByte(u, ':')
	if colon < 0 {
		return "", false
	}
	if delim := strings.IndexAny(u, "/?#"); delim >= 0 && delim < colon {
		return "", false
	}
	return u[:colon], true
}
