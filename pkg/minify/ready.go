package minify

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-blockkit/internal/jsscan"
)

var (
	// Only callbacks that ignore their argument can be unwrapped; jQuery
	// handlers may also name the jQuery object $ or jQuery.
	readyOpen = regexp.MustCompile(`^(?:` +
		`(?:document|window)\s*\.\s*addEventListener\s*\(\s*["'](?:DOMContentLoaded|load)["']\s*,\s*` +
		`(?:function\s*[\w$]*\s*\(\s*\)|\(\s*\)\s*=>)` +
		`|(?:\$|jQuery)\s*\(\s*(?:document\s*\)\s*\.\s*ready\s*\(\s*)?` +
		`(?:function\s*[\w$]*\s*\(\s*(?:\$|jQuery)?\s*\)|\(\s*(?:\$|jQuery)?\s*\)\s*=>|\$\s*=>)` +
		`)\s*\{`)
	readyClose = regexp.MustCompile(`\}\s*(?:,\s*(?:true|false|\{[^{}]*\})\s*)?\)\s*;?$`)
)

// UnwrapReady returns the body of a script consisting of exactly one
// document-ready wrapper (DOMContentLoaded or load listeners, jQuery ready
// and the $(function(){}) shorthand). Any other script is returned unchanged.
func UnwrapReady(js string) string {
	trimmed := strings.TrimSpace(js)
	open := readyOpen.FindStringIndex(trimmed)
	if open == nil {
		return js
	}
	rest := trimmed[open[1]:]
	closing := readyClose.FindStringIndex(rest)
	if closing == nil {
		return js
	}
	body := rest[:closing[0]]

	segments, err := jsscan.Split(body)
	if err != nil || jsscan.CheckBrackets(segments) != nil {
		return js
	}
	return strings.TrimSpace(body)
}

// WrapReady wraps a script in a single DOMContentLoaded listener. Blank input
// yields "".
func WrapReady(js string) string {
	body := strings.TrimSpace(js)
	if body == "" {
		return ""
	}
	return "document.addEventListener('DOMContentLoaded', function () {\n" + body + "\n});"
}
