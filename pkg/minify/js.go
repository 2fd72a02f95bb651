package minify

import (
	"strings"

	"github.com/goliatone/go-blockkit/internal/jsscan"
)

// JS strips comments and collapses whitespace in a script. Literals are copied
// verbatim and line breaks are kept so automatic semicolon insertion sees the
// same statements. A script the scanner can not split is returned unchanged.
func JS(js string) string {
	segments, err := jsscan.Split(js)
	if err != nil {
		return js
	}

	m := &jsWriter{}
	for _, seg := range segments {
		switch {
		case seg.Kind == jsscan.LineComment:
		case seg.Kind == jsscan.BlockComment:
			if strings.ContainsAny(seg.Text, "\n\r") {
				m.newline = true
			} else {
				m.space = true
			}
		case seg.Kind.Literal():
			m.token(seg.Text)
		default:
			m.code(seg.Text)
		}
	}
	return m.out.String()
}

type jsWriter struct {
	out     strings.Builder
	last    byte
	space   bool
	newline bool
}

func (m *jsWriter) code(text string) {
	start := -1
	flush := func(end int) {
		if start >= 0 {
			m.token(text[start:end])
			start = -1
		}
	}
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\n', '\r':
			flush(i)
			m.newline = true
		case ' ', '\t', '\f', '\v':
			flush(i)
			m.space = true
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(text))
}

// token writes a run of non-space text, resolving any pending whitespace.
func (m *jsWriter) token(t string) {
	if m.out.Len() > 0 {
		switch {
		case m.newline:
			m.out.WriteByte('\n')
		case m.space && !trimAfter(m.last) && !trimBefore(t[0]):
			m.out.WriteByte(' ')
		}
	}
	m.space, m.newline = false, false
	m.out.WriteString(t)
	m.last = t[len(t)-1]
}

func trimBefore(c byte) bool {
	switch c {
	case ';', ',', '}', ']', ')', ':':
		return true
	}
	return false
}

func trimAfter(c byte) bool {
	switch c {
	case ';', ',', '}', ']', ')', ':', '{', '[', '(':
		return true
	}
	return false
}
