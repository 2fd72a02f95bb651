package minify

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// CSS removes comments and redundant whitespace from a stylesheet. Input the
// tokenizer rejects is returned trimmed but otherwise unchanged.
func CSS(css string) string {
	var (
		out     strings.Builder
		s       = scanner.New(css)
		space   bool
		semi    bool
		parens  int
		lastOut byte
	)

	write := func(v string) {
		out.WriteString(v)
		lastOut = v[len(v)-1]
	}

	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			if semi {
				write(";")
			}
			return out.String()
		case scanner.TokenError:
			return strings.TrimSpace(css)
		case scanner.TokenS, scanner.TokenComment:
			space = true
			continue
		}

		v := tok.Value
		if v == "" {
			continue
		}
		if v == ";" {
			semi = true
			space = false
			continue
		}
		if semi {
			semi = false
			if v != "}" {
				write(";")
				space = false
			}
		}
		if space && out.Len() > 0 && !tight(lastOut, parens) && !tight(v[0], parens) {
			out.WriteByte(' ')
		}
		space = false

		switch {
		case tok.Type == scanner.TokenFunction || v == "(":
			parens++
		case v == ")" && parens > 0:
			parens--
		}
		write(v)
	}
}

// tight reports whether whitespace next to c can be dropped. Inside
// parentheses the spacing around + is significant for calc().
func tight(c byte, parens int) bool {
	switch c {
	case '{', '}', ':', ';', ',', '>', '~':
		return true
	case '+':
		return parens == 0
	}
	return false
}
