package jsscan

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a slice of script source.
type Kind int

const (
	Code Kind = iota
	LineComment
	BlockComment
	String
	Template
	Regex
)

func (k Kind) String() string {
	switch k {
	case Code:
		return "code"
	case LineComment:
		return "line-comment"
	case BlockComment:
		return "block-comment"
	case String:
		return "string"
	case Template:
		return "template"
	case Regex:
		return "regex"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Literal reports whether the segment is string, template or regex text.
func (k Kind) Literal() bool {
	return k == String || k == Template || k == Regex
}

// Comment reports whether the segment is a comment.
func (k Kind) Comment() bool {
	return k == LineComment || k == BlockComment
}

// Segment is a contiguous run of source of a single kind. Concatenating the
// Text of every segment reproduces the input exactly.
type Segment struct {
	Kind Kind
	Text string
}

// ErrUnterminated reports a string, template, regex or block comment that
// runs to the end of input (or, for quoted strings, to a raw line break).
var ErrUnterminated = errors.New("jsscan: unterminated literal")

// keywords after which a slash starts a regular expression literal.
var regexKeywords = map[string]struct{}{
	"return": {}, "typeof": {}, "instanceof": {}, "in": {}, "of": {}, "new": {},
	"delete": {}, "void": {}, "throw": {}, "case": {}, "do": {}, "else": {},
	"yield": {}, "await": {},
}

// Split segments src into code, comments and literals. It is a lexical
// approximation, not a parser: a slash is read as a regex literal when the
// previous significant token cannot end an expression. Template literal
// substitutions (${...}) are returned as Code segments between the Template
// pieces around them. On error the segments scanned so far are returned
// together with an error wrapping ErrUnterminated.
func Split(src string) ([]Segment, error) {
	s := &scanner{src: src}
	return s.run()
}

type scanner struct {
	src      string
	pos      int
	segments []Segment
	code     strings.Builder
	prevSig  byte
	prevWord string
	word     strings.Builder
	// braces holds, per open template substitution, the depth of plain
	// braces opened inside it.
	braces []int
}

func (s *scanner) run() ([]Segment, error) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		var next byte
		if s.pos+1 < len(s.src) {
			next = s.src[s.pos+1]
		}

		switch {
		case c == '/' && next == '/':
			end := strings.IndexByte(s.src[s.pos:], '\n')
			if end < 0 {
				end = len(s.src) - s.pos
			}
			s.emit(LineComment, s.pos+end)
		case c == '/' && next == '*':
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				s.emit(BlockComment, len(s.src))
				return s.finish(fmt.Errorf("%w: block comment", ErrUnterminated))
			}
			s.emit(BlockComment, s.pos+2+end+2)
		case c == '\'' || c == '"':
			end, ok := s.quoted(c)
			s.emit(String, end)
			if !ok {
				return s.finish(fmt.Errorf("%w: string", ErrUnterminated))
			}
			s.literalDone()
		case c == '`':
			if err := s.template(s.pos); err != nil {
				return s.finish(err)
			}
		case c == '}' && len(s.braces) > 0 && s.braces[len(s.braces)-1] == 0:
			s.braces = s.braces[:len(s.braces)-1]
			if err := s.template(s.pos); err != nil {
				return s.finish(err)
			}
		case c == '/' && s.regexAllowed():
			end, ok := s.regex()
			if !ok {
				s.consumeCode(c)
				continue
			}
			s.emit(Regex, end)
			s.literalDone()
		default:
			if len(s.braces) > 0 {
				switch c {
				case '{':
					s.braces[len(s.braces)-1]++
				case '}':
					s.braces[len(s.braces)-1]--
				}
			}
			s.consumeCode(c)
		}
	}

	if len(s.braces) > 0 {
		return s.finish(fmt.Errorf("%w: template substitution", ErrUnterminated))
	}
	return s.finish(nil)
}

func (s *scanner) finish(err error) ([]Segment, error) {
	s.flushCode()
	return s.segments, err
}

func (s *scanner) consumeCode(c byte) {
	s.code.WriteByte(c)
	s.pos++
	if isIdent(c) {
		s.word.WriteByte(c)
	} else if s.word.Len() > 0 {
		s.prevWord = s.word.String()
		s.word.Reset()
	}
	if !isSpace(c) {
		s.prevSig = c
	}
}

func (s *scanner) flushCode() {
	if s.word.Len() > 0 {
		s.prevWord = s.word.String()
		s.word.Reset()
	}
	if s.code.Len() == 0 {
		return
	}
	s.segments = append(s.segments, Segment{Kind: Code, Text: s.code.String()})
	s.code.Reset()
}

// emit records src[pos:end] as a segment of kind and advances.
func (s *scanner) emit(kind Kind, end int) {
	s.flushCode()
	s.segments = append(s.segments, Segment{Kind: kind, Text: s.src[s.pos:end]})
	s.pos = end
}

// literalDone marks that an operand just ended, so a following slash divides.
func (s *scanner) literalDone() {
	s.prevSig = '"'
	s.prevWord = ""
}

func (s *scanner) quoted(quote byte) (int, bool) {
	for i := s.pos + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '\n':
			return i, false
		case quote:
			return i + 1, true
		}
	}
	return len(s.src), false
}

// template scans a template piece starting at start (a backtick, or the
// closing brace of a substitution) up to the closing backtick or the next
// "${".
func (s *scanner) template(start int) error {
	for i := start + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '`':
			s.emit(Template, i+1)
			s.literalDone()
			return nil
		case '$':
			if i+1 < len(s.src) && s.src[i+1] == '{' {
				s.emit(Template, i+2)
				s.braces = append(s.braces, 0)
				s.prevSig = '{'
				s.prevWord = ""
				return nil
			}
		}
	}
	s.emit(Template, len(s.src))
	return fmt.Errorf("%w: template", ErrUnterminated)
}

func (s *scanner) regexAllowed() bool {
	if s.word.Len() > 0 {
		_, ok := regexKeywords[s.word.String()]
		return ok
	}
	switch {
	case s.prevSig == 0:
		return true
	case isIdent(s.prevSig):
		_, ok := regexKeywords[s.prevWord]
		return ok
	case s.prevSig == ')' || s.prevSig == ']' || s.prevSig == '"':
		return false
	default:
		return true
	}
}

// regex scans a regular expression literal including its flags. It reports
// false when no closing slash appears before the end of the line.
func (s *scanner) regex() (int, bool) {
	inClass := false
	for i := s.pos + 1; i < len(s.src); i++ {
		switch c := s.src[i]; {
		case c == '\\':
			i++
		case c == '\n':
			return 0, false
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			end := i + 1
			for end < len(s.src) && isIdent(s.src[end]) {
				end++
			}
			return end, true
		}
	}
	return 0, false
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

var openers = map[byte]byte{')': '(', ']': '[', '}': '{'}

// CheckBrackets verifies that parentheses, brackets and braces nest
// correctly across the Code segments. Literal and comment text is ignored.
func CheckBrackets(segments []Segment) error {
	var stack []byte
	offset := 0
	for _, seg := range segments {
		if seg.Kind != Code {
			offset += len(seg.Text)
			continue
		}
		for i := 0; i < len(seg.Text); i++ {
			switch c := seg.Text[i]; c {
			case '(', '[', '{':
				stack = append(stack, c)
			case ')', ']', '}':
				if len(stack) == 0 {
					return fmt.Errorf("jsscan: unexpected %q at offset %d", c, offset+i)
				}
				if top := stack[len(stack)-1]; top != openers[c] {
					return fmt.Errorf("jsscan: %q closed by %q at offset %d", top, c, offset+i)
				}
				stack = stack[:len(stack)-1]
			}
		}
		offset += len(seg.Text)
	}
	if len(stack) > 0 {
		return fmt.Errorf("jsscan: %d unclosed bracket(s)", len(stack))
	}
	return nil
}
