package sanitize

import (
	"errors"
	"regexp"
	"strings"

	"github.com/goliatone/go-blockkit/internal/jsscan"
)

var (
	// ErrPrivilegeRequired is returned when an author without script
	// privileges supplies JavaScript.
	ErrPrivilegeRequired = errors.New("sanitize: javascript requires elevated privileges")
	// ErrDeniedConstruct is returned when the script matches the denylist.
	ErrDeniedConstruct = errors.New("sanitize: javascript contains a denied construct")
	// ErrUnbalanced is returned when brackets do not balance or a literal
	// is left open.
	ErrUnbalanced = errors.New("sanitize: javascript is not balanced")
)

// RejectionError describes why a script was dropped.
type RejectionError struct {
	Reason    error
	Construct string
	Detail    string
}

func (e *RejectionError) Error() string {
	msg := e.Reason.Error()
	if e.Construct != "" {
		msg += ": " + e.Construct
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *RejectionError) Unwrap() error { return e.Reason }

type construct struct {
	name string
	re   *regexp.Regexp
}

// The Function constructor pattern stays case sensitive so the function
// keyword does not match.
var jsDenylist = []construct{
	{"eval()", regexp.MustCompile(`(?i)\beval\s*\(`)},
	{"Function constructor", regexp.MustCompile(`(?:^|[^\w$.])Function\s*\(`)},
	{"window.location assignment", regexp.MustCompile(`(?i)\bwindow\s*\.\s*location(?:\s*\.\s*href)?\s*=(?:[^=]|$)`)},
	{"document.location assignment", regexp.MustCompile(`(?i)\bdocument\s*\.\s*location(?:\s*\.\s*href)?\s*=(?:[^=]|$)`)},
	{"document.domain assignment", regexp.MustCompile(`(?i)\bdocument\s*\.\s*domain\s*=(?:[^=]|$)`)},
	{"document.write()", regexp.MustCompile(`(?i)\bdocument\s*\.\s*write(?:ln)?\s*\(`)},
	{"innerHTML assignment", regexp.MustCompile(`(?i)\.\s*(?:inner|outer)HTML\s*\+?=(?:[^=]|$)`)},
	{"exec()", regexp.MustCompile(`(?i)\bexec\s*\(`)},
	{"string timer", regexp.MustCompile(`(?i)\bset(?:Timeout|Interval)\s*\(\s*["'\x60]`)},
}

// JS validates author script. Empty input passes through. Otherwise the
// author must be elevated, the script must not match the denylist in either
// its raw form or with comments removed, and its brackets must balance once
// comments and literals are set aside. Accepted scripts are returned
// unchanged; rejected scripts yield "" and a *RejectionError.
func JS(js string, elevated bool) (string, error) {
	if strings.TrimSpace(js) == "" {
		return "", nil
	}
	if !elevated {
		return "", &RejectionError{Reason: ErrPrivilegeRequired}
	}

	segments, err := jsscan.Split(js)
	if err != nil {
		return "", &RejectionError{Reason: ErrUnbalanced, Detail: err.Error()}
	}

	uncommented := withoutComments(segments)
	for _, c := range jsDenylist {
		if c.re.MatchString(js) || c.re.MatchString(uncommented) {
			return "", &RejectionError{Reason: ErrDeniedConstruct, Construct: c.name}
		}
	}

	if err := jsscan.CheckBrackets(segments); err != nil {
		return "", &RejectionError{Reason: ErrUnbalanced, Detail: err.Error()}
	}
	return js, nil
}

// withoutComments returns the script with every comment replaced by a space.
func withoutComments(segments []jsscan.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind.Comment() {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}
