package jsscan

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Segment
	}{
		{
			name: "code and comments",
			src:  "a = 1; // note\n/* block */b",
			want: []Segment{
				{Code, "a = 1; "},
				{LineComment, "// note"},
				{Code, "\n"},
				{BlockComment, "/* block */"},
				{Code, "b"},
			},
		},
		{
			name: "strings keep escapes",
			src:  `x("a\"b", 'c')`,
			want: []Segment{
				{Code, "x("},
				{String, `"a\"b"`},
				{Code, ", "},
				{String, `'c'`},
				{Code, ")"},
			},
		},
		{
			name: "regex after assignment",
			src:  "var r = /a[/]b/gi;",
			want: []Segment{
				{Code, "var r = "},
				{Regex, "/a[/]b/gi"},
				{Code, ";"},
			},
		},
		{
			name: "division after identifier",
			src:  "a / b / c",
			want: []Segment{{Code, "a / b / c"}},
		},
		{
			name: "regex after return keyword",
			src:  "return /x/.test(s)",
			want: []Segment{
				{Code, "return "},
				{Regex, "/x/"},
				{Code, ".test(s)"},
			},
		},
		{
			name: "template substitution",
			src:  "`a${ {b:1}.b }c`",
			want: []Segment{
				{Template, "`a${"},
				{Code, " {b:1}.b "},
				{Template, "}c`"},
			},
		},
		{
			name: "nested template",
			src:  "`x${`y${z}`}`",
			want: []Segment{
				{Template, "`x${"},
				{Template, "`y${"},
				{Code, "z"},
				{Template, "}`"},
				{Template, "}`"},
			},
		},
		{
			name: "comment markers inside strings",
			src:  `s = "// not a comment"`,
			want: []Segment{
				{Code, "s = "},
				{String, `"// not a comment"`},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.src)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("segments mismatch (-want +got):\n%s", diff)
			}
			if joined := joinSegments(got); joined != tt.src {
				t.Fatalf("segments rejoin to %q, want %q", joined, tt.src)
			}
		})
	}
}

func TestSplitUnterminated(t *testing.T) {
	for _, src := range []string{
		`"open`,
		"'line\nbreak'",
		"/* never closed",
		"`tmpl",
		"`a${b",
	} {
		segments, err := Split(src)
		if !errors.Is(err, ErrUnterminated) {
			t.Fatalf("Split(%q) error = %v, want ErrUnterminated", src, err)
		}
		if len(segments) == 0 {
			t.Fatalf("Split(%q) returned no segments", src)
		}
	}
}

func TestCheckBrackets(t *testing.T) {
	tests := []struct {
		src string
		ok  bool
	}{
		{"f(a[1], {b: 2})", true},
		{"var s = ')';", true},
		{"`${a}` + /[(]/.source", true},
		{"// (\nx()", true},
		{"f(", false},
		{"f)", false},
		{"[}", false},
	}

	for _, tt := range tests {
		segments, err := Split(tt.src)
		if err != nil {
			t.Fatalf("Split(%q): %v", tt.src, err)
		}
		err = CheckBrackets(segments)
		if (err == nil) != tt.ok {
			t.Fatalf("CheckBrackets(%q) = %v, want ok=%v", tt.src, err, tt.ok)
		}
	}
}

func joinSegments(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}
