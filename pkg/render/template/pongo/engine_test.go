package pongo_test

import (
	"embed"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-blockkit/pkg/render/template/pongo"
	"github.com/goliatone/go-blockkit/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada & Co"}, w)
	})

	golden := filepath.Join("testdata", "hello.golden")
	if testsupport.WriteMaybeGolden(t, golden, []byte(result)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, golden)
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine, err := pongo.New(
		pongo.WithFS(templatesFS(t)),
		pongo.WithGlobalData(map[string]any{"site": "Docs"}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	type page struct {
		Title string `mapstructure:"title"`
	}
	got, err := engine.RenderTemplate("use-global.tpl", page{Title: "Intro"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "<p>Docs: Intro</p>\n"; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}

	if err := engine.GlobalContext(map[string]any{"site": "Guides"}); err != nil {
		t.Fatalf("global context: %v", err)
	}
	got, err = engine.RenderTemplate("use-global", map[string]any{"title": "Intro"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "<p>Guides: Intro</p>\n"; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

func TestEngine_RenderDispatchesInlineContent(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.Render("<b>{{ word|upper }}</b>", map[string]any{"word": "hi"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "<b>HI</b>" {
		t.Fatalf("render string = %q", got)
	}
}

func TestEngine_BaseDirAndExtension(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "card.html"), []byte("<h3>{{ title }}</h3>"), 0o644); err != nil {
		t.Fatal(err)
	}

	engine, err := pongo.New(pongo.WithBaseDir(dir), pongo.WithExtension("html"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	for _, name := range []string{"card", "card.html"} {
		got, err := engine.RenderTemplate(name, map[string]any{"title": "A & B"})
		if err != nil {
			t.Fatalf("render %s: %v", name, err)
		}
		if want := "<h3>A &amp; B</h3>"; got != want {
			t.Fatalf("render %s = %q, want %q", name, got, want)
		}
	}
}

func TestEngine_BaseDirOverridesFS(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.tpl"), []byte("override {{ name }}"), 0o644); err != nil {
		t.Fatal(err)
	}

	engine, err := pongo.New(pongo.WithFS(templatesFS(t)), pongo.WithBaseDir(dir))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "override Ada" {
		t.Fatalf("render = %q, want directory template", got)
	}

	got, err = engine.RenderTemplate("use-global", map[string]any{"title": "Intro"})
	if err != nil {
		t.Fatalf("render fallback: %v", err)
	}
	if !strings.Contains(got, "Intro") {
		t.Fatalf("fallback render = %q", got)
	}
}

func TestEngine_Errors(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without template source")
	}

	engine := newEngine(t)
	_, err := engine.RenderTemplate("missing", nil)
	if err == nil || !strings.Contains(err.Error(), "pongo: load template") {
		t.Fatalf("missing template error = %v", err)
	}
}

func templatesFS(t *testing.T) fs.FS {
	t.Helper()

	sub, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	return sub
}

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	engine, err := pongo.New(pongo.WithFS(templatesFS(t)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
