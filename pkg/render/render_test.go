package render_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockkit/internal/logging"
	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/render"
	"github.com/goliatone/go-blockkit/pkg/sanitize"
	"github.com/goliatone/go-blockkit/pkg/testsupport"
)

var tokenPattern = regexp.MustCompile(`\{\{[^}]+\}\}`)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []render.Outcome
	rejected []error
}

func (o *recordingObserver) ModuleRendered(_ string, outcome render.Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) ScriptRejected(_ string, reason error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, reason)
}

func newRenderer(t *testing.T, options ...render.Option) *render.Renderer {
	t.Helper()

	r, err := render.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderer_Scenarios(t *testing.T) {
	r := newRenderer(t)

	tests := []struct {
		name string
		def  module.Definition
		raw  map[string]any
		want string
	}{
		{
			name: "scalar",
			def: module.Definition{
				ID:           "heading",
				HTMLTemplate: "<h2>{{title}}</h2>",
				Fields:       []module.FieldSpec{{Name: "title", Type: module.FieldTypeText}},
			},
			raw:  map[string]any{"title": "Hi"},
			want: "<h2>Hi</h2>",
		},
		{
			name: "repeater",
			def: module.Definition{
				ID:           "list",
				HTMLTemplate: "{{#items}}<li>{{name}}</li>{{/items}}",
				Fields: []module.FieldSpec{{
					Name:      "items",
					Type:      module.FieldTypeRepeater,
					SubFields: []module.FieldSpec{{Name: "name", Type: module.FieldTypeText}},
				}},
			},
			raw:  map[string]any{"items": []any{map[string]any{"name": "A"}, map[string]any{"name": "B"}}},
			want: "<li>A</li><li>B</li>",
		},
		{
			name: "missing value",
			def:  module.Definition{ID: "para", HTMLTemplate: "<p>{{missing}}</p>"},
			raw:  map[string]any{},
			want: "<p></p>",
		},
		{
			name: "escaped text",
			def: module.Definition{
				ID:           "escape",
				HTMLTemplate: "<p>{{title}}</p>",
				Fields:       []module.FieldSpec{{Name: "title", Type: module.FieldTypeText}},
			},
			raw:  map[string]any{"title": "<script>alert(1)</script>"},
			want: "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Render(tt.def, tt.raw, render.RenderOptions{})
			if diff := cmp.Diff(render.Result{HTML: tt.want}, got); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderer_Placeholder(t *testing.T) {
	observer := &recordingObserver{}
	r := newRenderer(t, render.WithObserver(observer))

	got := r.Render(module.Definition{
		ID:        "hero",
		Label:     "Hero <b>",
		CSSSource: ".hero{color:red}",
		JSSource:  "init();",
	}, nil, render.RenderOptions{Elevated: true, Preview: true})

	if !strings.Contains(got.HTML, "<strong>Hero &lt;b&gt;</strong>") {
		t.Fatalf("placeholder missing escaped label: %q", got.HTML)
	}
	if !strings.Contains(got.HTML, render.PlaceholderMessage) {
		t.Fatalf("placeholder missing message: %q", got.HTML)
	}
	if strings.Contains(got.HTML, render.DefaultPreviewClass) {
		t.Fatalf("placeholder should not be wrapped for preview: %q", got.HTML)
	}
	if got.CSS != "" || got.JS != "" {
		t.Fatalf("placeholder carried assets: %+v", got)
	}
	if diff := cmp.Diff([]render.Outcome{render.OutcomePlaceholder}, observer.outcomes); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_ScriptRejectionKeepsOtherOutputs(t *testing.T) {
	var logs bytes.Buffer
	observer := &recordingObserver{}
	r := newRenderer(t,
		render.WithLogger(logging.New("text", "info", &logs)),
		render.WithObserver(observer),
	)

	def := module.Definition{
		ID:           "widget",
		HTMLTemplate: "<p>ok</p>",
		CSSSource:    "body{background:url(javascript:alert(1))}",
		JSSource:     `eval("x")`,
	}
	got := r.Render(def, nil, render.RenderOptions{Elevated: true})

	want := render.Result{HTML: "<p>ok</p>", CSS: "body{background:url(alert(1))}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if len(observer.rejected) != 1 || !errors.Is(observer.rejected[0], sanitize.ErrDeniedConstruct) {
		t.Fatalf("observer rejections = %v", observer.rejected)
	}
	for _, fragment := range []string{`msg="js rejected"`, "module=widget", `construct=eval()`} {
		if !strings.Contains(logs.String(), fragment) {
			t.Fatalf("log %q missing %q", logs.String(), fragment)
		}
	}
}

func TestRenderer_PrivilegeViolation(t *testing.T) {
	observer := &recordingObserver{}
	r := newRenderer(t, render.WithObserver(observer))

	got := r.Render(module.Definition{
		ID:           "widget",
		HTMLTemplate: "<p>ok</p>",
		JSSource:     "init();",
	}, nil, render.RenderOptions{})

	if got.JS != "" || got.HTML != "<p>ok</p>" {
		t.Fatalf("result = %+v", got)
	}
	if len(observer.rejected) != 1 || !errors.Is(observer.rejected[0], sanitize.ErrPrivilegeRequired) {
		t.Fatalf("observer rejections = %v", observer.rejected)
	}
}

func TestRenderer_Assets(t *testing.T) {
	r := newRenderer(t)
	js := "document.addEventListener('DOMContentLoaded', function () {\n  // go\n  init( 1 );\n});"

	def := module.Definition{
		ID:           "widget",
		HTMLTemplate: "<p>ok</p>",
		CSSSource:    ".a { color : red ; }",
		JSSource:     js,
	}

	loose := r.Render(def, nil, render.RenderOptions{Elevated: true})
	if loose.CSS != ".a { color : red ; }" {
		t.Fatalf("css = %q", loose.CSS)
	}
	if loose.JS != "// go\n  init( 1 );" {
		t.Fatalf("js = %q", loose.JS)
	}

	def.Compact = true
	compact := r.Render(def, nil, render.RenderOptions{Elevated: true})
	if compact.CSS != ".a{color:red}" {
		t.Fatalf("compact css = %q", compact.CSS)
	}
	if compact.JS != "init(1);" {
		t.Fatalf("compact js = %q", compact.JS)
	}
}

func TestRenderer_PreviewWrapper(t *testing.T) {
	def := module.Definition{ID: "a", HTMLTemplate: "<h2>Hi</h2>"}

	got := newRenderer(t).Render(def, nil, render.RenderOptions{Preview: true})
	if want := `<div class="blockkit-preview"><h2>Hi</h2></div>`; got.HTML != want {
		t.Fatalf("html = %q, want %q", got.HTML, want)
	}

	got = newRenderer(t, render.WithPreviewClass("editor")).Render(def, nil, render.RenderOptions{Preview: true})
	if want := `<div class="editor"><h2>Hi</h2></div>`; got.HTML != want {
		t.Fatalf("html = %q, want %q", got.HTML, want)
	}
}

func TestRenderer_OutputPolicy(t *testing.T) {
	def := module.Definition{
		ID:           "a",
		HTMLTemplate: `<p onclick="steal()">{{title}}</p><script>bad()</script>`,
		Fields:       []module.FieldSpec{{Name: "title", Type: module.FieldTypeText}},
	}
	raw := map[string]any{"title": "Hi"}

	got := newRenderer(t).Render(def, raw, render.RenderOptions{})
	if got.HTML != "<p>Hi</p>" {
		t.Fatalf("policy output = %q", got.HTML)
	}

	got = newRenderer(t, render.WithOutputPolicy(nil)).Render(def, raw, render.RenderOptions{})
	if want := `<p onclick="steal()">Hi</p><script>bad()</script>`; got.HTML != want {
		t.Fatalf("unfiltered output = %q, want %q", got.HTML, want)
	}
}

func TestRenderer_NoTokenSurvivesOutputPolicy(t *testing.T) {
	def := module.Definition{ID: "a", HTMLTemplate: "<p>{<blink></blink>{secret}}</p>"}

	got := newRenderer(t).Render(def, nil, render.RenderOptions{})
	if tokenPattern.MatchString(got.HTML) {
		t.Fatalf("placeholder token leaked: %q", got.HTML)
	}
}

func TestRenderer_RenderInPage(t *testing.T) {
	observer := &recordingObserver{}
	r := newRenderer(t, render.WithObserver(observer))
	session := render.NewPageSession()

	def := module.Definition{
		ID:           "card",
		HTMLTemplate: "<div>{{title}}</div>",
		CSSSource:    ".card{}",
		JSSource:     "init();",
		Fields:       []module.FieldSpec{{Name: "title", Type: module.FieldTypeText}},
	}
	opts := render.RenderOptions{Elevated: true}

	first := r.RenderInPage(session, def, map[string]any{"title": "one"}, opts)
	second := r.RenderInPage(session, def, map[string]any{"title": "two"}, opts)

	if diff := cmp.Diff(render.Result{HTML: "<div>one</div>", CSS: ".card{}", JS: "init();"}, first); diff != "" {
		t.Fatalf("first mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(render.Result{HTML: "<div>two</div>"}, second); diff != "" {
		t.Fatalf("second mismatch (-want +got):\n%s", diff)
	}
	if !session.Emitted("card") {
		t.Fatalf("session did not record module")
	}
	if diff := cmp.Diff([]render.Outcome{render.OutcomeRendered, render.OutcomeDeduped}, observer.outcomes); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestPageSession_Concurrent(t *testing.T) {
	session := render.NewPageSession()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if session.MarkEmitted("hero") {
				mu.Lock()
				first++
				mu.Unlock()
			}
			session.MarkEmitted("footer")
		}()
	}
	wg.Wait()

	if first != 1 {
		t.Fatalf("MarkEmitted returned true %d times, want 1", first)
	}
	if diff := cmp.Diff([]string{"footer", "hero"}, session.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if session.Emitted("other") {
		t.Fatalf("unexpected id reported as emitted")
	}
}

func TestRenderer_Page(t *testing.T) {
	r := newRenderer(t)
	card := module.Definition{
		ID:           "card",
		HTMLTemplate: "<div>{{title}}</div>",
		CSSSource:    ".card{color:red}",
		JSSource:     "var s = '</script>';",
		Fields:       []module.FieldSpec{{Name: "title", Type: module.FieldTypeText}},
	}
	empty := module.Definition{ID: "todo", Label: "Todo"}

	page, err := r.Page("Demo & Co", []render.Block{
		{Definition: card, Values: map[string]any{"title": "one"}},
		{Definition: card, Values: map[string]any{"title": "two"}},
		{Definition: empty},
	}, render.RenderOptions{Elevated: true})
	if err != nil {
		t.Fatalf("page: %v", err)
	}

	for _, fragment := range []string{
		"<title>Demo &amp; Co</title>",
		"<div>one</div>",
		"<div>two</div>",
		render.PlaceholderMessage,
		"DOMContentLoaded",
		`<\/script>`,
	} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("page missing %q:\n%s", fragment, page)
		}
	}
	if n := strings.Count(page, ".card{color:red}"); n != 1 {
		t.Fatalf("css emitted %d times", n)
	}
	if n := strings.Count(page, "</script>"); n != 1 {
		t.Fatalf("found %d closing script tags", n)
	}
}

func TestRenderer_PageModulesWithoutIDs(t *testing.T) {
	r := newRenderer(t)
	a := module.Definition{Label: "A", HTMLTemplate: "<p>a</p>", CSSSource: ".a{color:red}"}
	b := module.Definition{Label: "B", HTMLTemplate: "<p>b</p>", CSSSource: ".b{color:blue}"}

	page, err := r.Page("t", []render.Block{{Definition: a}, {Definition: b}, {Definition: a}}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	for _, css := range []string{".a{color:red}", ".b{color:blue}"} {
		if n := strings.Count(page, css); n != 1 {
			t.Fatalf("%s emitted %d times:\n%s", css, n, page)
		}
	}
}

func TestRenderer_WhitespaceTemplateIsRendered(t *testing.T) {
	observer := &recordingObserver{}
	r := newRenderer(t, render.WithObserver(observer))

	got := r.Render(module.Definition{ID: "spacer", HTMLTemplate: "  \n", CSSSource: ".spacer{height:1em}"}, nil, render.RenderOptions{})
	if got.HTML != "  \n" {
		t.Fatalf("html = %q, want template whitespace", got.HTML)
	}
	if got.CSS != ".spacer{height:1em}" {
		t.Fatalf("css = %q, want module css", got.CSS)
	}
	if diff := cmp.Diff([]render.Outcome{render.OutcomeRendered}, observer.outcomes); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_PlaceholderEscapesTokens(t *testing.T) {
	r := newRenderer(t)

	got := r.Render(module.Definition{ID: "leaky", Label: "{{secret}}"}, nil, render.RenderOptions{})
	if tokenPattern.MatchString(got.HTML) {
		t.Fatalf("placeholder leaked a token: %q", got.HTML)
	}
	if !strings.Contains(got.HTML, "&#123;&#123;secret}}") {
		t.Fatalf("placeholder label missing: %q", got.HTML)
	}
}

func TestRenderer_TemplatesDir(t *testing.T) {
	dir := t.TempDir()
	page := "<main>{{ title }}</main>\n"
	if err := os.WriteFile(filepath.Join(dir, "page.tpl"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	r := newRenderer(t, render.WithTemplatesDir(dir))

	got, err := r.Page("Custom", nil, render.RenderOptions{})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if got != "<main>Custom</main>\n" {
		t.Fatalf("page = %q, want directory template", got)
	}

	res := r.Render(module.Definition{ID: "todo", Label: "Todo"}, nil, render.RenderOptions{})
	if !strings.Contains(res.HTML, render.PlaceholderMessage) {
		t.Fatalf("bundled placeholder not used as fallback: %q", res.HTML)
	}
}

func TestRenderer_Fixture(t *testing.T) {
	r := newRenderer(t)
	def := testsupport.LoadDefinition(t, filepath.Join("testdata", "team.yaml"))
	raw := testsupport.MustLoadValues(t, filepath.Join("testdata", "team.values.json"))

	res := r.Render(def, raw, render.RenderOptions{Elevated: true})

	for _, fragment := range []string{
		"<h2>Meet &lt;the&gt; team</h2>",
		"<em>build</em>",
		`<li data-photo="12"><a href="https://example.com/ada" rel="nofollow">Ada</a></li>`,
		`<li data-photo="7">`,
		"Grace",
	} {
		if !strings.Contains(res.HTML, fragment) {
			t.Fatalf("html missing %q:\n%s", fragment, res.HTML)
		}
	}
	for _, banned := range []string{"onclick", "<script", "javascript:", "{{"} {
		if strings.Contains(res.HTML, banned) {
			t.Fatalf("html kept %q:\n%s", banned, res.HTML)
		}
	}
	if res.CSS != ".team ul { list-style : none ; }\n" {
		t.Fatalf("css should pass through unminified, got %q", res.CSS)
	}
	if strings.Contains(res.JS, "DOMContentLoaded") || !strings.Contains(res.JS, "console.log('team');") {
		t.Fatalf("ready wrapper not removed: %q", res.JS)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return r.Page(def.DisplayLabel(), []render.Block{{Definition: def, Values: raw}}, render.RenderOptions{Elevated: true}, w)
	})
	if result != written {
		t.Fatalf("page result and writer output differ")
	}
	if n := strings.Count(result, "DOMContentLoaded"); n != 1 {
		t.Fatalf("expected one ready handler, found %d", n)
	}
}
