package render

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-blockkit/internal/logging"
	"github.com/goliatone/go-blockkit/pkg/expand"
	"github.com/goliatone/go-blockkit/pkg/minify"
	"github.com/goliatone/go-blockkit/pkg/module"
	rendertemplate "github.com/goliatone/go-blockkit/pkg/render/template"
	"github.com/goliatone/go-blockkit/pkg/render/template/pongo"
	"github.com/goliatone/go-blockkit/pkg/sanitize"
	"github.com/goliatone/go-blockkit/pkg/values"
)

// DefaultPreviewClass is the class of the editor preview wrapper.
const DefaultPreviewClass = "blockkit-preview"

// Result holds the three independent outputs of a module render.
type Result struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// Renderer turns module definitions and raw field values into page output.
// It holds no per-render state and is safe for concurrent use.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	logger       *slog.Logger
	observer     Observer
	policy       *bluemonday.Policy
	previewClass string
}

// New constructs a Renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:   TemplatesFS(),
		logger:       logging.NewNop(),
		observer:     nopObserver{},
		previewClass: DefaultPreviewClass,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if !cfg.policySet {
		cfg.policy = values.PostContentPolicy()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engineOpts := []pongo.Option{pongo.WithFS(cfg.templateFS)}
		if cfg.templatesDir != "" {
			engineOpts = append(engineOpts, pongo.WithBaseDir(cfg.templatesDir))
		}
		engine, err := pongo.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("render: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:    templates,
		logger:       cfg.logger,
		observer:     cfg.observer,
		policy:       cfg.policy,
		previewClass: cfg.previewClass,
	}, nil
}

// Render produces the HTML, CSS and JS for one module. It never fails: a
// module without a template renders a visible placeholder, and a rejected
// script yields empty JS while HTML and CSS render normally.
func (r *Renderer) Render(def module.Definition, raw map[string]any, opts RenderOptions) Result {
	start := time.Now()
	if def.HTMLTemplate == "" {
		r.logger.Info("module template missing", slog.String("module", def.ID))
		res := Result{HTML: r.placeholder(def)}
		r.observer.ModuleRendered(def.ID, OutcomePlaceholder, time.Since(start))
		return res
	}

	res := Result{
		HTML: r.markup(def, raw, opts),
		CSS:  r.stylesheet(def),
		JS:   r.script(def, opts),
	}
	r.observer.ModuleRendered(def.ID, OutcomeRendered, time.Since(start))
	return res
}

// RenderInPage renders def within a page. Only the first occurrence of a
// module on the page carries its CSS and JS; later ones render HTML only.
func (r *Renderer) RenderInPage(session *PageSession, def module.Definition, raw map[string]any, opts RenderOptions) Result {
	if session == nil || session.MarkEmitted(emitKey(def)) {
		return r.Render(def, raw, opts)
	}

	start := time.Now()
	if def.HTMLTemplate == "" {
		res := Result{HTML: r.placeholder(def)}
		r.observer.ModuleRendered(def.ID, OutcomePlaceholder, time.Since(start))
		return res
	}
	res := Result{HTML: r.markup(def, raw, opts)}
	r.observer.ModuleRendered(def.ID, OutcomeDeduped, time.Since(start))
	return res
}

func (r *Renderer) markup(def module.Definition, raw map[string]any, opts RenderOptions) string {
	r.warnUnknownTypes(def)

	out := expand.Expand(def.HTMLTemplate, values.Normalize(def.Fields, raw))
	if r.policy != nil {
		out = expand.EscapeTokens(r.policy.Sanitize(out))
	}
	if opts.Preview {
		out = `<div class="` + html.EscapeString(r.previewClass) + `">` + out + `</div>`
	}
	return out
}

func (r *Renderer) stylesheet(def module.Definition) string {
	css := sanitize.CSS(def.CSSSource)
	if isBlank(css) {
		return ""
	}
	if def.Compact {
		return minify.CSS(css)
	}
	return css
}

func (r *Renderer) script(def module.Definition, opts RenderOptions) string {
	js, err := sanitize.JS(def.JSSource, opts.Elevated)
	if err != nil {
		r.scriptRejected(def, err)
		return ""
	}
	if js == "" {
		return ""
	}
	if def.Compact {
		js = minify.JS(js)
	}
	return minify.UnwrapReady(js)
}

func (r *Renderer) scriptRejected(def module.Definition, err error) {
	attrs := []any{
		slog.String("module", def.ID),
		slog.String("reason", err.Error()),
	}
	var rejection *sanitize.RejectionError
	if errors.As(err, &rejection) && rejection.Construct != "" {
		attrs = append(attrs, slog.String("construct", rejection.Construct))
	}
	r.logger.Warn("js rejected", attrs...)
	r.observer.ScriptRejected(def.ID, err)
}

func (r *Renderer) warnUnknownTypes(def module.Definition) {
	for _, field := range def.Fields {
		if !field.Type.Known() {
			r.logger.Debug("unknown field type rendered as text",
				slog.String("module", def.ID),
				slog.String("field", field.Name),
				slog.String("type", string(field.Type)),
			)
		}
	}
}

// placeholder renders the missing-template notice. Label text is author
// controlled, so placeholder-shaped tokens are escaped like module output.
func (r *Renderer) placeholder(def module.Definition) string {
	out, err := r.templates.RenderTemplate(placeholderTemplate, map[string]any{
		"label":   def.DisplayLabel(),
		"message": PlaceholderMessage,
	})
	if err != nil {
		r.logger.Error("placeholder template failed", slog.String("module", def.ID), slog.Any("error", err))
		out = `<div class="blockkit-placeholder"><p><strong>` + html.EscapeString(def.DisplayLabel()) +
			`</strong></p><p>` + PlaceholderMessage + `</p></div>`
	}
	return expand.EscapeTokens(out)
}

// emitKey identifies a module on a page. Definitions without an id or slug
// are keyed by their sources, so only identical modules share assets.
func emitKey(def module.Definition) string {
	if def.ID != "" {
		return def.ID
	}
	if def.Slug != "" {
		return def.Slug
	}
	sum := sha256.New()
	for _, part := range []string{def.Label, def.HTMLTemplate, def.CSSSource, def.JSSource} {
		sum.Write([]byte(part))
		sum.Write([]byte{0})
	}
	return "sha256:" + hex.EncodeToString(sum.Sum(nil))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
