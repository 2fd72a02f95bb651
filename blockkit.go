// Package blockkit renders reusable content modules: a set of typed fields,
// an HTML template using {{name}} and {{#rows}}...{{/rows}} placeholders, and
// optional CSS and JavaScript. The subpackages hold the individual stages;
// this package re-exports the types most callers need.
package blockkit

import (
	"sync"

	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/render"
)

// Definition aliases module.Definition.
type Definition = module.Definition

// FieldSpec aliases module.FieldSpec.
type FieldSpec = module.FieldSpec

// FieldType aliases module.FieldType.
type FieldType = module.FieldType

// Result holds the HTML, CSS and JS produced for one module.
type Result = render.Result

// RenderOptions carries the per-request privilege and preview flags.
type RenderOptions = render.RenderOptions

// Block pairs a definition with raw values for page composition.
type Block = render.Block

// PageSession tracks module assets already emitted on a page.
type PageSession = render.PageSession

// NewRenderer exposes the renderer constructor from the top-level module.
func NewRenderer(options ...render.Option) (*render.Renderer, error) {
	return render.New(options...)
}

// NewPageSession returns an empty page session.
func NewPageSession() *PageSession {
	return render.NewPageSession()
}

var (
	defaultOnce     sync.Once
	defaultRenderer *render.Renderer
	defaultErr      error
)

// Render renders def with a renderer built from default options. It is the
// simplest entry point for callers that just want output.
func Render(def Definition, raw map[string]any, opts RenderOptions) (Result, error) {
	defaultOnce.Do(func() {
		defaultRenderer, defaultErr = render.New()
	})
	if defaultErr != nil {
		return Result{}, defaultErr
	}
	return defaultRenderer.Render(def, raw, opts), nil
}
