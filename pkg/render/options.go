package render

import (
	"io/fs"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	rendertemplate "github.com/goliatone/go-blockkit/pkg/render/template"
)

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	logger           *slog.Logger
	observer         Observer
	policy           *bluemonday.Policy
	policySet        bool
	templatesDir     string
	previewClass     string
}

// WithTemplatesFS supplies an alternate placeholder/page template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads placeholder/page templates from a directory on disk.
// Templates missing from the directory fall back to the bundled ones.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithLogger sets the logger used to report dropped scripts.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithObserver registers an Observer for render events.
func WithObserver(observer Observer) Option {
	return func(cfg *config) {
		if observer != nil {
			cfg.observer = observer
		}
	}
}

// WithOutputPolicy replaces the policy applied to expanded HTML. Passing nil
// disables the output pass entirely.
func WithOutputPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
		cfg.policySet = true
	}
}

// WithPreviewClass overrides the class of the editor preview wrapper.
func WithPreviewClass(class string) Option {
	return func(cfg *config) {
		if class != "" {
			cfg.previewClass = class
		}
	}
}

// RenderOptions carry per-call context.
type RenderOptions struct {
	// Elevated marks the module author as trusted to attach scripts.
	Elevated bool
	// Preview wraps the HTML in the editor preview container.
	Preview bool
}
