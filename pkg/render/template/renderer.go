package template

import (
	"io"
)

// TemplateRenderer is the seam the module renderer uses for its own chrome
// (placeholders and preview pages). Author templates never go through it.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}
