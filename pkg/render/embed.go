package render

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const (
	placeholderTemplate = "placeholder"
	pageTemplate        = "page"
)

// PlaceholderMessage is shown in place of a module that has no HTML template.
const PlaceholderMessage = "No HTML template defined for this module."

// TemplatesFS exposes the built-in placeholder and page templates so callers
// can copy or override them.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
