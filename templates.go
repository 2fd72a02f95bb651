package blockkit

import (
	"io/fs"

	"github.com/goliatone/go-blockkit/pkg/render"
)

// EmbeddedTemplates exposes the built-in placeholder and page templates so
// callers can reuse or extend them without importing the render package.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}
