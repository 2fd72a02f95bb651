package render

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/goliatone/go-blockkit/pkg/minify"
	"github.com/goliatone/go-blockkit/pkg/module"
)

// Block is one module placed on a page together with its raw field values.
type Block struct {
	Definition module.Definition `json:"definition"`
	Values     map[string]any    `json:"values"`
}

const pageLang = "en"

var scriptClose = regexp.MustCompile(`(?i)</(script)`)

// Page renders blocks into a standalone HTML document. Each module's CSS and
// JS is included once no matter how often it appears; scripts share a single
// DOMContentLoaded handler.
func (r *Renderer) Page(title string, blocks []Block, opts RenderOptions, out ...io.Writer) (string, error) {
	session := NewPageSession()

	markup := make([]string, 0, len(blocks))
	var styles, scripts []string
	for _, block := range blocks {
		res := r.RenderInPage(session, block.Definition, block.Values, opts)
		markup = append(markup, res.HTML)
		if res.CSS != "" {
			styles = append(styles, res.CSS)
		}
		if res.JS != "" {
			scripts = append(scripts, res.JS)
		}
	}

	js := minify.WrapReady(strings.Join(scripts, "\n"))
	page, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"title":  title,
		"lang":   pageLang,
		"blocks": markup,
		"css":    strings.Join(styles, "\n"),
		"js":     scriptClose.ReplaceAllString(js, `<\/$1`),
	}, out...)
	if err != nil {
		return "", fmt.Errorf("render: page: %w", err)
	}
	return page, nil
}
