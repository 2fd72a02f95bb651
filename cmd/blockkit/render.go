package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/prompt"
	"github.com/goliatone/go-blockkit/pkg/render"
	"github.com/goliatone/go-blockkit/pkg/repository/fsrepo"
	"github.com/goliatone/go-blockkit/pkg/values"
)

type renderFlags struct {
	valuesPath  string
	elevated    bool
	preview     bool
	sample      bool
	interactive bool
	page        bool
	output      string
}

func newRenderCmd(a *app) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <module-id|definition-file>",
		Short: "Render one module to HTML, CSS and JS",
		Long: `Render a module from the configured repository, or from a definition file
when the argument names an existing file. Output is a JSON object with html,
css and js keys, or a standalone HTML page with --page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), a, f, args[0], cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.valuesPath, "values", "", `JSON or YAML file of field values ("-" for stdin)`)
	flags.BoolVar(&f.elevated, "elevated", false, "render as an author allowed to ship JavaScript")
	flags.BoolVar(&f.preview, "preview", false, "wrap the HTML in the editor preview container")
	flags.BoolVar(&f.sample, "sample", false, "use generated sample values")
	flags.BoolVarP(&f.interactive, "interactive", "i", false, "prompt for each field value")
	flags.BoolVar(&f.page, "page", false, "print a standalone HTML page")
	flags.StringVarP(&f.output, "output", "o", "", "write to a file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("values", "sample", "interactive")
	return cmd
}

func runRender(ctx context.Context, a *app, f *renderFlags, target string, stdin io.Reader, stdout, stderr io.Writer) error {
	def, err := a.loadDefinition(ctx, target)
	if err != nil {
		return err
	}
	if a.cfg.CompactOverride != nil {
		def.Compact = *a.cfg.CompactOverride
	}

	var raw map[string]any
	switch {
	case f.sample:
		raw = values.Sample(def.Fields)
	case f.interactive:
		raw, err = prompt.CollectValues(ctx, prompt.NewSurveyDriver(stderr), def.Fields)
		if err != nil {
			return err
		}
	case f.valuesPath != "":
		raw, err = readValues(f.valuesPath, stdin)
		if err != nil {
			return err
		}
	}
	raw = values.WithDefaults(def.Fields, raw)

	renderer, err := render.New(a.renderOptions()...)
	if err != nil {
		return err
	}
	opts := render.RenderOptions{Elevated: f.elevated, Preview: f.preview}

	out := stdout
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return errorf("create %s: %w", f.output, err)
		}
		defer file.Close()
		out = file
	}

	if f.page {
		_, err := renderer.Page(def.DisplayLabel(), []render.Block{{Definition: def, Values: raw}}, opts, out)
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(renderer.Render(def, raw, opts))
}

// loadDefinition treats target as a definition file when one exists at
// that path and as a repository id otherwise.
func (a *app) loadDefinition(ctx context.Context, target string) (module.Definition, error) {
	if fileExists(target) {
		data, err := os.ReadFile(target)
		if err != nil {
			return module.Definition{}, errorf("read %s: %w", target, err)
		}
		return fsrepo.ParseDefinition(data, filepath.ToSlash(target))
	}

	repo, closeRepo, err := a.openRepository()
	if err != nil {
		return module.Definition{}, err
	}
	defer closeRepo()
	return repo.Get(ctx, target)
}

func readValues(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errorf("read values: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errorf("parse values %s: %w", path, err)
	}
	return raw, nil
}
