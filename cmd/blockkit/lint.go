package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blockkit/pkg/expand"
	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/repository/fsrepo"
	"github.com/goliatone/go-blockkit/pkg/sanitize"
)

type severity string

const (
	severityError   severity = "error"
	severityWarning severity = "warning"
)

type finding struct {
	Source   string
	Severity severity
	Message  string
}

func (f finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Source, f.Severity, f.Message)
}

func newLintCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "lint [file|dir]...",
		Short: "Check module definitions for mistakes",
		Long: `Validate field declarations, cross-check template placeholders against the
declared fields and report scripts or stylesheets the sanitizer would alter.
Without arguments the configured repository is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			findings, err := a.lintTargets(cmd.Context(), args)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), findings, strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func (a *app) lintTargets(ctx context.Context, args []string) ([]finding, error) {
	if len(args) == 0 {
		repo, closeRepo, err := a.openRepository()
		if err != nil {
			return nil, err
		}
		defer closeRepo()
		defs, err := repo.List(ctx)
		if err != nil {
			return nil, err
		}
		var out []finding
		for _, def := range defs {
			out = append(out, lintDefinition(def.ID, def)...)
		}
		return out, nil
	}

	var out []finding
	for _, target := range args {
		info, err := os.Stat(target)
		if err != nil {
			return nil, errorf("lint %s: %w", target, err)
		}
		if !info.IsDir() {
			out = append(out, lintFile(os.DirFS(filepath.Dir(target)), filepath.Base(target), target)...)
			continue
		}
		fsys := os.DirFS(target)
		err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != "." && strings.HasPrefix(d.Name(), ".") {
					return fs.SkipDir
				}
				return nil
			}
			if fsrepo.IsDefinitionFile(p) {
				out = append(out, lintFile(fsys, p, path.Join(filepath.ToSlash(target), p))...)
			}
			return nil
		})
		if err != nil {
			return nil, errorf("lint %s: %w", target, err)
		}
	}
	return out, nil
}

func lintFile(fsys fs.FS, name, source string) []finding {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return []finding{{Source: source, Severity: severityError, Message: err.Error()}}
	}
	def, err := fsrepo.ParseDefinition(data, name)
	if err != nil {
		return []finding{{Source: source, Severity: severityError, Message: err.Error()}}
	}
	return lintDefinition(source, def)
}

// lintDefinition reports structural problems, placeholder mismatches and
// sources the sanitizer would change.
func lintDefinition(source string, def module.Definition) []finding {
	var out []finding
	add := func(sev severity, format string, args ...any) {
		out = append(out, finding{Source: source, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if err := module.Validate(def); err != nil {
		for _, msg := range strings.Split(err.Error(), "\n") {
			add(severityError, "%s", msg)
		}
	}

	switch {
	case def.HTMLTemplate == "":
		add(severityWarning, "no HTML template; the module renders a placeholder")
	case strings.TrimSpace(def.HTMLTemplate) == "":
		add(severityWarning, "HTML template is blank; the module renders nothing visible")
	default:
		out = append(out, lintPlaceholders(source, def)...)
	}

	if def.JSSource != "" {
		if _, err := sanitize.JS(def.JSSource, true); err != nil {
			var rejection *sanitize.RejectionError
			if errors.As(err, &rejection) && rejection.Construct != "" {
				add(severityError, "script would be dropped: %s", rejection.Construct)
			} else {
				add(severityError, "script would be dropped: %v", err)
			}
		}
	}
	if def.CSSSource != "" && sanitize.CSS(def.CSSSource) != def.CSSSource {
		add(severityWarning, "stylesheet contains constructs the sanitizer removes")
	}
	return out
}

func lintPlaceholders(source string, def module.Definition) []finding {
	var out []finding
	add := func(sev severity, format string, args ...any) {
		out = append(out, finding{Source: source, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	declared := make(map[string]module.FieldSpec, len(def.Fields))
	subNames := make(map[string]struct{})
	for _, field := range def.Fields {
		declared[field.Name] = field
		for _, sub := range field.SubFields {
			subNames[sub.Name] = struct{}{}
		}
	}

	refs := expand.Placeholders(def.HTMLTemplate)
	used := make(map[string]struct{}, len(refs.Scalars)+len(refs.Loops))
	for _, name := range refs.Loops {
		used[name] = struct{}{}
		field, ok := declared[name]
		switch {
		case !ok:
			add(severityWarning, "loop {{#%s}} does not match a field", name)
		case field.Type != module.FieldTypeRepeater:
			add(severityWarning, "loop {{#%s}} uses a %s field; only repeaters expand rows", name, field.Type)
		}
	}
	for _, name := range refs.Scalars {
		used[name] = struct{}{}
		if _, ok := declared[name]; ok {
			continue
		}
		if _, ok := subNames[name]; ok {
			continue
		}
		add(severityWarning, "placeholder {{%s}} does not match a field and renders empty", name)
	}
	for _, field := range def.Fields {
		if _, ok := used[field.Name]; !ok {
			add(severityWarning, "field %q is never referenced by the template", field.Name)
		}
	}
	return out
}

func report(w io.Writer, findings []finding, strict bool) error {
	errorsFound := 0
	for _, f := range findings {
		fmt.Fprintln(w, f.String())
		if f.Severity == severityError || strict {
			errorsFound++
		}
	}
	if errorsFound > 0 {
		return errorf("lint: %d problem(s)", errorsFound)
	}
	if len(findings) == 0 {
		fmt.Fprintln(w, "no problems found")
	}
	return nil
}
