package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/prompt"
	"github.com/goliatone/go-blockkit/pkg/repository/sqlrepo"
)

func newNewCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Scaffold a module definition interactively",
		Long: `Ask for the module label, fields and template, then write the definition
as YAML into the modules directory, or save it to the database when one is
configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := prompt.Scaffold(cmd.Context(), prompt.NewSurveyDriver(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			return a.storeDefinition(cmd.Context(), def, force, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing definition file")
	return cmd
}

func (a *app) storeDefinition(ctx context.Context, def module.Definition, force bool, out io.Writer) error {
	if a.cfg.Database != "" {
		db, err := sqlrepo.Open(a.cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		saved, err := db.Save(ctx, def)
		if err != nil {
			return err
		}
		a.logger.Info("module saved", slog.String("module", saved.ID), slog.String("database", a.cfg.Database))
		fmt.Fprintf(out, "saved %s to %s\n", saved.ID, a.cfg.Database)
		return nil
	}

	path, err := writeDefinitionFile(a.cfg.ModulesDir, def, force)
	if err != nil {
		return err
	}
	a.logger.Info("module written", slog.String("module", def.ID), slog.String("path", path))
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}

// writeDefinitionFile stores def as <dir>/<id>.yaml. The file is replaced
// atomically so a watching server never reads a partial definition.
func writeDefinitionFile(dir string, def module.Definition, force bool) (string, error) {
	if def.ID == "" {
		return "", errorf("definition has no id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, def.ID+".yaml")
	if !force && fileExists(path) {
		return "", errorf("%s already exists (use --force to overwrite)", path)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return "", errorf("encode %s: %w", def.ID, err)
	}
	if err := enc.Close(); err != nil {
		return "", errorf("encode %s: %w", def.ID, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", errorf("write %s: %w", path, err)
	}
	return path, nil
}
