package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blockkit/internal/config"
	"github.com/goliatone/go-blockkit/internal/logging"
	"github.com/goliatone/go-blockkit/pkg/render"
	"github.com/goliatone/go-blockkit/pkg/repository"
	"github.com/goliatone/go-blockkit/pkg/repository/fsrepo"
	"github.com/goliatone/go-blockkit/pkg/repository/sqlrepo"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	modulesDir string
	database   string
	logLevel   string
	templates  string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "blockkit",
		Short:         "Render reusable content modules",
		Long:          `blockkit renders content modules (typed fields, an HTML template and optional CSS/JS) into sanitized page output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.modulesDir, "dir", "", "directory of module definition files (overrides config)")
	flags.StringVar(&a.database, "db", "", "sqlite database of module definitions (overrides config)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.templates, "templates", "", "directory overriding the placeholder/page templates")

	root.AddCommand(
		newRenderCmd(a),
		newListCmd(a),
		newLintCmd(a),
		newNewCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.modulesDir != "" {
		cfg.ModulesDir = a.modulesDir
		cfg.Database = ""
	}
	if a.database != "" {
		cfg.Database = a.database
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.templates != "" {
		cfg.TemplatesDir = a.templates
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log.Format, cfg.Log.Level, stderr)
	return nil
}

// openRepository opens the configured sqlite database, or the modules
// directory when no database is set. The returned closer is never nil.
func (a *app) openRepository() (repository.Repository, func() error, error) {
	if strings.TrimSpace(a.cfg.Database) != "" {
		db, err := sqlrepo.Open(a.cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	repo, err := fsrepo.Open(a.cfg.ModulesDir, fsrepo.WithLogger(a.logger))
	if err != nil {
		return nil, nil, err
	}
	return repo, func() error { return nil }, nil
}

func (a *app) renderOptions() []render.Option {
	return []render.Option{
		render.WithLogger(a.logger),
		render.WithTemplatesDir(a.cfg.TemplatesDir),
	}
}

func withRepository(a *app, fn func(ctx context.Context, repo repository.Repository) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		repo, closeRepo, err := a.openRepository()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeRepo(); cerr != nil {
				a.logger.Warn("close repository", slog.Any("error", cerr))
			}
		}()
		return fn(cmd.Context(), repo)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func errorf(format string, args ...any) error {
	return fmt.Errorf("blockkit: "+format, args...)
}
