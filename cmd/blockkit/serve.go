package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blockkit/internal/metrics"
	"github.com/goliatone/go-blockkit/internal/server"
	"github.com/goliatone/go-blockkit/pkg/render"
	"github.com/goliatone/go-blockkit/pkg/repository/fsrepo"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the preview server",
		Long: `Serve module listings, renders and preview pages over HTTP. Requests that
carry the configured author token in the X-Author-Token header render with
JavaScript enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, watch)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on (overrides config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "reload definition files when they change")
	return cmd
}

func (a *app) serve(ctx context.Context, watch bool) error {
	repo, closeRepo, err := a.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	if files, ok := repo.(*fsrepo.Repository); ok && watch {
		go func() {
			if err := files.Watch(ctx, nil); err != nil && ctx.Err() == nil {
				a.logger.Error("module watcher stopped", slog.Any("error", err))
			}
		}()
	}

	renderOpts := a.renderOptions()
	serverOpts := []server.Option{
		server.WithLogger(a.logger),
		server.WithAuthorToken(a.cfg.AuthorToken),
		server.WithCompactOverride(a.cfg.CompactOverride),
	}
	if a.cfg.MetricsEnabled() {
		observer := metrics.New()
		renderOpts = append(renderOpts, render.WithObserver(observer))
		serverOpts = append(serverOpts, server.WithMetricsHandler(observer.Handler()))
	}
	if a.cfg.AuthorToken == "" {
		a.logger.Warn("no author token configured; scripts are never rendered")
	}

	renderer, err := render.New(renderOpts...)
	if err != nil {
		return err
	}
	srv, err := server.New(repo, renderer, serverOpts...)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, a.cfg.Listen)
}
