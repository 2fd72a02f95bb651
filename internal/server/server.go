// Package server exposes module rendering over HTTP for previews and for
// hosts that render remotely.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-blockkit/internal/logging"
	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/render"
	"github.com/goliatone/go-blockkit/pkg/repository"
	"github.com/goliatone/go-blockkit/pkg/values"
)

// AuthorTokenHeader carries the token that grants elevated privilege.
const AuthorTokenHeader = "X-Author-Token"

const maxBodyBytes = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuthorToken sets the token that marks a request as elevated. An empty
// token means no request is ever elevated.
func WithAuthorToken(token string) Option {
	return func(s *Server) {
		s.authorToken = token
	}
}

// WithCompactOverride forces minification on or off for every module.
func WithCompactOverride(compact *bool) Option {
	return func(s *Server) {
		s.compactOverride = compact
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// Server renders modules from a repository.
type Server struct {
	repo            repository.Repository
	renderer        *render.Renderer
	logger          *slog.Logger
	authorToken     string
	compactOverride *bool
	metrics         http.Handler
}

// New builds a Server. Both the repository and the renderer are required.
func New(repo repository.Repository, renderer *render.Renderer, options ...Option) (*Server, error) {
	if repo == nil {
		return nil, errors.New("server: missing repository")
	}
	if renderer == nil {
		return nil, errors.New("server: missing renderer")
	}
	s := &Server{
		repo:     repo,
		renderer: renderer,
		logger:   logging.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/modules", s.handle(s.listModules))
	r.Get("/modules/{id}", s.handle(s.getModule))
	r.Post("/modules/{id}/render", s.handle(s.renderModule))
	r.Get("/modules/{id}/preview", s.handle(s.previewModule))
	r.Post("/pages", s.handle(s.renderPage))
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		code := statusOf(err)
		if code >= http.StatusInternalServerError {
			s.logger.Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
		msg := http.StatusText(code)
		if code < http.StatusInternalServerError {
			msg = err.Error()
		}
		_ = writeJSON(w, code, errorResponse{Error: msg})
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// elevated reports whether the request presented the author token.
func (s *Server) elevated(r *http.Request) bool {
	if s.authorToken == "" {
		return false
	}
	got := r.Header.Get(AuthorTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.authorToken)) == 1
}

// activeModule loads id and hides inactive modules.
func (s *Server) activeModule(ctx context.Context, id string) (module.Definition, error) {
	def, err := s.repo.Get(ctx, id)
	if err != nil {
		return module.Definition{}, err
	}
	if !def.Active {
		return module.Definition{}, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("module %q is inactive: %w", id, repository.ErrNotFound)}
	}
	if s.compactOverride != nil {
		def.Compact = *s.compactOverride
	}
	return def, nil
}

type moduleSummary struct {
	ID          string             `json:"id"`
	Slug        string             `json:"slug"`
	Label       string             `json:"label"`
	Description string             `json:"description,omitempty"`
	Category    string             `json:"category"`
	Icon        string             `json:"icon"`
	Active      bool               `json:"active"`
	Fields      []module.FieldSpec `json:"fields"`
}

func summarize(def module.Definition) moduleSummary {
	def = def.WithDefaults()
	fields := def.Fields
	if fields == nil {
		fields = []module.FieldSpec{}
	}
	return moduleSummary{
		ID:          def.ID,
		Slug:        def.Slug,
		Label:       def.DisplayLabel(),
		Description: def.Description,
		Category:    def.Category,
		Icon:        def.Icon,
		Active:      def.Active,
		Fields:      fields,
	}
}

func (s *Server) listModules(w http.ResponseWriter, r *http.Request) error {
	defs, err := s.repo.List(r.Context())
	if err != nil {
		return err
	}
	onlyActive := r.URL.Query().Get("all") == ""
	out := make([]moduleSummary, 0, len(defs))
	for _, def := range defs {
		if onlyActive && !def.Active {
			continue
		}
		out = append(out, summarize(def))
	}
	return writeJSON(w, http.StatusOK, dataResponse{Data: out})
}

func (s *Server) getModule(w http.ResponseWriter, r *http.Request) error {
	def, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, dataResponse{Data: def})
}

type renderRequest struct {
	Values  map[string]any `json:"values"`
	Preview bool           `json:"preview"`
}

func (s *Server) renderModule(w http.ResponseWriter, r *http.Request) error {
	def, err := s.activeModule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	var req renderRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	res := s.renderer.Render(def, values.WithDefaults(def.Fields, req.Values), render.RenderOptions{
		Elevated: s.elevated(r),
		Preview:  req.Preview,
	})
	return writeJSON(w, http.StatusOK, dataResponse{Data: res})
}

func (s *Server) previewModule(w http.ResponseWriter, r *http.Request) error {
	def, err := s.activeModule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	block := render.Block{Definition: def, Values: values.Sample(def.Fields)}
	page, err := s.renderer.Page(def.DisplayLabel(), []render.Block{block}, render.RenderOptions{
		Elevated: s.elevated(r),
		Preview:  true,
	})
	if err != nil {
		return err
	}
	return writeHTML(w, page)
}

type pageRequest struct {
	Title  string `json:"title"`
	Blocks []struct {
		Module string         `json:"module"`
		Values map[string]any `json:"values"`
	} `json:"blocks"`
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request) error {
	var req pageRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if len(req.Blocks) == 0 {
		return StatusError{Code: http.StatusBadRequest, Err: errors.New("page has no blocks")}
	}

	blocks := make([]render.Block, 0, len(req.Blocks))
	for idx, item := range req.Blocks {
		def, err := s.activeModule(r.Context(), item.Module)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return StatusError{Code: http.StatusUnprocessableEntity, Err: fmt.Errorf("block %d: unknown module %q", idx, item.Module)}
			}
			return err
		}
		blocks = append(blocks, render.Block{Definition: def, Values: values.WithDefaults(def.Fields, item.Values)})
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Preview"
	}
	page, err := s.renderer.Page(title, blocks, render.RenderOptions{Elevated: s.elevated(r)})
	if err != nil {
		return err
	}
	return writeHTML(w, page)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}

func writeHTML(w http.ResponseWriter, page string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := io.WriteString(w, page)
	return err
}
