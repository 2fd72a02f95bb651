// Package fsrepo serves module definitions from JSON or YAML files, one
// module per file, and can reload them when the directory changes.
package fsrepo

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-blockkit/internal/logging"
	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/repository"
)

// DefaultDebounce is how long Watch waits after the last change before
// reloading.
const DefaultDebounce = 250 * time.Millisecond

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for reload events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.debounce = d
		}
	}
}

// Repository is a read-only repository over a set of definition files.
type Repository struct {
	fsys     fs.FS
	dir      string
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.RWMutex
	modules map[string]module.Definition
	order   []string
}

var _ repository.Repository = (*Repository)(nil)

// New loads every definition in fsys.
func New(fsys fs.FS, options ...Option) (*Repository, error) {
	r := &Repository{
		fsys:     fsys,
		logger:   logging.NewNop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Open loads the definitions under dir. Repositories created with Open can
// Watch the directory.
func Open(dir string, options ...Option) (*Repository, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fsrepo: open %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fsrepo: open %s: not a directory", dir)
	}
	r, err := New(os.DirFS(dir), options...)
	if err != nil {
		return nil, err
	}
	r.dir = dir
	return r, nil
}

// Reload re-reads the files. On error the previous definitions are kept.
func (r *Repository) Reload() error {
	defs, err := LoadFS(r.fsys)
	if err != nil {
		return err
	}

	modules := make(map[string]module.Definition, len(defs))
	order := make([]string, 0, len(defs))
	for _, def := range defs {
		modules[def.ID] = def
		order = append(order, def.ID)
	}

	r.mu.Lock()
	r.modules = modules
	r.order = order
	r.mu.Unlock()
	return nil
}

// List returns every definition sorted by id.
func (r *Repository) List(_ context.Context) ([]module.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]module.Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.modules[id])
	}
	return out, nil
}

// Get returns the definition for id.
func (r *Repository) Get(_ context.Context, id string) (module.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.modules[id]
	if !ok {
		return module.Definition{}, fmt.Errorf("fsrepo: get %q: %w", id, repository.ErrNotFound)
	}
	return def, nil
}

// Watch reloads the repository whenever a definition file in the directory
// changes, until ctx is done. onReload, when set, receives the outcome of
// each reload. Only repositories created with Open can be watched.
func (r *Repository) Watch(ctx context.Context, onReload func(error)) error {
	if r.dir == "" {
		return fmt.Errorf("fsrepo: watch: repository has no directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsrepo: watch: %w", err)
	}
	defer watcher.Close()

	if err := r.addDirs(watcher); err != nil {
		return err
	}
	r.logger.Info("watching modules", slog.String("dir", r.dir))

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if !IsDefinitionFile(event.Name) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(r.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			err := r.Reload()
			if err != nil {
				r.logger.Error("module reload failed", slog.String("dir", r.dir), slog.Any("error", err))
			} else {
				r.logger.Info("modules reloaded", slog.String("dir", r.dir))
			}
			if onReload != nil {
				onReload(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("module watcher error", slog.Any("error", err))
		}
	}
}

func (r *Repository) addDirs(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(r.dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("fsrepo: watch %s: %w", p, err)
		}
		return nil
	})
}
