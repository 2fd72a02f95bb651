// Package memory keeps module definitions in a map. It backs tests and
// callers that assemble definitions in code.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/repository"
)

// Repository stores definitions by id.
type Repository struct {
	mu      sync.RWMutex
	modules map[string]module.Definition
}

var _ repository.Store = (*Repository)(nil)

// New creates a repository seeded with defs. Later duplicates replace
// earlier ones.
func New(defs ...module.Definition) *Repository {
	r := &Repository{modules: make(map[string]module.Definition, len(defs))}
	for _, def := range defs {
		r.Put(def)
	}
	return r
}

// Put stores def with defaults applied, replacing any definition with the
// same id.
func (r *Repository) Put(def module.Definition) {
	def = def.WithDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[def.ID] = def
}

// Save stores def. The id is required.
func (r *Repository) Save(_ context.Context, def module.Definition) (module.Definition, error) {
	if strings.TrimSpace(def.ID) == "" {
		return module.Definition{}, fmt.Errorf("memory: module id is required")
	}
	r.Put(def)
	return def.WithDefaults(), nil
}

// Get returns the definition for id.
func (r *Repository) Get(_ context.Context, id string) (module.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.modules[id]
	if !ok {
		return module.Definition{}, fmt.Errorf("memory: get %q: %w", id, repository.ErrNotFound)
	}
	return def, nil
}

// List returns every definition sorted by id.
func (r *Repository) List(_ context.Context) ([]module.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]module.Definition, 0, len(r.modules))
	for _, def := range r.modules {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes id. Deleting a missing id returns ErrNotFound.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.modules[id]; !ok {
		return fmt.Errorf("memory: delete %q: %w", id, repository.ErrNotFound)
	}
	delete(r.modules, id)
	return nil
}
