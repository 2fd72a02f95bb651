// Package repository defines how module definitions are looked up. The
// renderer only needs List and Get; storage backends live in subpackages.
package repository

import (
	"context"
	"errors"

	"github.com/goliatone/go-blockkit/pkg/module"
)

// ErrNotFound is returned by Get when no module has the requested id.
var ErrNotFound = errors.New("repository: module not found")

// Repository provides read access to module definitions.
type Repository interface {
	List(ctx context.Context) ([]module.Definition, error)
	Get(ctx context.Context, id string) (module.Definition, error)
}

// Store is a Repository that also accepts writes.
type Store interface {
	Repository
	Save(ctx context.Context, def module.Definition) (module.Definition, error)
	Delete(ctx context.Context, id string) error
}

// Active returns the definitions from repo that are marked active.
func Active(ctx context.Context, repo Repository) ([]module.Definition, error) {
	defs, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]module.Definition, 0, len(defs))
	for _, def := range defs {
		if def.Active {
			out = append(out, def)
		}
	}
	return out, nil
}
