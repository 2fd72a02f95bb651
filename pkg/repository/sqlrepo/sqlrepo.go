// Package sqlrepo stores module definitions in SQLite using the pure Go
// modernc.org/sqlite driver.
package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-blockkit/pkg/module"
	"github.com/goliatone/go-blockkit/pkg/repository"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS modules (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    label TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    icon TEXT NOT NULL,
    fields TEXT NOT NULL DEFAULT '[]',
    html TEXT NOT NULL DEFAULT '',
    css TEXT NOT NULL DEFAULT '',
    js TEXT NOT NULL DEFAULT '',
    compact BOOLEAN NOT NULL DEFAULT FALSE,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_modules_slug ON modules(slug);
CREATE INDEX IF NOT EXISTS idx_modules_active ON modules(active);
`

const columns = `id, slug, label, description, category, icon, fields, html, css, js, compact, active`

// DB is a module repository backed by a SQLite database file.
type DB struct {
	db *sql.DB
}

var _ repository.Store = (*DB)(nil)

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlrepo: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlrepo: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlrepo: connect: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlrepo: initialize schema: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlrepo: read schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlrepo: record schema version: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Save inserts or replaces def. A definition without an id is assigned a
// new ULID. The stored definition is returned.
func (d *DB) Save(ctx context.Context, def module.Definition) (module.Definition, error) {
	if strings.TrimSpace(def.ID) == "" {
		def.ID = strings.ToLower(ulid.Make().String())
	}
	def = def.WithDefaults()

	fields, err := json.Marshal(def.Fields)
	if err != nil {
		return module.Definition{}, fmt.Errorf("sqlrepo: encode fields for %q: %w", def.ID, err)
	}
	if def.Fields == nil {
		fields = []byte("[]")
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO modules (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			label = excluded.label,
			description = excluded.description,
			category = excluded.category,
			icon = excluded.icon,
			fields = excluded.fields,
			html = excluded.html,
			css = excluded.css,
			js = excluded.js,
			compact = excluded.compact,
			active = excluded.active,
			updated_at = CURRENT_TIMESTAMP`,
		def.ID, def.Slug, def.Label, def.Description, def.Category, def.Icon,
		string(fields), def.HTMLTemplate, def.CSSSource, def.JSSource, def.Compact, def.Active,
	)
	if err != nil {
		return module.Definition{}, fmt.Errorf("sqlrepo: save %q: %w", def.ID, err)
	}
	return def, nil
}

// Get returns the definition for id.
func (d *DB) Get(ctx context.Context, id string) (module.Definition, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+columns+` FROM modules WHERE id = ?`, id)
	def, err := scanDefinition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return module.Definition{}, fmt.Errorf("sqlrepo: get %q: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return module.Definition{}, fmt.Errorf("sqlrepo: get %q: %w", id, err)
	}
	return def, nil
}

// List returns every definition ordered by id.
func (d *DB) List(ctx context.Context) ([]module.Definition, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+columns+` FROM modules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlrepo: list: %w", err)
	}
	defer rows.Close()

	var out []module.Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlrepo: list: %w", err)
		}
		out = append(out, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlrepo: list: %w", err)
	}
	return out, nil
}

// Delete removes id. Deleting a missing id returns ErrNotFound.
func (d *DB) Delete(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlrepo: delete %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlrepo: delete %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("sqlrepo: delete %q: %w", id, repository.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDefinition(s scanner) (module.Definition, error) {
	var (
		def    module.Definition
		fields string
	)
	err := s.Scan(&def.ID, &def.Slug, &def.Label, &def.Description, &def.Category, &def.Icon,
		&fields, &def.HTMLTemplate, &def.CSSSource, &def.JSSource, &def.Compact, &def.Active)
	if err != nil {
		return module.Definition{}, err
	}
	if err := json.Unmarshal([]byte(fields), &def.Fields); err != nil {
		return module.Definition{}, fmt.Errorf("decode fields for %q: %w", def.ID, err)
	}
	return def, nil
}
