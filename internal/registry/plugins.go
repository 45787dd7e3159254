package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Plugin is one installed plugin record.
type Plugin struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Enabled     bool   `json:"enabled"`
	InstalledAt int64  `json:"installed_at"`
	Meta        string `json:"meta,omitempty"`
}

// InstallPlugin records an installed plugin. Reinstalling an existing slug
// updates the version in place.
func (r *Registry) InstallPlugin(ctx context.Context, slug, name, version string) (*Plugin, error) {
	slug = normalizeSlug(slug)
	if name == "" {
		name = slug
	}
	if version == "" {
		version = "0.0.0"
	}

	id := uuid.New().String()
	now := time.Now().Unix()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO plugins (id, slug, name, version, enabled, installed_at, meta)
         VALUES (?, ?, ?, ?, 1, ?, '{}')
         ON CONFLICT(slug) DO UPDATE SET version = excluded.version, name = excluded.name`,
		id, slug, name, version, now,
	)
	if err != nil {
		return nil, fmt.Errorf("install plugin: %w", err)
	}

	return r.GetPlugin(ctx, slug)
}

// GetPlugin returns a plugin by slug.
func (r *Registry) GetPlugin(ctx context.Context, slug string) (*Plugin, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, slug, name, version, enabled, installed_at, meta
         FROM plugins WHERE slug = ? LIMIT 1`, normalizeSlug(slug))

	var p Plugin
	var enabled int
	var meta sql.NullString
	if err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Version, &enabled, &p.InstalledAt, &meta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPluginNotFound
		}
		return nil, err
	}
	p.Enabled = enabled != 0
	p.Meta = meta.String
	return &p, nil
}

// ListPlugins returns all installed plugins ordered by name.
func (r *Registry) ListPlugins(ctx context.Context) ([]Plugin, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, slug, name, version, enabled, installed_at, meta
         FROM plugins ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plugin
	for rows.Next() {
		var p Plugin
		var enabled int
		var meta sql.NullString
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Version, &enabled, &p.InstalledAt, &meta); err != nil {
			return nil, err
		}
		p.Enabled = enabled != 0
		p.Meta = meta.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetPluginEnabled toggles a plugin without uninstalling it.
func (r *Registry) SetPluginEnabled(ctx context.Context, slug string, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE plugins SET enabled = ? WHERE slug = ?`, v, normalizeSlug(slug))
	if err != nil {
		return fmt.Errorf("toggle plugin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPluginNotFound
	}
	return nil
}

// RemovePlugin uninstalls a plugin record.
func (r *Registry) RemovePlugin(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plugins WHERE slug = ?`, normalizeSlug(slug))
	if err != nil {
		return fmt.Errorf("remove plugin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPluginNotFound
	}
	return nil
}
