// Package registry persists themes, their pages and site-wide settings in
// SQLite. Page block lists are stored as serialized JSON; the block model owns
// the wire format.
package registry

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/document"
	"github.com/nodepress/designer/internal/logging"
)

//go:embed schema.sql
var schemaFS embed.FS

var (
	ErrThemeNotFound   = errors.New("theme not found")
	ErrPageNotFound    = errors.New("page not found")
	ErrSettingNotFound = errors.New("setting not found")
	ErrPluginNotFound  = errors.New("plugin not found")
	ErrSlugTaken       = errors.New("slug already in use")
)

// Registry manages theme and page metadata in SQLite.
type Registry struct {
	db     *sql.DB
	logger logging.Logger
}

// NewRegistry returns a Registry and runs migrations from schema.sql.
func NewRegistry(db *sql.DB, logger logging.Logger) (*Registry, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Registry{db: db, logger: logger}, nil
}

// normalizeSlug makes a slug safe and simple.
func normalizeSlug(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		out = uuid.New().String()[:8]
	}
	return out
}

// CreateTheme inserts a new theme with default settings.
func (r *Registry) CreateTheme(ctx context.Context, slug, name, description string) (*document.Theme, error) {
	if name == "" && slug != "" {
		name = slug
	}
	if slug == "" {
		slug = normalizeSlug(name)
	} else {
		slug = normalizeSlug(slug)
	}
	if name == "" {
		name = slug
	}

	settings := document.DefaultThemeSettings()
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().Unix()

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO themes (id, slug, name, description, settings, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id, slug, name, description, string(settingsJSON), now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("%w: %s", ErrSlugTaken, slug)
		}
		return nil, fmt.Errorf("insert theme: %w", err)
	}

	r.logger.Info("theme created",
		logging.Field{Key: "theme_id", Value: id},
		logging.Field{Key: "slug", Value: slug})

	return &document.Theme{
		ID:          id,
		Slug:        slug,
		Name:        name,
		Description: description,
		Settings:    settings,
		CreatedAt:   now,
	}, nil
}

func scanTheme(row interface{ Scan(...any) error }) (*document.Theme, error) {
	var t document.Theme
	var description sql.NullString
	var settingsJSON string
	var updatedAt sql.NullInt64
	if err := row.Scan(&t.ID, &t.Slug, &t.Name, &description, &settingsJSON, &t.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Description = description.String
	if updatedAt.Valid {
		t.UpdatedAt = updatedAt.Int64
	}
	t.Settings = document.DefaultThemeSettings()
	if err := json.Unmarshal([]byte(settingsJSON), &t.Settings); err != nil {
		return nil, fmt.Errorf("parse theme settings: %w", err)
	}
	return &t, nil
}

// GetTheme resolves a theme by slug or id.
func (r *Registry) GetTheme(ctx context.Context, identifier string) (*document.Theme, error) {
	slug := normalizeSlug(identifier)
	row := r.db.QueryRowContext(ctx,
		`SELECT id, slug, name, description, settings, created_at, updated_at
         FROM themes
         WHERE slug = ? OR id = ?
         LIMIT 1`,
		slug, identifier,
	)
	t, err := scanTheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrThemeNotFound
	}
	return t, err
}

// ListThemes returns all themes, newest first.
func (r *Registry) ListThemes(ctx context.Context) ([]document.Theme, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, slug, name, description, settings, created_at, updated_at
         FROM themes
         ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateThemeSettings replaces a theme's settings wholesale.
func (r *Registry) UpdateThemeSettings(ctx context.Context, themeID string, settings document.ThemeSettings) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE themes SET settings = ?, updated_at = ? WHERE id = ?`,
		string(settingsJSON), time.Now().Unix(), themeID,
	)
	if err != nil {
		return fmt.Errorf("update theme settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrThemeNotFound
	}
	return nil
}

// DeleteTheme removes a theme and, via cascade, its pages.
func (r *Registry) DeleteTheme(ctx context.Context, themeID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM themes WHERE id = ?`, themeID)
	if err != nil {
		return fmt.Errorf("delete theme: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrThemeNotFound
	}
	return nil
}

// CreatePage inserts an empty page under a theme.
func (r *Registry) CreatePage(ctx context.Context, themeIdentifier, slug, name string) (*document.ThemePage, error) {
	theme, err := r.GetTheme(ctx, themeIdentifier)
	if err != nil {
		return nil, err
	}

	if slug == "" {
		slug = normalizeSlug(name)
	} else {
		slug = normalizeSlug(slug)
	}
	if name == "" {
		name = slug
	}

	id := uuid.New().String()
	now := time.Now().Unix()

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO pages (id, theme_id, slug, name, blocks, created_at)
         VALUES (?, ?, ?, ?, '[]', ?)`,
		id, theme.ID, slug, name, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("%w: %s", ErrSlugTaken, slug)
		}
		return nil, fmt.Errorf("insert page: %w", err)
	}

	return &document.ThemePage{ID: id, ThemeID: theme.ID, Name: name, Slug: slug}, nil
}

func (r *Registry) scanPage(row interface{ Scan(...any) error }) (*document.ThemePage, error) {
	var p document.ThemePage
	var blocksJSON string
	var isHome int
	if err := row.Scan(&p.ID, &p.ThemeID, &p.Slug, &p.Name, &blocksJSON, &isHome); err != nil {
		return nil, err
	}
	p.IsHomePage = isHome != 0
	var blocks []block.ContentBlock
	if err := json.Unmarshal([]byte(blocksJSON), &blocks); err != nil {
		// A page with a decode error still resolves; the renderer shows
		// per-block fallbacks and the editor can repair it.
		r.logger.Warn("stored blocks failed to decode",
			logging.Field{Key: "page_id", Value: p.ID},
			logging.Field{Key: "error", Value: err.Error()})
		blocks = nil
	}
	p.Blocks = blocks
	return &p, nil
}

// GetPage resolves a page by id.
func (r *Registry) GetPage(ctx context.Context, pageID string) (*document.ThemePage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, theme_id, slug, name, blocks, is_home
         FROM pages WHERE id = ? LIMIT 1`, pageID)
	p, err := r.scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPageNotFound
	}
	return p, err
}

// GetPageBySlug resolves a page within a theme.
func (r *Registry) GetPageBySlug(ctx context.Context, themeIdentifier, pageSlug string) (*document.ThemePage, error) {
	theme, err := r.GetTheme(ctx, themeIdentifier)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, theme_id, slug, name, blocks, is_home
         FROM pages WHERE theme_id = ? AND slug = ? LIMIT 1`,
		theme.ID, normalizeSlug(pageSlug))
	p, err := r.scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPageNotFound
	}
	return p, err
}

// ListPages returns a theme's pages, home page first.
func (r *Registry) ListPages(ctx context.Context, themeIdentifier string) ([]document.ThemePage, error) {
	theme, err := r.GetTheme(ctx, themeIdentifier)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, theme_id, slug, name, blocks, is_home
         FROM pages WHERE theme_id = ?
         ORDER BY is_home DESC, created_at ASC`, theme.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.ThemePage
	for rows.Next() {
		p, err := r.scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// SavePageBlocks replaces a page's block list.
func (r *Registry) SavePageBlocks(ctx context.Context, pageID string, blocks []block.ContentBlock) error {
	if blocks == nil {
		blocks = []block.ContentBlock{}
	}
	blocksJSON, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("marshal blocks: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE pages SET blocks = ?, updated_at = ? WHERE id = ?`,
		string(blocksJSON), time.Now().Unix(), pageID,
	)
	if err != nil {
		return fmt.Errorf("update page blocks: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPageNotFound
	}
	return nil
}

// SetHomePage marks one page as the theme's home page and clears the flag on
// its siblings. Atomic via a short transaction.
func (r *Registry) SetHomePage(ctx context.Context, pageID string) error {
	page, err := r.GetPage(ctx, pageID)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`UPDATE pages SET is_home = 0 WHERE theme_id = ?`, page.ThemeID); err != nil {
		return fmt.Errorf("clear home flags: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE pages SET is_home = 1 WHERE id = ?`, pageID); err != nil {
		return fmt.Errorf("set home flag: %w", err)
	}
	return tx.Commit()
}

// DeletePage removes a page.
func (r *Registry) DeletePage(ctx context.Context, pageID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, pageID)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPageNotFound
	}
	return nil
}

// GetSetting reads a raw value from the settings key-value table.
func (r *Registry) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	return v, err
}

// PutSetting upserts a settings key.
func (r *Registry) PutSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
