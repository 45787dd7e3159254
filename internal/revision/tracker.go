// Package revision records page history: each save stores the serialized
// block document in a content-addressed blob store with a metadata row in
// SQLite. Revisions can be listed, diffed and restored.
package revision

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/logging"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrRevisionNotFound = errors.New("revision not found")

// Revision is the metadata for one saved document state.
type Revision struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	BlobID    string    `json:"blob_id"`
	Message   string    `json:"message"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Tracker stores revisions for pages.
type Tracker struct {
	db     *sql.DB
	store  *FSStore
	logger logging.Logger
}

// NewTracker applies the schema and opens the blob store under blobsDir.
func NewTracker(db *sql.DB, blobsDir string, logger logging.Logger) (*Tracker, error) {
	if db == nil {
		return nil, errors.New("revision: db is nil")
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	store, err := NewFSStore(blobsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create FSStore: %w", err)
	}

	return &Tracker{db: db, store: store, logger: logger}, nil
}

// Save records a new revision of a page's block list. The parent is the
// page's latest revision, if any.
func (t *Tracker) Save(ctx context.Context, pageID string, blocks []block.ContentBlock, message, author string) (*Revision, error) {
	if pageID == "" {
		return nil, errors.New("page id cannot be empty")
	}
	if message == "" {
		return nil, errors.New("revision message cannot be empty")
	}
	if blocks == nil {
		blocks = []block.ContentBlock{}
	}

	body, err := json.Marshal(blocks)
	if err != nil {
		return nil, fmt.Errorf("marshal blocks: %w", err)
	}

	blobID, err := t.store.Put(body)
	if err != nil {
		return nil, fmt.Errorf("failed to store revision body: %w", err)
	}

	parentID := ""
	if latest, err := t.Latest(ctx, pageID); err == nil {
		parentID = latest.ID
	} else if !errors.Is(err, ErrRevisionNotFound) {
		return nil, err
	}

	rev := &Revision{
		ID:        uuid.New().String(),
		PageID:    pageID,
		ParentID:  parentID,
		BlobID:    blobID,
		Message:   message,
		Author:    author,
		CreatedAt: time.Now(),
	}

	_, err = t.db.ExecContext(ctx, `
		INSERT INTO revisions (id, page_id, parent_id, blob_id, message, author, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rev.ID, rev.PageID, nullableString(rev.ParentID), rev.BlobID, rev.Message, nullableString(rev.Author), rev.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert revision: %w", err)
	}

	t.logger.Info("revision saved",
		logging.Field{Key: "revision_id", Value: rev.ID},
		logging.Field{Key: "page_id", Value: pageID},
		logging.Field{Key: "blob_id", Value: blobID})

	return rev, nil
}

func scanRevision(row interface{ Scan(...any) error }) (*Revision, error) {
	var r Revision
	var parentID, author sql.NullString
	var createdAt int64
	if err := row.Scan(&r.ID, &r.PageID, &parentID, &r.BlobID, &r.Message, &author, &createdAt); err != nil {
		return nil, err
	}
	r.ParentID = parentID.String
	r.Author = author.String
	r.CreatedAt = time.Unix(createdAt, 0)
	return &r, nil
}

// Latest returns the most recent revision of a page.
func (t *Tracker) Latest(ctx context.Context, pageID string) (*Revision, error) {
	row := t.db.QueryRowContext(ctx, `
		SELECT id, page_id, parent_id, blob_id, message, author, created_at
		FROM revisions
		WHERE page_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, pageID)
	r, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRevisionNotFound
	}
	return r, err
}

// List returns a page's revisions, newest first.
func (t *Tracker) List(ctx context.Context, pageID string, limit int) ([]*Revision, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, page_id, parent_id, blob_id, message, author, created_at
		FROM revisions
		WHERE page_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, pageID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query revisions: %w", err)
	}
	defer rows.Close()

	var out []*Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns a revision's metadata.
func (t *Tracker) Get(ctx context.Context, revisionID string) (*Revision, error) {
	row := t.db.QueryRowContext(ctx, `
		SELECT id, page_id, parent_id, blob_id, message, author, created_at
		FROM revisions WHERE id = ? LIMIT 1
	`, revisionID)
	r, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRevisionNotFound
	}
	return r, err
}

// Blocks loads and decodes the block list stored in a revision. Stored IDs
// are preserved exactly; restore is not an import.
func (t *Tracker) Blocks(ctx context.Context, revisionID string) ([]block.ContentBlock, error) {
	rev, err := t.Get(ctx, revisionID)
	if err != nil {
		return nil, err
	}
	body, err := t.store.Get(rev.BlobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	var blocks []block.ContentBlock
	if err := json.Unmarshal(body, &blocks); err != nil {
		return nil, fmt.Errorf("decode revision body: %w", err)
	}
	return blocks, nil
}

// Restore returns the blocks of an older revision and records the restore
// itself as a new revision, so history stays linear and redoable.
func (t *Tracker) Restore(ctx context.Context, revisionID, author string) ([]block.ContentBlock, *Revision, error) {
	blocks, err := t.Blocks(ctx, revisionID)
	if err != nil {
		return nil, nil, err
	}
	old, err := t.Get(ctx, revisionID)
	if err != nil {
		return nil, nil, err
	}
	rev, err := t.Save(ctx, old.PageID, blocks, fmt.Sprintf("restore revision %s", revisionID), author)
	if err != nil {
		return nil, nil, err
	}
	return blocks, rev, nil
}

// Close releases the database handle.
func (t *Tracker) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
