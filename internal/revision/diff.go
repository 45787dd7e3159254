package revision

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/nodepress/designer/internal/logging"
)

// DiffChunk is a single change in a revision diff.
type DiffChunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content,omitempty"`
}

// DiffResult is the delta between two revisions of a page.
type DiffResult struct {
	BaseID string      `json:"base_id,omitempty"`
	HeadID string      `json:"head_id"`
	Chunks []DiffChunk `json:"chunks"`
}

// Diff computes the delta between two revisions. Results are cached in the
// revision_diffs table keyed by the (base, head) pair.
func (t *Tracker) Diff(ctx context.Context, baseID, headID string) (*DiffResult, error) {
	var diffJSON string
	err := t.db.QueryRowContext(ctx, `
		SELECT diff_json FROM revision_diffs
		WHERE base_revision_id = ? AND head_revision_id = ?
	`, nullableString(baseID), headID).Scan(&diffJSON)

	if err == nil {
		var cached DiffResult
		if err := json.Unmarshal([]byte(diffJSON), &cached); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached diff: %w", err)
		}
		return &cached, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query cached diff: %w", err)
	}

	var baseBody []byte
	if baseID != "" {
		base, err := t.Get(ctx, baseID)
		if err != nil {
			return nil, err
		}
		if baseBody, err = t.store.Get(base.BlobID); err != nil {
			return nil, fmt.Errorf("failed to get base blob: %w", err)
		}
	}
	head, err := t.Get(ctx, headID)
	if err != nil {
		return nil, err
	}
	headBody, err := t.store.Get(head.BlobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get head blob: %w", err)
	}

	result := computeTextDiff(baseID, headID, baseBody, headBody)

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diff: %w", err)
	}
	_, err = t.db.ExecContext(ctx, `
		INSERT INTO revision_diffs (id, base_revision_id, head_revision_id, diff_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), nullableString(baseID), headID, string(data), time.Now().Unix())
	if err != nil {
		t.logger.Warn("failed to cache diff", logging.Field{Key: "error", Value: err.Error()})
	}

	return result, nil
}

// computeTextDiff diffs two serialized documents at the character level and
// keeps only the changed chunks after semantic cleanup.
func computeTextDiff(baseID, headID string, base, head []byte) *DiffResult {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(base), string(head), true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]DiffChunk, 0)
	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
		case diffmatchpatch.DiffEqual:
			continue
		}
		if strings.TrimSpace(d.Text) != "" {
			chunks = append(chunks, DiffChunk{Type: chunkType, Content: d.Text})
		}
	}

	return &DiffResult{BaseID: baseID, HeadID: headID, Chunks: chunks}
}
