// Package document implements the block-list operations the editor applies to
// a page: insert, remove, reorder, duplicate, and the lossless field patches
// the properties panel produces.
package document

import (
	"errors"
	"fmt"

	"github.com/nodepress/designer/internal/block"
)

var (
	// ErrBlockNotFound is returned when an operation targets an ID that is
	// not in the page, at any nesting depth.
	ErrBlockNotFound = errors.New("block not found")

	// ErrTemplateNotFound is returned when applying an unknown template ID.
	ErrTemplateNotFound = errors.New("page template not found")
)

// ThemePage is one page of a theme: an ordered block list. List order is the
// render order; there is no explicit index field.
type ThemePage struct {
	ID         string               `json:"id"`
	ThemeID    string               `json:"theme_id,omitempty"`
	Name       string               `json:"name"`
	Slug       string               `json:"slug"`
	Blocks     []block.ContentBlock `json:"blocks"`
	IsHomePage bool                 `json:"is_home_page,omitempty"`
}

// FindByID locates a block by ID, descending into row columns. Returns nil
// when absent.
func FindByID(blocks []block.ContentBlock, id string) *block.ContentBlock {
	var found *block.ContentBlock
	block.Walk(blocks, func(b *block.ContentBlock) bool {
		if b.ID == id {
			found = b
			return false
		}
		return true
	})
	return found
}

// Insert places a fresh block of the given type at index (clamped to the list
// bounds; negative means append) and returns the new list plus the created
// block.
func Insert(blocks []block.ContentBlock, t block.Type, index int) ([]block.ContentBlock, block.ContentBlock, error) {
	b, err := block.New(t)
	if err != nil {
		return blocks, block.ContentBlock{}, err
	}
	if index < 0 || index > len(blocks) {
		index = len(blocks)
	}
	out := make([]block.ContentBlock, 0, len(blocks)+1)
	out = append(out, blocks[:index]...)
	out = append(out, b)
	out = append(out, blocks[index:]...)
	return out, b, nil
}

// Remove deletes the block with the given ID. Only top-level removal walks
// into rows: a nested block is removed from its owning column.
func Remove(blocks []block.ContentBlock, id string) ([]block.ContentBlock, error) {
	out, removed := removeFrom(blocks, id)
	if !removed {
		return blocks, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	return out, nil
}

func removeFrom(blocks []block.ContentBlock, id string) ([]block.ContentBlock, bool) {
	for i := range blocks {
		if blocks[i].ID == id {
			out := make([]block.ContentBlock, 0, len(blocks)-1)
			out = append(out, blocks[:i]...)
			out = append(out, blocks[i+1:]...)
			return out, true
		}
		if row, ok := blocks[i].Props.(*block.RowProps); ok {
			for c := range row.Columns {
				if sub, removed := removeFrom(row.Columns[c].Blocks, id); removed {
					row.Columns[c].Blocks = sub
					return blocks, true
				}
			}
		}
	}
	return blocks, false
}

// Move shifts the top-level block with the given ID to a new index. Indexes
// are clamped to the list bounds.
func Move(blocks []block.ContentBlock, id string, to int) ([]block.ContentBlock, error) {
	from := -1
	for i := range blocks {
		if blocks[i].ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return blocks, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if to < 0 {
		to = 0
	}
	if to >= len(blocks) {
		to = len(blocks) - 1
	}
	if to == from {
		return blocks, nil
	}

	out := make([]block.ContentBlock, 0, len(blocks))
	out = append(out, blocks[:from]...)
	out = append(out, blocks[from+1:]...)
	moved := blocks[from]
	out = append(out[:to], append([]block.ContentBlock{moved}, out[to:]...)...)
	return out, nil
}

// Duplicate deep-copies the block with the given ID, regenerates every ID in
// the copy (nested rows included), and inserts it directly after the original.
func Duplicate(blocks []block.ContentBlock, id string) ([]block.ContentBlock, block.ContentBlock, error) {
	for i := range blocks {
		if blocks[i].ID == id {
			dup := blocks[i].Clone()
			list := []block.ContentBlock{dup}
			block.RegenerateIDs(list)
			dup = list[0]

			out := make([]block.ContentBlock, 0, len(blocks)+1)
			out = append(out, blocks[:i+1]...)
			out = append(out, dup)
			out = append(out, blocks[i+1:]...)
			return out, dup, nil
		}
	}
	return blocks, block.ContentBlock{}, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
}

// SetProps replaces the full property set of a block. The incoming props must
// match the block's type; changing type is delete+insert, not mutation.
func SetProps(blocks []block.ContentBlock, id string, props block.Props) error {
	if props == nil {
		return fmt.Errorf("nil props for block %s", id)
	}
	target := FindByID(blocks, id)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if props.BlockType() != target.Type {
		return fmt.Errorf("props type %q does not match block type %q", props.BlockType(), target.Type)
	}
	target.Props = props
	return nil
}

// BlockUpdate carries a full-block edit from the properties panel. Props is
// required; the cross-cutting fields are always written together so an update
// can never silently drop a sibling field.
type BlockUpdate struct {
	Props      block.Props
	Link       *block.Link
	Visibility *block.Visibility
	Animation  *block.Animation
	Style      *block.Style
}

// Update applies a lossless full-block update.
func Update(blocks []block.ContentBlock, id string, upd BlockUpdate) error {
	target := FindByID(blocks, id)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if upd.Props != nil {
		if upd.Props.BlockType() != target.Type {
			return fmt.Errorf("props type %q does not match block type %q", upd.Props.BlockType(), target.Type)
		}
		target.Props = upd.Props
	}
	target.Link = upd.Link
	target.Visibility = upd.Visibility
	target.Animation = upd.Animation
	target.Style = upd.Style
	return nil
}

// SetLink patches only the link field.
func SetLink(blocks []block.ContentBlock, id string, link *block.Link) error {
	target := FindByID(blocks, id)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	target.Link = link
	return nil
}

// SetVisibility patches only the per-breakpoint visibility.
func SetVisibility(blocks []block.ContentBlock, id string, v *block.Visibility) error {
	target := FindByID(blocks, id)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	target.Visibility = v
	return nil
}

// SetAnimation patches only the entrance animation.
func SetAnimation(blocks []block.ContentBlock, id string, a *block.Animation) error {
	target := FindByID(blocks, id)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	target.Animation = a
	return nil
}

// SetStyle patches only the style override.
func SetStyle(blocks []block.ContentBlock, id string, s *block.Style) error {
	target := FindByID(blocks, id)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	target.Style = s
	return nil
}

// ValidateUniqueIDs checks the unique-ID invariant across the whole tree.
func ValidateUniqueIDs(blocks []block.ContentBlock) error {
	seen := make(map[string]struct{})
	var dup string
	block.Walk(blocks, func(b *block.ContentBlock) bool {
		if _, ok := seen[b.ID]; ok {
			dup = b.ID
			return false
		}
		seen[b.ID] = struct{}{}
		return true
	})
	if dup != "" {
		return fmt.Errorf("duplicate block id %s", dup)
	}
	return nil
}
