package block

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ExportVersion is written into exported documents so future readers can
// migrate old payloads.
const ExportVersion = 1

// ExportedDocument wraps a block list for export/import.
type ExportedDocument struct {
	Version    int            `json:"version"`
	Blocks     []ContentBlock `json:"blocks"`
	ExportedAt time.Time      `json:"exported_at"`
}

type blockShadow struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	Props      json.RawMessage `json:"props"`
	Link       *Link           `json:"link,omitempty"`
	Visibility *Visibility     `json:"visibility,omitempty"`
	Animation  *Animation      `json:"animation,omitempty"`
	Style      *Style          `json:"style,omitempty"`
}

var jsonNull = []byte("null")

// UnmarshalJSON decodes a block, dispatching the props payload to the variant
// struct registered for the block's type. Fields missing from the payload keep
// the registry defaults, so old exports gain new defaults on import.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var shadow blockShadow
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}

	def, ok := Lookup(shadow.Type)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, shadow.Type)
	}

	props := def.NewProps()
	if len(shadow.Props) > 0 && !bytes.Equal(shadow.Props, jsonNull) {
		if err := json.Unmarshal(shadow.Props, props); err != nil {
			return fmt.Errorf("decode %s props: %w", shadow.Type, err)
		}
	}

	b.ID = shadow.ID
	b.Type = shadow.Type
	b.Props = props
	b.Link = shadow.Link
	b.Visibility = shadow.Visibility
	b.Animation = shadow.Animation
	b.Style = shadow.Style
	return nil
}

// ExportBlocks serializes a block list with the export wrapper.
func ExportBlocks(blocks []ContentBlock) ([]byte, error) {
	doc := ExportedDocument{
		Version:    ExportVersion,
		Blocks:     blocks,
		ExportedAt: time.Now().UTC(),
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ImportBlocks parses a previously exported payload. It accepts both the
// versioned wrapper and a bare block array. Every imported block gets a fresh
// ID (nested row blocks included) so IDs never collide with the current
// document. Malformed input yields nil — "nothing usable was parsed" — and the
// caller decides the user messaging.
func ImportBlocks(data []byte) []ContentBlock {
	var doc ExportedDocument
	if err := json.Unmarshal(data, &doc); err == nil && len(doc.Blocks) > 0 {
		RegenerateIDs(doc.Blocks)
		return doc.Blocks
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(data, &blocks); err != nil || len(blocks) == 0 {
		return nil
	}
	RegenerateIDs(blocks)
	return blocks
}

// EmptyDocument reports whether data is a well-formed payload describing a
// document with no blocks: an empty body, JSON null, an empty array, or the
// export wrapper with an explicit empty blocks list. ImportBlocks returns nil
// for both empty and malformed input; this tells the two apart.
func EmptyDocument(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) || bytes.Equal(trimmed, []byte("[]")) {
		return true
	}
	var doc struct {
		Blocks []json.RawMessage `json:"blocks"`
	}
	return json.Unmarshal(data, &doc) == nil && doc.Blocks != nil && len(doc.Blocks) == 0
}

// ImportBlock parses a single exported block, regenerating its IDs. Returns
// nil when nothing usable was parsed.
func ImportBlock(data []byte) *ContentBlock {
	var b ContentBlock
	if err := json.Unmarshal(data, &b); err != nil {
		return nil
	}
	list := []ContentBlock{b}
	RegenerateIDs(list)
	return &list[0]
}
