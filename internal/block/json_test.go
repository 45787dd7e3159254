package block_test

import (
	"encoding/json"
	"testing"

	"github.com/nodepress/designer/internal/block"
)

func TestBlock_JSONRoundTrip(t *testing.T) {
	b := block.MustNew(block.TypeHero)
	b.Props.(*block.HeroProps).Title = "Launch day"
	b.Animation = &block.Animation{Type: block.AnimationFade, Duration: 400, Delay: 100}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got block.ContentBlock
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != b.ID || got.Type != block.TypeHero {
		t.Fatalf("identity fields lost: %+v", got)
	}
	props, ok := got.Props.(*block.HeroProps)
	if !ok {
		t.Fatalf("props decoded as %T, want *HeroProps", got.Props)
	}
	if props.Title != "Launch day" {
		t.Fatalf("title = %q", props.Title)
	}
	if got.Animation == nil || got.Animation.Duration != 400 {
		t.Fatalf("animation lost: %+v", got.Animation)
	}
}

func TestBlock_UnmarshalUnknownType(t *testing.T) {
	var b block.ContentBlock
	err := json.Unmarshal([]byte(`{"id":"x","type":"hologram","props":{}}`), &b)
	if err == nil {
		t.Fatal("expected unknown type error")
	}
}

func TestBlock_UnmarshalKeepsDefaultsForMissingFields(t *testing.T) {
	var b block.ContentBlock
	if err := json.Unmarshal([]byte(`{"id":"x","type":"rating","props":{"value":3.7}}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	props := b.Props.(*block.RatingProps)
	if props.Value != 3.7 {
		t.Fatalf("value = %v", props.Value)
	}
	if props.Max != 5 {
		t.Fatalf("missing max should keep registry default 5, got %d", props.Max)
	}
}

func TestExportImport_RegeneratesIDs(t *testing.T) {
	b := block.MustNew(block.TypeCard)
	b.Props.(*block.CardProps).Title = "Keep me"

	data, err := block.ExportBlocks([]block.ContentBlock{b})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	first := block.ImportBlocks(data)
	second := block.ImportBlocks(data)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected single-block imports, got %d and %d", len(first), len(second))
	}
	if first[0].ID == b.ID || second[0].ID == b.ID {
		t.Fatal("import must not reuse exported ids")
	}
	if first[0].ID == second[0].ID {
		t.Fatal("two imports of the same payload must not collide")
	}
	if first[0].Props.(*block.CardProps).Title != "Keep me" {
		t.Fatal("props must survive import unchanged")
	}
}

func TestImportBlocks_BareArray(t *testing.T) {
	b := block.MustNew(block.TypeQuote)
	data, err := json.Marshal([]block.ContentBlock{b})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := block.ImportBlocks(data)
	if len(got) != 1 {
		t.Fatalf("expected 1 block, got %d", len(got))
	}
}

func TestImportBlocks_Malformed(t *testing.T) {
	for _, payload := range []string{"", "not json", "{}", `{"version":1,"blocks":[]}`, `[{"type":"hologram"}]`} {
		if got := block.ImportBlocks([]byte(payload)); got != nil {
			t.Fatalf("payload %q: expected nil, got %d blocks", payload, len(got))
		}
	}
}

func TestEmptyDocument_DisambiguatesFromMalformed(t *testing.T) {
	for _, payload := range []string{"", "null", "[]", `{"version":1,"blocks":[]}`} {
		if !block.EmptyDocument([]byte(payload)) {
			t.Fatalf("payload %q: expected empty document", payload)
		}
	}
	for _, payload := range []string{"not json", "{}", `{"blocks":[`, `{"blocks":null}`} {
		if block.EmptyDocument([]byte(payload)) {
			t.Fatalf("payload %q: must not count as an empty document", payload)
		}
	}
}

func TestImportBlock_Single(t *testing.T) {
	b := block.MustNew(block.TypeIcon)
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := block.ImportBlock(data)
	if got == nil {
		t.Fatal("expected a block")
	}
	if got.ID == b.ID {
		t.Fatal("import must regenerate the id")
	}
	if block.ImportBlock([]byte("nope")) != nil {
		t.Fatal("malformed single import must return nil")
	}
}
