package registry_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/registry"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		t.Logf("pragmas: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.NewRegistry(openTestDB(t), logging.NewStdoutLogger("registry_test"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestRegistry_ThemeLifecycle(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	theme, err := reg.CreateTheme(ctx, "My Store", "My Store", "storefront theme")
	if err != nil {
		t.Fatalf("CreateTheme: %v", err)
	}
	if theme.Slug != "my-store" {
		t.Fatalf("slug not normalized: %s", theme.Slug)
	}
	if theme.Settings.PrimaryColor == "" {
		t.Fatal("new theme missing default settings")
	}

	// Duplicate slug is rejected.
	if _, err := reg.CreateTheme(ctx, "my-store", "", ""); !errors.Is(err, registry.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}

	got, err := reg.GetTheme(ctx, "MY-STORE")
	if err != nil {
		t.Fatalf("GetTheme by slug: %v", err)
	}
	if got.ID != theme.ID {
		t.Fatalf("resolved wrong theme: %s", got.ID)
	}
	if _, err := reg.GetTheme(ctx, theme.ID); err != nil {
		t.Fatalf("GetTheme by id: %v", err)
	}

	got.Settings.PrimaryColor = "#000000"
	if err := reg.UpdateThemeSettings(ctx, theme.ID, got.Settings); err != nil {
		t.Fatalf("UpdateThemeSettings: %v", err)
	}
	got, err = reg.GetTheme(ctx, theme.ID)
	if err != nil {
		t.Fatalf("GetTheme after update: %v", err)
	}
	if got.Settings.PrimaryColor != "#000000" || got.UpdatedAt == 0 {
		t.Fatalf("settings not persisted: %+v", got.Settings)
	}

	if err := reg.DeleteTheme(ctx, theme.ID); err != nil {
		t.Fatalf("DeleteTheme: %v", err)
	}
	if _, err := reg.GetTheme(ctx, theme.ID); !errors.Is(err, registry.ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
}

func TestRegistry_PagesRoundTripBlocks(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	theme, err := reg.CreateTheme(ctx, "blog", "Blog", "")
	if err != nil {
		t.Fatalf("CreateTheme: %v", err)
	}
	page, err := reg.CreatePage(ctx, theme.Slug, "home", "Home")
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	blocks := []block.ContentBlock{block.MustNew(block.TypeHeading), block.MustNew(block.TypeText)}
	blocks[0].Props.(*block.HeadingProps).Text = "Welcome"
	if err := reg.SavePageBlocks(ctx, page.ID, blocks); err != nil {
		t.Fatalf("SavePageBlocks: %v", err)
	}

	got, err := reg.GetPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(got.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got.Blocks))
	}
	heading, ok := got.Blocks[0].Props.(*block.HeadingProps)
	if !ok || heading.Text != "Welcome" {
		t.Fatalf("typed props lost through storage: %+v", got.Blocks[0].Props)
	}
	if got.Blocks[0].ID != blocks[0].ID {
		t.Fatal("block ids must survive storage unchanged")
	}

	if _, err := reg.GetPage(ctx, "missing"); !errors.Is(err, registry.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestRegistry_SetHomePageIsExclusive(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	theme, err := reg.CreateTheme(ctx, "shop", "Shop", "")
	if err != nil {
		t.Fatalf("CreateTheme: %v", err)
	}
	a, err := reg.CreatePage(ctx, theme.Slug, "a", "A")
	if err != nil {
		t.Fatalf("CreatePage a: %v", err)
	}
	b, err := reg.CreatePage(ctx, theme.Slug, "b", "B")
	if err != nil {
		t.Fatalf("CreatePage b: %v", err)
	}

	if err := reg.SetHomePage(ctx, a.ID); err != nil {
		t.Fatalf("SetHomePage a: %v", err)
	}
	if err := reg.SetHomePage(ctx, b.ID); err != nil {
		t.Fatalf("SetHomePage b: %v", err)
	}

	pages, err := reg.ListPages(ctx, theme.Slug)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	homes := 0
	for _, p := range pages {
		if p.IsHomePage {
			homes++
			if p.ID != b.ID {
				t.Fatalf("wrong home page: %s", p.ID)
			}
		}
	}
	if homes != 1 {
		t.Fatalf("expected exactly one home page, got %d", homes)
	}
}

func TestRegistry_SettingsKV(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	if _, err := reg.GetSetting(ctx, "smtp"); !errors.Is(err, registry.ErrSettingNotFound) {
		t.Fatalf("expected ErrSettingNotFound, got %v", err)
	}
	if err := reg.PutSetting(ctx, "smtp", `{"host":"mail.example.com"}`); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	if err := reg.PutSetting(ctx, "smtp", `{"host":"mail2.example.com"}`); err != nil {
		t.Fatalf("PutSetting upsert: %v", err)
	}
	v, err := reg.GetSetting(ctx, "smtp")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != `{"host":"mail2.example.com"}` {
		t.Fatalf("upsert did not overwrite: %s", v)
	}
}

func TestRegistry_Plugins(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	p, err := reg.InstallPlugin(ctx, "Contact Form", "Contact Form", "1.0.0")
	if err != nil {
		t.Fatalf("InstallPlugin: %v", err)
	}
	if p.Slug != "contact-form" || !p.Enabled {
		t.Fatalf("unexpected plugin record: %+v", p)
	}

	// Reinstall updates the version in place.
	p2, err := reg.InstallPlugin(ctx, "contact-form", "Contact Form", "1.1.0")
	if err != nil {
		t.Fatalf("reinstall: %v", err)
	}
	if p2.Version != "1.1.0" {
		t.Fatalf("version not updated: %s", p2.Version)
	}

	if err := reg.SetPluginEnabled(ctx, "contact-form", false); err != nil {
		t.Fatalf("SetPluginEnabled: %v", err)
	}
	got, err := reg.GetPlugin(ctx, "contact-form")
	if err != nil {
		t.Fatalf("GetPlugin: %v", err)
	}
	if got.Enabled {
		t.Fatal("plugin still enabled after disable")
	}

	if err := reg.RemovePlugin(ctx, "contact-form"); err != nil {
		t.Fatalf("RemovePlugin: %v", err)
	}
	if _, err := reg.GetPlugin(ctx, "contact-form"); !errors.Is(err, registry.ErrPluginNotFound) {
		t.Fatalf("expected ErrPluginNotFound, got %v", err)
	}
}
