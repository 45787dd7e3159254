package marketplace_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/marketplace"
	"github.com/nodepress/designer/internal/registry"
	"github.com/nodepress/designer/internal/webclient"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "designer.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { db.Close() })
	reg, err := registry.NewRegistry(db, logging.NewStdoutLogger("marketplace_test"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func catalogServer(t *testing.T, pkgBlocks string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/catalog.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"id":"1","slug":"aurora","name":"Aurora","version":"1.0.0","package_url":%q}]`,
			srv.URL+"/packages/aurora.json")
	})
	mux.HandleFunc("/packages/aurora.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name":"Aurora","slug":"aurora","pages":[{"name":"Home","slug":"home","is_home":true,"blocks":%s}]}`,
			pkgBlocks)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *marketplace.Client {
	t.Helper()
	logger := logging.NewStdoutLogger("marketplace_test")
	wc, err := webclient.NewNetHTTPClient(nil, logger, srv.Client())
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	client, err := marketplace.NewClient(srv.URL, wc, nil, logger)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func exportedBlocks(t *testing.T) string {
	t.Helper()
	b := block.MustNew(block.TypeHero)
	b.Props.(*block.HeroProps).Title = "Aurora"
	data, err := block.ExportBlocks([]block.ContentBlock{b})
	if err != nil {
		t.Fatalf("ExportBlocks: %v", err)
	}
	return string(data)
}

func TestClient_Browse(t *testing.T) {
	srv := catalogServer(t, exportedBlocks(t))
	client := newTestClient(t, srv)

	entries, err := client.Browse(context.Background())
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(entries) != 1 || entries[0].Slug != "aurora" {
		t.Fatalf("unexpected catalog: %+v", entries)
	}
}

func TestClient_InstallImportsWithFreshIDs(t *testing.T) {
	fixture := exportedBlocks(t)
	srv := catalogServer(t, fixture)
	client := newTestClient(t, srv)
	reg := newTestRegistry(t)
	ctx := context.Background()

	theme, err := client.Install(ctx, reg, "aurora")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if theme.Slug != "aurora" {
		t.Fatalf("unexpected theme: %+v", theme)
	}

	pages, err := reg.ListPages(ctx, theme.Slug)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != 1 || !pages[0].IsHomePage {
		t.Fatalf("home page not installed: %+v", pages)
	}
	if len(pages[0].Blocks) != 1 {
		t.Fatalf("blocks not imported: %d", len(pages[0].Blocks))
	}

	// Parse the original export to prove install regenerated the IDs.
	var doc block.ExportedDocument
	if err := json.Unmarshal([]byte(fixture), &doc); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if pages[0].Blocks[0].ID == doc.Blocks[0].ID {
		t.Fatal("install must regenerate block ids")
	}
}

func TestClient_InstallMalformedPackageLeavesNoState(t *testing.T) {
	srv := catalogServer(t, `"not blocks at all"`)
	client := newTestClient(t, srv)
	reg := newTestRegistry(t)
	ctx := context.Background()

	if _, err := client.Install(ctx, reg, "aurora"); !errors.Is(err, marketplace.ErrMalformedPackage) {
		t.Fatalf("expected ErrMalformedPackage, got %v", err)
	}
	themes, err := reg.ListThemes(ctx)
	if err != nil {
		t.Fatalf("ListThemes: %v", err)
	}
	if len(themes) != 0 {
		t.Fatalf("failed install must leave no themes, got %d", len(themes))
	}
}

func TestClient_InstallUnknownSlug(t *testing.T) {
	srv := catalogServer(t, exportedBlocks(t))
	client := newTestClient(t, srv)

	if _, err := client.Install(context.Background(), newTestRegistry(t), "nope"); !errors.Is(err, marketplace.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestClient_ScreenshotWithoutRenderer(t *testing.T) {
	srv := catalogServer(t, exportedBlocks(t))
	client := newTestClient(t, srv)

	if _, err := client.Screenshot(context.Background(), srv.URL); err == nil {
		t.Fatal("screenshot without renderer must error")
	}
}
