package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/nodepress/designer/internal/app"
	"github.com/nodepress/designer/internal/server"
	"github.com/nodepress/designer/internal/testutil"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	logger := &testutil.DummyLogger{}
	cfg := app.DefaultConfig()
	cfg.StorageRoot = t.TempDir()
	cfg.MarketplaceURL = "http://127.0.0.1:1" // nothing listens; marketplace tests stub elsewhere

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(func() { _ = application.Shutdown(context.Background()) })

	s, err := server.NewServer(server.Config{ListenAddr: ":0", Logger: logger}, application)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

func createThemeAndPage(t *testing.T, s *server.Server) (themeSlug, pageID string) {
	t.Helper()
	rec := doJSON(t, s, "POST", "/themes", `{"slug":"demo","name":"Demo"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create theme: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, "POST", "/themes/demo/pages", `{"slug":"home","name":"Home","template":"landing"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create page: %d %s", rec.Code, rec.Body.String())
	}
	var page map[string]any
	decodeJSON(t, rec, &page)
	return "demo", page["id"].(string)
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/themes", "")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_OptionsPreflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "OPTIONS", "/themes", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for OPTIONS, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected Allow-Methods header on OPTIONS")
	}
}

// ─── Themes ────────────────────────────────────────────────────────────

func TestServer_CreateTheme(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/themes", `{"slug":"storefront","name":"Storefront"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var theme map[string]any
	decodeJSON(t, rec, &theme)
	if theme["slug"] != "storefront" {
		t.Errorf("expected slug 'storefront', got %v", theme["slug"])
	}

	// Duplicate slug conflicts.
	rec = doJSON(t, s, "POST", "/themes", `{"slug":"storefront","name":"Again"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate slug, got %d", rec.Code)
	}
}

func TestServer_CreateTheme_InvalidJSON(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/themes", `{invalid}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestServer_GetTheme_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/themes/nonexistent", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_UpdateThemeSettings(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	createThemeAndPage(t, s)

	rec := doJSON(t, s, "PUT", "/themes/demo/settings",
		`{"primary_color":"#ff0000","text_color":"#111","background":"#fff","font_family":"serif"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, "GET", "/themes/demo", "")
	var theme struct {
		Settings struct {
			PrimaryColor string `json:"primary_color"`
		} `json:"settings"`
	}
	decodeJSON(t, rec, &theme)
	if theme.Settings.PrimaryColor != "#ff0000" {
		t.Errorf("settings not persisted: %+v", theme.Settings)
	}
}

// ─── Pages ─────────────────────────────────────────────────────────────

func TestServer_CreatePageWithTemplate(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	_, pageID := createThemeAndPage(t, s)

	rec := doJSON(t, s, "GET", "/pages/"+pageID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var page struct {
		Blocks []map[string]any `json:"blocks"`
	}
	decodeJSON(t, rec, &page)
	if len(page.Blocks) == 0 {
		t.Error("landing template produced no blocks")
	}
}

func TestServer_SaveBlocksPreservesIDs(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	_, pageID := createThemeAndPage(t, s)

	blocks := `[{"id":"blk-stable","type":"text","props":{"content":"Hi","align":"left"}}]`
	rec := doJSON(t, s, "PUT", "/pages/"+pageID+"/blocks", blocks)
	if rec.Code != http.StatusOK {
		t.Fatalf("save blocks: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, "GET", "/pages/"+pageID, "")
	var page struct {
		Blocks []struct {
			ID string `json:"id"`
		} `json:"blocks"`
	}
	decodeJSON(t, rec, &page)
	if len(page.Blocks) != 1 || page.Blocks[0].ID != "blk-stable" {
		t.Fatalf("save must preserve block IDs: %+v", page.Blocks)
	}
}

func TestServer_SaveBlocks_RejectsDuplicateIDs(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	_, pageID := createThemeAndPage(t, s)

	blocks := `[{"id":"dup","type":"text","props":{"content":"a"}},{"id":"dup","type":"text","props":{"content":"b"}}]`
	rec := doJSON(t, s, "PUT", "/pages/"+pageID+"/blocks", blocks)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate IDs, got %d", rec.Code)
	}
}

// ─── Render, export, import ────────────────────────────────────────────

func TestServer_RenderPage(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	_, pageID := createThemeAndPage(t, s)

	rec := doJSON(t, s, "GET", "/pages/"+pageID+"/render?device=mobile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Error("render did not produce a document")
	}
}

func TestServer_ExportThenImportRegeneratesIDs(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	_, pageID := createThemeAndPage(t, s)

	doJSON(t, s, "PUT", "/pages/"+pageID+"/blocks",
		`[{"id":"blk-orig","type":"heading","props":{"text":"Title","level":1}}]`)

	rec := doJSON(t, s, "GET", "/pages/"+pageID+"/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d", rec.Code)
	}
	exported := rec.Body.String()

	rec = doJSON(t, s, "POST", "/themes/demo/pages/import?slug=copy&name=Copy", exported)
	if rec.Code != http.StatusCreated {
		t.Fatalf("import: %d %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Blocks []struct {
			ID string `json:"id"`
		} `json:"blocks"`
	}
	decodeJSON(t, rec, &page)
	if len(page.Blocks) != 1 || page.Blocks[0].ID == "blk-orig" {
		t.Fatalf("import must regenerate IDs: %+v", page.Blocks)
	}
}

func TestServer_ImportMalformedPayload(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	createThemeAndPage(t, s)

	rec := doJSON(t, s, "POST", "/themes/demo/pages/import?slug=bad&name=Bad", `{"blocks": [{"id": truncated`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed payload, got %d", rec.Code)
	}
}

func TestServer_ImportEmptyPayloadCreatesEmptyPage(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	createThemeAndPage(t, s)

	// A well-formed export with no blocks is a valid (empty) page.
	for i, payload := range []string{`[]`, `{"version":1,"blocks":[]}`} {
		slug := "empty-" + string(rune('a'+i))
		rec := doJSON(t, s, "POST", "/themes/demo/pages/import?slug="+slug+"&name=Empty", payload)
		if rec.Code != http.StatusCreated {
			t.Fatalf("import %q: %d %s", payload, rec.Code, rec.Body.String())
		}
		var page struct {
			Blocks []json.RawMessage `json:"blocks"`
		}
		decodeJSON(t, rec, &page)
		if len(page.Blocks) != 0 {
			t.Fatalf("expected an empty page, got %d blocks", len(page.Blocks))
		}
	}
}

// ─── Editor websocket ─────────────────────────────────────────────────

func TestServer_EditorSessionOverWebSocket(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	_, pageID := createThemeAndPage(t, s)

	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/pages/" + pageID + "/edit"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp != nil {
		resp.Body.Close()
	}

	var ev struct {
		Seq    uint64            `json:"seq"`
		Type   string            `json:"type"`
		Blocks []json.RawMessage `json:"blocks"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read opening document: %v", err)
	}
	if ev.Type != "document" || len(ev.Blocks) == 0 {
		t.Fatalf("first event: %+v", ev)
	}
	firstSeq := ev.Seq
	opening := len(ev.Blocks)

	if err := conn.WriteJSON(map[string]any{"type": "add_block", "block_type": "text"}); err != nil {
		t.Fatalf("send command: %v", err)
	}

	// The very next frame is the command's result — never a replay of the
	// opening document.
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read command result: %v", err)
	}
	if ev.Seq == firstSeq || len(ev.Blocks) != opening+1 {
		t.Fatalf("second event seq=%d blocks=%d, opening seq=%d blocks=%d",
			ev.Seq, len(ev.Blocks), firstSeq, opening)
	}
}

// ─── Catalog ───────────────────────────────────────────────────────────

func TestServer_ListBlockDefinitions(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/blocks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var defs []map[string]any
	decodeJSON(t, rec, &defs)
	if len(defs) < 30 {
		t.Errorf("expected the full block catalog, got %d entries", len(defs))
	}
}

func TestServer_ListTemplates(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/templates", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var tpls []map[string]any
	decodeJSON(t, rec, &tpls)
	if len(tpls) == 0 {
		t.Error("expected page templates")
	}
}

// ─── Revisions ─────────────────────────────────────────────────────────

func TestServer_RevisionLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	_, pageID := createThemeAndPage(t, s)

	doJSON(t, s, "PUT", "/pages/"+pageID+"/blocks",
		`[{"id":"v1","type":"text","props":{"content":"first"}}]`)
	rec := doJSON(t, s, "POST", "/pages/"+pageID+"/revisions", `{"message":"first draft","author":"sam"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save revision: %d %s", rec.Code, rec.Body.String())
	}
	var rev struct {
		ID string `json:"id"`
	}
	decodeJSON(t, rec, &rev)

	doJSON(t, s, "PUT", "/pages/"+pageID+"/blocks",
		`[{"id":"v2","type":"text","props":{"content":"second"}}]`)
	doJSON(t, s, "POST", "/pages/"+pageID+"/revisions", `{"message":"second draft"}`)

	rec = doJSON(t, s, "GET", "/pages/"+pageID+"/revisions", "")
	var revs []map[string]any
	decodeJSON(t, rec, &revs)
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revs))
	}

	// Restoring the first revision puts its blocks back on the page.
	rec = doJSON(t, s, "POST", "/revisions/"+rev.ID+"/restore", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("restore: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, s, "GET", "/pages/"+pageID, "")
	var page struct {
		Blocks []struct {
			ID string `json:"id"`
		} `json:"blocks"`
	}
	decodeJSON(t, rec, &page)
	if len(page.Blocks) != 1 || page.Blocks[0].ID != "v1" {
		t.Fatalf("restore lost the original blocks: %+v", page.Blocks)
	}
}

func TestServer_GetRevision_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/revisions/nonexistent", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// ─── Settings ──────────────────────────────────────────────────────────

func TestServer_SiteSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/settings/site", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("defaults: %d", rec.Code)
	}

	rec = doJSON(t, s, "PUT", "/settings/site", `{"title":"Demo Site","language":"en"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put site: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, "PUT", "/settings/smtp", `{"host":"","port":0,"from_email":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid smtp, got %d", rec.Code)
	}
}

// ─── Plugins ───────────────────────────────────────────────────────────

func TestServer_PluginLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/plugins", `{"slug":"seo-toolkit","name":"SEO Toolkit","version":"1.0.0"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("install plugin: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, "PUT", "/plugins/seo-toolkit/enabled", `{"enabled":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("enable plugin: %d", rec.Code)
	}

	rec = doJSON(t, s, "GET", "/plugins", "")
	var plugins []map[string]any
	decodeJSON(t, rec, &plugins)
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	rec = doJSON(t, s, "DELETE", "/plugins/seo-toolkit", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("remove plugin: %d", rec.Code)
	}
}

// ─── Media ─────────────────────────────────────────────────────────────

func TestServer_MediaUpload(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "logo.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte("fake png bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}

	var up struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	decodeJSON(t, rec, &up)
	if !strings.HasPrefix(up.URL, "/media/") {
		t.Fatalf("unexpected upload url %q", up.URL)
	}

	rec = doJSON(t, s, "GET", "/media/"+up.Name, "")
	if rec.Code != http.StatusOK || rec.Body.String() != "fake png bytes" {
		t.Fatalf("fetch upload: %d %q", rec.Code, rec.Body.String())
	}
}

// ─── Sessions ──────────────────────────────────────────────────────────

func TestServer_ListSessions_Empty(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/sessions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
