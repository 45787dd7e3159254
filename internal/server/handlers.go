package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/document"
	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/renderer"
	"github.com/nodepress/designer/internal/settings"
)

// --- Themes ---

func (s *Server) handleCreateTheme(w http.ResponseWriter, r *http.Request) {
	var body CreateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	theme, err := s.app.Registry.CreateTheme(r.Context(), body.Slug, body.Name, body.Description)
	if err != nil {
		s.serviceError(w, err, "creating theme")
		return
	}
	s.logger.Info("created theme", logging.Field{Key: "slug", Value: theme.Slug})
	writeJSON(w, http.StatusCreated, theme)
}

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := s.app.Registry.ListThemes(r.Context())
	if err != nil {
		s.serviceError(w, err, "listing themes")
		return
	}
	writeJSON(w, http.StatusOK, themes)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.app.Registry.GetTheme(r.Context(), chi.URLParam(r, "theme"))
	if err != nil {
		s.serviceError(w, err, "getting theme")
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

func (s *Server) handleUpdateThemeSettings(w http.ResponseWriter, r *http.Request) {
	theme, err := s.app.Registry.GetTheme(r.Context(), chi.URLParam(r, "theme"))
	if err != nil {
		s.serviceError(w, err, "getting theme")
		return
	}

	var body document.ThemeSettings
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.app.Registry.UpdateThemeSettings(r.Context(), theme.ID, body); err != nil {
		s.serviceError(w, err, "updating theme settings")
		return
	}
	theme.Settings = body
	writeJSON(w, http.StatusOK, theme)
}

func (s *Server) handleDeleteTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.app.Registry.GetTheme(r.Context(), chi.URLParam(r, "theme"))
	if err != nil {
		s.serviceError(w, err, "getting theme")
		return
	}
	if err := s.app.Registry.DeleteTheme(r.Context(), theme.ID); err != nil {
		s.serviceError(w, err, "deleting theme")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// --- Pages ---

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	theme := chi.URLParam(r, "theme")

	var body CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	page, err := s.app.Registry.CreatePage(r.Context(), theme, body.Slug, body.Name)
	if err != nil {
		s.serviceError(w, err, "creating page")
		return
	}

	if body.Template != "" {
		if err := document.ApplyTemplate(page, body.Template); err != nil {
			s.serviceError(w, err, "applying template")
			return
		}
		if err := s.app.Registry.SavePageBlocks(r.Context(), page.ID, page.Blocks); err != nil {
			s.serviceError(w, err, "saving template blocks")
			return
		}
	}

	s.logger.Info("created page",
		logging.Field{Key: "theme", Value: theme},
		logging.Field{Key: "slug", Value: page.Slug})
	writeJSON(w, http.StatusCreated, page)
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.app.Registry.ListPages(r.Context(), chi.URLParam(r, "theme"))
	if err != nil {
		s.serviceError(w, err, "listing pages")
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.app.Registry.GetPage(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		s.serviceError(w, err, "getting page")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSavePageBlocks(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")

	// Saving preserves block IDs exactly; import is the endpoint that
	// regenerates them.
	var blocks []block.ContentBlock
	if err := json.NewDecoder(r.Body).Decode(&blocks); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := document.ValidateUniqueIDs(blocks); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.app.Registry.SavePageBlocks(r.Context(), pageID, blocks); err != nil {
		s.serviceError(w, err, "saving page blocks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"blocks": len(blocks)})
}

func (s *Server) handleSetHomePage(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Registry.SetHomePage(r.Context(), chi.URLParam(r, "pageID")); err != nil {
		s.serviceError(w, err, "setting home page")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Registry.DeletePage(r.Context(), chi.URLParam(r, "pageID")); err != nil {
		s.serviceError(w, err, "deleting page")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// --- Rendering, preview, export, import ---

func (s *Server) pageWithSettings(r *http.Request, pageID string) (*document.ThemePage, document.ThemeSettings, error) {
	page, err := s.app.Registry.GetPage(r.Context(), pageID)
	if err != nil {
		return nil, document.ThemeSettings{}, err
	}
	theme, err := s.app.Registry.GetTheme(r.Context(), page.ThemeID)
	if err != nil {
		return nil, document.ThemeSettings{}, err
	}
	return page, theme.Settings, nil
}

func deviceParam(r *http.Request) block.Device {
	switch r.URL.Query().Get("device") {
	case "mobile":
		return block.DeviceMobile
	case "tablet":
		return block.DeviceTablet
	default:
		return block.DeviceDesktop
	}
}

func (s *Server) handleRenderPage(w http.ResponseWriter, r *http.Request) {
	page, themeSettings, err := s.pageWithSettings(r, chi.URLParam(r, "pageID"))
	if err != nil {
		s.serviceError(w, err, "rendering page")
		return
	}

	device := deviceParam(r)
	start := time.Now()
	html := renderer.RenderPage(*page, themeSettings, device)
	s.app.Metrics.ObserveRender(string(device), nil, time.Since(start))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, html)
}

func (s *Server) handlePreviewPage(w http.ResponseWriter, r *http.Request) {
	page, themeSettings, err := s.pageWithSettings(r, chi.URLParam(r, "pageID"))
	if err != nil {
		s.serviceError(w, err, "previewing page")
		return
	}

	site, err := s.app.Settings.Site(r.Context())
	if err != nil {
		s.serviceError(w, err, "loading site settings")
		return
	}
	baseURL := site.URL
	if baseURL == "" {
		baseURL = "http://localhost"
	}

	html := renderer.RenderPage(*page, themeSettings, deviceParam(r))
	analysis, err := s.app.Preview.Analyze([]byte(html), baseURL)
	if err != nil {
		s.serviceError(w, err, "analyzing page")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleExportPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.app.Registry.GetPage(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		s.serviceError(w, err, "exporting page")
		return
	}
	data, err := block.ExportBlocks(page.Blocks)
	if err != nil {
		s.serviceError(w, err, "encoding export")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+page.Slug+`.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	theme := chi.URLParam(r, "theme")
	slug := r.URL.Query().Get("slug")
	name := r.URL.Query().Get("name")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body")
		return
	}

	blocks := block.ImportBlocks(payload)
	if blocks == nil && !block.EmptyDocument(payload) {
		writeError(w, http.StatusBadRequest, "malformed export payload")
		return
	}

	page, err := s.app.Registry.CreatePage(r.Context(), theme, slug, name)
	if err != nil {
		s.serviceError(w, err, "creating imported page")
		return
	}
	if err := s.app.Registry.SavePageBlocks(r.Context(), page.ID, blocks); err != nil {
		s.serviceError(w, err, "saving imported blocks")
		return
	}
	page.Blocks = blocks

	s.logger.Info("imported page",
		logging.Field{Key: "theme", Value: theme},
		logging.Field{Key: "slug", Value: page.Slug},
		logging.Field{Key: "blocks", Value: len(blocks)})
	writeJSON(w, http.StatusCreated, page)
}

// --- Block catalog and templates ---

func (s *Server) handleListBlockDefinitions(w http.ResponseWriter, r *http.Request) {
	defs := block.Definitions()
	out := make([]map[string]any, 0, len(defs))
	for _, d := range defs {
		out = append(out, map[string]any{
			"type":     d.Type,
			"label":    d.Label,
			"icon":     d.Icon,
			"category": d.Category,
			"defaults": d.NewProps(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, document.Templates())
}

// --- Revisions ---

func (s *Server) handleSaveRevision(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")

	var body SaveRevisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	page, err := s.app.Registry.GetPage(r.Context(), pageID)
	if err != nil {
		s.serviceError(w, err, "getting page")
		return
	}

	rev, err := s.app.Revisions.Save(r.Context(), page.ID, page.Blocks, body.Message, body.Author)
	if err != nil {
		s.app.Metrics.RevisionSaveTotal.WithLabelValues("error").Inc()
		s.serviceError(w, err, "saving revision")
		return
	}
	s.app.Metrics.RevisionSaveTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusCreated, rev)
}

func (s *Server) handleListRevisions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}
	revs, err := s.app.Revisions.List(r.Context(), chi.URLParam(r, "pageID"), limit)
	if err != nil {
		s.serviceError(w, err, "listing revisions")
		return
	}
	writeJSON(w, http.StatusOK, revs)
}

func (s *Server) handleGetRevision(w http.ResponseWriter, r *http.Request) {
	rev, err := s.app.Revisions.Get(r.Context(), chi.URLParam(r, "revisionID"))
	if err != nil {
		s.serviceError(w, err, "getting revision")
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (s *Server) handleDiffRevision(w http.ResponseWriter, r *http.Request) {
	headID := chi.URLParam(r, "revisionID")
	baseID := r.URL.Query().Get("against")
	if baseID == "" {
		// Default to the revision's parent.
		rev, err := s.app.Revisions.Get(r.Context(), headID)
		if err != nil {
			s.serviceError(w, err, "getting revision")
			return
		}
		baseID = rev.ParentID
	}

	diff, err := s.app.Revisions.Diff(r.Context(), baseID, headID)
	if err != nil {
		s.serviceError(w, err, "diffing revisions")
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

func (s *Server) handleRestoreRevision(w http.ResponseWriter, r *http.Request) {
	revisionID := chi.URLParam(r, "revisionID")
	author := r.URL.Query().Get("author")

	blocks, rev, err := s.app.Revisions.Restore(r.Context(), revisionID, author)
	if err != nil {
		s.serviceError(w, err, "restoring revision")
		return
	}
	if err := s.app.Registry.SavePageBlocks(r.Context(), rev.PageID, blocks); err != nil {
		s.serviceError(w, err, "saving restored blocks")
		return
	}
	s.logger.Info("restored revision",
		logging.Field{Key: "revision_id", Value: revisionID},
		logging.Field{Key: "page_id", Value: rev.PageID})
	writeJSON(w, http.StatusOK, rev)
}

// --- Marketplace ---

func (s *Server) handleMarketplaceCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.app.Marketplace.Browse(r.Context())
	if err != nil {
		s.serviceError(w, err, "browsing marketplace")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMarketplaceInstall(w http.ResponseWriter, r *http.Request) {
	var body InstallThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	theme, err := s.app.Marketplace.Install(r.Context(), s.app.Registry, body.Slug)
	if err != nil {
		s.serviceError(w, err, "installing theme")
		return
	}
	s.logger.Info("installed marketplace theme", logging.Field{Key: "slug", Value: theme.Slug})
	writeJSON(w, http.StatusCreated, theme)
}

// --- Settings ---

func (s *Server) handleGetSMTPSettings(w http.ResponseWriter, r *http.Request) {
	v, err := s.app.Settings.SMTP(r.Context())
	if err != nil {
		s.serviceError(w, err, "getting smtp settings")
		return
	}
	if v == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePutSMTPSettings(w http.ResponseWriter, r *http.Request) {
	var body settings.SMTPSettings
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.app.Settings.PutSMTP(r.Context(), body); err != nil {
		s.serviceError(w, err, "updating smtp settings")
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleGetPaymentSettings(w http.ResponseWriter, r *http.Request) {
	v, err := s.app.Settings.Payment(r.Context())
	if err != nil {
		s.serviceError(w, err, "getting payment settings")
		return
	}
	if v == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePutPaymentSettings(w http.ResponseWriter, r *http.Request) {
	var body settings.PaymentSettings
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.app.Settings.PutPayment(r.Context(), body); err != nil {
		s.serviceError(w, err, "updating payment settings")
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleGetSiteSettings(w http.ResponseWriter, r *http.Request) {
	v, err := s.app.Settings.Site(r.Context())
	if err != nil {
		s.serviceError(w, err, "getting site settings")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePutSiteSettings(w http.ResponseWriter, r *http.Request) {
	var body settings.SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.app.Settings.PutSite(r.Context(), body); err != nil {
		s.serviceError(w, err, "updating site settings")
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// --- Plugins ---

func (s *Server) handleInstallPlugin(w http.ResponseWriter, r *http.Request) {
	var body InstallPluginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := s.app.Registry.InstallPlugin(r.Context(), body.Slug, body.Name, body.Version)
	if err != nil {
		s.serviceError(w, err, "installing plugin")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	plugins, err := s.app.Registry.ListPlugins(r.Context())
	if err != nil {
		s.serviceError(w, err, "listing plugins")
		return
	}
	writeJSON(w, http.StatusOK, plugins)
}

func (s *Server) handleSetPluginEnabled(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	slug := chi.URLParam(r, "slug")
	if err := s.app.Registry.SetPluginEnabled(r.Context(), slug, body.Enabled); err != nil {
		s.serviceError(w, err, "toggling plugin")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": body.Enabled})
}

func (s *Server) handleRemovePlugin(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Registry.RemovePlugin(r.Context(), chi.URLParam(r, "slug")); err != nil {
		s.serviceError(w, err, "removing plugin")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// --- Media ---

func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	up, err := s.app.Media.Save(header.Filename, file)
	if err != nil {
		s.serviceError(w, err, "storing upload")
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.Media.List()
	if err != nil {
		s.serviceError(w, err, "listing uploads")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := s.app.Media.Open(name)
	if err != nil {
		s.serviceError(w, err, "opening upload")
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Media.Delete(chi.URLParam(r, "name")); err != nil {
		s.serviceError(w, err, "deleting upload")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
