// Package server is the HTTP + WebSocket API surface for the theme designer.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nodepress/designer/internal/app"
	"github.com/nodepress/designer/internal/document"
	"github.com/nodepress/designer/internal/editor"
	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/marketplace"
	"github.com/nodepress/designer/internal/media"
	"github.com/nodepress/designer/internal/metrics"
	"github.com/nodepress/designer/internal/registry"
	"github.com/nodepress/designer/internal/revision"
	"github.com/nodepress/designer/internal/settings"
)

// Server routes API requests to the application's services.
type Server struct {
	cfg      Config
	app      *app.Application
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer wraps an already-constructed application.
func NewServer(cfg Config, application *app.Application) (*Server, error) {
	if application == nil {
		return nil, errors.New("server: application is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = application.Config.ListenAddr
	}

	s := &Server{
		cfg:    cfg,
		app:    application,
		router: chi.NewRouter(),
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)
	r.Use(s.app.Metrics.Middleware)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Themes
	r.Post("/themes", s.handleCreateTheme)
	r.Get("/themes", s.handleListThemes)
	r.Get("/themes/{theme}", s.handleGetTheme)
	r.Put("/themes/{theme}/settings", s.handleUpdateThemeSettings)
	r.Delete("/themes/{theme}", s.handleDeleteTheme)

	// Pages
	r.Post("/themes/{theme}/pages", s.handleCreatePage)
	r.Get("/themes/{theme}/pages", s.handleListPages)
	r.Post("/themes/{theme}/pages/import", s.handleImportPage)
	r.Get("/pages/{pageID}", s.handleGetPage)
	r.Put("/pages/{pageID}/blocks", s.handleSavePageBlocks)
	r.Post("/pages/{pageID}/home", s.handleSetHomePage)
	r.Delete("/pages/{pageID}", s.handleDeletePage)

	// Rendering and export
	r.Get("/pages/{pageID}/render", s.handleRenderPage)
	r.Get("/pages/{pageID}/preview", s.handlePreviewPage)
	r.Get("/pages/{pageID}/export", s.handleExportPage)

	// Block catalog and page templates
	r.Get("/blocks", s.handleListBlockDefinitions)
	r.Get("/templates", s.handleListTemplates)

	// Revisions
	r.Post("/pages/{pageID}/revisions", s.handleSaveRevision)
	r.Get("/pages/{pageID}/revisions", s.handleListRevisions)
	r.Get("/revisions/{revisionID}", s.handleGetRevision)
	r.Get("/revisions/{revisionID}/diff", s.handleDiffRevision)
	r.Post("/revisions/{revisionID}/restore", s.handleRestoreRevision)

	// Marketplace
	r.Get("/marketplace/catalog", s.handleMarketplaceCatalog)
	r.Post("/marketplace/install", s.handleMarketplaceInstall)

	// Settings
	r.Get("/settings/smtp", s.handleGetSMTPSettings)
	r.Put("/settings/smtp", s.handlePutSMTPSettings)
	r.Get("/settings/payment", s.handleGetPaymentSettings)
	r.Put("/settings/payment", s.handlePutPaymentSettings)
	r.Get("/settings/site", s.handleGetSiteSettings)
	r.Put("/settings/site", s.handlePutSiteSettings)

	// Plugins
	r.Post("/plugins", s.handleInstallPlugin)
	r.Get("/plugins", s.handleListPlugins)
	r.Put("/plugins/{slug}/enabled", s.handleSetPluginEnabled)
	r.Delete("/plugins/{slug}", s.handleRemovePlugin)

	// Media
	r.Post("/media", s.handleUploadMedia)
	r.Get("/media", s.handleListMedia)
	r.Get("/media/{name}", s.handleGetMedia)
	r.Delete("/media/{name}", s.handleDeleteMedia)

	// Editor sessions over WebSocket
	r.Get("/ws/pages/{pageID}/edit", s.handleEditorWS)
	r.Get("/sessions", s.handleListSessions)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	// Multipart uploads are not worth replaying into the log.
	if r.Body != nil && r.Header.Get("Content-Type") == "application/json" &&
		(r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrThemeNotFound),
		errors.Is(err, registry.ErrPageNotFound),
		errors.Is(err, registry.ErrPluginNotFound),
		errors.Is(err, revision.ErrRevisionNotFound),
		errors.Is(err, marketplace.ErrEntryNotFound),
		errors.Is(err, media.ErrUploadNotFound),
		errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, document.ErrBlockNotFound),
		errors.Is(err, document.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrSlugTaken):
		return http.StatusConflict
	case errors.Is(err, settings.ErrInvalid),
		errors.Is(err, marketplace.ErrMalformedPackage),
		errors.Is(err, media.ErrUnsupportedType),
		errors.Is(err, media.ErrEmptyUpload):
		return http.StatusBadRequest
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) serviceError(w http.ResponseWriter, err error, op string) {
	s.logger.Warn(op, logging.Field{Key: "error", Value: err.Error()})
	writeError(w, statusFor(err), err.Error())
}
