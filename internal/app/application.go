// Package app wires the theme designer's services together: the registry
// database, revision tracker, media store, editor sessions and the
// marketplace client. Pass Application into modules that need shared state
// rather than using package-level variables.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/nodepress/designer/internal/editor"
	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/marketplace"
	"github.com/nodepress/designer/internal/media"
	"github.com/nodepress/designer/internal/metrics"
	"github.com/nodepress/designer/internal/preview"
	"github.com/nodepress/designer/internal/registry"
	"github.com/nodepress/designer/internal/revision"
	"github.com/nodepress/designer/internal/settings"
	"github.com/nodepress/designer/internal/webclient"
)

// Application is the global runtime state container.
type Application struct {
	Config *Config
	Logger logging.Logger

	Registry    *registry.Registry
	Revisions   *revision.Tracker
	Media       *media.Store
	Settings    *settings.Service
	Editor      *editor.Manager
	Marketplace *marketplace.Client
	Preview     *preview.Analyzer
	Metrics     *metrics.Metrics

	db     *sql.DB
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication opens the database and constructs every service. The caller
// owns the returned Application and must Shutdown it.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		return nil, errors.New("app: logger is required")
	}

	if err := os.MkdirAll(cfg.StorageRoot, 0755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	reg, err := registry.NewRegistry(db, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init registry: %w", err)
	}

	tracker, err := revision.NewTracker(db, cfg.BlobsDir(), logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init revision tracker: %w", err)
	}

	mediaStore, err := media.NewStore(cfg.MediaDir(), cfg.MediaURLPrefix, cfg.MediaMaxBytes, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init media store: %w", err)
	}

	webclient.RegisterDefaultBackends()
	fetchClient, err := webclient.New(&cfg.WebClientCfg, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init webclient: %w", err)
	}

	// Screenshots need a real browser. Keep it optional: without chromedp
	// available the marketplace still browses and installs.
	var renderClient webclient.WebClient
	if cfg.WebClientCfg.Backend != "chromedp" {
		rcfg := cfg.WebClientCfg
		rcfg.Backend = "chromedp"
		if rc, err := webclient.New(&rcfg, logger); err == nil {
			renderClient = rc
		} else {
			logger.Warn("chromedp backend unavailable, screenshots disabled",
				logging.Field{Key: "error", Value: err.Error()})
		}
	} else {
		renderClient = fetchClient
	}

	market, err := marketplace.NewClient(cfg.MarketplaceURL, fetchClient, renderClient, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init marketplace client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		Config:      cfg,
		Logger:      logger,
		Registry:    reg,
		Revisions:   tracker,
		Media:       mediaStore,
		Settings:    settings.NewService(reg, logger),
		Editor:      editor.NewManager(logger),
		Marketplace: market,
		Preview:     preview.NewAnalyzer(logger),
		Metrics:     metrics.New(),
		db:          db,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Context is cancelled when the application shuts down.
func (a *Application) Context() context.Context {
	return a.ctx
}

// Shutdown closes sessions and releases the database handle.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	a.Editor.CloseAll()
	a.cancel()

	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
