package app

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/nodepress/designer/internal/webclient"
)

// Config is the runtime configuration shared across internal modules.
type Config struct {
	// ListenAddr is the address the API server binds to.
	ListenAddr string

	// StorageRoot is the base path where the database, revision blobs and
	// media uploads live.
	StorageRoot string

	// MarketplaceURL is the base URL of the theme marketplace catalog.
	MarketplaceURL string

	// MediaURLPrefix is the public path uploads are served under.
	MediaURLPrefix string

	// MediaMaxBytes caps upload size. Zero means the package default.
	MediaMaxBytes int64

	// WebClientCfg configures the fetching backends. Marketplace downloads
	// use the configured backend; screenshots always need chromedp.
	WebClientCfg webclient.Config
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     ":8080",
		StorageRoot:    "./data",
		MarketplaceURL: "https://marketplace.nodepress.dev",
		MediaURLPrefix: "/media",
		WebClientCfg:   *webclient.DefaultConfig(),
	}
}

// FromEnv overlays DESIGNER_* environment variables on the defaults.
func FromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("DESIGNER_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DESIGNER_STORAGE_ROOT"); v != "" {
		cfg.StorageRoot = v
	}
	if v := os.Getenv("DESIGNER_MARKETPLACE_URL"); v != "" {
		cfg.MarketplaceURL = v
	}
	if v := os.Getenv("DESIGNER_MEDIA_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MediaMaxBytes = n
		}
	}
	if v := os.Getenv("DESIGNER_WEBCLIENT_BACKEND"); v != "" {
		cfg.WebClientCfg.Backend = v
	}
	return cfg
}

// DatabasePath is the SQLite file under the storage root.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.StorageRoot, "designer.db")
}

// BlobsDir is where revision bodies are stored.
func (c *Config) BlobsDir() string {
	return filepath.Join(c.StorageRoot, "blobs")
}

// MediaDir is where uploads are stored.
func (c *Config) MediaDir() string {
	return filepath.Join(c.StorageRoot, "media")
}
