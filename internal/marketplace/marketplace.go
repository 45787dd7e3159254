// Package marketplace talks to a remote theme catalog: browsing, installing
// theme packages into the local registry, and capturing preview screenshots.
package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/document"
	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/registry"
	"github.com/nodepress/designer/internal/webclient"
)

var (
	ErrEntryNotFound    = errors.New("marketplace entry not found")
	ErrMalformedPackage = errors.New("malformed theme package")
)

// CatalogEntry is one theme offered by the marketplace.
type CatalogEntry struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Version     string  `json:"version"`
	Author      string  `json:"author,omitempty"`
	Price       float64 `json:"price,omitempty"`
	PreviewURL  string  `json:"preview_url,omitempty"`
	PackageURL  string  `json:"package_url"`
}

// PackagePage is one page inside a downloadable theme package. Blocks carry
// the block model's export format and go through the importer, so installing
// the same package twice never produces colliding block IDs.
type PackagePage struct {
	Name   string          `json:"name"`
	Slug   string          `json:"slug"`
	IsHome bool            `json:"is_home,omitempty"`
	Blocks json.RawMessage `json:"blocks"`
}

// ThemePackage is the downloadable artifact behind a catalog entry.
type ThemePackage struct {
	Name        string                  `json:"name"`
	Slug        string                  `json:"slug"`
	Description string                  `json:"description,omitempty"`
	Settings    *document.ThemeSettings `json:"settings,omitempty"`
	Pages       []PackagePage           `json:"pages"`
}

// Client fetches catalog data over a WebClient backend. Screenshots use a
// separate renderer client so browse/install never pay browser startup cost.
type Client struct {
	baseURL  string
	fetch    webclient.WebClient
	renderer webclient.WebClient
	logger   logging.Logger
}

// NewClient builds a marketplace client. renderer may be nil; Screenshot
// then reports an error instead of rendering.
func NewClient(baseURL string, fetch webclient.WebClient, renderer webclient.WebClient, logger logging.Logger) (*Client, error) {
	if fetch == nil {
		return nil, errors.New("marketplace: nil webclient")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, errors.New("marketplace: base URL is required")
	}
	return &Client{
		baseURL:  baseURL,
		fetch:    fetch,
		renderer: renderer,
		logger:   logger.With(logging.Field{Key: "component", Value: "marketplace"}),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	resp, err := c.fetch.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// Browse fetches the remote catalog.
func (c *Client) Browse(ctx context.Context) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	if err := c.getJSON(ctx, c.baseURL+"/catalog.json", &entries); err != nil {
		return nil, err
	}
	c.logger.Debug("catalog fetched", logging.Field{Key: "entries", Value: len(entries)})
	return entries, nil
}

// Entry resolves a catalog entry by slug.
func (c *Client) Entry(ctx context.Context, slug string) (*CatalogEntry, error) {
	entries, err := c.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Slug == slug {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, slug)
}

// Download fetches and validates the package behind a catalog entry.
func (c *Client) Download(ctx context.Context, entry *CatalogEntry) (*ThemePackage, error) {
	if entry == nil || entry.PackageURL == "" {
		return nil, ErrMalformedPackage
	}
	var pkg ThemePackage
	if err := c.getJSON(ctx, entry.PackageURL, &pkg); err != nil {
		return nil, err
	}
	if pkg.Name == "" || len(pkg.Pages) == 0 {
		return nil, fmt.Errorf("%w: missing name or pages", ErrMalformedPackage)
	}
	return &pkg, nil
}

// Install downloads a theme package and imports it into the registry. Block
// IDs are regenerated on import. If any step fails the partially created
// theme is removed, so local state is unchanged on failure.
func (c *Client) Install(ctx context.Context, reg *registry.Registry, slug string) (*document.Theme, error) {
	entry, err := c.Entry(ctx, slug)
	if err != nil {
		return nil, err
	}
	pkg, err := c.Download(ctx, entry)
	if err != nil {
		return nil, err
	}

	// Validate every page before touching the registry.
	imported := make([][]block.ContentBlock, len(pkg.Pages))
	for i, page := range pkg.Pages {
		blocks := block.ImportBlocks(page.Blocks)
		if blocks == nil && !block.EmptyDocument(page.Blocks) {
			return nil, fmt.Errorf("%w: page %q", ErrMalformedPackage, page.Slug)
		}
		imported[i] = blocks
	}

	theme, err := reg.CreateTheme(ctx, pkg.Slug, pkg.Name, pkg.Description)
	if err != nil {
		return nil, fmt.Errorf("install %s: %w", slug, err)
	}
	cleanup := func() {
		if derr := reg.DeleteTheme(ctx, theme.ID); derr != nil {
			c.logger.Warn("failed to clean up partial install",
				logging.Field{Key: "theme_id", Value: theme.ID},
				logging.Field{Key: "error", Value: derr.Error()})
		}
	}

	if pkg.Settings != nil {
		if err := reg.UpdateThemeSettings(ctx, theme.ID, *pkg.Settings); err != nil {
			cleanup()
			return nil, fmt.Errorf("install %s: %w", slug, err)
		}
		theme.Settings = *pkg.Settings
	}

	for i, page := range pkg.Pages {
		created, err := reg.CreatePage(ctx, theme.ID, page.Slug, page.Name)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("install %s: %w", slug, err)
		}
		if err := reg.SavePageBlocks(ctx, created.ID, imported[i]); err != nil {
			cleanup()
			return nil, fmt.Errorf("install %s: %w", slug, err)
		}
		if page.IsHome {
			if err := reg.SetHomePage(ctx, created.ID); err != nil {
				cleanup()
				return nil, fmt.Errorf("install %s: %w", slug, err)
			}
		}
	}

	c.logger.Info("theme installed",
		logging.Field{Key: "slug", Value: theme.Slug},
		logging.Field{Key: "pages", Value: len(pkg.Pages)})

	return theme, nil
}

// Screenshot captures a preview image of a marketplace theme's demo page.
func (c *Client) Screenshot(ctx context.Context, previewURL string) ([]byte, error) {
	if c.renderer == nil {
		return nil, errors.New("marketplace: no renderer backend configured")
	}
	resp, err := c.renderer.Do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     previewURL,
		Options: map[string]string{"screenshot": "true"},
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", previewURL, err)
	}
	if len(resp.Screenshot) == 0 {
		return nil, fmt.Errorf("screenshot %s: backend returned no image", previewURL)
	}
	return resp.Screenshot, nil
}
