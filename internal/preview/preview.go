// Package preview inspects rendered page HTML and produces an asset manifest
// and an SEO summary for the editor's preview panel.
package preview

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/utils"
)

// Analysis is the result of inspecting one rendered page.
type Analysis struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description,omitempty"`
	Images          []Asset  `json:"images,omitempty"`
	Media           []Asset  `json:"media,omitempty"`
	Stylesheets     []string `json:"stylesheets,omitempty"`
	Scripts         []string `json:"scripts,omitempty"`
	InternalLinks   []string `json:"internal_links,omitempty"`
	ExternalLinks   []string `json:"external_links,omitempty"`
	WordCount       int      `json:"word_count"`
	HeadingCount    int      `json:"heading_count"`
	MissingAltCount int      `json:"missing_alt_count"`
}

// Asset is one referenced image or media source.
type Asset struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Analyzer parses rendered HTML. baseURL anchors relative references and
// splits links into internal and external.
type Analyzer struct {
	logger logging.Logger
}

func NewAnalyzer(logger logging.Logger) *Analyzer {
	return &Analyzer{
		logger: logger.With(logging.Field{Key: "component", Value: "preview"}),
	}
}

// Analyze inspects a rendered HTML document.
func (a *Analyzer) Analyze(html []byte, baseURL string) (*Analysis, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := utils.NewURLTools(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	out := &Analysis{
		Title:           strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: doc.Find(`meta[name="description"]`).AttrOr("content", ""),
	}

	resolve := func(ref string) string {
		abs, err := base.ResolveFullURLString(ref)
		if err != nil {
			return ref
		}
		return abs
	}

	seen := map[string]bool{}
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		abs := resolve(src)
		alt := s.AttrOr("alt", "")
		if alt == "" {
			out.MissingAltCount++
		}
		if !seen["img:"+abs] {
			seen["img:"+abs] = true
			out.Images = append(out.Images, Asset{URL: abs, Alt: alt})
		}
	})

	doc.Find("video[src], audio[src], source[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		abs := resolve(src)
		if !seen["media:"+abs] {
			seen["media:"+abs] = true
			out.Media = append(out.Media, Asset{URL: abs})
		}
	})

	doc.Find(`link[rel="stylesheet"][href]`).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			out.Stylesheets = append(out.Stylesheets, resolve(href))
		}
	})
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			out.Scripts = append(out.Scripts, resolve(src))
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return
		}
		abs := resolve(href)
		if seen["a:"+abs] {
			return
		}
		seen["a:"+abs] = true
		if same, err := base.DomainIsSameString(abs); err == nil && same {
			out.InternalLinks = append(out.InternalLinks, abs)
		} else {
			out.ExternalLinks = append(out.ExternalLinks, abs)
		}
	})

	body := doc.Find("body").Text()
	out.WordCount = len(strings.Fields(body))
	out.HeadingCount = doc.Find("h1, h2, h3, h4, h5, h6").Length()

	a.logger.Debug("page analyzed",
		logging.Field{Key: "images", Value: len(out.Images)},
		logging.Field{Key: "words", Value: out.WordCount})

	return out, nil
}
