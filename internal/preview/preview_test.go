package preview_test

import (
	"testing"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/document"
	"github.com/nodepress/designer/internal/logging"
	"github.com/nodepress/designer/internal/preview"
	"github.com/nodepress/designer/internal/renderer"
)

func TestAnalyze_RenderedPage(t *testing.T) {
	img := block.MustNew(block.TypeImage)
	p := img.Props.(*block.ImageProps)
	p.URL = "/media/hero.jpg"
	p.Alt = "hero shot"

	btn := block.MustNew(block.TypeButton)
	btn.Props.(*block.ButtonProps).Text = "Visit"
	btn.Props.(*block.ButtonProps).URL = "https://partner.example.com"

	heading := block.MustNew(block.TypeHeading)
	heading.Props.(*block.HeadingProps).Text = "Welcome home"

	page := document.ThemePage{
		Name:   "Home",
		Blocks: []block.ContentBlock{heading, img, btn},
	}
	html := renderer.RenderPage(page, document.DefaultThemeSettings(), block.DeviceDesktop)

	a := preview.NewAnalyzer(logging.NewStdoutLogger("preview_test"))
	res, err := a.Analyze([]byte(html), "https://site.example.com/home")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Title != "Home" {
		t.Fatalf("title = %q", res.Title)
	}
	if len(res.Images) != 1 || res.Images[0].URL != "https://site.example.com/media/hero.jpg" {
		t.Fatalf("image manifest wrong: %+v", res.Images)
	}
	if res.MissingAltCount != 0 {
		t.Fatalf("alt text present, got missing=%d", res.MissingAltCount)
	}
	if len(res.ExternalLinks) != 1 || res.ExternalLinks[0] != "https://partner.example.com" {
		t.Fatalf("external links wrong: %+v", res.ExternalLinks)
	}
	if res.HeadingCount == 0 || res.WordCount == 0 {
		t.Fatalf("text stats empty: %+v", res)
	}
}

func TestAnalyze_FlagsMissingAltAndSplitsLinks(t *testing.T) {
	html := `<html><head><title>T</title><meta name="description" content="d"></head>
	<body>
	<img src="/a.png"><img src="/b.png" alt="b">
	<a href="/about">About</a>
	<a href="https://other.example.org/x">Out</a>
	<a href="#frag">skip</a>
	<a href="mailto:hi@example.com">skip</a>
	</body></html>`

	a := preview.NewAnalyzer(logging.NewStdoutLogger("preview_test"))
	res, err := a.Analyze([]byte(html), "https://site.example.com")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.MissingAltCount != 1 {
		t.Fatalf("missing alt = %d, want 1", res.MissingAltCount)
	}
	if res.MetaDescription != "d" {
		t.Fatalf("meta description = %q", res.MetaDescription)
	}
	if len(res.InternalLinks) != 1 || len(res.ExternalLinks) != 1 {
		t.Fatalf("link split wrong: internal=%v external=%v", res.InternalLinks, res.ExternalLinks)
	}
}

func TestAnalyze_MalformedBaseURL(t *testing.T) {
	a := preview.NewAnalyzer(logging.NewStdoutLogger("preview_test"))
	if _, err := a.Analyze([]byte("<html></html>"), "://bad"); err == nil {
		t.Fatal("bad base url must error")
	}
}
