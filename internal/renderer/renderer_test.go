package renderer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/document"
	"github.com/nodepress/designer/internal/renderer"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}
	return doc
}

func TestRenderBlock_VisibilityShortCircuits(t *testing.T) {
	hidden := false
	b := block.MustNew(block.TypeText)
	b.Props.(*block.TextProps).Content = "secret"
	b.Visibility = &block.Visibility{Mobile: &hidden}

	settings := document.DefaultThemeSettings()

	mobile := renderer.RenderBlock(b, settings, block.DeviceMobile)
	doc := parse(t, mobile)
	if doc.Find(".block-hidden").Length() != 1 {
		t.Fatalf("expected hidden placeholder, got %q", mobile)
	}
	if strings.Contains(mobile, "secret") {
		t.Fatal("hidden block leaked its content")
	}

	desktop := renderer.RenderBlock(b, settings, block.DeviceDesktop)
	doc = parse(t, desktop)
	if doc.Find("p").Text() != "secret" {
		t.Fatalf("desktop render missing content: %q", desktop)
	}
}

func TestRenderBlock_UnknownTypeFallback(t *testing.T) {
	settings := document.DefaultThemeSettings()

	cases := []block.ContentBlock{
		{ID: "a", Type: block.Type("widget-3000")},
		{ID: "b", Type: block.TypeText}, // nil props
		{ID: "c", Type: block.TypeText, Props: &block.ButtonProps{}},
	}
	for _, b := range cases {
		out := renderer.RenderBlock(b, settings, block.DeviceDesktop)
		doc := parse(t, out)
		if doc.Find(".block-unknown").Length() != 1 {
			t.Fatalf("block %s: expected fallback marker, got %q", b.ID, out)
		}
	}
}

func TestRenderBlock_WrapperAttributes(t *testing.T) {
	b := block.MustNew(block.TypeHeading)
	b.Props.(*block.HeadingProps).Text = "Hi"
	b.Animation = &block.Animation{Type: block.AnimationFade, Duration: 400, Delay: 100, Easing: "ease-out"}
	b.Link = &block.Link{Type: block.LinkExternal, URL: "https://example.com", NewTab: true}
	b.Style = &block.Style{Background: "#123", Padding: "12px"}

	out := renderer.RenderBlock(b, document.DefaultThemeSettings(), block.DeviceDesktop)
	doc := parse(t, out)

	wrapper := doc.Find("#block-" + b.ID)
	if wrapper.Length() != 1 {
		t.Fatalf("wrapper div missing: %q", out)
	}
	if !wrapper.HasClass("anim-fade") {
		t.Fatal("animation class missing")
	}
	if d, _ := wrapper.Attr("data-anim-duration"); d != "400ms" {
		t.Fatalf("data-anim-duration = %q", d)
	}
	style, _ := wrapper.Attr("style")
	if !strings.Contains(style, "background:#123") || !strings.Contains(style, "padding:12px") {
		t.Fatalf("style override missing: %q", style)
	}
	link := wrapper.Find("a")
	if target, _ := link.Attr("target"); target != "_blank" {
		t.Fatalf("new-tab link missing target, got %q", target)
	}
}

func TestRenderBlock_NoAnimationNoAttrs(t *testing.T) {
	b := block.MustNew(block.TypeText)
	out := renderer.RenderBlock(b, document.DefaultThemeSettings(), block.DeviceDesktop)
	if strings.Contains(out, "data-anim-duration") {
		t.Fatalf("no-animation block carries animation attrs: %q", out)
	}
}

func TestCountdownParts_ClampsAtZero(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	d, h, m, s := renderer.CountdownParts(now.Add(26*time.Hour+30*time.Minute+15*time.Second), now)
	if d != 1 || h != 2 || m != 30 || s != 15 {
		t.Fatalf("got %d/%d/%d/%d, want 1/2/30/15", d, h, m, s)
	}

	// A past target is all-zero, never negative.
	d, h, m, s = renderer.CountdownParts(now.Add(-48*time.Hour), now)
	if d != 0 || h != 0 || m != 0 || s != 0 {
		t.Fatalf("past target not clamped: %d/%d/%d/%d", d, h, m, s)
	}
}

func TestRenderCountdown_ExpiredAndMalformed(t *testing.T) {
	settings := document.DefaultThemeSettings()

	b := block.MustNew(block.TypeCountdown)
	p := b.Props.(*block.CountdownProps)
	p.TargetDate = "2001-01-01T00:00:00Z"
	p.ExpiredText = "Sale over"

	out := renderer.RenderBlock(b, settings, block.DeviceDesktop)
	doc := parse(t, out)
	if got := doc.Find(".countdown-expired").Text(); got != "Sale over" {
		t.Fatalf("expired countdown = %q", out)
	}

	p.TargetDate = "not-a-date"
	out = renderer.RenderBlock(b, settings, block.DeviceDesktop)
	if !strings.Contains(out, "countdown-unset") {
		t.Fatalf("malformed target date should render unset marker: %q", out)
	}
}

func TestPlaybackProgress_GuardsZeroDuration(t *testing.T) {
	if got := renderer.PlaybackProgress(30, 0); got != 0 {
		t.Fatalf("zero duration: got %v, want 0", got)
	}
	if got := renderer.PlaybackProgress(30, -1); got != 0 {
		t.Fatalf("negative duration: got %v, want 0", got)
	}
	if got := renderer.PlaybackProgress(30, 120); got != 25 {
		t.Fatalf("got %v, want 25", got)
	}
	if got := renderer.PlaybackProgress(500, 120); got != 100 {
		t.Fatalf("overshoot not capped: got %v", got)
	}
}

func TestStarFill_RoundsDown(t *testing.T) {
	cases := []struct {
		value float64
		max   int
		want  int
	}{
		{4.9, 5, 4},
		{3.0, 5, 3},
		{0.5, 5, 0},
		{-1, 5, 0},
		{7, 5, 5},
	}
	for _, c := range cases {
		if got := renderer.StarFill(c.value, c.max); got != c.want {
			t.Fatalf("StarFill(%v, %d) = %d, want %d", c.value, c.max, got, c.want)
		}
	}
}

func TestRenderRating_FloorsStars(t *testing.T) {
	b := block.MustNew(block.TypeRating)
	p := b.Props.(*block.RatingProps)
	p.Value = 3.7
	p.Max = 5

	out := renderer.RenderBlock(b, document.DefaultThemeSettings(), block.DeviceDesktop)
	doc := parse(t, out)
	stars := doc.Find(".stars").Text()
	if strings.Count(stars, "★") != 3 || strings.Count(stars, "☆") != 2 {
		t.Fatalf("3.7 must floor to 3 filled stars, got %q", stars)
	}
}

func TestRenderRow_RendersNestedBlocks(t *testing.T) {
	inner := block.MustNew(block.TypeText)
	inner.Props.(*block.TextProps).Content = "nested"
	row := block.MustNew(block.TypeRow)
	row.Props.(*block.RowProps).Columns[0].Blocks = []block.ContentBlock{inner}

	out := renderer.RenderBlock(row, document.DefaultThemeSettings(), block.DeviceDesktop)
	doc := parse(t, out)
	if doc.Find("#block-"+inner.ID).Length() != 1 {
		t.Fatalf("nested block not rendered: %q", out)
	}
	if doc.Find(".col").Length() != 2 {
		t.Fatalf("expected both default columns, got %d", doc.Find(".col").Length())
	}
}

func TestRenderPage_EscapesContent(t *testing.T) {
	b := block.MustNew(block.TypeText)
	b.Props.(*block.TextProps).Content = `<script>alert(1)</script>`

	page := document.ThemePage{Name: "Home", Blocks: []block.ContentBlock{b}}
	out := renderer.RenderPage(page, document.DefaultThemeSettings(), block.DeviceDesktop)
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Fatal("text content must be escaped")
	}
	doc := parse(t, out)
	if doc.Find("main").Length() != 1 {
		t.Fatal("page shell missing")
	}
}
