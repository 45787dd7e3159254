// Package renderer turns content blocks into HTML. Rendering is a pure
// function of (block, theme settings, device): no side effects, no I/O, and a
// single corrupt block degrades to a visible marker instead of failing the
// page.
package renderer

import (
	"fmt"
	"html"
	"strings"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/document"
)

// RenderPage renders a page's block list into a full HTML document for the
// given preview device.
func RenderPage(page document.ThemePage, settings document.ThemeSettings, device block.Device) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<meta charset=\"utf-8\">\n<title>%s</title>\n", esc(page.Name))
	fmt.Fprintf(&b,
		"<style>body{margin:0;font-family:%s;font-size:%s;color:%s;background:%s}main{max-width:%s;margin:0 auto}</style>\n",
		settings.FontFamily, settings.BaseFontSize, settings.TextColor, settings.Background, settings.ContentWidth)
	b.WriteString("</head>\n<body>\n<main>\n")
	for _, blk := range page.Blocks {
		b.WriteString(RenderBlock(blk, settings, device))
		b.WriteByte('\n')
	}
	b.WriteString("</main>\n</body>\n</html>\n")
	return b.String()
}

// RenderBlock renders a single block. The device visibility check runs first
// and short-circuits to a placeholder; an unrecognized or corrupt block
// renders a visible fallback marker, never panics.
func RenderBlock(b block.ContentBlock, settings document.ThemeSettings, device block.Device) string {
	if !b.Visibility.On(device) {
		return fmt.Sprintf(`<div class="block-hidden" data-block-id="%s">Hidden on %s</div>`,
			esc(b.ID), esc(string(device)))
	}

	if _, ok := block.Lookup(b.Type); !ok || b.Props == nil || b.Props.BlockType() != b.Type {
		return fmt.Sprintf(`<div class="block-unknown" data-block-id="%s">Unknown block type: %s</div>`,
			esc(b.ID), esc(string(b.Type)))
	}

	body := renderBody(b, settings, device)
	return wrap(b, settings, body)
}

// wrap applies the shared block chrome: container div with id, animation
// attributes and the style override layered on the theme defaults.
func wrap(b block.ContentBlock, settings document.ThemeSettings, body string) string {
	classes := []string{"block", "block-" + string(b.Type)}
	var attrs strings.Builder

	if a := b.Animation; a != nil && a.Type != block.AnimationNone && a.Type != "" {
		classes = append(classes, "anim", "anim-"+string(a.Type))
		fmt.Fprintf(&attrs, ` data-anim-duration="%dms" data-anim-delay="%dms"`, max0(a.Duration), max0(a.Delay))
		if a.Easing != "" {
			fmt.Fprintf(&attrs, ` data-anim-easing="%s"`, esc(a.Easing))
		}
	}

	if style := inlineStyle(b.Style); style != "" {
		fmt.Fprintf(&attrs, ` style="%s"`, style)
	}

	open := fmt.Sprintf(`<div id="block-%s" class="%s"%s>`, esc(b.ID), strings.Join(classes, " "), attrs.String())

	if l := b.Link; l != nil && l.Type != block.LinkNone && l.URL != "" {
		target := ""
		if l.NewTab {
			target = ` target="_blank" rel="noopener"`
		}
		body = fmt.Sprintf(`<a href="%s"%s>%s</a>`, esc(l.URL), target, body)
	}

	return open + body + "</div>"
}

// inlineStyle folds a block's style override into a CSS declaration list.
// Empty fields inherit from the theme, so only set fields are emitted.
func inlineStyle(s *block.Style) string {
	if s == nil {
		return ""
	}
	var parts []string
	add := func(prop, val string) {
		if val != "" {
			parts = append(parts, prop+":"+esc(val))
		}
	}
	add("color", s.TextColor)
	add("background", s.Background)
	add("font-size", s.FontSize)
	add("font-weight", s.FontWeight)
	add("text-align", s.TextAlign)
	add("padding", s.Padding)
	add("margin", s.Margin)
	add("border-radius", s.BorderRadius)
	add("border-width", s.BorderWidth)
	add("border-color", s.BorderColor)
	add("box-shadow", s.Shadow)
	if s.BorderWidth != "" || s.BorderColor != "" {
		parts = append(parts, "border-style:solid")
	}
	return strings.Join(parts, ";")
}

func esc(s string) string { return html.EscapeString(s) }

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
