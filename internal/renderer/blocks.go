package renderer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/document"
)

// renderBody dispatches on block type. The switch is exhaustive over the
// registered type set; RenderBlock has already rejected anything else.
func renderBody(b block.ContentBlock, settings document.ThemeSettings, device block.Device) string {
	switch p := b.Props.(type) {
	case *block.TextProps:
		return fmt.Sprintf(`<p style="text-align:%s">%s</p>`, escAlign(p.Align), esc(p.Content))
	case *block.HeadingProps:
		level := p.Level
		if level < 1 || level > 6 {
			level = 2
		}
		return fmt.Sprintf(`<h%d style="text-align:%s">%s</h%d>`, level, escAlign(p.Align), esc(p.Text), level)
	case *block.ImageProps:
		return renderImage(p)
	case *block.GalleryProps:
		return renderGallery(p)
	case *block.VideoProps:
		return renderVideo(p)
	case *block.AudioProps:
		return renderAudio(p)
	case *block.ButtonProps:
		return renderButton(p, settings)
	case *block.DividerProps:
		return renderDivider(p)
	case *block.SpacerProps:
		return fmt.Sprintf(`<div class="spacer" style="height:%dpx"></div>`, max0(p.Height))
	case *block.HeroProps:
		return renderHero(p)
	case *block.CardProps:
		return renderCard(p)
	case *block.TestimonialProps:
		return renderTestimonial(p)
	case *block.CountdownProps:
		return renderCountdown(p, time.Now())
	case *block.RatingProps:
		return renderRating(p)
	case *block.QuoteProps:
		return renderQuote(p)
	case *block.ListProps:
		return renderList(p)
	case *block.FormProps:
		return renderForm(p)
	case *block.MapProps:
		return renderMap(p)
	case *block.SocialProps:
		return renderSocial(p)
	case *block.IconProps:
		return fmt.Sprintf(`<span class="icon icon-%s" style="font-size:%s;color:%s"></span>`,
			esc(p.Name), esc(p.Size), esc(p.Color))
	case *block.HTMLProps:
		// Raw by contract; sanitization happens at publish time.
		return p.Code
	case *block.NavbarProps:
		return renderNavbar(p)
	case *block.HeaderProps:
		return renderHeader(p)
	case *block.FooterProps:
		return renderFooter(p)
	case *block.RowProps:
		return renderRow(p, settings, device)
	case *block.ProductGridProps:
		return renderProductGrid(p)
	case *block.ProductCardProps:
		return renderProductCard(p)
	case *block.CourseCardProps:
		return renderCourseCard(p)
	case *block.CartProps:
		return renderCart(p)
	case *block.PricingProps:
		return renderPricing(p)
	case *block.FAQProps:
		return renderFAQ(p)
	case *block.NewsletterProps:
		return renderNewsletter(p)
	}
	return fmt.Sprintf(`<div class="block-unknown">Unknown block type: %s</div>`, esc(string(b.Type)))
}

// CountdownParts returns the days/hours/minutes/seconds remaining until
// target. Each component is floored and clamped to 0, so a past target is
// all-zero, never negative.
func CountdownParts(target, now time.Time) (days, hours, minutes, seconds int) {
	remaining := target.Sub(now)
	if remaining <= 0 {
		return 0, 0, 0, 0
	}
	total := int(remaining.Seconds())
	days = total / 86400
	hours = (total % 86400) / 3600
	minutes = (total % 3600) / 60
	seconds = total % 60
	return days, hours, minutes, seconds
}

// PlaybackProgress computes a playback position as a 0-100 percentage.
// A zero, negative or unknown duration yields 0, never NaN.
func PlaybackProgress(currentTime, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) {
		return 0
	}
	p := currentTime / duration * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// StarFill returns how many whole stars are filled for a rating value.
// Fractional ratings round down; there are no partially filled stars.
func StarFill(value float64, maxStars int) int {
	if maxStars <= 0 {
		maxStars = 5
	}
	filled := int(math.Floor(value))
	if filled < 0 {
		return 0
	}
	if filled > maxStars {
		return maxStars
	}
	return filled
}

func renderStars(value float64, maxStars int) string {
	if maxStars <= 0 {
		maxStars = 5
	}
	filled := StarFill(value, maxStars)
	return strings.Repeat("★", filled) + strings.Repeat("☆", maxStars-filled)
}

func renderImage(p *block.ImageProps) string {
	if p.URL == "" {
		return `<div class="image-placeholder">No image selected</div>`
	}
	out := fmt.Sprintf(`<figure><img src="%s" alt="%s" style="width:%s">`, esc(p.URL), esc(p.Alt), esc(p.Width))
	if p.Caption != "" {
		out += fmt.Sprintf(`<figcaption>%s</figcaption>`, esc(p.Caption))
	}
	return out + "</figure>"
}

func renderGallery(p *block.GalleryProps) string {
	cols := p.Columns
	if cols < 1 {
		cols = 3
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="gallery" style="display:grid;grid-template-columns:repeat(%d,1fr);gap:%s">`, cols, esc(p.Spacing))
	for _, img := range p.Images {
		fmt.Fprintf(&b, `<img src="%s" alt="%s">`, esc(img.URL), esc(img.Alt))
	}
	b.WriteString("</div>")
	return b.String()
}

func renderVideo(p *block.VideoProps) string {
	if p.URL == "" {
		return `<div class="video-placeholder">No video selected</div>`
	}
	var attrs strings.Builder
	if p.Controls {
		attrs.WriteString(" controls")
	}
	if p.Autoplay {
		attrs.WriteString(" autoplay muted")
	}
	if p.Loop {
		attrs.WriteString(" loop")
	}
	if p.Poster != "" {
		fmt.Fprintf(&attrs, ` poster="%s"`, esc(p.Poster))
	}
	progress := PlaybackProgress(0, 0)
	return fmt.Sprintf(`<video src="%s"%s data-progress="%.0f"></video>`, esc(p.URL), attrs.String(), progress)
}

func renderAudio(p *block.AudioProps) string {
	if p.URL == "" {
		return `<div class="audio-placeholder">No audio selected</div>`
	}
	var meta string
	if p.Title != "" || p.Artist != "" {
		meta = fmt.Sprintf(`<div class="audio-meta"><span class="audio-title">%s</span><span class="audio-artist">%s</span></div>`,
			esc(p.Title), esc(p.Artist))
	}
	var attrs strings.Builder
	if p.Autoplay {
		attrs.WriteString(" autoplay")
	}
	if p.Loop {
		attrs.WriteString(" loop")
	}
	progress := PlaybackProgress(0, 0)
	return fmt.Sprintf(`<div class="audio-player">%s<audio src="%s" controls%s data-progress="%.0f"></audio></div>`,
		meta, esc(p.URL), attrs.String(), progress)
}

func renderButton(p *block.ButtonProps, settings document.ThemeSettings) string {
	width := ""
	if p.FullWidth {
		width = ";display:block;width:100%"
	}
	return fmt.Sprintf(`<a class="btn btn-%s btn-%s" href="%s" style="background:%s%s">%s</a>`,
		esc(p.Variant), esc(p.Size), esc(p.URL), esc(settings.PrimaryColor), width, esc(p.Text))
}

func renderDivider(p *block.DividerProps) string {
	thickness := p.Thickness
	if thickness < 1 {
		thickness = 1
	}
	return fmt.Sprintf(`<hr style="border:none;border-top:%dpx %s %s">`, thickness, esc(p.LineStyle), esc(p.Color))
}

func renderHero(p *block.HeroProps) string {
	var bg string
	if p.BackgroundImage != "" {
		bg = fmt.Sprintf(`;background-image:url('%s');background-size:cover`, esc(p.BackgroundImage))
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<section class="hero" style="min-height:%s%s">`, esc(p.Height), bg)
	fmt.Fprintf(&b, `<div class="hero-overlay" style="opacity:%.2f"></div>`, p.OverlayOpacity)
	fmt.Fprintf(&b, `<h1>%s</h1>`, esc(p.Title))
	if p.Subtitle != "" {
		fmt.Fprintf(&b, `<p class="hero-subtitle">%s</p>`, esc(p.Subtitle))
	}
	if p.ButtonText != "" {
		fmt.Fprintf(&b, `<a class="btn btn-primary" href="%s">%s</a>`, esc(p.ButtonURL), esc(p.ButtonText))
	}
	b.WriteString("</section>")
	return b.String()
}

func renderCard(p *block.CardProps) string {
	var b strings.Builder
	b.WriteString(`<div class="card">`)
	if p.ImageURL != "" {
		fmt.Fprintf(&b, `<img src="%s" alt="">`, esc(p.ImageURL))
	}
	fmt.Fprintf(&b, `<h3>%s</h3>`, esc(p.Title))
	if p.Body != "" {
		fmt.Fprintf(&b, `<p>%s</p>`, esc(p.Body))
	}
	if p.ButtonText != "" {
		fmt.Fprintf(&b, `<a class="btn" href="%s">%s</a>`, esc(p.ButtonURL), esc(p.ButtonText))
	}
	b.WriteString("</div>")
	return b.String()
}

func renderTestimonial(p *block.TestimonialProps) string {
	var b strings.Builder
	b.WriteString(`<figure class="testimonial">`)
	if p.AvatarURL != "" {
		fmt.Fprintf(&b, `<img class="avatar" src="%s" alt="%s">`, esc(p.AvatarURL), esc(p.Author))
	}
	fmt.Fprintf(&b, `<blockquote>%s</blockquote>`, esc(p.Quote))
	fmt.Fprintf(&b, `<figcaption>%s<span class="role">%s</span></figcaption>`, esc(p.Author), esc(p.Role))
	if p.Rating > 0 {
		fmt.Fprintf(&b, `<div class="stars">%s</div>`, renderStars(p.Rating, 5))
	}
	b.WriteString("</figure>")
	return b.String()
}

func renderCountdown(p *block.CountdownProps, now time.Time) string {
	target, err := time.Parse(time.RFC3339, p.TargetDate)
	if err != nil {
		return fmt.Sprintf(`<div class="countdown countdown-unset">%s</div>`, esc(p.Title))
	}
	days, hours, minutes, seconds := CountdownParts(target, now)
	if days == 0 && hours == 0 && minutes == 0 && seconds == 0 && p.ExpiredText != "" {
		return fmt.Sprintf(`<div class="countdown countdown-expired">%s</div>`, esc(p.ExpiredText))
	}
	var b strings.Builder
	b.WriteString(`<div class="countdown">`)
	if p.Title != "" {
		fmt.Fprintf(&b, `<h3>%s</h3>`, esc(p.Title))
	}
	fmt.Fprintf(&b, `<span class="cd-days">%02d</span>:<span class="cd-hours">%02d</span>:<span class="cd-minutes">%02d</span>:<span class="cd-seconds">%02d</span>`,
		days, hours, minutes, seconds)
	b.WriteString("</div>")
	return b.String()
}

func renderRating(p *block.RatingProps) string {
	out := fmt.Sprintf(`<div class="rating"><span class="stars">%s</span>`, renderStars(p.Value, p.Max))
	if p.Label != "" {
		out += fmt.Sprintf(`<span class="rating-label">%s</span>`, esc(p.Label))
	}
	return out + "</div>"
}

func renderQuote(p *block.QuoteProps) string {
	out := fmt.Sprintf(`<blockquote class="pull-quote">%s`, esc(p.Text))
	if p.Attribution != "" {
		out += fmt.Sprintf(`<cite>%s</cite>`, esc(p.Attribution))
	}
	return out + "</blockquote>"
}

func renderList(p *block.ListProps) string {
	tag := "ul"
	if p.Ordered {
		tag = "ol"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<%s>", tag)
	for _, item := range p.Items {
		fmt.Fprintf(&b, "<li>%s</li>", esc(item))
	}
	fmt.Fprintf(&b, "</%s>", tag)
	return b.String()
}

func renderForm(p *block.FormProps) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<form action="%s" method="post">`, esc(p.Action))
	if p.Title != "" {
		fmt.Fprintf(&b, `<h3>%s</h3>`, esc(p.Title))
	}
	for _, f := range p.Fields {
		required := ""
		if f.Required {
			required = " required"
		}
		fmt.Fprintf(&b, `<label>%s<input type="%s" name="%s"%s></label>`,
			esc(f.Label), esc(f.Kind), esc(f.Name), required)
	}
	fmt.Fprintf(&b, `<button type="submit">%s</button></form>`, esc(p.SubmitText))
	return b.String()
}

func renderMap(p *block.MapProps) string {
	return fmt.Sprintf(`<div class="map" data-lat="%f" data-lng="%f" data-zoom="%d">%s</div>`,
		p.Lat, p.Lng, p.Zoom, esc(p.Address))
}

func renderSocial(p *block.SocialProps) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="social social-%s">`, esc(p.Size))
	for _, l := range p.Links {
		fmt.Fprintf(&b, `<a class="social-%s" href="%s">%s</a>`, esc(l.Network), esc(l.URL), esc(l.Network))
	}
	b.WriteString("</div>")
	return b.String()
}

func renderNavbar(p *block.NavbarProps) string {
	var b strings.Builder
	sticky := ""
	if p.Sticky {
		sticky = ` style="position:sticky;top:0"`
	}
	fmt.Fprintf(&b, `<nav class="navbar"%s><span class="brand">%s</span>`, sticky, esc(p.Brand))
	for _, l := range p.Links {
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, esc(l.URL), esc(l.Label))
	}
	b.WriteString("</nav>")
	return b.String()
}

func renderHeader(p *block.HeaderProps) string {
	var b strings.Builder
	b.WriteString(`<header class="site-header">`)
	if p.LogoURL != "" {
		fmt.Fprintf(&b, `<img class="logo" src="%s" alt="%s">`, esc(p.LogoURL), esc(p.Title))
	}
	fmt.Fprintf(&b, `<h1>%s</h1>`, esc(p.Title))
	if p.Tagline != "" {
		fmt.Fprintf(&b, `<p class="tagline">%s</p>`, esc(p.Tagline))
	}
	b.WriteString("</header>")
	return b.String()
}

func renderFooter(p *block.FooterProps) string {
	var b strings.Builder
	b.WriteString(`<footer class="site-footer">`)
	if p.Text != "" {
		fmt.Fprintf(&b, `<p>%s</p>`, esc(p.Text))
	}
	for _, l := range p.Links {
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, esc(l.URL), esc(l.Label))
	}
	if p.Copyright != "" {
		fmt.Fprintf(&b, `<small>%s</small>`, esc(p.Copyright))
	}
	b.WriteString("</footer>")
	return b.String()
}

func renderRow(p *block.RowProps, settings document.ThemeSettings, device block.Device) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="row" style="display:flex;gap:%s">`, esc(p.Gap))
	for _, col := range p.Columns {
		width := col.Width
		if width == "" {
			width = "auto"
		}
		fmt.Fprintf(&b, `<div class="col" style="flex-basis:%s">`, esc(width))
		for _, child := range col.Blocks {
			b.WriteString(RenderBlock(child, settings, device))
		}
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
	return b.String()
}

func renderProductGrid(p *block.ProductGridProps) string {
	cols := p.Columns
	if cols < 1 {
		cols = 3
	}
	var b strings.Builder
	if p.Heading != "" {
		fmt.Fprintf(&b, `<h2>%s</h2>`, esc(p.Heading))
	}
	fmt.Fprintf(&b, `<div class="product-grid" data-category="%s" data-limit="%d" data-show-price="%t" style="display:grid;grid-template-columns:repeat(%d,1fr)"></div>`,
		esc(p.Category), p.Limit, p.ShowPrice, cols)
	return b.String()
}

func renderProductCard(p *block.ProductCardProps) string {
	var b strings.Builder
	b.WriteString(`<div class="product-card">`)
	if p.ImageURL != "" {
		fmt.Fprintf(&b, `<img src="%s" alt="%s">`, esc(p.ImageURL), esc(p.Name))
	}
	fmt.Fprintf(&b, `<h3><a href="%s">%s</a></h3>`, esc(p.URL), esc(p.Name))
	fmt.Fprintf(&b, `<span class="price">%s %.2f</span>`, esc(p.Currency), p.Price)
	if !p.InStock {
		b.WriteString(`<span class="out-of-stock">Out of stock</span>`)
	}
	b.WriteString("</div>")
	return b.String()
}

func renderCourseCard(p *block.CourseCardProps) string {
	var b strings.Builder
	b.WriteString(`<div class="course-card">`)
	if p.ImageURL != "" {
		fmt.Fprintf(&b, `<img src="%s" alt="%s">`, esc(p.ImageURL), esc(p.Title))
	}
	fmt.Fprintf(&b, `<h3>%s</h3>`, esc(p.Title))
	if p.Instructor != "" {
		fmt.Fprintf(&b, `<span class="instructor">%s</span>`, esc(p.Instructor))
	}
	var facts []string
	if p.Duration != "" {
		facts = append(facts, esc(p.Duration))
	}
	if p.Lessons > 0 {
		facts = append(facts, fmt.Sprintf("%d lessons", p.Lessons))
	}
	if len(facts) > 0 {
		fmt.Fprintf(&b, `<span class="facts">%s</span>`, strings.Join(facts, " · "))
	}
	fmt.Fprintf(&b, `<span class="price">%s %.2f</span>`, esc(p.Currency), p.Price)
	b.WriteString("</div>")
	return b.String()
}

func renderCart(p *block.CartProps) string {
	return fmt.Sprintf(`<div class="cart" data-thumbnails="%t"><h3>%s</h3><button class="checkout">%s</button></div>`,
		p.ShowThumbnails, esc(p.Title), esc(p.CheckoutText))
}

func renderPricing(p *block.PricingProps) string {
	var b strings.Builder
	if p.Heading != "" {
		fmt.Fprintf(&b, `<h2>%s</h2>`, esc(p.Heading))
	}
	b.WriteString(`<div class="pricing">`)
	for _, plan := range p.Plans {
		class := "plan"
		if plan.Highlighted {
			class = "plan plan-highlight"
		}
		fmt.Fprintf(&b, `<div class="%s"><h3>%s</h3><span class="price">%s %.2f</span><span class="period">%s</span><ul>`,
			class, esc(plan.Name), esc(p.Currency), plan.Price, esc(plan.Period))
		for _, f := range plan.Features {
			fmt.Fprintf(&b, "<li>%s</li>", esc(f))
		}
		b.WriteString("</ul>")
		if plan.CTA != "" {
			fmt.Fprintf(&b, `<button>%s</button>`, esc(plan.CTA))
		}
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
	return b.String()
}

func renderFAQ(p *block.FAQProps) string {
	var b strings.Builder
	if p.Heading != "" {
		fmt.Fprintf(&b, `<h2>%s</h2>`, esc(p.Heading))
	}
	b.WriteString(`<div class="faq">`)
	for _, item := range p.Items {
		fmt.Fprintf(&b, `<details><summary>%s</summary><p>%s</p></details>`, esc(item.Question), esc(item.Answer))
	}
	b.WriteString("</div>")
	return b.String()
}

func renderNewsletter(p *block.NewsletterProps) string {
	var b strings.Builder
	b.WriteString(`<div class="newsletter">`)
	if p.Title != "" {
		fmt.Fprintf(&b, `<h3>%s</h3>`, esc(p.Title))
	}
	fmt.Fprintf(&b, `<input type="email" placeholder="%s"><button>%s</button>`, esc(p.Placeholder), esc(p.ButtonText))
	b.WriteString("</div>")
	return b.String()
}

func escAlign(align string) string {
	switch align {
	case "left", "right", "center", "justify":
		return align
	}
	return "left"
}
