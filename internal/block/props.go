package block

// Props is the closed sum of per-kind property sets. Each block kind carries
// its own variant struct; there is no shared open map, so field defaults are
// explicit per kind instead of implicit per call site.
type Props interface {
	// BlockType returns the kind this property set belongs to.
	BlockType() Type

	// CloneProps returns a deep copy.
	CloneProps() Props
}

// TextProps is a rich-text paragraph.
type TextProps struct {
	Content string `json:"content"`
	Align   string `json:"align,omitempty"`
}

func (*TextProps) BlockType() Type { return TypeText }
func (p *TextProps) CloneProps() Props {
	c := *p
	return &c
}

// HeadingProps renders an h1-h6.
type HeadingProps struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
	Align string `json:"align,omitempty"`
}

func (*HeadingProps) BlockType() Type { return TypeHeading }
func (p *HeadingProps) CloneProps() Props {
	c := *p
	return &c
}

// ImageProps is a single image with optional caption.
type ImageProps struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	Width   string `json:"width,omitempty"`
}

func (*ImageProps) BlockType() Type { return TypeImage }
func (p *ImageProps) CloneProps() Props {
	c := *p
	return &c
}

// GalleryImage is one entry in a gallery grid.
type GalleryImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// GalleryProps is an image grid.
type GalleryProps struct {
	Images  []GalleryImage `json:"images"`
	Columns int            `json:"columns"`
	Spacing string         `json:"spacing,omitempty"`
}

func (*GalleryProps) BlockType() Type { return TypeGallery }
func (p *GalleryProps) CloneProps() Props {
	c := *p
	c.Images = append([]GalleryImage(nil), p.Images...)
	return &c
}

// VideoProps is an embedded video player.
type VideoProps struct {
	URL      string `json:"url"`
	Poster   string `json:"poster,omitempty"`
	Autoplay bool   `json:"autoplay,omitempty"`
	Loop     bool   `json:"loop,omitempty"`
	Controls bool   `json:"controls"`
}

func (*VideoProps) BlockType() Type { return TypeVideo }
func (p *VideoProps) CloneProps() Props {
	c := *p
	return &c
}

// AudioProps is an audio player with track metadata.
type AudioProps struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Autoplay bool   `json:"autoplay,omitempty"`
	Loop     bool   `json:"loop,omitempty"`
}

func (*AudioProps) BlockType() Type { return TypeAudio }
func (p *AudioProps) CloneProps() Props {
	c := *p
	return &c
}

// ButtonProps is a call-to-action button.
type ButtonProps struct {
	Text      string `json:"text"`
	URL       string `json:"url,omitempty"`
	Variant   string `json:"variant,omitempty"`
	Size      string `json:"size,omitempty"`
	FullWidth bool   `json:"full_width,omitempty"`
}

func (*ButtonProps) BlockType() Type { return TypeButton }
func (p *ButtonProps) CloneProps() Props {
	c := *p
	return &c
}

// DividerProps is a horizontal rule.
type DividerProps struct {
	LineStyle string `json:"line_style,omitempty"`
	Thickness int    `json:"thickness,omitempty"`
	Color     string `json:"color,omitempty"`
}

func (*DividerProps) BlockType() Type { return TypeDivider }
func (p *DividerProps) CloneProps() Props {
	c := *p
	return &c
}

// SpacerProps is vertical whitespace, height in pixels.
type SpacerProps struct {
	Height int `json:"height"`
}

func (*SpacerProps) BlockType() Type { return TypeSpacer }
func (p *SpacerProps) CloneProps() Props {
	c := *p
	return &c
}

// HeroProps is a full-width banner section.
type HeroProps struct {
	Title           string  `json:"title"`
	Subtitle        string  `json:"subtitle,omitempty"`
	BackgroundImage string  `json:"background_image,omitempty"`
	OverlayOpacity  float64 `json:"overlay_opacity,omitempty"`
	ButtonText      string  `json:"button_text,omitempty"`
	ButtonURL       string  `json:"button_url,omitempty"`
	Height          string  `json:"height,omitempty"`
}

func (*HeroProps) BlockType() Type { return TypeHero }
func (p *HeroProps) CloneProps() Props {
	c := *p
	return &c
}

// CardProps is a generic content card.
type CardProps struct {
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	ButtonText string `json:"button_text,omitempty"`
	ButtonURL  string `json:"button_url,omitempty"`
}

func (*CardProps) BlockType() Type { return TypeCard }
func (p *CardProps) CloneProps() Props {
	c := *p
	return &c
}

// TestimonialProps is a customer quote with attribution and star rating.
type TestimonialProps struct {
	Quote     string  `json:"quote"`
	Author    string  `json:"author,omitempty"`
	Role      string  `json:"role,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
}

func (*TestimonialProps) BlockType() Type { return TypeTestimonial }
func (p *TestimonialProps) CloneProps() Props {
	c := *p
	return &c
}

// CountdownProps counts down to TargetDate (RFC 3339).
type CountdownProps struct {
	Title       string `json:"title,omitempty"`
	TargetDate  string `json:"target_date"`
	ExpiredText string `json:"expired_text,omitempty"`
}

func (*CountdownProps) BlockType() Type { return TypeCountdown }
func (p *CountdownProps) CloneProps() Props {
	c := *p
	return &c
}

// RatingProps shows a star rating out of Max.
type RatingProps struct {
	Value float64 `json:"value"`
	Max   int     `json:"max"`
	Label string  `json:"label,omitempty"`
}

func (*RatingProps) BlockType() Type { return TypeRating }
func (p *RatingProps) CloneProps() Props {
	c := *p
	return &c
}

// QuoteProps is a pull quote.
type QuoteProps struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution,omitempty"`
}

func (*QuoteProps) BlockType() Type { return TypeQuote }
func (p *QuoteProps) CloneProps() Props {
	c := *p
	return &c
}

// ListProps is a bulleted or numbered list.
type ListProps struct {
	Items   []string `json:"items"`
	Ordered bool     `json:"ordered,omitempty"`
}

func (*ListProps) BlockType() Type { return TypeList }
func (p *ListProps) CloneProps() Props {
	c := *p
	c.Items = append([]string(nil), p.Items...)
	return &c
}

// FormField is one input in a form block.
type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Required bool   `json:"required,omitempty"`
}

// FormProps is a lead-capture form.
type FormProps struct {
	Title      string      `json:"title,omitempty"`
	Fields     []FormField `json:"fields"`
	SubmitText string      `json:"submit_text"`
	Action     string      `json:"action,omitempty"`
}

func (*FormProps) BlockType() Type { return TypeForm }
func (p *FormProps) CloneProps() Props {
	c := *p
	c.Fields = append([]FormField(nil), p.Fields...)
	return &c
}

// MapProps is an embedded map centered on an address or coordinates.
type MapProps struct {
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	Zoom    int     `json:"zoom"`
}

func (*MapProps) BlockType() Type { return TypeMap }
func (p *MapProps) CloneProps() Props {
	c := *p
	return &c
}

// SocialLink is one social network reference.
type SocialLink struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

// SocialProps is a row of social icons.
type SocialProps struct {
	Links []SocialLink `json:"links"`
	Size  string       `json:"size,omitempty"`
}

func (*SocialProps) BlockType() Type { return TypeSocial }
func (p *SocialProps) CloneProps() Props {
	c := *p
	c.Links = append([]SocialLink(nil), p.Links...)
	return &c
}

// IconProps is a single decorative icon.
type IconProps struct {
	Name  string `json:"name"`
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

func (*IconProps) BlockType() Type { return TypeIcon }
func (p *IconProps) CloneProps() Props {
	c := *p
	return &c
}

// HTMLProps embeds raw markup. Rendered verbatim; sanitization is the
// publishing layer's concern.
type HTMLProps struct {
	Code string `json:"code"`
}

func (*HTMLProps) BlockType() Type { return TypeHTML }
func (p *HTMLProps) CloneProps() Props {
	c := *p
	return &c
}

// NavLink is one navigation entry.
type NavLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// NavbarProps is the site navigation bar.
type NavbarProps struct {
	Brand  string    `json:"brand,omitempty"`
	Links  []NavLink `json:"links"`
	Sticky bool      `json:"sticky,omitempty"`
}

func (*NavbarProps) BlockType() Type { return TypeNavbar }
func (p *NavbarProps) CloneProps() Props {
	c := *p
	c.Links = append([]NavLink(nil), p.Links...)
	return &c
}

// HeaderProps is the page masthead.
type HeaderProps struct {
	Title   string `json:"title"`
	Tagline string `json:"tagline,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`
	ShowNav bool   `json:"show_nav,omitempty"`
}

func (*HeaderProps) BlockType() Type { return TypeHeader }
func (p *HeaderProps) CloneProps() Props {
	c := *p
	return &c
}

// FooterProps is the page footer.
type FooterProps struct {
	Text       string    `json:"text,omitempty"`
	Copyright  string    `json:"copyright,omitempty"`
	Links      []NavLink `json:"links,omitempty"`
	ShowSocial bool      `json:"show_social,omitempty"`
}

func (*FooterProps) BlockType() Type { return TypeFooter }
func (p *FooterProps) CloneProps() Props {
	c := *p
	c.Links = append([]NavLink(nil), p.Links...)
	return &c
}

// Column is one cell of a row block. Width is a CSS flex-basis value.
type Column struct {
	Width  string         `json:"width,omitempty"`
	Blocks []ContentBlock `json:"blocks"`
}

// RowProps nests columns of blocks. This is the only block kind that contains
// other blocks; the document stays a strict tree.
type RowProps struct {
	Gap     string   `json:"gap,omitempty"`
	Columns []Column `json:"columns"`
}

func (*RowProps) BlockType() Type { return TypeRow }
func (p *RowProps) CloneProps() Props {
	c := *p
	c.Columns = make([]Column, len(p.Columns))
	for i, col := range p.Columns {
		c.Columns[i] = Column{
			Width:  col.Width,
			Blocks: CloneBlocks(col.Blocks),
		}
	}
	return &c
}

// ProductGridProps lists store products by category.
type ProductGridProps struct {
	Heading   string `json:"heading,omitempty"`
	Columns   int    `json:"columns"`
	Limit     int    `json:"limit"`
	Category  string `json:"category,omitempty"`
	ShowPrice bool   `json:"show_price"`
}

func (*ProductGridProps) BlockType() Type { return TypeProductGrid }
func (p *ProductGridProps) CloneProps() Props {
	c := *p
	return &c
}

// ProductCardProps is a single product tile.
type ProductCardProps struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"image_url,omitempty"`
	URL      string  `json:"url,omitempty"`
	InStock  bool    `json:"in_stock"`
}

func (*ProductCardProps) BlockType() Type { return TypeProductCard }
func (p *ProductCardProps) CloneProps() Props {
	c := *p
	return &c
}

// CourseCardProps is a single course tile.
type CourseCardProps struct {
	Title      string  `json:"title"`
	Instructor string  `json:"instructor,omitempty"`
	Duration   string  `json:"duration,omitempty"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	ImageURL   string  `json:"image_url,omitempty"`
	Lessons    int     `json:"lessons,omitempty"`
}

func (*CourseCardProps) BlockType() Type { return TypeCourseCard }
func (p *CourseCardProps) CloneProps() Props {
	c := *p
	return &c
}

// CartProps is the shopping-cart widget.
type CartProps struct {
	Title          string `json:"title,omitempty"`
	ShowThumbnails bool   `json:"show_thumbnails"`
	CheckoutText   string `json:"checkout_text"`
}

func (*CartProps) BlockType() Type { return TypeCart }
func (p *CartProps) CloneProps() Props {
	c := *p
	return &c
}

// PricingPlan is one column of a pricing table.
type PricingPlan struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Period      string   `json:"period,omitempty"`
	Features    []string `json:"features,omitempty"`
	CTA         string   `json:"cta,omitempty"`
	Highlighted bool     `json:"highlighted,omitempty"`
}

// PricingProps is a pricing comparison table.
type PricingProps struct {
	Heading  string        `json:"heading,omitempty"`
	Currency string        `json:"currency"`
	Plans    []PricingPlan `json:"plans"`
}

func (*PricingProps) BlockType() Type { return TypePricing }
func (p *PricingProps) CloneProps() Props {
	c := *p
	c.Plans = make([]PricingPlan, len(p.Plans))
	for i, plan := range p.Plans {
		c.Plans[i] = plan
		c.Plans[i].Features = append([]string(nil), plan.Features...)
	}
	return &c
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQProps is an accordion of questions.
type FAQProps struct {
	Heading string    `json:"heading,omitempty"`
	Items   []FAQItem `json:"items"`
}

func (*FAQProps) BlockType() Type { return TypeFAQ }
func (p *FAQProps) CloneProps() Props {
	c := *p
	c.Items = append([]FAQItem(nil), p.Items...)
	return &c
}

// NewsletterProps is an email signup strip.
type NewsletterProps struct {
	Title          string `json:"title,omitempty"`
	Placeholder    string `json:"placeholder"`
	ButtonText     string `json:"button_text"`
	SuccessMessage string `json:"success_message,omitempty"`
}

func (*NewsletterProps) BlockType() Type { return TypeNewsletter }
func (p *NewsletterProps) CloneProps() Props {
	c := *p
	return &c
}
