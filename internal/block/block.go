// Package block defines the content-block document model for the theme
// designer: the closed set of block kinds, the typed per-kind properties, the
// cross-cutting fields every block may carry, and the JSON codec used for
// persistence and export.
package block

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Type identifies a block kind. The set is closed: every value the codec or
// the registry accepts is declared below.
type Type string

const (
	TypeText        Type = "text"
	TypeHeading     Type = "heading"
	TypeImage       Type = "image"
	TypeGallery     Type = "gallery"
	TypeVideo       Type = "video"
	TypeAudio       Type = "audio"
	TypeButton      Type = "button"
	TypeDivider     Type = "divider"
	TypeSpacer      Type = "spacer"
	TypeHero        Type = "hero"
	TypeCard        Type = "card"
	TypeTestimonial Type = "testimonial"
	TypeCountdown   Type = "countdown"
	TypeRating      Type = "rating"
	TypeQuote       Type = "quote"
	TypeList        Type = "list"
	TypeForm        Type = "form"
	TypeMap         Type = "map"
	TypeSocial      Type = "social"
	TypeIcon        Type = "icon"
	TypeHTML        Type = "html"
	TypeNavbar      Type = "navbar"
	TypeHeader      Type = "header"
	TypeFooter      Type = "footer"
	TypeRow         Type = "row"
	TypeProductGrid Type = "product-grid"
	TypeProductCard Type = "product-card"
	TypeCourseCard  Type = "course-card"
	TypeCart        Type = "cart"
	TypePricing     Type = "pricing"
	TypeFAQ         Type = "faq"
	TypeNewsletter  Type = "newsletter"
)

// ErrUnknownType is returned when decoding a block whose type is not in the
// registry.
var ErrUnknownType = errors.New("unknown block type")

// Device is the preview breakpoint a page is rendered for.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

// LinkType classifies a block-level link target.
type LinkType string

const (
	LinkNone     LinkType = "none"
	LinkInternal LinkType = "internal"
	LinkExternal LinkType = "external"
	LinkEmail    LinkType = "email"
	LinkPhone    LinkType = "phone"
)

// Link is a cross-cutting navigation target, independent of block type.
type Link struct {
	Type   LinkType `json:"type"`
	URL    string   `json:"url,omitempty"`
	NewTab bool     `json:"new_tab,omitempty"`
}

// Visibility toggles a block per breakpoint. Nil fields mean visible; a block
// with no Visibility at all is visible everywhere.
type Visibility struct {
	Desktop *bool `json:"desktop,omitempty"`
	Tablet  *bool `json:"tablet,omitempty"`
	Mobile  *bool `json:"mobile,omitempty"`
}

// On reports whether the block is visible on the given device.
func (v *Visibility) On(d Device) bool {
	if v == nil {
		return true
	}
	var flag *bool
	switch d {
	case DeviceDesktop:
		flag = v.Desktop
	case DeviceTablet:
		flag = v.Tablet
	case DeviceMobile:
		flag = v.Mobile
	}
	return flag == nil || *flag
}

// AnimationType names an entrance animation. AnimationNone is the inert
// default and disables the effect entirely.
type AnimationType string

const (
	AnimationNone      AnimationType = "none"
	AnimationFade      AnimationType = "fade"
	AnimationSlideUp   AnimationType = "slide-up"
	AnimationSlideDown AnimationType = "slide-down"
	AnimationZoom      AnimationType = "zoom"
	AnimationBounce    AnimationType = "bounce"
)

// Animation describes a block's entrance animation. Duration and Delay are in
// milliseconds.
type Animation struct {
	Type     AnimationType `json:"type"`
	Duration int           `json:"duration,omitempty"`
	Delay    int           `json:"delay,omitempty"`
	Easing   string        `json:"easing,omitempty"`
}

// Style overrides the theme's computed visual defaults for a single block.
// Values are CSS strings; empty means inherit from the theme.
type Style struct {
	TextColor    string `json:"text_color,omitempty"`
	Background   string `json:"background,omitempty"`
	FontSize     string `json:"font_size,omitempty"`
	FontWeight   string `json:"font_weight,omitempty"`
	TextAlign    string `json:"text_align,omitempty"`
	Padding      string `json:"padding,omitempty"`
	Margin       string `json:"margin,omitempty"`
	BorderRadius string `json:"border_radius,omitempty"`
	BorderWidth  string `json:"border_width,omitempty"`
	BorderColor  string `json:"border_color,omitempty"`
	Shadow       string `json:"shadow,omitempty"`
}

// ContentBlock is one node in a page's block list. ID is assigned at creation
// and stable for the block's lifetime; Type is immutable after creation —
// changing the kind of a block is modeled as delete+insert upstream.
type ContentBlock struct {
	ID         string      `json:"id"`
	Type       Type        `json:"type"`
	Props      Props       `json:"props"`
	Link       *Link       `json:"link,omitempty"`
	Visibility *Visibility `json:"visibility,omitempty"`
	Animation  *Animation  `json:"animation,omitempty"`
	Style      *Style      `json:"style,omitempty"`
}

// New creates a fresh block of the given type, seeded with the registry's
// default props and a newly minted ID.
func New(t Type) (ContentBlock, error) {
	def, ok := Lookup(t)
	if !ok {
		return ContentBlock{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return ContentBlock{
		ID:    uuid.New().String(),
		Type:  t,
		Props: def.NewProps(),
	}, nil
}

// MustNew is New for statically known types; it panics on an unregistered
// type, which is a programmer error.
func MustNew(t Type) ContentBlock {
	b, err := New(t)
	if err != nil {
		panic(err)
	}
	return b
}

// Clone returns a deep copy of the block, same IDs included. Row blocks have
// their nested columns copied recursively.
func (b ContentBlock) Clone() ContentBlock {
	out := b
	if b.Props != nil {
		out.Props = b.Props.CloneProps()
	}
	if b.Link != nil {
		l := *b.Link
		out.Link = &l
	}
	if b.Visibility != nil {
		v := Visibility{
			Desktop: cloneBool(b.Visibility.Desktop),
			Tablet:  cloneBool(b.Visibility.Tablet),
			Mobile:  cloneBool(b.Visibility.Mobile),
		}
		out.Visibility = &v
	}
	if b.Animation != nil {
		a := *b.Animation
		out.Animation = &a
	}
	if b.Style != nil {
		s := *b.Style
		out.Style = &s
	}
	return out
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CloneBlocks deep-copies a block list.
func CloneBlocks(blocks []ContentBlock) []ContentBlock {
	if blocks == nil {
		return nil
	}
	out := make([]ContentBlock, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// Walk visits every block in the list depth-first, descending into row
// columns. The visitor receives a pointer so it may mutate in place; returning
// false stops the walk.
func Walk(blocks []ContentBlock, fn func(*ContentBlock) bool) bool {
	for i := range blocks {
		if !fn(&blocks[i]) {
			return false
		}
		if row, ok := blocks[i].Props.(*RowProps); ok {
			for c := range row.Columns {
				if !Walk(row.Columns[c].Blocks, fn) {
					return false
				}
			}
		}
	}
	return true
}

// RegenerateIDs assigns fresh IDs to every block in the list, including blocks
// nested inside rows. Used by import and duplicate so IDs never collide with
// the current document.
func RegenerateIDs(blocks []ContentBlock) {
	Walk(blocks, func(b *ContentBlock) bool {
		b.ID = uuid.New().String()
		return true
	})
}
