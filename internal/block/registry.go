package block

import "sort"

// Definition is the registry entry for one block kind: display metadata for
// the add-block menu plus the default property set used to seed new blocks.
type Definition struct {
	Type     Type
	Label    string
	Icon     string
	Category string

	// NewProps returns a fresh default property set. Callers own the result.
	NewProps func() Props
}

// Categories used to group the add-block menu.
const (
	CategoryBasic     = "basic"
	CategoryMedia     = "media"
	CategoryLayout    = "layout"
	CategoryMarketing = "marketing"
	CategoryCommerce  = "commerce"
)

// configs is the process-wide block registry. Immutable after init; lookup is
// total over the Type constants.
var configs = map[Type]Definition{
	TypeText: {
		Type: TypeText, Label: "Text", Icon: "type", Category: CategoryBasic,
		NewProps: func() Props { return &TextProps{Content: "Add your text here", Align: "left"} },
	},
	TypeHeading: {
		Type: TypeHeading, Label: "Heading", Icon: "heading", Category: CategoryBasic,
		NewProps: func() Props { return &HeadingProps{Text: "Heading", Level: 2, Align: "left"} },
	},
	TypeImage: {
		Type: TypeImage, Label: "Image", Icon: "image", Category: CategoryMedia,
		NewProps: func() Props { return &ImageProps{Width: "100%"} },
	},
	TypeGallery: {
		Type: TypeGallery, Label: "Gallery", Icon: "grid", Category: CategoryMedia,
		NewProps: func() Props { return &GalleryProps{Columns: 3, Spacing: "8px"} },
	},
	TypeVideo: {
		Type: TypeVideo, Label: "Video", Icon: "video", Category: CategoryMedia,
		NewProps: func() Props { return &VideoProps{Controls: true} },
	},
	TypeAudio: {
		Type: TypeAudio, Label: "Audio", Icon: "music", Category: CategoryMedia,
		NewProps: func() Props { return &AudioProps{} },
	},
	TypeButton: {
		Type: TypeButton, Label: "Button", Icon: "square", Category: CategoryBasic,
		NewProps: func() Props { return &ButtonProps{Text: "Click me", Variant: "primary", Size: "medium"} },
	},
	TypeDivider: {
		Type: TypeDivider, Label: "Divider", Icon: "minus", Category: CategoryBasic,
		NewProps: func() Props { return &DividerProps{LineStyle: "solid", Thickness: 1, Color: "#e5e7eb"} },
	},
	TypeSpacer: {
		Type: TypeSpacer, Label: "Spacer", Icon: "move-vertical", Category: CategoryLayout,
		NewProps: func() Props { return &SpacerProps{Height: 40} },
	},
	TypeHero: {
		Type: TypeHero, Label: "Hero", Icon: "layout", Category: CategoryMarketing,
		NewProps: func() Props {
			return &HeroProps{Title: "Welcome", Subtitle: "Start building your page", OverlayOpacity: 0.4, Height: "60vh"}
		},
	},
	TypeCard: {
		Type: TypeCard, Label: "Card", Icon: "credit-card", Category: CategoryBasic,
		NewProps: func() Props { return &CardProps{Title: "Card title"} },
	},
	TypeTestimonial: {
		Type: TypeTestimonial, Label: "Testimonial", Icon: "message-circle", Category: CategoryMarketing,
		NewProps: func() Props { return &TestimonialProps{Quote: "This product changed everything.", Rating: 5} },
	},
	TypeCountdown: {
		Type: TypeCountdown, Label: "Countdown", Icon: "clock", Category: CategoryMarketing,
		NewProps: func() Props { return &CountdownProps{ExpiredText: "Offer ended"} },
	},
	TypeRating: {
		Type: TypeRating, Label: "Rating", Icon: "star", Category: CategoryBasic,
		NewProps: func() Props { return &RatingProps{Value: 0, Max: 5} },
	},
	TypeQuote: {
		Type: TypeQuote, Label: "Quote", Icon: "quote", Category: CategoryBasic,
		NewProps: func() Props { return &QuoteProps{} },
	},
	TypeList: {
		Type: TypeList, Label: "List", Icon: "list", Category: CategoryBasic,
		NewProps: func() Props { return &ListProps{Items: []string{"First item"}} },
	},
	TypeForm: {
		Type: TypeForm, Label: "Form", Icon: "clipboard", Category: CategoryMarketing,
		NewProps: func() Props {
			return &FormProps{
				Fields: []FormField{
					{Name: "email", Label: "Email", Kind: "email", Required: true},
				},
				SubmitText: "Submit",
			}
		},
	},
	TypeMap: {
		Type: TypeMap, Label: "Map", Icon: "map-pin", Category: CategoryBasic,
		NewProps: func() Props { return &MapProps{Zoom: 14} },
	},
	TypeSocial: {
		Type: TypeSocial, Label: "Social Links", Icon: "share-2", Category: CategoryMarketing,
		NewProps: func() Props { return &SocialProps{Size: "medium"} },
	},
	TypeIcon: {
		Type: TypeIcon, Label: "Icon", Icon: "smile", Category: CategoryBasic,
		NewProps: func() Props { return &IconProps{Name: "star", Size: "24px"} },
	},
	TypeHTML: {
		Type: TypeHTML, Label: "Custom HTML", Icon: "code", Category: CategoryBasic,
		NewProps: func() Props { return &HTMLProps{} },
	},
	TypeNavbar: {
		Type: TypeNavbar, Label: "Navigation Bar", Icon: "menu", Category: CategoryLayout,
		NewProps: func() Props { return &NavbarProps{Brand: "My Site"} },
	},
	TypeHeader: {
		Type: TypeHeader, Label: "Header", Icon: "layout-top", Category: CategoryLayout,
		NewProps: func() Props { return &HeaderProps{Title: "My Site", ShowNav: true} },
	},
	TypeFooter: {
		Type: TypeFooter, Label: "Footer", Icon: "layout-bottom", Category: CategoryLayout,
		NewProps: func() Props { return &FooterProps{Copyright: "© My Site"} },
	},
	TypeRow: {
		Type: TypeRow, Label: "Row", Icon: "columns", Category: CategoryLayout,
		NewProps: func() Props {
			return &RowProps{Gap: "16px", Columns: []Column{{Width: "50%"}, {Width: "50%"}}}
		},
	},
	TypeProductGrid: {
		Type: TypeProductGrid, Label: "Product Grid", Icon: "shopping-bag", Category: CategoryCommerce,
		NewProps: func() Props { return &ProductGridProps{Columns: 3, Limit: 9, ShowPrice: true} },
	},
	TypeProductCard: {
		Type: TypeProductCard, Label: "Product Card", Icon: "package", Category: CategoryCommerce,
		NewProps: func() Props { return &ProductCardProps{Currency: "USD", InStock: true} },
	},
	TypeCourseCard: {
		Type: TypeCourseCard, Label: "Course Card", Icon: "book-open", Category: CategoryCommerce,
		NewProps: func() Props { return &CourseCardProps{Currency: "USD"} },
	},
	TypeCart: {
		Type: TypeCart, Label: "Cart", Icon: "shopping-cart", Category: CategoryCommerce,
		NewProps: func() Props { return &CartProps{Title: "Your cart", ShowThumbnails: true, CheckoutText: "Checkout"} },
	},
	TypePricing: {
		Type: TypePricing, Label: "Pricing Table", Icon: "dollar-sign", Category: CategoryCommerce,
		NewProps: func() Props { return &PricingProps{Currency: "USD"} },
	},
	TypeFAQ: {
		Type: TypeFAQ, Label: "FAQ", Icon: "help-circle", Category: CategoryMarketing,
		NewProps: func() Props { return &FAQProps{} },
	},
	TypeNewsletter: {
		Type: TypeNewsletter, Label: "Newsletter", Icon: "mail", Category: CategoryMarketing,
		NewProps: func() Props {
			return &NewsletterProps{Placeholder: "you@example.com", ButtonText: "Subscribe", SuccessMessage: "Thanks for subscribing!"}
		},
	},
}

// IsValid reports whether t is a registered block type.
func (t Type) IsValid() bool {
	_, ok := configs[t]
	return ok
}

// Lookup returns the registry entry for a type.
func Lookup(t Type) (Definition, bool) {
	def, ok := configs[t]
	return def, ok
}

// Types returns all registered block types, sorted for stable menus.
func Types() []Type {
	out := make([]Type, 0, len(configs))
	for t := range configs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Definitions returns all registry entries sorted by category then label, the
// order the add-block menu presents them in.
func Definitions() []Definition {
	out := make([]Definition, 0, len(configs))
	for _, def := range configs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Label < out[j].Label
	})
	return out
}
