package document

import (
	"sort"

	"github.com/nodepress/designer/internal/block"
)

// BlockSpec seeds one block of a template: a type plus an optional tweak of
// the registry defaults. Specs never carry IDs — instantiation mints fresh
// ones every time.
type BlockSpec struct {
	Type      block.Type
	Configure func(p block.Props) `json:"-"`
}

// Template is an immutable catalog entry. Applying a template discards the
// page's current block list and instantiates fresh blocks from the specs.
type Template struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Blocks      []BlockSpec
}

// Instantiate builds a fresh block list from the template. Each call yields
// new IDs.
func (t Template) Instantiate() []block.ContentBlock {
	out := make([]block.ContentBlock, 0, len(t.Blocks))
	for _, spec := range t.Blocks {
		b, err := block.New(spec.Type)
		if err != nil {
			// Catalog entries reference registered types only; reaching this
			// is a programmer error.
			panic(err)
		}
		if spec.Configure != nil {
			spec.Configure(b.Props)
		}
		out = append(out, b)
	}
	return out
}

// templates is the static page-template catalog.
var templates = map[string]Template{
	"blank": {
		ID: "blank", Name: "Blank", Icon: "file",
		Description: "An empty page",
	},
	"landing": {
		ID: "landing", Name: "Landing Page", Icon: "rocket",
		Description: "Hero, features and a signup strip",
		Blocks: []BlockSpec{
			{Type: block.TypeNavbar},
			{Type: block.TypeHero, Configure: func(p block.Props) {
				hero := p.(*block.HeroProps)
				hero.Title = "Launch something great"
				hero.Subtitle = "Everything you need to get started"
				hero.ButtonText = "Get started"
			}},
			{Type: block.TypeRow},
			{Type: block.TypeTestimonial},
			{Type: block.TypeNewsletter},
			{Type: block.TypeFooter},
		},
	},
	"about": {
		ID: "about", Name: "About", Icon: "users",
		Description: "Company story with imagery",
		Blocks: []BlockSpec{
			{Type: block.TypeNavbar},
			{Type: block.TypeHeading, Configure: func(p block.Props) {
				p.(*block.HeadingProps).Text = "About us"
			}},
			{Type: block.TypeText},
			{Type: block.TypeGallery},
			{Type: block.TypeFooter},
		},
	},
	"shop": {
		ID: "shop", Name: "Shop", Icon: "shopping-bag",
		Description: "Storefront with product grid and cart",
		Blocks: []BlockSpec{
			{Type: block.TypeNavbar},
			{Type: block.TypeHeading, Configure: func(p block.Props) {
				p.(*block.HeadingProps).Text = "Shop"
			}},
			{Type: block.TypeProductGrid},
			{Type: block.TypeCart},
			{Type: block.TypeFooter},
		},
	},
	"courses": {
		ID: "courses", Name: "Course Catalog", Icon: "book-open",
		Description: "Course cards with pricing",
		Blocks: []BlockSpec{
			{Type: block.TypeNavbar},
			{Type: block.TypeHero, Configure: func(p block.Props) {
				p.(*block.HeroProps).Title = "Learn at your own pace"
			}},
			{Type: block.TypeCourseCard},
			{Type: block.TypePricing},
			{Type: block.TypeFAQ},
			{Type: block.TypeFooter},
		},
	},
	"contact": {
		ID: "contact", Name: "Contact", Icon: "mail",
		Description: "Contact form with a map",
		Blocks: []BlockSpec{
			{Type: block.TypeNavbar},
			{Type: block.TypeHeading, Configure: func(p block.Props) {
				p.(*block.HeadingProps).Text = "Get in touch"
			}},
			{Type: block.TypeForm},
			{Type: block.TypeMap},
			{Type: block.TypeFooter},
		},
	},
}

// LookupTemplate returns a catalog entry by ID.
func LookupTemplate(id string) (Template, bool) {
	t, ok := templates[id]
	return t, ok
}

// Templates returns the catalog sorted by name.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ApplyTemplate replaces a page's blocks with a fresh instantiation of the
// template. The previous block list is discarded.
func ApplyTemplate(page *ThemePage, id string) error {
	t, ok := LookupTemplate(id)
	if !ok {
		return ErrTemplateNotFound
	}
	page.Blocks = t.Instantiate()
	return nil
}
