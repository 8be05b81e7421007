package sync

import "github.com/gridpress/gridpress/pkg/page"

// =============================================================================
// Default Documents
// =============================================================================

// Well-known page ids with hardcoded default content.
const (
	PageHome    = "home"
	PagePricing = "pricing"
	PageStudio  = "studio"
)

// DefaultDocument synthesizes the deterministic fallback document for a page
// id. Known ids get hardcoded starter content; unknown ids get an empty
// placeholder so the editor always has something renderable. The result
// carries revision zero: saving it creates the page.
func DefaultDocument(pageID string) page.Document {
	switch pageID {
	case PageHome:
		return homeDocument()
	case PagePricing:
		return pricingDocument()
	case PageStudio:
		return studioDocument()
	default:
		return page.Document{ID: pageID, Meta: page.Meta{}, Sections: []page.Section{}}
	}
}

func homeDocument() page.Document {
	return page.Document{
		ID:   PageHome,
		Meta: page.Meta{Title: "Home", Description: "Welcome to the site."},
		Sections: []page.Section{
			{
				ID:   "hero-main",
				Type: "Hero",
				Props: map[string]any{
					"headline": "Welcome",
					"subline":  "Build pages on a grid.",
					"ctaLabel": "Get started",
					"ctaHref":  "#",
				},
				Layout: &page.Layout{X: 0, Y: 0, W: 12, H: 6},
			},
			{
				ID:     "spacer-1",
				Type:   "Spacer",
				Props:  map[string]any{"height": 40},
				Layout: &page.Layout{X: 0, Y: 6, W: 12, H: 2},
			},
			{
				ID:     "coming-soon",
				Type:   "ComingSoon",
				Props:  map[string]any{"message": "Coming soon."},
				Layout: &page.Layout{X: 0, Y: 8, W: 12, H: 4},
			},
		},
	}
}

func pricingDocument() page.Document {
	return page.Document{
		ID:   PagePricing,
		Meta: page.Meta{Title: "Pricing", Description: "Plans and pricing."},
		Sections: []page.Section{
			{
				ID:   "pricing-intro",
				Type: "RichText",
				Props: map[string]any{
					"content": "<h1>Pricing</h1>",
					"align":   "center",
					"format":  "html",
				},
				Layout: &page.Layout{X: 0, Y: 0, W: 12, H: 2},
			},
			{
				ID:   "pricing-table",
				Type: "PricingTable",
				Props: map[string]any{
					"plans":    `[{"name":"Free","price":0},{"name":"Pro","price":19}]`,
					"currency": "USD",
				},
				Layout: &page.Layout{X: 2, Y: 2, W: 8, H: 6},
			},
		},
	}
}

func studioDocument() page.Document {
	return page.Document{
		ID:   PageStudio,
		Meta: page.Meta{Title: "Studio", Description: "Creation studio."},
		Sections: []page.Section{
			{
				ID:   "studio-hero",
				Type: "Hero",
				Props: map[string]any{
					"headline": "Studio",
					"subline":  "Generate something new.",
					"ctaLabel": "Open studio",
					"ctaHref":  "/studio",
				},
				Layout: &page.Layout{X: 0, Y: 0, W: 12, H: 5},
			},
			{
				ID:   "studio-note",
				Type: "RichText",
				Props: map[string]any{
					"content": "Describe what you want to create and the studio renders it.",
					"align":   "left",
					"format":  "html",
				},
				Layout: &page.Layout{X: 0, Y: 5, W: 6, H: 3},
			},
		},
	}
}
