package registry

// =============================================================================
// Built-in Section Types
// =============================================================================

// Default text for a freshly added rich-text block.
const DefaultRichTextContent = "Enter your text here..."

func fptr(v float64) *float64 { return &v }

// Default returns the registry with all compiled-in section types.
func Default() *Registry {
	return New(
		Entry{
			Type:  "Spacer",
			Kind:  KindSpacer,
			Label: "Spacer",
			Schema: []Field{
				{Name: "height", Label: "Height (px)", Input: InputNumber, Min: fptr(0), Max: fptr(1000)},
			},
			DefaultProps: map[string]any{"height": 40},
			MinH:         1,
		},
		Entry{
			Type:  "RichText",
			Kind:  KindRichText,
			Label: "Rich Text",
			Schema: []Field{
				{Name: "content", Label: "Content", Input: InputRichText},
				{Name: "align", Label: "Alignment", Input: InputSelect, Options: []string{"left", "center", "right"}},
				{Name: "format", Label: "Format", Input: InputSelect, Options: []string{"html", "markdown"}},
			},
			DefaultProps: map[string]any{
				"content": DefaultRichTextContent,
				"align":   "left",
				"format":  "html",
			},
		},
		Entry{
			Type:  "Hero",
			Kind:  KindComponent,
			Ref:   "hero",
			Label: "Hero Banner",
			Schema: []Field{
				{Name: "headline", Label: "Headline", Input: InputText},
				{Name: "subline", Label: "Subline", Input: InputMultiline},
				{Name: "ctaLabel", Label: "Button Label", Input: InputText},
				{Name: "ctaHref", Label: "Button Link", Input: InputText},
			},
			DefaultProps: map[string]any{
				"headline": "Welcome",
				"subline":  "Build pages on a grid.",
				"ctaLabel": "Get started",
				"ctaHref":  "#",
			},
			MinW: 4,
			MinH: 3,
		},
		Entry{
			Type:  "PricingTable",
			Kind:  KindComponent,
			Ref:   "pricing-table",
			Label: "Pricing Table",
			Schema: []Field{
				{Name: "plans", Label: "Plans (JSON)", Input: InputJSON},
				{Name: "currency", Label: "Currency", Input: InputSelect, Options: []string{"USD", "EUR", "GBP"}},
			},
			DefaultProps: map[string]any{
				"plans":    `[{"name":"Free","price":0},{"name":"Pro","price":19}]`,
				"currency": "USD",
			},
			MinW: 4,
			MinH: 4,
		},
		Entry{
			Type:  "ImageBanner",
			Kind:  KindComponent,
			Ref:   "image-banner",
			Label: "Image Banner",
			Schema: []Field{
				{Name: "src", Label: "Image URL", Input: InputText},
				{Name: "alt", Label: "Alt Text", Input: InputText},
				{Name: "fit", Label: "Fit", Input: InputSelect, Options: []string{"cover", "contain"}},
			},
			DefaultProps: map[string]any{"src": "", "alt": "", "fit": "cover"},
			MinH:         2,
		},
		Entry{
			Type:  "ButtonRow",
			Kind:  KindComponent,
			Ref:   "button-row",
			Label: "Button Row",
			Schema: []Field{
				{Name: "buttons", Label: "Buttons (JSON)", Input: InputJSON},
				{Name: "align", Label: "Alignment", Input: InputSelect, Options: []string{"left", "center", "right"}},
			},
			DefaultProps: map[string]any{
				"buttons": `[{"label":"Learn more","href":"#"}]`,
				"align":   "center",
			},
		},
		Entry{
			Type:  "ComingSoon",
			Kind:  KindComponent,
			Ref:   "coming-soon",
			Label: "Coming Soon",
			Schema: []Field{
				{Name: "message", Label: "Message", Input: InputText},
			},
			DefaultProps: map[string]any{"message": "Coming soon."},
			MinH:         2,
		},
	)
}
