// Package render holds the pieces shared by the two render surfaces: the
// editable canvas (package canvas) and the static live page (package html).
//
// Both surfaces consume the same (sections, computed layout) pair and the
// same shared grid configuration, and both build their section bodies and
// placement styles through this package. That shared path is the placement
// guarantee: for a given document, breakpoint, and container width, the two
// surfaces emit byte-identical positioning.
//
// RichText content is a trusted-input rendering path - content comes only
// from authenticated editors, not end users, so no sanitization is applied
// by default. Installing a [Sanitizer] is mandatory the moment any
// non-trusted author can write content.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/gridpress/gridpress/pkg/grid"
	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/registry"
	"github.com/gridpress/gridpress/pkg/theme"
)

// Sanitizer rewrites author-supplied markup before it is emitted. The
// default (nil) passes markup through untouched.
type Sanitizer func(string) string

// =============================================================================
// Options
// =============================================================================

// Options configures a render pass. The same Options value drives both
// surfaces; constructing two Options with different grid configurations for
// the same page is the one way to break the placement guarantee, so don't.
type Options struct {
	Config         grid.Config
	Registry       *registry.Registry
	Theme          theme.Theme
	ContainerWidth int
	Sanitize       Sanitizer
}

// Defaults fills unset fields. Zero container width renders at the lg
// reference width.
func (o *Options) Defaults() {
	if o.Config.Cols == 0 {
		o.Config = grid.DefaultConfig()
	}
	if o.Registry == nil {
		o.Registry = registry.Default()
	}
	if o.Theme.Name == "" {
		o.Theme = theme.Light()
	}
	if o.ContainerWidth <= 0 {
		o.ContainerWidth = 1280
	}
}

// Breakpoint resolves the active breakpoint for the container width.
func (o Options) Breakpoint() string {
	return o.Config.BreakpointFor(o.ContainerWidth)
}

// =============================================================================
// Placement
// =============================================================================

// Placement pairs a section with its computed pixel rectangle.
type Placement struct {
	Section *page.Section
	Rect    grid.Rect
	Pixels  grid.PixelRect
}

// Placements computes the placement list for a document under opts. The
// section order of the result matches the document's list order; the stored
// layouts are never mutated.
func Placements(doc page.Document, opts Options) []Placement {
	opts.Defaults()
	cols := opts.Config.ColsFor(opts.Breakpoint())
	rects := grid.Compute(doc.Sections, cols)

	out := make([]Placement, len(rects))
	for i := range rects {
		out[i] = Placement{
			Section: &doc.Sections[i],
			Rect:    rects[i],
			Pixels:  rects[i].Pixels(opts.Config, cols, opts.ContainerWidth),
		}
	}
	return out
}

// Style returns the absolute-positioning style for the placement. Both
// surfaces emit exactly this string, which is what the placement-agreement
// tests pin down.
func (p Placement) Style() string {
	return fmt.Sprintf("left:%.2fpx;top:%.2fpx;width:%.2fpx;height:%.2fpx",
		p.Pixels.Left, p.Pixels.Top, p.Pixels.Width, p.Pixels.Height)
}

// =============================================================================
// Section Bodies
// =============================================================================

// markdown is the shared converter for format=markdown rich text.
var markdown = goldmark.New()

// WriteBody writes the inner markup for one section into buf. The same
// body builder serves both surfaces, so the built-ins render identically
// everywhere. Unknown section types produce a visible inline placeholder -
// never an error, never a silent skip.
func WriteBody(buf *bytes.Buffer, s *page.Section, reg *registry.Registry, sanitize Sanitizer) {
	entry, err := reg.Resolve(s.Type)
	if err != nil {
		WritePlaceholder(buf, s.Type)
		return
	}

	switch entry.Kind {
	case registry.KindSpacer:
		writeSpacer(buf, s)
	case registry.KindRichText:
		writeRichText(buf, s, sanitize)
	default:
		writeComponent(buf, s, entry)
	}
}

// WritePlaceholder emits the inline error block for an unknown section
// type. It is intentionally loud: an unknown type is a content-authoring
// error that must stay visible so editors notice and fix it.
func WritePlaceholder(buf *bytes.Buffer, typ string) {
	fmt.Fprintf(buf,
		`<div class="gp-unknown" role="alert">Unknown section type: %s</div>`,
		html.EscapeString(typ))
}

// writeSpacer emits empty vertical space of props.height pixels. The grid
// cell gets content but no visible child.
func writeSpacer(buf *bytes.Buffer, s *page.Section) {
	h := s.IntProp("height", 40)
	if h < 0 {
		h = 0
	}
	fmt.Fprintf(buf, `<div class="gp-spacer" style="height:%dpx" aria-hidden="true"></div>`, h)
}

// writeRichText emits props.content with props.align as text alignment.
// format=markdown routes the content through goldmark; everything else is
// emitted as raw markup (trusted-author path, see package doc).
func writeRichText(buf *bytes.Buffer, s *page.Section, sanitize Sanitizer) {
	content := s.StringProp("content", "")
	if s.StringProp("format", "html") == "markdown" {
		var md bytes.Buffer
		if err := markdown.Convert([]byte(content), &md); err == nil {
			content = md.String()
		}
	}
	if sanitize != nil {
		content = sanitize(content)
	}

	align := s.StringProp("align", "left")
	switch align {
	case "left", "center", "right":
	default:
		align = "left"
	}

	fmt.Fprintf(buf, `<div class="gp-richtext" style="text-align:%s">`, align)
	buf.WriteString(content)
	buf.WriteString(`</div>`)
}

// writeComponent emits the markup for a component-backed section type.
// Components are a closed set dispatched by registry reference.
func writeComponent(buf *bytes.Buffer, s *page.Section, entry registry.Entry) {
	switch entry.Ref {
	case "hero":
		fmt.Fprintf(buf, `<section class="gp-hero"><h1>%s</h1><p>%s</p><a class="gp-cta" href="%s">%s</a></section>`,
			html.EscapeString(s.StringProp("headline", "")),
			html.EscapeString(s.StringProp("subline", "")),
			html.EscapeString(s.StringProp("ctaHref", "#")),
			html.EscapeString(s.StringProp("ctaLabel", "")))
	case "pricing-table":
		writePricingTable(buf, s)
	case "image-banner":
		fit := s.StringProp("fit", "cover")
		if fit != "contain" {
			fit = "cover"
		}
		fmt.Fprintf(buf, `<figure class="gp-image-banner"><img src="%s" alt="%s" style="object-fit:%s"/></figure>`,
			html.EscapeString(s.StringProp("src", "")),
			html.EscapeString(s.StringProp("alt", "")),
			fit)
	case "button-row":
		writeButtonRow(buf, s)
	case "coming-soon":
		fmt.Fprintf(buf, `<div class="gp-coming-soon"><p>%s</p></div>`,
			html.EscapeString(s.StringProp("message", "Coming soon.")))
	default:
		// A registry entry whose Ref has no renderer is a registry bug, but
		// it is surfaced the same way as unknown content: visibly.
		WritePlaceholder(buf, entry.Ref)
	}
}

// writePricingTable renders the plans JSON prop as a simple plan grid.
// Malformed JSON renders an inline authoring-error note instead.
func writePricingTable(buf *bytes.Buffer, s *page.Section) {
	type plan struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	plans, err := decodeJSONProp[[]plan](s, "plans")
	if err != nil {
		fmt.Fprintf(buf, `<div class="gp-unknown" role="alert">Invalid plans JSON</div>`)
		return
	}

	currency := s.StringProp("currency", "USD")
	buf.WriteString(`<div class="gp-pricing">`)
	for _, p := range plans {
		fmt.Fprintf(buf, `<div class="gp-plan"><h3>%s</h3><p class="gp-price">%s %s</p></div>`,
			html.EscapeString(p.Name),
			html.EscapeString(currency),
			strings.TrimSuffix(fmt.Sprintf("%.2f", p.Price), ".00"))
	}
	buf.WriteString(`</div>`)
}

// writeButtonRow renders the buttons JSON prop as a link row.
func writeButtonRow(buf *bytes.Buffer, s *page.Section) {
	type button struct {
		Label string `json:"label"`
		Href  string `json:"href"`
	}
	buttons, err := decodeJSONProp[[]button](s, "buttons")
	if err != nil {
		fmt.Fprintf(buf, `<div class="gp-unknown" role="alert">Invalid buttons JSON</div>`)
		return
	}

	align := s.StringProp("align", "center")
	switch align {
	case "left", "center", "right":
	default:
		align = "center"
	}

	fmt.Fprintf(buf, `<div class="gp-buttons" style="text-align:%s">`, align)
	for _, b := range buttons {
		fmt.Fprintf(buf, `<a class="gp-button" href="%s">%s</a>`,
			html.EscapeString(b.Href), html.EscapeString(b.Label))
	}
	buf.WriteString(`</div>`)
}
