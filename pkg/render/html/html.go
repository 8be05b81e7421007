// Package html renders a page document as a static live page.
//
// The output is unconditionally non-interactive: no drag affordance is ever
// emitted, regardless of how the renderer is configured. This is a defense
// against accidentally shipping editable UI to end users - the editable
// surface lives in the canvas package and nowhere else.
package html

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"time"

	"github.com/gridpress/gridpress/pkg/grid"
	"github.com/gridpress/gridpress/pkg/observability"
	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/registry"
	"github.com/gridpress/gridpress/pkg/render"
	"github.com/gridpress/gridpress/pkg/theme"
)

// Option configures the live renderer.
type Option func(*renderer)

type renderer struct {
	opts render.Options
}

// WithConfig sets the grid configuration. Pass the same shared instance to
// the canvas renderer.
func WithConfig(cfg grid.Config) Option {
	return func(r *renderer) { r.opts.Config = cfg }
}

// WithRegistry sets the section registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(r *renderer) { r.opts.Registry = reg }
}

// WithTheme sets the theme whose tokens are emitted as CSS variables.
func WithTheme(t theme.Theme) Option {
	return func(r *renderer) { r.opts.Theme = t }
}

// WithContainerWidth sets the measured container width in pixels, which
// selects the breakpoint.
func WithContainerWidth(w int) Option {
	return func(r *renderer) { r.opts.ContainerWidth = w }
}

// WithSanitizer installs a markup sanitizer for rich-text content.
func WithSanitizer(s render.Sanitizer) Option {
	return func(r *renderer) { r.opts.Sanitize = s }
}

// Render produces the complete static HTML page for a document.
func Render(doc page.Document, opts ...Option) []byte {
	r := renderer{}
	for _, opt := range opts {
		opt(&r)
	}
	r.opts.Defaults()

	ctx := context.Background()
	start := time.Now()
	breakpoint := r.opts.Breakpoint()
	observability.Render().OnRenderStart(ctx, doc.ID, breakpoint)

	placements := render.Placements(doc, r.opts)

	buf := &bytes.Buffer{}
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(buf, "<meta charset=\"utf-8\"/>\n<title>%s</title>\n", html.EscapeString(doc.Meta.Title))
	if doc.Meta.Description != "" {
		fmt.Fprintf(buf, "<meta name=\"description\" content=\"%s\"/>\n", html.EscapeString(doc.Meta.Description))
	}
	buf.WriteString("<style>\n")
	buf.WriteString(r.opts.Theme.CSSVariables())
	buf.WriteString("\n")
	buf.WriteString(baseCSS)
	buf.WriteString("</style>\n</head>\n<body>\n")

	pageHeight := pageHeightPx(placements, r.opts)
	fmt.Fprintf(buf, `<main class="gp-page" data-page="%s" data-breakpoint="%s" style="position:relative;width:%dpx;min-height:%.2fpx">`+"\n",
		html.EscapeString(doc.ID), breakpoint, r.opts.ContainerWidth, pageHeight)

	for _, p := range placements {
		writeSection(buf, p, r.opts)
	}

	buf.WriteString("</main>\n</body>\n</html>\n")

	out := buf.Bytes()
	observability.Render().OnRenderComplete(ctx, doc.ID, breakpoint, len(out), time.Since(start), nil)
	return out
}

// writeSection emits one placed, static section.
func writeSection(buf *bytes.Buffer, p render.Placement, opts render.Options) {
	fmt.Fprintf(buf, `<div class="gp-section" id="section-%s" data-type="%s" style="position:absolute;%s%s">`,
		html.EscapeString(p.Section.ID),
		html.EscapeString(p.Section.Type),
		p.Style(),
		styleOverrides(p.Section))
	render.WriteBody(buf, p.Section, opts.Registry, opts.Sanitize)
	buf.WriteString("</div>\n")
}

// styleOverrides flattens the section's style map into inline CSS,
// deterministically ordered. Styles are opaque to the geometry model and
// are appended after the placement so they cannot override position.
func styleOverrides(s *page.Section) string {
	if len(s.Styles) == 0 {
		return ""
	}
	var b bytes.Buffer
	for _, k := range sortedKeys(s.Styles) {
		fmt.Fprintf(&b, ";%s:%s", html.EscapeString(k), html.EscapeString(s.Styles[k]))
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// pageHeightPx computes the container height covering every placement.
func pageHeightPx(placements []render.Placement, opts render.Options) float64 {
	bottom := 0.0
	for _, p := range placements {
		if end := p.Pixels.Top + p.Pixels.Height; end > bottom {
			bottom = end
		}
	}
	return bottom + float64(opts.Config.Margin[1])
}

// baseCSS is the minimal structural stylesheet shared by all pages.
const baseCSS = `body { margin: 0; background: var(--gp-bg); color: var(--gp-fg); font-family: system-ui, sans-serif; }
.gp-page { margin: 0 auto; }
.gp-section { box-sizing: border-box; overflow: hidden; }
.gp-hero { background: var(--gp-surface); padding: 1rem; height: 100%; box-sizing: border-box; }
.gp-cta, .gp-button { color: var(--gp-accent); text-decoration: none; }
.gp-unknown { border: 1px dashed var(--gp-accent); color: var(--gp-accent); padding: 0.5rem; font-size: 0.85rem; }
.gp-pricing { display: flex; gap: 1rem; }
.gp-plan { flex: 1; background: var(--gp-surface); padding: 1rem; }
.gp-coming-soon { color: var(--gp-muted); text-align: center; padding-top: 1rem; }
`
