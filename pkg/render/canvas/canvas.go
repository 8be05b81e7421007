// Package canvas renders a page document as the editable editor surface.
//
// The canvas shares its placement math with the live renderer (package
// html): both consume the same grid configuration and the same computed
// rectangles, so a block sits at exactly the same pixel position in the
// editor as on the published page.
//
// On top of that the canvas adds editing state:
//   - single selection: selecting one block deselects the previous one,
//     clicking empty canvas space clears the selection
//   - drag/resize gestures: intermediate positions are transient visual
//     state only; a gesture commits one bulk layout change at its end
package canvas

import (
	"bytes"
	"fmt"
	"html"

	"github.com/gridpress/gridpress/pkg/grid"
	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/registry"
	"github.com/gridpress/gridpress/pkg/render"
	"github.com/gridpress/gridpress/pkg/theme"
)

// =============================================================================
// Canvas - Editable Surface State
// =============================================================================

// Canvas holds the transient editing state of the editable surface. It
// never mutates documents itself; committing a gesture hands the final
// rectangles to the mutation engine.
type Canvas struct {
	opts     render.Options
	selected string
	gesture  *Gesture
}

// Option configures a canvas.
type Option func(*Canvas)

// WithConfig sets the grid configuration. Pass the same shared instance to
// the live renderer.
func WithConfig(cfg grid.Config) Option {
	return func(c *Canvas) { c.opts.Config = cfg }
}

// WithRegistry sets the section registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Canvas) { c.opts.Registry = reg }
}

// WithTheme sets the theme for editor chrome.
func WithTheme(t theme.Theme) Option {
	return func(c *Canvas) { c.opts.Theme = t }
}

// WithContainerWidth sets the measured canvas width in pixels.
func WithContainerWidth(w int) Option {
	return func(c *Canvas) { c.opts.ContainerWidth = w }
}

// WithSanitizer installs a markup sanitizer for rich-text content.
func WithSanitizer(s render.Sanitizer) Option {
	return func(c *Canvas) { c.opts.Sanitize = s }
}

// New creates a canvas with no selection and no active gesture.
func New(opts ...Option) *Canvas {
	c := &Canvas{}
	for _, opt := range opts {
		opt(c)
	}
	c.opts.Defaults()
	return c
}

// =============================================================================
// Selection
//
// Selection is mutually exclusive by construction: the state is a single
// id, so selecting B while A is selected replaces A. Never multi-select.
// =============================================================================

// Select marks the given section as selected, replacing any previous
// selection.
func (c *Canvas) Select(id string) {
	c.selected = id
}

// ClearSelection deselects, as a click on empty canvas space does.
func (c *Canvas) ClearSelection() {
	c.selected = ""
}

// Selected returns the currently selected section id, or empty.
func (c *Canvas) Selected() string {
	return c.selected
}

// =============================================================================
// Rendering
// =============================================================================

// Render produces the editable canvas markup for a document. Every block
// carries drag and resize affordances and its grid rectangle as data
// attributes; the selected block carries the selection class.
func (c *Canvas) Render(doc page.Document) []byte {
	placements := render.Placements(doc, c.opts)

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, `<div class="gp-canvas" data-page="%s" data-breakpoint="%s" style="position:relative;width:%dpx">`+"\n",
		html.EscapeString(doc.ID), c.opts.Breakpoint(), c.opts.ContainerWidth)

	for _, p := range placements {
		c.writeItem(buf, p)
	}

	buf.WriteString("</div>\n")
	return buf.Bytes()
}

// writeItem emits one editable block. The transient gesture rectangle, if
// this block is mid-gesture, replaces the committed placement visually; the
// underlying document is untouched until the gesture ends.
func (c *Canvas) writeItem(buf *bytes.Buffer, p render.Placement) {
	rect := p.Rect
	style := p.Style()
	if c.gesture != nil && c.gesture.id == p.Section.ID {
		rect = c.gesture.current
		cols := c.opts.Config.ColsFor(c.opts.Breakpoint())
		style = render.Placement{
			Section: p.Section,
			Rect:    rect,
			Pixels:  rect.Pixels(c.opts.Config, cols, c.opts.ContainerWidth),
		}.Style()
	}

	class := "gp-canvas-item"
	if p.Section.ID == c.selected {
		class += " gp-selected"
	}

	fmt.Fprintf(buf, `<div class="%s" id="section-%s" data-type="%s" data-x="%d" data-y="%d" data-w="%d" data-h="%d" draggable="true" style="position:absolute;%s">`,
		class,
		html.EscapeString(p.Section.ID),
		html.EscapeString(p.Section.Type),
		rect.X, rect.Y, rect.W, rect.H,
		style)
	render.WriteBody(buf, p.Section, c.opts.Registry, c.opts.Sanitize)
	buf.WriteString(`<span class="gp-resize-handle gp-resize-se"></span>`)
	buf.WriteString("</div>\n")
}

// =============================================================================
// Gestures
// =============================================================================

// Gesture is one in-progress drag or resize. MoveTo and ResizeTo update
// only the transient rectangle; End returns the single bulk layout change
// to hand to the mutation engine. Discarding a gesture without calling End
// restores the committed state with no side effects.
type Gesture struct {
	id      string
	initial grid.Rect
	current grid.Rect
}

// BeginGesture starts a drag/resize on a section, capturing its committed
// rectangle as the starting point. Starting a gesture on an unknown id
// returns nil.
func (c *Canvas) BeginGesture(doc page.Document, id string) *Gesture {
	cols := c.opts.Config.ColsFor(c.opts.Breakpoint())
	for _, r := range grid.Compute(doc.Sections, cols) {
		if r.SectionID == id {
			g := &Gesture{id: id, initial: r, current: r}
			c.gesture = g
			return g
		}
	}
	return nil
}

// MoveTo updates the transient position in grid units.
func (g *Gesture) MoveTo(x, y int) {
	if y < 0 {
		y = 0
	}
	g.current.X = x
	g.current.Y = y
}

// ResizeTo updates the transient size in grid units, clamped to the
// minimum block size.
func (g *Gesture) ResizeTo(w, h int) {
	if w < page.MinW {
		w = page.MinW
	}
	if h < page.MinH {
		h = page.MinH
	}
	g.current.W = w
	g.current.H = h
}

// End completes the gesture and returns the layout change to persist. The
// canvas forgets the transient state either way.
func (c *Canvas) End(g *Gesture) map[string]page.Layout {
	if c.gesture == g {
		c.gesture = nil
	}
	if g == nil || g.current == g.initial {
		return nil
	}
	return map[string]page.Layout{
		g.id: {X: g.current.X, Y: g.current.Y, W: g.current.W, H: g.current.H},
	}
}

// Cancel abandons the gesture without producing a change.
func (c *Canvas) Cancel(g *Gesture) {
	if c.gesture == g {
		c.gesture = nil
	}
}
