// Package grid implements the grid geometry model: a pure mapping from a
// list of sections to placed rectangles on a fixed-column grid.
//
// The package has no side effects and no dependency on any rendering
// surface. Both the editor canvas and the live page renderer call
// [Compute] with the same [Config]; because the function is deterministic,
// the two surfaces are guaranteed to agree on placement.
//
// Column counts differ per breakpoint, and geometry is recomputed
// independently per breakpoint rather than scaled: a section authored at
// twelve columns re-wraps at narrow breakpoints instead of shrinking
// proportionally.
package grid

import (
	"sort"

	"github.com/gridpress/gridpress/pkg/page"
)

// =============================================================================
// Config - Shared Grid Configuration
// =============================================================================

// Breakpoint names, widest first.
const (
	BreakpointLG  = "lg"
	BreakpointMD  = "md"
	BreakpointSM  = "sm"
	BreakpointXS  = "xs"
	BreakpointXXS = "xxs"
)

// Config is the process-wide grid configuration. It is loaded once at
// startup and never mutated; the editor canvas and the live renderer must
// consume the same instance. Divergence between the two surfaces is the
// primary correctness hazard of the whole system.
type Config struct {
	// Cols is the column count at the reference (widest) breakpoint.
	Cols int `json:"cols" toml:"cols"`

	// RowHeight is the pixel height of one grid row.
	RowHeight int `json:"row_height" toml:"row_height"`

	// Margin is the horizontal and vertical gap between cells, in pixels.
	Margin [2]int `json:"margin" toml:"margin"`

	// Breakpoints maps a breakpoint name to its minimum container width in
	// pixels. The xxs breakpoint has threshold 0 and is the guaranteed
	// fallback.
	Breakpoints map[string]int `json:"breakpoints" toml:"breakpoints"`

	// ColsPerBreakpoint maps a breakpoint name to its column count.
	ColsPerBreakpoint map[string]int `json:"cols_per_breakpoint" toml:"cols_per_breakpoint"`
}

// DefaultConfig returns the stock grid configuration.
func DefaultConfig() Config {
	return Config{
		Cols:      12,
		RowHeight: 30,
		Margin:    [2]int{10, 10},
		Breakpoints: map[string]int{
			BreakpointLG:  1200,
			BreakpointMD:  996,
			BreakpointSM:  768,
			BreakpointXS:  480,
			BreakpointXXS: 0,
		},
		ColsPerBreakpoint: map[string]int{
			BreakpointLG:  12,
			BreakpointMD:  12,
			BreakpointSM:  6,
			BreakpointXS:  4,
			BreakpointXXS: 2,
		},
	}
}

// BreakpointFor returns the name of the largest breakpoint whose threshold
// is at or below the given container width. The xxs breakpoint (threshold
// zero) is the guaranteed fallback, so every non-negative width resolves.
// Equal thresholds break ties by name, the same order BreakpointNames
// uses, so the winner never depends on map iteration order.
func (c Config) BreakpointFor(width int) string {
	best := BreakpointXXS
	bestThreshold := -1
	for name, threshold := range c.Breakpoints {
		if threshold > width {
			continue
		}
		if threshold > bestThreshold || (threshold == bestThreshold && name < best) {
			best = name
			bestThreshold = threshold
		}
	}
	return best
}

// ColsFor returns the column count for a breakpoint name. Unknown names
// fall back to the reference column count.
func (c Config) ColsFor(breakpoint string) int {
	if cols, ok := c.ColsPerBreakpoint[breakpoint]; ok && cols > 0 {
		return cols
	}
	return c.Cols
}

// BreakpointNames returns the configured breakpoint names sorted widest
// first. The order is deterministic for equal thresholds.
func (c Config) BreakpointNames() []string {
	names := make([]string, 0, len(c.Breakpoints))
	for name := range c.Breakpoints {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ti, tj := c.Breakpoints[names[i]], c.Breakpoints[names[j]]
		if ti != tj {
			return ti > tj
		}
		return names[i] < names[j]
	})
	return names
}

// =============================================================================
// Rect - Computed Placement
// =============================================================================

// Rect is a computed grid rectangle for one section. It is derived from the
// stored layout at render time; clamping a Rect never mutates the section it
// was computed from.
type Rect struct {
	SectionID string `json:"section_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	W         int    `json:"w"`
	H         int    `json:"h"`
}

// Pixels projects the rectangle into pixel space for a container of the
// given width under cfg. Both renderers use this same projection, which is
// what makes their placement byte-identical.
func (r Rect) Pixels(cfg Config, cols, containerWidth int) PixelRect {
	mx, my := cfg.Margin[0], cfg.Margin[1]
	colWidth := float64(containerWidth-(cols+1)*mx) / float64(cols)
	return PixelRect{
		Left:   float64(mx) + float64(r.X)*(colWidth+float64(mx)),
		Top:    float64(my) + float64(r.Y)*float64(cfg.RowHeight+my),
		Width:  float64(r.W)*colWidth + float64(r.W-1)*float64(mx),
		Height: float64(r.H*cfg.RowHeight) + float64((r.H-1)*my),
	}
}

// PixelRect is a pixel-space placement.
type PixelRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// =============================================================================
// Compute - Pure Layout Function
// =============================================================================

// Fallback placement for sections with no stored layout: stacked full-width
// rows in list order.
const (
	fallbackRowStride = 2
	fallbackHeight    = 4
)

// Compute converts an ordered section list into placed rectangles for the
// given column count. The function is deterministic and side-effect free:
// identical inputs always produce identical output, and the stored layouts
// are never mutated.
//
// Placement rules, per section:
//   - Layout present: used verbatim, clamped so x+w never exceeds cols. A
//     stored width wider than the breakpoint clamps to w=cols, x=0. This is
//     a reflow policy, not data loss - only the computed rectangle changes.
//   - Bottom sentinel row offset: resolved to max(y+h) over all placed
//     sections, regardless of list position, so a newly added section lands
//     after all existing content even when inserted mid-list. Multiple
//     sentinel sections stack below one another in list order.
//   - Layout absent: stacked fallback at y=index*2, x=0, w=cols, h=4, which
//     keeps every section visible even with zero layout metadata.
func Compute(sections []page.Section, cols int) []Rect {
	if cols < 1 {
		cols = 1
	}
	rects := make([]Rect, len(sections))
	atBottom := make([]bool, len(sections))
	for i, s := range sections {
		if !s.HasLayout() {
			rects[i] = Rect{
				SectionID: s.ID,
				X:         0,
				Y:         i * fallbackRowStride,
				W:         cols,
				H:         fallbackHeight,
			}
			continue
		}

		l := *s.Layout
		r := Rect{SectionID: s.ID, X: l.X, Y: l.Y, W: l.W, H: l.H}
		if r.H < 1 {
			r.H = 1
		}
		if r.W < 1 {
			r.W = 1
		}
		if r.W > cols {
			r.W = cols
			r.X = 0
		} else if r.X+r.W > cols {
			r.X = cols - r.W
		}
		if r.X < 0 {
			r.X = 0
		}
		if l.AtBottom() {
			atBottom[i] = true
		} else if r.Y < 0 {
			r.Y = 0
		}
		rects[i] = r
	}

	// Sentinel rows resolve only after every explicitly placed section is
	// known; resolving against the prefix would let a section inserted at
	// the top of the list land on top of existing content.
	bottom := 0
	for i, r := range rects {
		if atBottom[i] {
			continue
		}
		if end := r.Y + r.H; end > bottom {
			bottom = end
		}
	}
	for i := range rects {
		if atBottom[i] {
			rects[i].Y = bottom
			bottom += rects[i].H
		}
	}
	return rects
}

// bottomOf returns the first free row below all placed rectangles.
func bottomOf(rects []Rect) int {
	bottom := 0
	for _, r := range rects {
		if end := r.Y + r.H; end > bottom {
			bottom = end
		}
	}
	return bottom
}

// Height returns the total grid height in rows for a computed rectangle
// set. Empty input yields zero.
func Height(rects []Rect) int {
	return bottomOf(rects)
}
