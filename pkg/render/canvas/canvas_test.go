package canvas

import (
	"strings"
	"testing"

	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/sync"
)

func TestRenderEmitsEditingAffordances(t *testing.T) {
	c := New(WithContainerWidth(1280))
	out := string(c.Render(sync.DefaultDocument(sync.PageHome)))

	if !strings.Contains(out, `class="gp-canvas"`) {
		t.Error("canvas container missing")
	}
	if strings.Count(out, `draggable="true"`) != 3 {
		t.Errorf("want every block draggable: %q", out)
	}
	if strings.Count(out, "gp-resize-handle") != 3 {
		t.Error("want a resize handle per block")
	}
	if !strings.Contains(out, `data-x="0" data-y="6" data-w="12" data-h="2"`) {
		t.Error("grid rectangle data attributes missing")
	}
}

func TestSelection(t *testing.T) {
	c := New()
	doc := sync.DefaultDocument(sync.PageHome)

	if c.Selected() != "" {
		t.Fatal("fresh canvas has a selection")
	}

	c.Select("hero-main")
	out := string(c.Render(doc))
	if strings.Count(out, "gp-selected") != 1 {
		t.Errorf("want exactly one selected block: %q", out)
	}
	if !strings.Contains(out, `class="gp-canvas-item gp-selected" id="section-hero-main"`) {
		t.Error("selection not on the chosen block")
	}

	// Selecting another block replaces the selection.
	c.Select("spacer-1")
	if c.Selected() != "spacer-1" {
		t.Errorf("Selected() = %q, want spacer-1", c.Selected())
	}
	out = string(c.Render(doc))
	if strings.Count(out, "gp-selected") != 1 {
		t.Error("selection is not mutually exclusive")
	}

	c.ClearSelection()
	if c.Selected() != "" {
		t.Error("ClearSelection did not clear")
	}
}

func TestGestureLifecycle(t *testing.T) {
	c := New()
	doc := sync.DefaultDocument(sync.PageHome)

	g := c.BeginGesture(doc, "hero-main")
	if g == nil {
		t.Fatal("BeginGesture returned nil for a known section")
	}

	g.MoveTo(2, 4)
	g.ResizeTo(8, 5)

	change := c.End(g)
	if change == nil {
		t.Fatal("End() = nil for a changed gesture")
	}
	got, ok := change["hero-main"]
	if !ok {
		t.Fatal("change does not address the dragged section")
	}
	if got != (page.Layout{X: 2, Y: 4, W: 8, H: 5}) {
		t.Errorf("layout change = %+v, want {2 4 8 5}", got)
	}

	// The document itself is untouched; only the returned change carries
	// the new rectangle.
	s, _ := doc.Section("hero-main")
	if *s.Layout != (page.Layout{X: 0, Y: 0, W: 12, H: 6}) {
		t.Errorf("gesture mutated the document: %+v", *s.Layout)
	}
}

func TestGestureNoChange(t *testing.T) {
	c := New()
	doc := sync.DefaultDocument(sync.PageHome)

	g := c.BeginGesture(doc, "hero-main")
	if change := c.End(g); change != nil {
		t.Errorf("End() without movement = %v, want nil", change)
	}
}

func TestGestureClampsToMinimumSize(t *testing.T) {
	c := New()
	g := c.BeginGesture(sync.DefaultDocument(sync.PageHome), "hero-main")

	g.ResizeTo(0, 0)
	change := c.End(g)
	got := change["hero-main"]
	if got.W != page.MinW || got.H != page.MinH {
		t.Errorf("resize below minimum = %+v, want w=%d h=%d", got, page.MinW, page.MinH)
	}
}

func TestGestureNegativeRowClampsToZero(t *testing.T) {
	c := New()
	g := c.BeginGesture(sync.DefaultDocument(sync.PageHome), "spacer-1")

	g.MoveTo(0, -10)
	change := c.End(g)
	if got := change["spacer-1"]; got.Y != 0 {
		t.Errorf("negative row = %d, want clamp to 0", got.Y)
	}
}

func TestGestureCancel(t *testing.T) {
	c := New()
	doc := sync.DefaultDocument(sync.PageHome)

	g := c.BeginGesture(doc, "hero-main")
	g.MoveTo(5, 5)
	c.Cancel(g)

	// The transient rectangle is gone from subsequent renders.
	out := string(c.Render(doc))
	if !strings.Contains(out, `data-x="0" data-y="0" data-w="12" data-h="6"`) {
		t.Error("cancelled gesture leaked into the render")
	}
}

func TestGestureUnknownSection(t *testing.T) {
	c := New()
	if g := c.BeginGesture(sync.DefaultDocument(sync.PageHome), "ghost"); g != nil {
		t.Error("BeginGesture on unknown id returned a gesture")
	}
	if change := c.End(nil); change != nil {
		t.Errorf("End(nil) = %v, want nil", change)
	}
}

func TestMidGestureRenderUsesTransientRect(t *testing.T) {
	c := New(WithContainerWidth(1280))
	doc := sync.DefaultDocument(sync.PageHome)

	g := c.BeginGesture(doc, "hero-main")
	g.MoveTo(0, 10)

	out := string(c.Render(doc))
	if !strings.Contains(out, `id="section-hero-main" data-type="Hero" data-x="0" data-y="10"`) {
		t.Errorf("mid-gesture render does not show the transient rectangle: %q", out)
	}
}
