package html

import (
	"regexp"
	"strings"
	"testing"

	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/render/canvas"
	"github.com/gridpress/gridpress/pkg/sync"
	"github.com/gridpress/gridpress/pkg/theme"
)

var placementRe = regexp.MustCompile(`left:[0-9.]+px;top:[0-9.]+px;width:[0-9.]+px;height:[0-9.]+px`)

func TestRenderStructure(t *testing.T) {
	doc := sync.DefaultDocument(sync.PageHome)
	out := string(Render(doc, WithContainerWidth(1280)))

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("output is not a full HTML document")
	}
	if !strings.Contains(out, "<title>Home</title>") {
		t.Error("page title missing")
	}
	if !strings.Contains(out, `data-page="home"`) {
		t.Error("page id attribute missing")
	}
	if !strings.Contains(out, `data-breakpoint="lg"`) {
		t.Error("breakpoint attribute missing")
	}
	for _, id := range []string{"hero-main", "spacer-1", "coming-soon"} {
		if !strings.Contains(out, `id="section-`+id+`"`) {
			t.Errorf("section %s missing from output", id)
		}
	}
}

func TestRenderIsStatic(t *testing.T) {
	doc := sync.DefaultDocument(sync.PageHome)
	out := string(Render(doc))

	// The live surface must never emit editing affordances, no matter how
	// it is configured.
	for _, marker := range []string{"draggable", "gp-resize-handle", "gp-canvas-item", "gp-selected"} {
		if strings.Contains(out, marker) {
			t.Errorf("static output contains editing affordance %q", marker)
		}
	}
}

func TestRenderUnknownTypeIsVisibleNotFatal(t *testing.T) {
	doc := page.Document{
		ID: "p",
		Sections: []page.Section{
			{ID: "bad", Type: "Carousel", Layout: &page.Layout{W: 12, H: 2}},
			{ID: "ok", Type: "Spacer", Layout: &page.Layout{Y: 2, W: 12, H: 2}},
		},
	}

	out := string(Render(doc))
	if !strings.Contains(out, "gp-unknown") {
		t.Error("unknown type placeholder missing")
	}
	if !strings.Contains(out, `id="section-ok"`) {
		t.Error("sections after the unknown one were dropped")
	}
}

func TestRenderThemeVariables(t *testing.T) {
	doc := sync.DefaultDocument(sync.PageHome)

	light := string(Render(doc, WithTheme(theme.Light())))
	dark := string(Render(doc, WithTheme(theme.Dark())))

	if !strings.Contains(light, "--gp-") {
		t.Error("theme variables missing")
	}
	if light == dark {
		t.Error("light and dark themes rendered identically")
	}
}

func TestRenderStyleOverrides(t *testing.T) {
	doc := page.Document{
		ID: "p",
		Sections: []page.Section{
			{
				ID: "s", Type: "Spacer",
				Styles: map[string]string{"background": "#111", "border-radius": "4px"},
				Layout: &page.Layout{W: 12, H: 2},
			},
		},
	}

	out := string(Render(doc))
	idx := strings.Index(out, `id="section-s"`)
	if idx < 0 {
		t.Fatal("section missing")
	}
	line := out[idx:]
	line = line[:strings.Index(line, ">")]

	// Overrides are appended after the placement, deterministically sorted.
	bg := strings.Index(line, "background:#111")
	br := strings.Index(line, "border-radius:4px")
	pl := placementRe.FindStringIndex(line)
	if bg < 0 || br < 0 || pl == nil {
		t.Fatalf("styles or placement missing: %q", line)
	}
	if !(pl[1] <= bg && bg < br) {
		t.Errorf("style override order wrong: %q", line)
	}
}

func TestRenderDeterministic(t *testing.T) {
	doc := sync.DefaultDocument(sync.PagePricing)
	first := Render(doc, WithContainerWidth(996))
	for i := 0; i < 5; i++ {
		if string(Render(doc, WithContainerWidth(996))) != string(first) {
			t.Fatal("render output not deterministic")
		}
	}
}

// TestPlacementAgreement pins the core guarantee: for the same document,
// grid configuration, and container width, the live page and the editing
// canvas emit byte-identical placement styles for every section.
func TestPlacementAgreement(t *testing.T) {
	doc := sync.DefaultDocument(sync.PageHome)
	doc.Sections = append(doc.Sections, page.Section{ID: "loose", Type: "Spacer"}) // fallback path too

	for _, width := range []int{1280, 996, 768, 480, 320} {
		live := placementRe.FindAllString(string(Render(doc, WithContainerWidth(width))), -1)

		c := canvas.New(canvas.WithContainerWidth(width))
		editable := placementRe.FindAllString(string(c.Render(doc)), -1)

		if len(live) != len(doc.Sections) {
			t.Fatalf("width %d: live placements = %d, want %d", width, len(live), len(doc.Sections))
		}
		if len(live) != len(editable) {
			t.Fatalf("width %d: placement count differs: live %d, canvas %d", width, len(live), len(editable))
		}
		for i := range live {
			if live[i] != editable[i] {
				t.Errorf("width %d section %d: live %q != canvas %q", width, i, live[i], editable[i])
			}
		}
	}
}
