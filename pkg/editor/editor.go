// Package editor implements the layout mutation engine: it applies user
// intents (add, delete, move, resize, prop edits) to an in-memory page
// document while preserving the grid invariants.
//
// Every operation is synchronous and works on the full section list,
// producing a new list - no partially mutated state is ever observable by a
// consumer holding the previous document.
//
// The document as a whole has two editor-visible states, clean and dirty.
// Any mutation marks it dirty; only a successful save (reported through
// MarkSaved) returns it to clean. There is no autosave: an editor that
// navigates away dirty loses its changes.
package editor

import (
	"github.com/gridpress/gridpress/pkg/errors"
	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/registry"
)

// Direction selects which neighbor MoveSection swaps with.
type Direction string

// Move directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Default grid height in rows for a newly added section.
const addHeight = 4

// Editor applies mutation operations to one page document.
//
// Editor is not safe for concurrent use; it models a single editing surface.
// Concurrent editors on the same page are reconciled at the store layer via
// revision checks, not here.
type Editor struct {
	doc   page.Document
	reg   *registry.Registry
	cols  int
	dirty bool
}

// New creates an editor over a deep copy of doc. cols is the column count of
// the authoring breakpoint, used to size newly added sections.
func New(doc page.Document, reg *registry.Registry, cols int) *Editor {
	if reg == nil {
		reg = registry.Default()
	}
	if cols < 1 {
		cols = 12
	}
	return &Editor{doc: doc.Clone(), reg: reg, cols: cols}
}

// Document returns a deep copy of the current document state.
func (e *Editor) Document() page.Document {
	return e.doc.Clone()
}

// Dirty reports whether the document has unsaved mutations.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// MarkSaved transitions the document back to clean after a successful save
// and records the revision the store assigned.
func (e *Editor) MarkSaved(rev int64) {
	e.doc.Rev = rev
	e.dirty = false
}

// =============================================================================
// Mutation Operations
// =============================================================================

// AddSection creates a section of the given type with the registry's default
// props and appends it at atIndex (or at the end for a negative index). The
// new section is placed full-width after all existing content: its row
// offset is the bottom sentinel, resolved when the layout is computed.
//
// The created section is returned; unknown types are a content error and
// leave the document untouched.
func (e *Editor) AddSection(typ string, atIndex int) (page.Section, error) {
	if err := errors.ValidateSectionType(typ); err != nil {
		return page.Section{}, err
	}
	entry, err := e.reg.Resolve(typ)
	if err != nil {
		return page.Section{}, err
	}

	h := addHeight
	if entry.MinH > h {
		h = entry.MinH
	}
	s := page.Section{
		ID:    page.NewID(),
		Type:  typ,
		Props: entry.Defaults(),
		Layout: &page.Layout{
			X: 0,
			Y: page.BottomY,
			W: e.cols,
			H: h,
		},
	}

	sections := make([]page.Section, 0, len(e.doc.Sections)+1)
	if atIndex < 0 || atIndex > len(e.doc.Sections) {
		atIndex = len(e.doc.Sections)
	}
	sections = append(sections, e.doc.Sections[:atIndex]...)
	sections = append(sections, s)
	sections = append(sections, e.doc.Sections[atIndex:]...)

	e.doc.Sections = sections
	e.dirty = true
	return s.Clone(), nil
}

// DeleteSection removes the section with the given id. No other section's
// layout is compacted; empty vertical space left behind is intentional and
// closes only through an explicit drag.
func (e *Editor) DeleteSection(id string) error {
	_, idx := e.doc.Section(id)
	if idx < 0 {
		return errors.New(errors.ErrCodeSectionNotFound, "section not found: %s", id)
	}
	sections := make([]page.Section, 0, len(e.doc.Sections)-1)
	sections = append(sections, e.doc.Sections[:idx]...)
	sections = append(sections, e.doc.Sections[idx+1:]...)
	e.doc.Sections = sections
	e.dirty = true
	return nil
}

// ApplyLayoutChange bulk-replaces the layout of every section present in
// layouts, keyed by section id. It is called once per completed drag or
// resize gesture - intermediate pointer positions are visual-only and never
// reach the engine. Ids not present in the document are ignored; the engine
// persists whatever final rectangle set the gesture produced.
func (e *Editor) ApplyLayoutChange(layouts map[string]page.Layout) {
	if len(layouts) == 0 {
		return
	}
	changed := false
	sections := make([]page.Section, len(e.doc.Sections))
	for i, s := range e.doc.Sections {
		sections[i] = s
		if l, ok := layouts[s.ID]; ok {
			cp := s.Clone()
			lc := l
			cp.Layout = &lc
			sections[i] = cp
			changed = true
		}
	}
	if changed {
		e.doc.Sections = sections
		e.dirty = true
	}
}

// MoveSection swaps the section with its adjacent list neighbor. This is the
// keyboard-accessible reordering path: it touches list positions only, never
// x/y, so its effect is visible only for sections still relying on the
// stacked list-order fallback. Moving past either end is a no-op.
func (e *Editor) MoveSection(id string, dir Direction) error {
	_, idx := e.doc.Section(id)
	if idx < 0 {
		return errors.New(errors.ErrCodeSectionNotFound, "section not found: %s", id)
	}

	target := idx
	switch dir {
	case Up:
		target = idx - 1
	case Down:
		target = idx + 1
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid move direction: %s", dir)
	}
	if target < 0 || target >= len(e.doc.Sections) {
		return nil
	}

	sections := make([]page.Section, len(e.doc.Sections))
	copy(sections, e.doc.Sections)
	sections[idx], sections[target] = sections[target], sections[idx]
	e.doc.Sections = sections
	e.dirty = true
	return nil
}

// UpdateProp shallow-merges one property into the section's prop map. The
// value is not validated against the schema at write time - schema
// enforcement is advisory and lives at the input-widget edge, where only
// JSON-kind fields reject unparseable input.
func (e *Editor) UpdateProp(id, name string, value any) error {
	if err := errors.ValidatePropName(name); err != nil {
		return err
	}
	_, idx := e.doc.Section(id)
	if idx < 0 {
		return errors.New(errors.ErrCodeSectionNotFound, "section not found: %s", id)
	}

	sections := make([]page.Section, len(e.doc.Sections))
	copy(sections, e.doc.Sections)
	cp := sections[idx].Clone()
	if cp.Props == nil {
		cp.Props = map[string]any{}
	}
	cp.Props[name] = value
	sections[idx] = cp
	e.doc.Sections = sections
	e.dirty = true
	return nil
}

// UpdateStyle shallow-merges one style override into the section's style
// map. Styles are opaque to the geometry model.
func (e *Editor) UpdateStyle(id, name, value string) error {
	_, idx := e.doc.Section(id)
	if idx < 0 {
		return errors.New(errors.ErrCodeSectionNotFound, "section not found: %s", id)
	}

	sections := make([]page.Section, len(e.doc.Sections))
	copy(sections, e.doc.Sections)
	cp := sections[idx].Clone()
	if cp.Styles == nil {
		cp.Styles = map[string]string{}
	}
	cp.Styles[name] = value
	sections[idx] = cp
	e.doc.Sections = sections
	e.dirty = true
	return nil
}

// UpdateMeta replaces the page head metadata.
func (e *Editor) UpdateMeta(meta page.Meta) {
	e.doc.Meta = meta
	e.dirty = true
}
