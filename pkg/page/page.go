// Package page defines the canonical document model for GridPress pages.
//
// A page is an ordered list of typed sections, each carrying an open property
// map, optional style overrides, and a grid rectangle. The package is the
// single serialization point for the rest of the system: the editor mutates
// Documents, the store persists them, and both renderers consume them.
//
// The format is designed for round-trip fidelity: save → load → save produces
// an identical document, with no field loss.
package page

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Built-in section type names handled inline by renderers rather than through
// a registered component.
const (
	TypeSpacer   = "Spacer"
	TypeRichText = "RichText"
)

// Minimum section dimensions. Sections below this floor are still rendered
// (the floor is advisory for editing surfaces, not a storage constraint).
const (
	MinW = 2
	MinH = 1
)

// BottomY is the sentinel row offset meaning "place after all existing
// content". It is resolved to max(y+h) over the placed sections when the
// layout is computed, never persisted back into the section.
const BottomY = 1 << 30

// =============================================================================
// Section
// =============================================================================

// Section is one placed content block.
//
// ID is opaque, unique, and stable across edits; it is assigned at creation
// and never reused. Type is immutable after creation - changing the type of a
// block requires delete and recreate.
type Section struct {
	ID     string            `json:"id" bson:"id"`
	Type   string            `json:"type" bson:"type"`
	Props  map[string]any    `json:"props,omitempty" bson:"props,omitempty"`
	Styles map[string]string `json:"styles,omitempty" bson:"styles,omitempty"`
	Layout *Layout           `json:"layout,omitempty" bson:"layout,omitempty"`
}

// NewID returns a fresh opaque section identifier.
func NewID() string {
	return uuid.NewString()
}

// HasLayout reports whether the section carries an explicit grid rectangle.
// Sections without one (freshly migrated content) fall back to stacked
// full-width placement in list order.
func (s *Section) HasLayout() bool {
	return s.Layout != nil
}

// Prop returns the named property, or nil if unset.
func (s *Section) Prop(name string) any {
	if s.Props == nil {
		return nil
	}
	return s.Props[name]
}

// StringProp returns the named property as a string, or fallback if the
// property is unset or not a string.
func (s *Section) StringProp(name, fallback string) string {
	if v, ok := s.Prop(name).(string); ok {
		return v
	}
	return fallback
}

// IntProp returns the named property as an int, or fallback if the property
// is unset or not numeric. JSON decoding yields float64 for numbers, so both
// float64 and int are accepted.
func (s *Section) IntProp(name string, fallback int) int {
	switch v := s.Prop(name).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// Clone returns a deep copy of the section. Mutating the copy never affects
// the original.
func (s Section) Clone() Section {
	out := s
	out.Props = cloneProps(s.Props)
	if s.Styles != nil {
		out.Styles = make(map[string]string, len(s.Styles))
		for k, v := range s.Styles {
			out.Styles[k] = v
		}
	}
	if s.Layout != nil {
		l := *s.Layout
		out.Layout = &l
	}
	return out
}

// cloneProps deep-copies a property map through JSON to detach nested values.
func cloneProps(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		// Property maps come from JSON documents; non-marshalable values
		// cannot occur through any supported write path. Fall back to a
		// shallow copy rather than dropping the props.
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// =============================================================================
// Layout - Grid Rectangle
// =============================================================================

// Layout is the grid rectangle assigned to a section: column offset, row
// offset, width in columns, and height in rows. The row axis is unbounded;
// the grid grows downward.
type Layout struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
	W int `json:"w" bson:"w"`
	H int `json:"h" bson:"h"`
}

// AtBottom reports whether the rectangle carries the bottom-placement
// sentinel row offset.
func (l Layout) AtBottom() bool {
	return l.Y >= BottomY
}

// =============================================================================
// Document
// =============================================================================

// Meta holds page head metadata. Opaque to the layout core.
type Meta struct {
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Document is the persisted unit of content for one route.
//
// Sections are ordered; order is significant only as a fallback vertical
// stacking order for sections with no Layout. Once a section has a Layout,
// its (x, y) is authoritative and list order is cosmetic.
//
// Rev is the optimistic-concurrency stamp: it is incremented by the store on
// every successful Put, and a Put whose base Rev no longer matches the stored
// document fails with a conflict.
type Document struct {
	ID       string    `json:"id" bson:"_id"`
	Rev      int64     `json:"rev,omitempty" bson:"rev,omitempty"`
	Meta     Meta      `json:"meta" bson:"meta"`
	Sections []Section `json:"sections" bson:"sections"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Sections = make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		out.Sections[i] = s.Clone()
	}
	return out
}

// Section returns the section with the given id and its list index, or nil
// and -1 if no such section exists.
func (d *Document) Section(id string) (*Section, int) {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i], i
		}
	}
	return nil, -1
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Document to pretty-printed JSON bytes.
func Marshal(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Document.
// An empty sections field decodes to an empty (non-nil) slice so that
// round-tripping preserves the document shape.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("unmarshal page: %w", err)
	}
	if d.Sections == nil {
		d.Sections = []Section{}
	}
	return d, nil
}

// WriteFile writes a Document to a JSON file.
func WriteFile(d Document, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Document from a JSON file.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
