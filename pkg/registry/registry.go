// Package registry maps section type names to their render strategy and
// editable-property schema.
//
// The registry is compiled in and resolved once at process start; there is
// no dynamic registration at runtime. Render strategies are a closed tagged
// variant rather than live component references: two reserved types, Spacer
// and RichText, are handled inline by the renderers, and every other entry
// names a component reference that the render surface dispatches on.
//
// An unknown type is a content-authoring error, not a program fault:
// Resolve reports it with a structured error, and callers must render a
// visible inline placeholder so editors notice and fix the content.
package registry

import (
	"encoding/json"
	"sort"

	"github.com/gridpress/gridpress/pkg/errors"
	"github.com/gridpress/gridpress/pkg/page"
)

// =============================================================================
// Kind - Render Strategy Variant
// =============================================================================

// Kind discriminates the render strategy for a section type.
type Kind int

// Render strategy kinds.
const (
	// KindComponent dispatches to the renderer registered under Entry.Ref.
	KindComponent Kind = iota

	// KindSpacer renders empty vertical space of props.height pixels.
	KindSpacer

	// KindRichText renders props.content as markup with props.align applied.
	KindRichText
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindSpacer:
		return "spacer"
	case KindRichText:
		return "richtext"
	default:
		return "component"
	}
}

// =============================================================================
// Field - Editable Property Schema
// =============================================================================

// InputKind selects the property-inspector widget for a schema field.
type InputKind string

// Input kinds for schema fields.
const (
	InputText      InputKind = "text"      // short single-line text
	InputMultiline InputKind = "multiline" // multi-line plain text
	InputRichText  InputKind = "richtext"  // rich/HTML text
	InputNumber    InputKind = "number"    // number with optional min/max
	InputSelect    InputKind = "select"    // single-select from Options
	InputJSON      InputKind = "json"      // raw JSON, parse-validated on commit
)

// Field describes one editable property of a section type.
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label,omitempty"`
	Input   InputKind `json:"input"`
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
	Options []string  `json:"options,omitempty"` // for InputSelect
}

// ValidateJSON checks that raw parses as JSON. It applies only to
// InputJSON fields; validation for every other input kind is advisory and
// enforced at the widget level, never at write time.
func (f Field) ValidateJSON(raw string) error {
	if f.Input != InputJSON {
		return nil
	}
	if !json.Valid([]byte(raw)) {
		return errors.New(errors.ErrCodeInvalidJSON, "property %s is not valid JSON", f.Name)
	}
	return nil
}

// =============================================================================
// Entry - One Registered Section Type
// =============================================================================

// Entry describes one section type: its render strategy, inspector schema,
// default props, and minimum grid size.
type Entry struct {
	Type         string
	Kind         Kind
	Ref          string // component reference for KindComponent
	Label        string
	Schema       []Field
	DefaultProps map[string]any
	MinW         int
	MinH         int
}

// Defaults returns a deep copy of the entry's default props, safe for the
// caller to mutate.
func (e Entry) Defaults() map[string]any {
	if e.DefaultProps == nil {
		return map[string]any{}
	}
	data, _ := json.Marshal(e.DefaultProps)
	out := map[string]any{}
	_ = json.Unmarshal(data, &out)
	return out
}

// Field returns the schema field with the given name, if present.
func (e Entry) Field(name string) (Field, bool) {
	for _, f := range e.Schema {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// =============================================================================
// Registry
// =============================================================================

// Registry is a read-only lookup from section type name to Entry.
type Registry struct {
	entries map[string]Entry
}

// New builds a registry from entries. Later entries with a duplicate type
// name overwrite earlier ones; the built-in set has no duplicates.
func New(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.MinW == 0 {
			e.MinW = page.MinW
		}
		if e.MinH == 0 {
			e.MinH = page.MinH
		}
		r.entries[e.Type] = e
	}
	return r
}

// Resolve returns the entry for a type name. Unknown types report
// ErrCodeUnknownSection; callers render an inline placeholder and continue.
func (r *Registry) Resolve(typ string) (Entry, error) {
	if e, ok := r.entries[typ]; ok {
		return e, nil
	}
	return Entry{}, errors.New(errors.ErrCodeUnknownSection, "unknown section type: %s", typ)
}

// Fields returns the inspector schema for a type name, or the unknown-type
// error. The field order matches the entry declaration order.
func (r *Registry) Fields(typ string) ([]Field, error) {
	e, err := r.Resolve(typ)
	if err != nil {
		return nil, err
	}
	return e.Schema, nil
}

// Types returns all registered type names, sorted for deterministic output.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
