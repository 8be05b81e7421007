// Package io provides JSON import and export for page documents.
//
// The format is exactly the persisted document shape - one object with id,
// meta, and ordered sections - so an exported file can be re-imported (or
// written straight into the store) with no field loss. This backs the CLI's
// get/put round trip and makes page content portable between environments.
//
//	{
//	  "id": "home",
//	  "meta": {"title": "Home"},
//	  "sections": [
//	    {"id": "hero-main", "type": "Hero", "props": {...}, "layout": {"x":0,"y":0,"w":12,"h":6}}
//	  ]
//	}
package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gridpress/gridpress/pkg/page"
)

// WriteJSON encodes a page document as indented JSON and writes it to w.
func WriteJSON(doc page.Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a page document from r.
//
// ReadJSON returns an error if the JSON is malformed or if the document has
// no id. Sections with duplicate ids are rejected - duplicate ids would
// make every id-addressed mutation ambiguous.
//
// The returned document is independent of r and can be modified safely
// after ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (page.Document, error) {
	var doc page.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return page.Document{}, fmt.Errorf("decode: %w", err)
	}
	if doc.ID == "" {
		return page.Document{}, fmt.Errorf("document has no id")
	}
	if doc.Sections == nil {
		doc.Sections = []page.Section{}
	}

	seen := make(map[string]bool, len(doc.Sections))
	for _, s := range doc.Sections {
		if s.ID == "" {
			return page.Document{}, fmt.Errorf("section of type %s has no id", s.Type)
		}
		if seen[s.ID] {
			return page.Document{}, fmt.Errorf("duplicate section id: %s", s.ID)
		}
		seen[s.ID] = true
	}
	return doc, nil
}

// ExportJSON writes a page document to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(doc page.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(doc, f)
}

// ImportJSON reads a JSON file at path and returns the decoded document.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. Errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (page.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return page.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
