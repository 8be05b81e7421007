// Package pkg provides the core libraries for GridPress grid-page editing.
//
// # Overview
//
// GridPress documents are ordered lists of typed sections placed on a
// column grid. The pkg directory is organized around that model:
//
//  1. [page] - The document model (sections, props, layouts, metadata)
//  2. [grid] - Grid geometry (breakpoints, layout computation, pixel math)
//  3. [registry] - Section type definitions and prop schemas
//  4. [editor] - Structural document mutations (add, move, delete, props)
//  5. [render] - The two render surfaces (editable canvas, static live page)
//  6. [store] - Document persistence with revision checks and watch streams
//  7. [sync] - Load/save orchestration, defaults, and update subscriptions
//  8. [cache] - Rendered-output caching (memory, file, Redis)
//
// # Architecture
//
// The typical data flow through GridPress:
//
//	store (memory/file/mongo)
//	         ↓
//	    [sync] package (load, defaults, revision-checked save)
//	         ↓
//	    [editor] package (structural mutations)
//	         ↓
//	    [grid] package (per-breakpoint layout computation)
//	         ↓
//	    [render/canvas] or [render/html] output
//
// Supporting packages: [errors] (structured error codes shared by the CLI
// and HTTP API), [io] (JSON import/export), [theme] (render themes),
// [observability] (store/render/cache hooks), [buildinfo] (version data).
//
// # Quick Start
//
// Load a page, edit it, and render the live HTML:
//
//	st := memory.New()
//	loader := sync.NewLoader(st, logger)
//	doc := loader.Load(ctx, "home")
//
//	ed := editor.New(doc, registry.Default(), 12)
//	_, _ = ed.AddSection("RichText", -1)
//	doc, err := loader.Save(ctx, ed.Document())
//
//	body := html.Render(doc, html.WithTheme(theme.Dark()))
package pkg
