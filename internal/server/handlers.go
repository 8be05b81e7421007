package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gridpress/gridpress/pkg/cache"
	"github.com/gridpress/gridpress/pkg/editor"
	gperrors "github.com/gridpress/gridpress/pkg/errors"
	gpio "github.com/gridpress/gridpress/pkg/io"
	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/render/canvas"
	"github.com/gridpress/gridpress/pkg/render/html"
	"github.com/gridpress/gridpress/pkg/theme"
)

// =============================================================================
// Rendering Surfaces
// =============================================================================

// handleLivePage serves the static rendered page. Query parameters:
//
//	w=<px>      container width (default 1280)
//	theme=<name> theme override for this request
//
// Responses are cached by (page, revision, breakpoint, width, theme), so a
// save invalidates every stale entry without an explicit purge.
func (s *Server) handleLivePage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if err := gperrors.ValidatePageID(pageID); err != nil {
		s.writeError(w, err)
		return
	}

	width := queryInt(r, "w", 1280)
	t := s.theme
	if name := r.URL.Query().Get("theme"); name != "" {
		t = theme.ByName(name)
	}

	doc := s.loader.Load(r.Context(), pageID)
	key := s.keyer.RenderKey(pageID, doc.Rev, cache.RenderKeyOpts{
		Breakpoint: s.grid.BreakpointFor(width),
		Width:      width,
		Theme:      t.Name,
	})

	if body, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
		return
	}

	body := html.Render(doc,
		html.WithConfig(s.grid),
		html.WithRegistry(s.reg),
		html.WithTheme(t),
		html.WithContainerWidth(width),
	)
	if err := s.cache.Set(r.Context(), key, body, s.ttl); err != nil {
		s.logger.Warn("render cache set failed", "page", pageID, "err", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// handleCanvas serves the editable canvas markup for a page. Canvas output
// is never cached; it reflects the document exactly as stored.
func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if err := gperrors.ValidatePageID(pageID); err != nil {
		s.writeError(w, err)
		return
	}

	doc := s.loader.Load(r.Context(), pageID)
	c := canvas.New(
		canvas.WithConfig(s.grid),
		canvas.WithRegistry(s.reg),
		canvas.WithTheme(s.theme),
		canvas.WithContainerWidth(queryInt(r, "w", 1280)),
	)
	if sel := r.URL.Query().Get("selected"); sel != "" {
		c.Select(sel)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(c.Render(doc))
}

// =============================================================================
// Page Document API
// =============================================================================

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if err := gperrors.ValidatePageID(pageID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.loader.Load(r.Context(), pageID))
}

// handlePutPage replaces the stored document. The request body must carry
// the revision the client last saw; a mismatch returns 409 Conflict. Passing
// force=1 skips the revision check and overwrites unconditionally.
func (s *Server) handlePutPage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if err := gperrors.ValidatePageID(pageID); err != nil {
		s.writeError(w, err)
		return
	}

	doc, err := gpio.ReadJSON(r.Body)
	if err != nil {
		s.writeError(w, gperrors.Wrap(gperrors.ErrCodeInvalidJSON, err, "read page document"))
		return
	}
	if doc.ID != pageID {
		s.writeError(w, gperrors.New(gperrors.ErrCodeInvalidPage,
			"document id %q does not match path page %q", doc.ID, pageID))
		return
	}

	var stored page.Document
	if r.URL.Query().Get("force") == "1" {
		stored, err = s.loader.ForceSave(r.Context(), doc)
	} else {
		stored, err = s.loader.Save(r.Context(), doc)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stored)
}

// =============================================================================
// Section Mutation API
// =============================================================================

// mutate loads the page, applies fn through an editor, and saves the result
// under the loaded revision. A concurrent write between load and save
// surfaces as 409, same as the document PUT path.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*editor.Editor) error) {
	pageID := chi.URLParam(r, "pageID")
	if err := gperrors.ValidatePageID(pageID); err != nil {
		s.writeError(w, err)
		return
	}

	doc := s.loader.Load(r.Context(), pageID)
	ed := editor.New(doc, s.reg, s.grid.Cols)
	if err := fn(ed); err != nil {
		s.writeError(w, err)
		return
	}

	stored, err := s.loader.Save(r.Context(), ed.Document())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleAddSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
		At   *int   `json:"at,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(ed *editor.Editor) error {
		at := len(ed.Document().Sections)
		if req.At != nil {
			at = *req.At
		}
		_, err := ed.AddSection(req.Type, at)
		return err
	})
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	s.mutate(w, r, func(ed *editor.Editor) error {
		return ed.DeleteSection(sectionID)
	})
}

func (s *Server) handleMoveSection(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	var req struct {
		Direction string `json:"direction"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	dir := editor.Direction(req.Direction)
	if dir != editor.Up && dir != editor.Down {
		s.writeError(w, gperrors.New(gperrors.ErrCodeInvalidInput,
			"direction must be %q or %q", editor.Up, editor.Down))
		return
	}
	s.mutate(w, r, func(ed *editor.Editor) error {
		return ed.MoveSection(sectionID, dir)
	})
}

func (s *Server) handleUpdateProp(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	var req struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(ed *editor.Editor) error {
		return ed.UpdateProp(sectionID, req.Name, req.Value)
	})
}

func (s *Server) handleApplyLayout(w http.ResponseWriter, r *http.Request) {
	var req map[string]page.Layout
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(ed *editor.Editor) error {
		ed.ApplyLayoutChange(req)
		return nil
	})
}

// =============================================================================
// Registry API
// =============================================================================

// handleRegistry lists the registered section types and their editing
// schemas, the data an editing UI needs to build its palette and forms.
func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	entries := make([]any, 0)
	for _, typ := range s.reg.Types() {
		entry, err := s.reg.Resolve(typ)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Error("response encoding failed", "err", err)
	}
}

// writeError maps structured error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch gperrors.GetCode(err) {
	case gperrors.ErrCodeInvalidInput, gperrors.ErrCodeInvalidProp,
		gperrors.ErrCodeInvalidJSON, gperrors.ErrCodeInvalidLayout,
		gperrors.ErrCodeInvalidPage, gperrors.ErrCodeUnknownSection:
		status = http.StatusBadRequest
	case gperrors.ErrCodeNotFound, gperrors.ErrCodePageNotFound,
		gperrors.ErrCodeSectionNotFound:
		status = http.StatusNotFound
	case gperrors.ErrCodeConflict:
		status = http.StatusConflict
	case gperrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": gperrors.UserMessage(err),
		"code":  string(gperrors.GetCode(err)),
	})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return gperrors.Wrap(gperrors.ErrCodeInvalidJSON, err, "decode request body")
	}
	return nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
