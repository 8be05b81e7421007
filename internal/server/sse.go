package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	gperrors "github.com/gridpress/gridpress/pkg/errors"
)

// keepAliveInterval paces SSE comments so idle connections survive proxies.
const keepAliveInterval = 25 * time.Second

// handleWatch streams committed document writes for a page as server-sent
// events. The current document is sent immediately, then one `update` event
// per committed write until the client disconnects.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if err := gperrors.ValidatePageID(pageID); err != nil {
		s.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, gperrors.New(gperrors.ErrCodeUnsupported, "streaming not supported"))
		return
	}

	sub, err := s.loader.Watch(r.Context(), pageID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "snapshot", s.loader.Load(r.Context(), pageID))
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case doc, open := <-sub.Updates():
			if !open {
				return
			}
			writeEvent(w, "update", doc)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	var buf bytes.Buffer
	buf.WriteString("event: ")
	buf.WriteString(event)
	buf.WriteString("\ndata: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	_, _ = w.Write(buf.Bytes())
}
