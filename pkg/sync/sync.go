// Package sync bridges page documents to the document store.
//
// The loader deliberately trades correctness-on-error for availability on
// the read path: a missing document or a failing store both yield a
// synthesized default document, so editing and rendering surfaces always
// have something to show. Write failures are never masked - they surface to
// the caller, and retrying is a user decision, not an automatic one.
package sync

import (
	"context"
	"errors"
	"io"
	stdsync "sync"

	"github.com/charmbracelet/log"

	gperrors "github.com/gridpress/gridpress/pkg/errors"
	"github.com/gridpress/gridpress/pkg/observability"
	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/store"
)

// Loader loads, saves, and watches page documents.
type Loader struct {
	store  store.Store
	logger *log.Logger
}

// NewLoader creates a loader over a store. A nil logger discards output.
func NewLoader(s store.Store, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loader{store: s, logger: logger}
}

// Load returns the document for a page id. A missing document synthesizes
// the deterministic default for that id; a store failure (network,
// permission) does the same and is logged rather than surfaced, so readers
// always get a renderable document. An invalid page id never reaches the
// store - backends build paths and keys from the id, so traversal
// sequences must be stopped here on the read path too.
func (l *Loader) Load(ctx context.Context, pageID string) page.Document {
	observability.Store().OnLoad(ctx, pageID)

	if err := gperrors.ValidatePageID(pageID); err != nil {
		l.logger.Warn("invalid page id, using defaults", "page", pageID, "err", err)
		return DefaultDocument(pageID)
	}

	doc, err := l.store.Get(ctx, pageID)
	switch {
	case err == nil:
		return doc
	case errors.Is(err, store.ErrNotFound):
		l.logger.Debug("page missing, using defaults", "page", pageID)
	default:
		l.logger.Warn("store read failed, using defaults", "page", pageID, "err", err)
		observability.Store().OnError(ctx, "get", err)
	}
	return DefaultDocument(pageID)
}

// Save fully overwrites the document in the store and returns the stored
// document with its new revision. A revision conflict or store failure is
// returned to the caller; there is no automatic retry.
func (l *Loader) Save(ctx context.Context, doc page.Document) (page.Document, error) {
	if err := gperrors.ValidatePageID(doc.ID); err != nil {
		return page.Document{}, err
	}
	observability.Store().OnSave(ctx, doc.ID)

	stored, err := l.store.Put(ctx, doc)
	if errors.Is(err, store.ErrConflict) {
		return page.Document{}, gperrors.Wrap(gperrors.ErrCodeConflict, err,
			"page %s was changed by another editor", doc.ID)
	}
	if err != nil {
		observability.Store().OnError(ctx, "put", err)
		return page.Document{}, gperrors.Wrap(gperrors.ErrCodeStore, err, "save page %s", doc.ID)
	}
	l.logger.Info("saved page", "page", doc.ID, "rev", stored.Rev, "sections", len(stored.Sections))
	return stored, nil
}

// ForceSave overwrites unconditionally - the explicit last-write-wins path
// for a caller that has seen the conflict and chosen to overwrite anyway.
func (l *Loader) ForceSave(ctx context.Context, doc page.Document) (page.Document, error) {
	if err := gperrors.ValidatePageID(doc.ID); err != nil {
		return page.Document{}, err
	}
	stored, err := l.store.ForcePut(ctx, doc)
	if err != nil {
		observability.Store().OnError(ctx, "put", err)
		return page.Document{}, gperrors.Wrap(gperrors.ErrCodeStore, err, "save page %s", doc.ID)
	}
	l.logger.Info("force-saved page", "page", doc.ID, "rev", stored.Rev)
	return stored, nil
}

// Watch subscribes to committed writes for a page. The returned handle must
// be unsubscribed on teardown.
func (l *Loader) Watch(ctx context.Context, pageID string) (*store.Subscription, error) {
	return l.store.Watch(ctx, pageID)
}

// Subscribe registers a callback for every committed write to a page and
// returns an unsubscribe function. Snapshots observed after unsubscribe
// are dropped, never applied - including snapshots already buffered in the
// subscription channel when unsubscribe is called.
func (l *Loader) Subscribe(ctx context.Context, pageID string, fn func(page.Document)) (func(), error) {
	sub, err := l.store.Watch(ctx, pageID)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	var once stdsync.Once
	stop := func() {
		once.Do(func() { close(done) })
		sub.Unsubscribe()
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case doc, ok := <-sub.Updates():
				if !ok {
					return
				}
				// Unsubscribe may have raced the receive.
				select {
				case <-done:
					return
				default:
				}
				fn(doc)
			}
		}
	}()
	return stop, nil
}
