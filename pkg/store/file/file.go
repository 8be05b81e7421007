// Package file provides a file-backed document store for CLI usage. Each
// page is stored as one JSON file under the store directory. Change
// notifications cover writes made through this process only; cross-process
// watching is the mongo backend's job.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/store"
)

// Store persists page documents as JSON files in a directory.
type Store struct {
	dir string

	mu       sync.Mutex
	watchers map[string]map[*store.Subscription]struct{}
	closed   bool
}

// New creates a file store rooted at dir. The directory is created if it
// does not exist.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{
		dir:      dir,
		watchers: make(map[string]map[*store.Subscription]struct{}),
	}, nil
}

// path maps a page id to its JSON file. Page ids are validated upstream to
// exclude path separators and traversal sequences.
func (s *Store) path(pageID string) string {
	return filepath.Join(s.dir, pageID+".json")
}

// Get returns the document for a page id, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, pageID string) (page.Document, error) {
	doc, err := page.ReadFile(s.path(pageID))
	if os.IsNotExist(underlying(err)) {
		return page.Document{}, store.ErrNotFound
	}
	if err != nil {
		return page.Document{}, err
	}
	return doc, nil
}

// underlying unwraps page.ReadFile's contextual wrapping for the
// os.IsNotExist check.
func underlying(err error) error {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		u, ok := err.(unwrapper)
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
	return err
}

// Put overwrites the document, enforcing the revision check.
func (s *Store) Put(ctx context.Context, doc page.Document) (page.Document, error) {
	return s.put(ctx, doc, true)
}

// ForcePut overwrites the document unconditionally.
func (s *Store) ForcePut(ctx context.Context, doc page.Document) (page.Document, error) {
	return s.put(ctx, doc, false)
}

func (s *Store) put(ctx context.Context, doc page.Document, checkRev bool) (page.Document, error) {
	// The directory lock covers read-modify-write so two writers in this
	// process cannot both pass the revision check.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return page.Document{}, store.ErrClosed
	}

	base := int64(0)
	if current, err := page.ReadFile(s.path(doc.ID)); err == nil {
		base = current.Rev
	}
	if checkRev && doc.Rev != base {
		return page.Document{}, store.ErrConflict
	}

	stored := doc.Clone()
	stored.Rev = base + 1
	if err := page.WriteFile(stored, s.path(doc.ID)); err != nil {
		return page.Document{}, err
	}

	for sub := range s.watchers[doc.ID] {
		sub.Publish(stored.Clone())
	}
	return stored, nil
}

// Watch subscribes to writes made through this store instance.
func (s *Store) Watch(ctx context.Context, pageID string) (*store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}

	var sub *store.Subscription
	sub = store.NewSubscription(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers[pageID], sub)
	})

	if s.watchers[pageID] == nil {
		s.watchers[pageID] = make(map[*store.Subscription]struct{})
	}
	s.watchers[pageID][sub] = struct{}{}
	return sub, nil
}

// Close terminates all subscriptions.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var subs []*store.Subscription
	for _, m := range s.watchers {
		for sub := range m {
			subs = append(subs, sub)
		}
	}
	s.watchers = make(map[string]map[*store.Subscription]struct{})
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	return nil
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)
