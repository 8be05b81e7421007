// Package memory provides an in-process document store for development and
// tests. Watch fan-out is synchronous with Put, which makes subscription
// behavior deterministic in tests.
package memory

import (
	"context"
	"sync"

	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/store"
)

// Store is an in-memory page store. The zero value is not usable; create
// one with New.
type Store struct {
	mu       sync.RWMutex
	docs     map[string]page.Document
	watchers map[string]map[*store.Subscription]struct{}
	closed   bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		docs:     make(map[string]page.Document),
		watchers: make(map[string]map[*store.Subscription]struct{}),
	}
}

// Get returns the document for a page id, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, pageID string) (page.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return page.Document{}, store.ErrClosed
	}
	doc, ok := s.docs[pageID]
	if !ok {
		return page.Document{}, store.ErrNotFound
	}
	return doc.Clone(), nil
}

// Put overwrites the document, enforcing the revision check.
func (s *Store) Put(ctx context.Context, doc page.Document) (page.Document, error) {
	return s.put(doc, true)
}

// ForcePut overwrites the document unconditionally.
func (s *Store) ForcePut(ctx context.Context, doc page.Document) (page.Document, error) {
	return s.put(doc, false)
}

func (s *Store) put(doc page.Document, checkRev bool) (page.Document, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return page.Document{}, store.ErrClosed
	}

	current, exists := s.docs[doc.ID]
	if checkRev {
		base := int64(0)
		if exists {
			base = current.Rev
		}
		if doc.Rev != base {
			s.mu.Unlock()
			return page.Document{}, store.ErrConflict
		}
	}

	stored := doc.Clone()
	if exists {
		stored.Rev = current.Rev + 1
	} else {
		stored.Rev = 1
	}
	s.docs[doc.ID] = stored

	subs := make([]*store.Subscription, 0, len(s.watchers[doc.ID]))
	for sub := range s.watchers[doc.ID] {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Publish(stored.Clone())
	}
	return stored.Clone(), nil
}

// Watch subscribes to writes for a page id.
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

// Delete removes a document. Used by tests to reset state.
func (s *Store) Delete(ctx context.Context, pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	delete(s.docs, pageID)
	return nil
}

// Close terminates all subscriptions and marks the store closed.
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
