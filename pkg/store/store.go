// Package store defines the document store contract for page persistence.
//
// The store is treated as an opaque key-document store with change
// subscriptions: one document per page id, full-overwrite writes, and a
// Watch operation yielding a stream of document snapshots. Implementations
// live in subpackages:
//   - memory: in-process storage for development and tests
//   - file: one JSON file per page for CLI usage
//   - mongo: MongoDB-backed storage with change-stream subscriptions
//
// # Concurrency
//
// Writes are revision-checked: Put succeeds only when the caller's base
// revision matches the stored document, otherwise it fails with
// [ErrConflict]. This replaces the silent last-write-wins clobbering a
// merge-free editor would otherwise exhibit; ForcePut preserves the
// last-write-wins path for callers that explicitly want it.
//
// # Subscriptions
//
// Watch returns a [Subscription] whose Updates channel yields a snapshot
// after every committed write to the page. Consumers must call Unsubscribe
// on teardown; snapshots arriving after Unsubscribe are dropped, never
// delivered. Slow consumers may miss intermediate snapshots - the stream is
// a change signal carrying the latest state, not a replayable log.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/gridpress/gridpress/pkg/page"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when no document exists for a page id.
	ErrNotFound = errors.New("page not found")

	// ErrConflict is returned when a Put's base revision no longer matches
	// the stored document (another writer committed in between).
	ErrConflict = errors.New("revision conflict")

	// ErrClosed is returned for operations on a closed store.
	ErrClosed = errors.New("store closed")
)

// Store persists page documents.
type Store interface {
	// Get returns the document for a page id, or ErrNotFound.
	Get(ctx context.Context, pageID string) (page.Document, error)

	// Put fully overwrites the document for doc.ID. The write succeeds only
	// when doc.Rev matches the stored revision (zero for a new document);
	// otherwise it fails with ErrConflict. The stored document, with its
	// newly assigned revision, is returned.
	Put(ctx context.Context, doc page.Document) (page.Document, error)

	// ForcePut overwrites unconditionally, ignoring revisions. This is the
	// explicit last-write-wins path.
	ForcePut(ctx context.Context, doc page.Document) (page.Document, error)

	// Watch subscribes to committed writes for a page id. The page does not
	// need to exist yet; the first snapshot arrives with its first write.
	Watch(ctx context.Context, pageID string) (*Subscription, error)

	// Close releases the store's resources. In-flight subscriptions are
	// terminated.
	Close(ctx context.Context) error
}

// =============================================================================
// Subscription
// =============================================================================

// subscriptionBuffer is the per-subscription channel depth. When a consumer
// falls this far behind, older snapshots are dropped in favor of newer ones.
const subscriptionBuffer = 8

// Subscription is a handle on a stream of document snapshots for one page.
type Subscription struct {
	updates chan page.Document

	mu     sync.Mutex
	closed bool
	detach func()
}

// NewSubscription creates a subscription whose teardown calls detach once.
// Store implementations publish into it with Publish and close it with
// Unsubscribe or their own shutdown path.
func NewSubscription(detach func()) *Subscription {
	return &Subscription{
		updates: make(chan page.Document, subscriptionBuffer),
		detach:  detach,
	}
}

// Updates returns the snapshot channel. The channel is closed when the
// subscription ends, either via Unsubscribe or store shutdown.
func (s *Subscription) Updates() <-chan page.Document {
	return s.updates
}

// Publish delivers a snapshot to the consumer. If the consumer's buffer is
// full, the oldest pending snapshot is discarded so the stream always
// converges on the latest state. Publishing after Unsubscribe is a no-op.
func (s *Subscription) Publish(doc page.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.updates <- doc:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

// Unsubscribe detaches from the store and closes the updates channel. It is
// safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.updates)
	detach := s.detach
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
}
