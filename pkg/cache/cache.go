// Package cache provides caching for rendered page artifacts.
//
// The server caches the live-rendered HTML of a page per breakpoint and
// theme, keyed by the document revision so a save naturally invalidates
// every stale entry. Backends:
//   - FileCache: directory-backed, for single-instance and CLI usage
//   - RedisCache: shared cache for multi-instance deployments
//   - MemoryCache: in-process, for tests
//   - NullCache: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with a TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Keyer - Cache Key Generation
// =============================================================================

// RenderKeyOpts are the render parameters that distinguish cached
// artifacts for the same document revision.
type RenderKeyOpts struct {
	Breakpoint string `json:"breakpoint"`
	Width      int    `json:"width"`
	Theme      string `json:"theme"`
}

// Keyer generates cache keys. Implementations must be deterministic:
// identical inputs yield identical keys.
type Keyer interface {
	// RenderKey generates a key for a rendered page artifact.
	RenderKey(pageID string, rev int64, opts RenderKeyOpts) string

	// PageKey generates a key for a cached page document snapshot.
	PageKey(pageID string) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RenderKey generates a key for a rendered page artifact.
func (k *DefaultKeyer) RenderKey(pageID string, rev int64, opts RenderKeyOpts) string {
	return hashKey("render", pageID, rev, opts)
}

// PageKey generates a key for a cached page document snapshot.
func (k *DefaultKeyer) PageKey(pageID string) string {
	return hashKey("page", pageID)
}
