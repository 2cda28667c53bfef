// ABOUTME: In-memory response cache for rendered diagram bodies with sha256-derived keys.
// ABOUTME: Supports TTL-based expiry and concurrent access.
package web

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// cacheEntry holds a single cached response body with its creation timestamp.
type cacheEntry struct {
	body      []byte
	createdAt time.Time
}

// responseCache caches serialized diagram responses. The entity graph is
// immutable for the lifetime of a server, so identical queries produce
// identical documents apart from per-render metadata; returning the cached
// body keeps repeated requests cheap and consistent. Entries expire after
// the configured TTL.
type responseCache struct {
	ttl     time.Duration
	entries map[string]*cacheEntry
	mu      sync.RWMutex
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
	}
}

// get returns the cached body for key when present and not expired.
func (c *responseCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.createdAt) >= c.ttl {
		return nil, false
	}
	return entry.body, true
}

// put stores a response body under key. Error responses are never stored.
func (c *responseCache) put(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{body: body, createdAt: time.Now()}
}

// cacheKey derives a deterministic key from the endpoint kind and the raw
// request query.
func cacheKey(kind, query string) string {
	return fmt.Sprintf("%s:%x", kind, sha256.Sum256([]byte(query)))
}
