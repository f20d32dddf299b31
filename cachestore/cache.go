// Package cachestore implements the in-memory response cache used by the
// cache middleware (spec §4.7). It is deliberately small: a concurrency-safe
// map keyed by cache key, each entry carrying its own expiry, with
// defensive copies taken on both read and write so callers can never
// mutate a cached llm.Response through the cache's internal state.
//
// Grounded on the mutex-guarded, map-backed shape of memory/store.go,
// trimmed down from its SQL-backed persistence to ephemeral TTL storage —
// the spec treats any persistence beyond process memory as an external
// collaborator.
package cachestore

import (
	"sync"
	"time"

	"github.com/llmcomms/llmcomms/llm"
)

// Cache is the contract the cache middleware depends on.
type Cache interface {
	// Get returns a defensive copy of the cached response for key, and
	// whether it was present and unexpired.
	Get(key string) (*llm.Response, bool)
	// Set stores a defensive copy of resp under key with the given TTL.
	// A non-positive TTL is a no-op (nothing is stored).
	Set(key string, resp *llm.Response, ttl time.Duration)
	// Remove evicts key, if present.
	Remove(key string)
}

type entry struct {
	resp    *llm.Response
	expires time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expires)
}

// InMemoryCache is a process-local, mutex-guarded TTL cache. The zero value
// is not usable; construct with NewInMemoryCache.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry

	// now is overridable for deterministic tests.
	now func() time.Time
}

// NewInMemoryCache returns an empty InMemoryCache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (c *InMemoryCache) Get(key string) (*llm.Response, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := c.now()
	if e.expired(now) {
		c.Remove(key)
		return nil, false
	}
	return e.resp.Clone(), true
}

// Set implements Cache.
func (c *InMemoryCache) Set(key string, resp *llm.Response, ttl time.Duration) {
	if ttl <= 0 || resp == nil {
		return
	}
	e := &entry{
		resp:    resp.Clone(),
		expires: c.now().Add(ttl),
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Remove implements Cache.
func (c *InMemoryCache) Remove(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of entries currently stored, including any that
// have expired but haven't yet been lazily evicted by a Get.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
