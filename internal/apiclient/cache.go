package apiclient

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"sync"
	"time"
)

// CacheEntry holds the last successful response body for a request key.
type CacheEntry struct {
	Body       []byte
	StatusCode int
	ExpiresAt  time.Time
}

// ResponseCache memoizes successful responses. Implementations must be safe
// for concurrent use. A cache may be shared across clients by injecting it
// via WithCache.
type ResponseCache interface {
	Get(key string) (*CacheEntry, bool)
	Set(key string, entry *CacheEntry, ttl time.Duration)
	Delete(key string)
	Clear()
}

// MemoryCache is the default in-process ResponseCache. Entries expire after
// the configured TTL; expired entries are dropped lazily on lookup.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: make(map[string]*CacheEntry)}
}

func (c *MemoryCache) Get(key string) (*CacheEntry, bool) {
	c.mu.RLock()
	entry, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		c.Delete(key)
		return nil, false
	}
	return entry, true
}

func (c *MemoryCache) Set(key string, entry *CacheEntry, ttl time.Duration) {
	entry.ExpiresAt = time.Now().Add(ttl)
	c.mu.Lock()
	c.store[key] = entry
	c.mu.Unlock()
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.store = make(map[string]*CacheEntry)
	c.mu.Unlock()
}

// cacheKey derives the memoization key from method, URL, query parameters
// and a hash of the body payload.
func cacheKey(method, rawURL string, params url.Values, body []byte) string {
	key := method + " " + rawURL
	if len(params) > 0 {
		key += "?" + params.Encode()
	}
	if len(body) > 0 {
		h := fnv.New64a()
		h.Write(body)
		key += fmt.Sprintf("#%x", h.Sum64())
	}
	return key
}
