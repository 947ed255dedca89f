package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry represents a cached completion.
type cacheEntry struct {
	expiry   time.Time
	response Response
}

// responseCache provides thread-safe caching for identical prompts.
type responseCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newResponseCache creates a new cache with the specified TTL.
func newResponseCache(ttl time.Duration) *responseCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// cacheKey identifies a request by everything that shapes the reply.
func cacheKey(r Request) string {
	h := sha256.New()
	h.Write([]byte(r.System))
	h.Write([]byte{0})
	h.Write([]byte(r.Prompt))
	if r.JSONMode {
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// get retrieves a response from the cache if it exists and hasn't expired.
func (c *responseCache) get(key string) (Response, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return Response{}, false
	}

	if time.Now().After(entry.expiry) {
		return Response{}, false
	}

	return entry.response, true
}

// set stores a response in the cache.
func (c *responseCache) set(key string, response Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		response: response,
		expiry:   time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *responseCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// size returns the number of entries in the cache.
func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *responseCache) Close() {
	close(c.stopCh)
}
