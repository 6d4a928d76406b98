// Package dedupe tracks recently forwarded tokens so each one is relayed at most
// once per retention window.
package dedupe

import (
	"sync"
	"time"
)

// DefaultRetention is how long a token stays marked after it is first seen.
const DefaultRetention = 24 * time.Hour

// Cache maps a token to the time it was first seen. Timestamps are write-once:
// re-inserting a known token does not refresh it, so the window always runs
// from the first forward. Entries leave only through Sweep.
// Safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	retention time.Duration
}

// New creates a cache with the given retention window.
// A non-positive retention falls back to DefaultRetention.
func New(retention time.Duration) *Cache {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Cache{
		seen:      make(map[string]time.Time),
		retention: retention,
	}
}

// Retention returns the configured retention window.
func (c *Cache) Retention() time.Duration { return c.retention }

// Contains reports whether token is currently marked.
func (c *Cache) Contains(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[token]
	return ok
}

// Insert marks token as seen at ts. A token that is already present keeps its
// original timestamp.
func (c *Cache) Insert(token string, ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[token]; !ok {
		c.seen[token] = ts
	}
}

// Claim atomically filters tokens down to the ones not yet marked and marks
// them at now. The returned slice keeps the input order.
func (c *Cache) Claim(tokens []string, now time.Time) []string {
	if len(tokens) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var fresh []string
	for _, t := range tokens {
		if _, ok := c.seen[t]; ok {
			continue
		}
		c.seen[t] = now
		fresh = append(fresh, t)
	}
	return fresh
}

// FirstSeen returns when token was first marked.
func (c *Cache) FirstSeen(token string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts, ok := c.seen[token]
	return ts, ok
}

// Sweep evicts every entry older than the retention window and returns how many
// were removed. An entry aged exactly the retention window is kept.
func (c *Cache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for token, ts := range c.seen {
		if now.Sub(ts) > c.retention {
			delete(c.seen, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of marked tokens.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}
