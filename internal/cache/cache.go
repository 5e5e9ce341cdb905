// Package cache holds rendered list views between mutations. It is an
// optimization only: the store stays the source of truth, and every
// mutating manager call invalidates the affected scope synchronously
// before returning.
package cache

import (
	"sync"

	"go.uber.org/atomic"
)

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

// Cache maps (chat, list) pairs to an opaque cached value.
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]map[int64]any

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[int64]map[int64]any)}
}

// Get returns the cached value for the chat/list pair, if present.
func (c *Cache) Get(chatID, listID int64) (any, bool) {
	c.mu.RLock()
	value, ok := c.entries[chatID][listID]
	c.mu.RUnlock()

	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return value, ok
}

// Put stores a value for the chat/list pair.
func (c *Cache) Put(chatID, listID int64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byList, ok := c.entries[chatID]
	if !ok {
		byList = make(map[int64]any)
		c.entries[chatID] = byList
	}
	byList[listID] = value
}

// Invalidate drops the entry for one chat/list pair.
func (c *Cache) Invalidate(chatID, listID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if byList, ok := c.entries[chatID]; ok {
		if _, ok := byList[listID]; ok {
			delete(byList, listID)
			c.evictions.Inc()
		}
	}
}

// InvalidateChat drops every entry belonging to a chat. Used when the
// active list changes or a list is deleted, where the affected list set
// is wider than a single key.
func (c *Cache) InvalidateChat(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if byList, ok := c.entries[chatID]; ok {
		c.evictions.Add(int64(len(byList)))
		delete(c.entries, chatID)
	}
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	entries := 0
	for _, byList := range c.entries {
		entries += len(byList)
	}
	c.mu.RUnlock()

	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   entries,
	}
}
