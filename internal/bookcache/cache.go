// Package bookcache implements the in-process read cache for single-book
// detail views. Entries expire passively after the TTL; a periodic sweep
// only bounds memory, correctness does not depend on it.
package bookcache

import (
	"sync"
	"time"

	"lendapi/internal/book"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = time.Minute
)

type entry struct {
	view      book.Detail
	expiresAt time.Time
}

// Cache is safe for concurrent use. It must be constructed with New and
// released with Close.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[int64]entry

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New starts the sweeper goroutine; callers own the returned cache and
// must Close it. Non-positive arguments fall back to the defaults.
func New(ttl, sweepInterval time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	c := &Cache{
		ttl:     ttl,
		entries: make(map[int64]entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep(sweepInterval)
	return c
}

// Get returns the cached view for bookID, or ok=false on a miss.
// Expired entries count as misses even before the sweeper removes them.
func (c *Cache) Get(bookID int64) (book.Detail, bool) {
	c.mu.RLock()
	e, ok := c.entries[bookID]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return book.Detail{}, false
	}
	return e.view, true
}

// Put stores a freshly computed view with the configured TTL.
func (c *Cache) Put(bookID int64, view book.Detail) {
	c.mu.Lock()
	c.entries[bookID] = entry{view: view, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate unconditionally drops any entry for bookID. The lending
// engine calls this after every committed borrow or return.
func (c *Cache) Invalidate(bookID int64) {
	c.mu.Lock()
	delete(c.entries, bookID)
	c.mu.Unlock()
}

// Flush drops every entry. Used for test isolation.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[int64]entry)
	c.mu.Unlock()
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the sweeper goroutine and waits for it to exit. The cache
// stays usable afterwards; only active expiry stops.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Cache) sweep(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for id, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, id)
				}
			}
			c.mu.Unlock()
		}
	}
}
