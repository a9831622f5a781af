package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
)

// entry is a cached response with expiration
type entry struct {
	response  []byte
	expiresAt time.Time
}

// InMemoryIdempotencyCache implements shared.IdempotencyCache using an
// in-memory map. Suitable for single-instance deployments and testing.
type InMemoryIdempotencyCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyCache creates a new in-memory idempotency cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryIdempotencyCache() *InMemoryIdempotencyCache {
	cache := &InMemoryIdempotencyCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached response for the key, if present and unexpired
func (c *InMemoryIdempotencyCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.response, true, nil
}

// Set caches a response under the key with the given TTL. An unexpired
// existing response wins; the first execution's response stays authoritative.
func (c *InMemoryIdempotencyCache) Set(_ context.Context, key string, response []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return nil
	}
	c.entries[key] = entry{
		response:  response,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryIdempotencyCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryIdempotencyCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryIdempotencyCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryIdempotencyCache implements shared.IdempotencyCache
var _ shared.IdempotencyCache = (*InMemoryIdempotencyCache)(nil)
