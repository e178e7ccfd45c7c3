package clientdata

import (
	"sync"
	"time"
)

// Cache is a time-bounded key-value store.
// Get decodes a fresh value into dst and reports whether one was found.
type Cache interface {
	Get(key string, dst interface{}) (bool, error)
	Set(key string, value interface{}, ttl time.Duration) error
}

// Expirer removes expired entries, keyed by table or store name
type Expirer interface {
	DeleteAllExpired() (map[string]int64, error)
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Values are stored encoded so callers
// never share mutable state with the cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get decodes the value for key into dst if present and not expired
func (c *MemoryCache) Get(key string, dst interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		return false, nil
	}
	if err := decode(entry.data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key until now + ttl
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{data: data, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Delete removes key
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len is the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// DeleteAllExpired drops expired entries
func (c *MemoryCache) DeleteAllExpired() (map[string]int64, error) {
	now := c.now()
	var deleted int64

	c.mu.Lock()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			deleted++
		}
	}
	c.mu.Unlock()

	return map[string]int64{"memory": deleted}, nil
}
