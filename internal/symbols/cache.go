package symbols

import (
	"sync"
)

// Cache memoizes successful resolutions of an inner Resolver.
//
// Traces usually contain a small number of unique addresses relative to their
// length, so memoizing resolved strings avoids most of the lookup cost.
// Failed resolutions are deliberately not stored: failures are rare, and a
// negative entry would pin a transient miss for the rest of the run.
type Cache struct {
	mu    sync.RWMutex
	inner Resolver
	cache map[cacheKey]string
}

type cacheKey struct {
	addr  uint64
	style Style
}

// NewCache wraps inner with a memoizing cache.
func NewCache(inner Resolver) *Cache {
	return &Cache{
		inner: inner,
		cache: make(map[cacheKey]string),
	}
}

// Resolve returns the cached symbolization of addr if one exists, otherwise
// asks the inner resolver. Only successful results are stored.
func (c *Cache) Resolve(addr uint64, style Style) (string, error) {
	key := cacheKey{addr, style}
	c.mu.RLock()
	sym, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return sym, nil
	}

	sym, err := c.inner.Resolve(addr, style)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[key] = sym
	c.mu.Unlock()
	return sym, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
