// Package cache keeps the last good product list so the storefront can start
// when the store API is down.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
)

// ProductCache stores the last fetched product list
type ProductCache interface {
	// Load returns the cached list. ok is false when nothing is cached or the
	// entry expired.
	Load(ctx context.Context) (list catalog.ProductList, ok bool, err error)
	Store(ctx context.Context, list catalog.ProductList) error
}

// InMemoryProductCache keeps the list in process memory.
// It is safe for concurrent use.
type InMemoryProductCache struct {
	mu       sync.RWMutex
	list     catalog.ProductList
	storedAt time.Time
	has      bool
	ttl      time.Duration
	now      func() time.Time
}

// NewInMemoryProductCache creates an in-memory cache. A zero ttl never expires.
func NewInMemoryProductCache(ttl time.Duration) *InMemoryProductCache {
	return &InMemoryProductCache{ttl: ttl, now: time.Now}
}

// Load returns a copy of the cached list
func (c *InMemoryProductCache) Load(_ context.Context) (catalog.ProductList, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.has {
		return catalog.ProductList{}, false, nil
	}
	if c.ttl > 0 && c.now().Sub(c.storedAt) > c.ttl {
		return catalog.ProductList{}, false, nil
	}
	return copyList(c.list), true, nil
}

// Store replaces the cached list
func (c *InMemoryProductCache) Store(_ context.Context, list catalog.ProductList) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.list = copyList(list)
	c.storedAt = c.now()
	c.has = true
	return nil
}

func copyList(list catalog.ProductList) catalog.ProductList {
	items := make([]catalog.Product, len(list.Items))
	copy(items, list.Items)
	return catalog.ProductList{Total: list.Total, Items: items}
}

var _ ProductCache = (*InMemoryProductCache)(nil)
