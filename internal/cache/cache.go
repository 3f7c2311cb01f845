package cache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// SummaryTTL bounds staleness of cached customer summaries.
	// Aggregation is a read-time fold, so the cache is an optimization
	// only and is invalidated on every write path.
	SummaryTTL      = time.Minute
	cleanupInterval = 5 * time.Minute
)

// Cache is a minimal in-process cache for derived read models.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Flush()
}

type inMemoryCache struct {
	store *gocache.Cache
}

// NewInMemoryCache creates a go-cache backed cache.
func NewInMemoryCache() Cache {
	return &inMemoryCache{
		store: gocache.New(SummaryTTL, cleanupInterval),
	}
}

func (c *inMemoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *inMemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

func (c *inMemoryCache) Delete(key string) {
	c.store.Delete(key)
}

func (c *inMemoryCache) Flush() {
	c.store.Flush()
}

// SummaryKey builds the cache key for a customer's credit summary.
func SummaryKey(tenantID, customerID string) string {
	return fmt.Sprintf("credit_summary:%s:%s", tenantID, customerID)
}
