package storage

import (
	"context"
	"time"

	"github.com/c360studio/semrdf/entity"
	"github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is the lifetime of cached lookup results.
const DefaultCacheTTL = 5 * time.Minute

// RevisionLookup reports the latest revision state of an entity.
type RevisionLookup interface {
	LatestRevision(ctx context.Context, id entity.ID) (entity.LookupResult, error)
}

// CachingLookup memoizes the results of another RevisionLookup. Errors are
// not cached.
type CachingLookup struct {
	inner RevisionLookup
	cache *cache.Cache
}

// NewCachingLookup wraps inner. A ttl <= 0 uses DefaultCacheTTL.
func NewCachingLookup(inner RevisionLookup, ttl time.Duration) *CachingLookup {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingLookup{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

// LatestRevision implements RevisionLookup.
func (c *CachingLookup) LatestRevision(ctx context.Context, id entity.ID) (entity.LookupResult, error) {
	key := id.Serialization()
	if v, ok := c.cache.Get(key); ok {
		return v.(entity.LookupResult), nil
	}
	res, err := c.inner.LatestRevision(ctx, id)
	if err != nil {
		return entity.LookupResult{}, err
	}
	c.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

// Invalidate drops the cached result for id.
func (c *CachingLookup) Invalidate(id entity.ID) {
	c.cache.Delete(id.Serialization())
}

// Len returns the number of cached results.
func (c *CachingLookup) Len() int {
	return c.cache.ItemCount()
}
