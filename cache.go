package recipon

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// lookupResult is a memoized optional string. Negative results are cached
// too, so a URL that failed extraction is not re-fetched.
type lookupResult struct {
	value string
	ok    bool
}

// memoCache is a bounded memoization layer keyed by raw URL string. Eviction
// is least-recently-used: a read refreshes an entry's recency, not just its
// insertion order. Safe for concurrent use.
type memoCache struct {
	name string
	lru  *lru.Cache[string, lookupResult]
}

func newMemoCache(name string, capacity int) *memoCache {
	c, err := lru.New[string, lookupResult](capacity)
	if err != nil {
		panic(err) // non-positive capacity is a programming error
	}
	return &memoCache{name: name, lru: c}
}

// memoize returns the cached result for key, computing and storing it on a
// miss. Concurrent cold lookups of the same key may both compute; results
// are idempotent so the duplicate work is accepted.
func (c *memoCache) memoize(key string, compute func() (string, bool)) (string, bool) {
	if r, hit := c.lru.Get(key); hit {
		cacheRequests.WithLabelValues(c.name, "hit").Inc()
		return r.value, r.ok
	}
	cacheRequests.WithLabelValues(c.name, "miss").Inc()

	v, ok := compute()
	c.lru.Add(key, lookupResult{value: v, ok: ok})
	return v, ok
}

func (c *memoCache) len() int {
	return c.lru.Len()
}

func (c *memoCache) contains(key string) bool {
	return c.lru.Contains(key)
}
