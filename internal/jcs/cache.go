package jcs

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// HashCache is an optional memoization layer over CanonicalizeJSON +
// hashing, keyed by the raw (pre-canonical) JSON bytes. It exists purely as
// a performance optimization — per spec.md §5, correctness must never
// depend on a cache hit. No hashing path in this module consults a
// HashCache; a caller that wants memoization calls Get and Put around its
// own hashing.
//
// Grounded on atproto/identity's CacheDirectory, which wraps the same
// expirable LRU around identity lookups.
type HashCache struct {
	entries *expirable.LRU[string, []byte]
}

// NewHashCache builds a HashCache. Capacity of zero means unlimited size;
// ttl of zero means entries never expire.
func NewHashCache(capacity int, ttl time.Duration) *HashCache {
	return &HashCache{entries: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

// Get returns a memoized digest for raw, if present.
func (c *HashCache) Get(raw []byte) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(string(raw))
}

// Put memoizes digest for raw.
func (c *HashCache) Put(raw []byte, digest []byte) {
	if c == nil {
		return
	}
	c.entries.Add(string(raw), digest)
}
