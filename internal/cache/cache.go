// Package cache provides the bounded LRU caches shared across the
// matching pipeline: a candidate-bucket cache keyed by a normalized query
// fingerprint, and the generic wrapper it and internal/telemetry's
// recent-query ring both build on.
package cache

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rahidz/oeismatcher/internal/invariant"
	"github.com/rahidz/oeismatcher/internal/store"
)

// LRU is a thin, type-safe wrapper around hashicorp/golang-lru/v2 shared by
// every bounded cache in this module, so eviction/size semantics stay
// consistent across the bucket cache and telemetry's query ring.
type LRU[K comparable, V any] struct {
	inner *lru.Cache[K, V]
}

// New creates an LRU bounded to size entries. size <= 0 defaults to 128.
func New[K comparable, V any](size int) (*LRU[K, V], error) {
	if size <= 0 {
		size = 128
	}
	inner, err := lru.New[K, V](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &LRU[K, V]{inner: inner}, nil
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	if c == nil {
		var zero V
		return zero, false
	}
	return c.inner.Get(key)
}

func (c *LRU[K, V]) Add(key K, value V) {
	if c == nil {
		return
	}
	c.inner.Add(key, value)
}

func (c *LRU[K, V]) Remove(key K) {
	if c == nil {
		return
	}
	c.inner.Remove(key)
}

func (c *LRU[K, V]) Purge() {
	if c == nil {
		return
	}
	c.inner.Purge()
}

func (c *LRU[K, V]) Len() int {
	if c == nil {
		return 0
	}
	return c.inner.Len()
}

// Fingerprint is the normalized cache key for a candidate bucket query:
// sign pattern, full term list, and the minimum match length that shaped
// the filter.
type Fingerprint string

// BuildFingerprint derives a Fingerprint from a query's sign pattern, its
// full term list (wildcards included verbatim as "?"), and the minimum
// match length in effect for the lookup. The full term list keeps two
// queries that merely share a prefix from resolving to the same bucket.
func BuildFingerprint(sign invariant.SignPattern, terms []string, minMatchLength int) Fingerprint {
	var b strings.Builder
	b.WriteString(string(sign))
	b.WriteByte('|')
	b.WriteString(strings.Join(terms, ","))
	b.WriteByte('|')
	fmt.Fprintf(&b, "%d", minMatchLength)
	return Fingerprint(b.String())
}

// BucketCache caches the candidate records collected for a Fingerprint,
// avoiding a repeat invariant scan + similarity rank for an identical
// query shape. Invalidated wholesale on reindex via Purge, since a rebuilt
// index can change which records any fingerprint resolves to.
type BucketCache struct {
	lru *LRU[Fingerprint, []store.Record]
}

// NewBucketCache creates a BucketCache bounded to size fingerprints.
func NewBucketCache(size int) (*BucketCache, error) {
	l, err := New[Fingerprint, []store.Record](size)
	if err != nil {
		return nil, err
	}
	return &BucketCache{lru: l}, nil
}

// Get returns the cached records for fp, if present.
func (c *BucketCache) Get(fp Fingerprint) ([]store.Record, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(fp)
}

// Put stores records under fp.
func (c *BucketCache) Put(fp Fingerprint, records []store.Record) {
	if c == nil {
		return
	}
	c.lru.Add(fp, records)
}

// Invalidate purges the whole cache, used after a reindex (internal/ingest
// rebuilding the store out from under any cached fingerprints).
func (c *BucketCache) Invalidate() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

// Len reports how many fingerprints are currently cached.
func (c *BucketCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
