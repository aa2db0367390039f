package dataapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/floatlab/argo-insight/internal/domain"
	"github.com/floatlab/argo-insight/internal/observability"
)

// Fetcher retrieves records for a query.
type Fetcher interface {
	Fetch(ctx context.Context, query string, limit int) ([]domain.RawRecord, error)
}

// CachedFetcher wraps a Fetcher with an in-memory LRU cache keyed on the
// query and limit.
type CachedFetcher struct {
	inner   Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner Fetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, query string, limit int) ([]domain.RawRecord, error) {
	key := fmt.Sprintf("%d|%s", limit, query)
	if records, ok := c.cache.get(key); ok {
		c.metrics.DataAPICache.WithLabelValues("hit").Inc()
		return records, nil
	}
	c.metrics.DataAPICache.WithLabelValues("miss").Inc()

	records, err := c.inner.Fetch(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so transient empty responses can be retried.
	if len(records) > 0 {
		c.cache.put(key, records)
	}
	return records, nil
}

// lruCache is a simple thread-safe LRU cache for record sets.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.RawRecord
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.RawRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.RawRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
