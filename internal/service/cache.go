package service

import (
	"container/list"
	"sync"
	"time"

	"github.com/guttosm/casebreak-service/internal/metrics"
	"github.com/guttosm/casebreak-service/internal/service/cache"
	"github.com/shopspring/decimal"
)

// priceCache is an LRU of derived unit prices with a fixed time to live.
// Expired entries are dropped when read and swept when the cache is full.
type priceCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	order *list.List // front is most recently used
	items map[string]*list.Element

	hits, misses, evictions int64
}

type priceEntry struct {
	key       string
	price     decimal.Decimal
	expiresAt time.Time
}

var _ cache.Cache = (*priceCache)(nil)

func newPriceCache(capacity int, ttl time.Duration) *priceCache {
	if capacity < 1 {
		capacity = 1
	}
	return &priceCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *priceCache) Get(key string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		metrics.RecordCacheOperation("get", "miss")
		return decimal.Zero, false
	}

	entry := el.Value.(*priceEntry)
	if c.expired(entry) {
		c.drop(el)
		c.misses++
		metrics.RecordCacheOperation("get", "expired")
		return decimal.Zero, false
	}

	c.order.MoveToFront(el)
	c.hits++
	metrics.RecordCacheOperation("get", "hit")
	return entry.price, true
}

func (c *priceCache) Set(key string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*priceEntry)
		entry.price = price
		entry.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		c.sweepExpired()
	}
	if c.order.Len() >= c.capacity {
		c.drop(c.order.Back())
		c.evictions++
		metrics.RecordCacheOperation("evict", "capacity")
	}

	c.items[key] = c.order.PushFront(&priceEntry{key: key, price: price, expiresAt: expiresAt})
	metrics.RecordCacheOperation("set", "success")
	metrics.UpdateCacheMetrics(c.order.Len(), c.capacity)
}

func (c *priceCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.drop(el)
		metrics.RecordCacheOperation("invalidate", "success")
	}
}

// Clear empties the cache and resets its counters.
func (c *priceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	c.hits, c.misses, c.evictions = 0, 0, 0
	metrics.RecordCacheOperation("clear", "success")
	metrics.UpdateCacheMetrics(0, c.capacity)
}

func (c *priceCache) Metrics() cache.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return cache.Metrics{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.order.Len(),
		Capacity:  c.capacity,
	}
}

func (c *priceCache) expired(e *priceEntry) bool {
	return c.now().After(e.expiresAt)
}

// sweepExpired must be called with mu held.
func (c *priceCache) sweepExpired() {
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*priceEntry)) {
			c.drop(el)
		}
		el = prev
	}
}

func (c *priceCache) drop(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*priceEntry).key)
}
