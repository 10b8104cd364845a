//go:build !integration

package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestPriceCache(capacity int, ttl time.Duration) (*priceCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := newPriceCache(capacity, ttl)
	c.now = clock.now
	return c, clock
}

func TestPriceCache_Get(t *testing.T) {
	tests := []struct {
		name      string
		advance   time.Duration
		key       string
		wantFound bool
	}{
		{"fresh entry", 0, "2024-06|84.99|8", true},
		{"just before expiry", time.Minute, "2024-06|84.99|8", true},
		{"expired entry", time.Minute + time.Second, "2024-06|84.99|8", false},
		{"other policy version", 0, "legacy|84.99|8", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clock := newTestPriceCache(10, time.Minute)
			c.Set("2024-06|84.99|8", dec("15.99"))
			clock.advance(tt.advance)

			got, found := c.Get(tt.key)

			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.True(t, got.Equal(dec("15.99")))
			} else {
				assert.True(t, got.IsZero())
			}
		})
	}
}

func TestPriceCache_ExpiredReadIsDropped(t *testing.T) {
	c, clock := newTestPriceCache(10, time.Minute)
	c.Set("a", dec("1.99"))
	clock.advance(2 * time.Minute)

	_, found := c.Get("a")

	assert.False(t, found)
	m := c.Metrics()
	assert.Equal(t, 0, m.Size)
	assert.Equal(t, int64(1), m.Misses)
}

func TestPriceCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestPriceCache(2, time.Hour)
	c.Set("a", dec("1.99"))
	c.Set("b", dec("2.99"))
	_, _ = c.Get("a")

	c.Set("c", dec("3.99"))

	_, foundA := c.Get("a")
	_, foundB := c.Get("b")
	_, foundC := c.Get("c")
	assert.True(t, foundA)
	assert.False(t, foundB)
	assert.True(t, foundC)
	assert.Equal(t, int64(1), c.Metrics().Evictions)
}

func TestPriceCache_FullCacheSweepsExpiredBeforeEvicting(t *testing.T) {
	c, clock := newTestPriceCache(2, time.Minute)
	c.Set("stale", dec("1.99"))
	clock.advance(30 * time.Second)
	c.Set("live", dec("2.99"))
	clock.advance(45 * time.Second)

	c.Set("new", dec("3.99"))

	_, foundLive := c.Get("live")
	assert.True(t, foundLive)
	assert.Equal(t, int64(0), c.Metrics().Evictions)
	assert.Equal(t, 2, c.Metrics().Size)
}

func TestPriceCache_SetRefreshesExistingEntry(t *testing.T) {
	c, clock := newTestPriceCache(2, time.Minute)
	c.Set("a", dec("1.99"))
	clock.advance(50 * time.Second)
	c.Set("a", dec("2.99"))
	clock.advance(50 * time.Second)

	got, found := c.Get("a")

	require.True(t, found)
	assert.True(t, got.Equal(dec("2.99")))
	assert.Equal(t, 1, c.Metrics().Size)
}

func TestPriceCache_InvalidateAndClear(t *testing.T) {
	c, _ := newTestPriceCache(10, time.Minute)
	c.Set("a", dec("1.99"))
	c.Set("b", dec("2.99"))
	_, _ = c.Get("a")

	c.Invalidate("a")
	_, found := c.Get("a")
	assert.False(t, found)

	c.Clear()
	m := c.Metrics()
	assert.Equal(t, 0, m.Size)
	assert.Equal(t, int64(0), m.Hits)
	assert.Equal(t, int64(0), m.Misses)
	assert.Equal(t, 10, m.Capacity)
}

func TestPriceCache_Concurrent(t *testing.T) {
	c := newPriceCache(50, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("2024-06|%d.99|%d", i, j%10+1)
				c.Set(key, dec("9.99"))
				_, _ = c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Metrics().Size, 50)
}
