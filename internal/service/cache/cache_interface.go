// Package cache declares the price memoisation contract used by the pricing service.
package cache

import "github.com/shopspring/decimal"

// Cache memoises derived unit prices by key. Keys embed the policy version,
// so entries never outlive the policy that produced them.
type Cache interface {
	Get(key string) (decimal.Decimal, bool)
	Set(key string, value decimal.Decimal)
	Invalidate(key string)
	Clear()
}

// Metrics is a snapshot of cache counters.
type Metrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}
