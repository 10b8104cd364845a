package middleware

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const defaultNumShards = 16

type fixedWindow struct {
	remaining int
	resetAt   time.Time
}

type counterShard struct {
	mu      sync.Mutex
	windows map[string]*fixedWindow
}

// memoryCounter is a WindowCounter for a single replica. Keys are spread over
// shards so concurrent clients rarely share a lock.
type memoryCounter struct {
	shards []*counterShard
	rate   int
	window time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func newMemoryCounter(rate int, period time.Duration, numShards int) *memoryCounter {
	if numShards <= 0 {
		numShards = defaultNumShards
	}
	mc := &memoryCounter{
		shards: make([]*counterShard, numShards),
		rate:   rate,
		window: period,
		done:   make(chan struct{}),
	}
	for i := range mc.shards {
		mc.shards[i] = &counterShard{windows: make(map[string]*fixedWindow)}
	}
	go mc.sweep(time.Minute)
	return mc
}

func (mc *memoryCounter) Take(_ context.Context, key string, now time.Time) (Quota, error) {
	return mc.take(key, now), nil
}

func (mc *memoryCounter) take(key string, now time.Time) Quota {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	shard := mc.shards[h.Sum32()%uint32(len(mc.shards))]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	w, ok := shard.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &fixedWindow{remaining: mc.rate, resetAt: now.Add(mc.window)}
		shard.windows[key] = w
	}
	q := Quota{Remaining: w.remaining, ResetIn: w.resetAt.Sub(now)}
	if w.remaining > 0 {
		w.remaining--
		q.Allowed = true
		q.Remaining = w.remaining
	}
	return q
}

func (mc *memoryCounter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			mc.evictExpired(now)
		case <-mc.done:
			return
		}
	}
}

// evictExpired drops windows that ended more than one window ago.
func (mc *memoryCounter) evictExpired(now time.Time) {
	for _, shard := range mc.shards {
		shard.mu.Lock()
		for key, w := range shard.windows {
			if now.Sub(w.resetAt) > mc.window {
				delete(shard.windows, key)
			}
		}
		shard.mu.Unlock()
	}
}

func (mc *memoryCounter) tracked() int {
	total := 0
	for _, shard := range mc.shards {
		shard.mu.Lock()
		total += len(shard.windows)
		shard.mu.Unlock()
	}
	return total
}

func (mc *memoryCounter) stop() {
	mc.stopOnce.Do(func() { close(mc.done) })
}
