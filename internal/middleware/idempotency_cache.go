package middleware

import (
	"context"
	"sync"
	"time"
)

type memoryIdempotencyEntry struct {
	record    IdempotencyRecord
	expiresAt time.Time
}

// MemoryIdempotencyStore keeps idempotency records in process memory. Records
// do not survive a restart and are not shared between replicas; use the Redis
// store when either matters.
type MemoryIdempotencyStore struct {
	mu     sync.Mutex
	items  map[string]*memoryIdempotencyEntry
	now    func() time.Time
	stopCh chan struct{}
	once   sync.Once
}

// NewMemoryIdempotencyStore starts a store with a background sweeper.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	s := &MemoryIdempotencyStore{
		items:  make(map[string]*memoryIdempotencyEntry),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Reserve implements IdempotencyStore.
func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key, fingerprint string, ttl time.Duration) (*IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.items[key]; ok && now.Before(e.expiresAt) {
		rec := e.record
		return &rec, false, nil
	}
	s.items[key] = &memoryIdempotencyEntry{
		record:    IdempotencyRecord{Fingerprint: fingerprint},
		expiresAt: now.Add(ttl),
	}
	return nil, true, nil
}

// Complete implements IdempotencyStore.
func (s *MemoryIdempotencyStore) Complete(_ context.Context, key string, record IdempotencyRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.Body = append([]byte(nil), record.Body...)
	s.items[key] = &memoryIdempotencyEntry{record: record, expiresAt: s.now().Add(ttl)}
	return nil
}

// Release implements IdempotencyStore.
func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

// Len returns the number of records, expired ones included until the next sweep.
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close stops the sweeper.
func (s *MemoryIdempotencyStore) Close() {
	s.once.Do(func() { close(s.stopCh) })
}

func (s *MemoryIdempotencyStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryIdempotencyStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.items {
		if !now.Before(e.expiresAt) {
			delete(s.items, key)
		}
	}
}
