package memory

import (
	"context"
	"sync"
	"time"

	"cinescore/internal/cache"
)

type item struct {
	entry     *cache.Entry
	expiresAt time.Time
}

// Store defines an in-process TTL response cache. Expired items are
// evicted lazily on lookup.
type Store struct {
	mu   sync.RWMutex
	data map[string]item
	now  func() time.Time
}

// New creates a new in-memory cache store.
func New() *Store {
	return &Store{data: map[string]item{}, now: time.Now}
}

// Get returns the stored entry for the key, if present and not expired.
func (s *Store) Get(_ context.Context, key string) (*cache.Entry, bool) {
	s.mu.RLock()
	it, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(it.expiresAt) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return nil, false
	}
	return it.entry, true
}

// Set stores the entry under the key for the given TTL.
func (s *Store) Set(_ context.Context, key string, e *cache.Entry, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = item{entry: e, expiresAt: s.now().Add(ttl)}
}
