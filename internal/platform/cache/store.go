package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[T any] struct {
	value    T
	loadedAt time.Time
}

// Store is a keyed, TTL-bounded, lazily rebuilt cache. Entries are never
// refreshed in the background; a stale entry is rebuilt on the next access.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	now     func() time.Time
	flight  singleflight.Group
}

type Option func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewStore builds a store. ttl <= 0 keeps entries until invalidated.
func NewStore[T any](ttl time.Duration, opts ...Option) *Store[T] {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     o.now,
	}
}

func (s *Store[T]) Get(key string) (T, bool) {
	var zero T
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return zero, false
	}
	return e.value, true
}

func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	s.entries[key] = entry[T]{value: value, loadedAt: s.now()}
	s.mu.Unlock()
}

func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store[T]) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// GetOrLoad returns the cached value or runs loader. Concurrent misses on the
// same key share one loader call.
func (s *Store[T]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if loader == nil {
		return zero, fmt.Errorf("cache loader is required")
	}
	if value, ok := s.Get(key); ok {
		return value, nil
	}

	out, err, _ := s.flight.Do(key, func() (any, error) {
		if value, ok := s.Get(key); ok {
			return value, nil
		}
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(key, loaded)
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

func (s *Store[T]) expired(e entry[T]) bool {
	if s.ttl <= 0 {
		return false
	}
	return !s.now().Before(e.loadedAt.Add(s.ttl))
}
