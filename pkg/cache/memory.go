package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultMemoryCapacity bounds the in-process cache; the least recently used
// entry is evicted once it is reached.
const DefaultMemoryCapacity = 10000

// Memory is an in-process Cache backed by ttlcache. Useful for single-instance
// deployments and tests.
type Memory struct {
	items *ttlcache.Cache[string, string]

	mu     sync.Mutex
	closed bool
}

// NewMemory creates an in-process cache holding at most capacity entries.
// A non-positive capacity falls back to DefaultMemoryCapacity.
// Call Close to stop the expiration loop.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}

	items := ttlcache.New[string, string](
		ttlcache.WithCapacity[string, string](uint64(capacity)),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go items.Start()

	return &Memory{items: items}
}

// Set stores value under key. A non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if m.isClosed() {
		return ErrClosed
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	if item := m.items.Set(key, value, ttl); item == nil {
		return ErrNotStored
	}
	return nil
}

// Has reports whether key holds an unexpired entry.
func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	if m.isClosed() {
		return false, ErrClosed
	}
	return m.items.Get(key) != nil, nil
}

// Get returns the value under key or ErrMiss.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	if m.isClosed() {
		return "", ErrClosed
	}
	item := m.items.Get(key)
	if item == nil {
		return "", ErrMiss
	}
	return item.Value(), nil
}

// Remove deletes key. An absent key yields ErrNotRemoved.
func (m *Memory) Remove(_ context.Context, key string) error {
	if m.isClosed() {
		return ErrClosed
	}
	if _, present := m.items.GetAndDelete(key); !present {
		return ErrNotRemoved
	}
	return nil
}

// Len returns the number of entries, including expired ones not yet collected.
func (m *Memory) Len() int {
	return m.items.Len()
}

// Close stops the expiration loop. Further calls return ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.items.Stop()
	return nil
}

func (m *Memory) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
