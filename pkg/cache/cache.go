package cache

import (
	"context"
	"time"
)

// Cache is a string key/value store with per-entry TTL used for lookaside caching.
//
// A write or delete the backend did not acknowledge is reported as an error
// (ErrNotStored, ErrNotRemoved) rather than a silent no-op.
type Cache interface {
	// Set stores value under key. A zero ttl stores the entry without expiration.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Has reports whether a live entry exists for key.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the value stored under key or ErrMiss.
	Get(ctx context.Context, key string) (string, error)

	// Remove deletes the entry for key. Removing an absent key returns ErrNotRemoved.
	Remove(ctx context.Context, key string) error
}

// Kind selects a built-in cache backend.
type Kind string

const (
	KindRedis  Kind = "redis"
	KindMemory Kind = "memory"
)

// ParseKind normalizes a backend name. Unknown names return ErrUnknownKind.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(normalize(name)); k {
	case KindRedis, KindMemory:
		return k, nil
	default:
		return "", ErrUnknownKind
	}
}
