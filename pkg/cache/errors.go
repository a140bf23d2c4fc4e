package cache

import (
	"errors"
	"strings"
)

var (
	// ErrMiss is returned by Get when no live entry exists for the key.
	ErrMiss = errors.New("cache: miss")

	// ErrNotStored is returned when the backend did not acknowledge a write.
	ErrNotStored = errors.New("cache: value not stored")

	// ErrNotRemoved is returned when the backend did not delete the entry.
	ErrNotRemoved = errors.New("cache: value not removed")

	// ErrUnknownKind is returned for an unrecognized backend name.
	ErrUnknownKind = errors.New("cache: unknown backend kind")

	// ErrClosed is returned by operations on a closed in-memory cache.
	ErrClosed = errors.New("cache: closed")
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
