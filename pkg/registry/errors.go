package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound is returned when the tenant is not registered.
	ErrTenantNotFound = errors.New("registry: tenant not found")

	// ErrTenantExists is returned by Add for an already registered tenant.
	ErrTenantExists = errors.New("registry: tenant already exists")

	// ErrInvalidTenant is returned for a blank tenant identifier.
	ErrInvalidTenant = errors.New("registry: invalid tenant identifier")

	// ErrInvalidSettings is returned when settings are not valid JSON.
	ErrInvalidSettings = errors.New("registry: settings are not valid JSON")

	// ErrCacheConsistency is the parent of every cache failure that aborts a
	// registry call. Callers may retry the whole call.
	ErrCacheConsistency = errors.New("registry: cache consistency failure")

	// ErrCacheWriteFailed: the backing store answered but the result could not be cached.
	ErrCacheWriteFailed = fmt.Errorf("%w: cache write failed", ErrCacheConsistency)

	// ErrCacheInvalidationFailed: a stale entry could not be purged, so the mutation did not run.
	ErrCacheInvalidationFailed = fmt.Errorf("%w: cache invalidation failed", ErrCacheConsistency)

	// ErrCacheReadFailed is returned when the cache itself could not be queried.
	ErrCacheReadFailed = errors.New("registry: cache read failed")
)
