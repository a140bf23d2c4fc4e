package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mtenant/pkg/cache"
	"github.com/dmitrymomot/mtenant/pkg/logger"
)

const (
	// DefaultPrefix namespaces registry entries in a shared cache.
	DefaultPrefix = "MTENANT_PCACHE/"

	// DefaultTTL bounds how long a cached lookup is served.
	DefaultTTL = time.Hour

	// AllTenants takes the place of the tenant in the List cache key.
	AllTenants = "$all"

	opExists = "exists"
	opGet    = "get"
)

// CachedOption configures a Cached registry.
type CachedOption func(*Cached)

// WithTTL sets the lifetime of cached lookups. Non-positive values are ignored.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPrefix sets the cache key prefix. An empty prefix is ignored.
func WithPrefix(prefix string) CachedOption {
	return func(c *Cached) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

func WithLogger(l *slog.Logger) CachedOption {
	return func(c *Cached) {
		if l != nil {
			c.logger = l
		}
	}
}

// Cached is a cache-aside Storage. Reads are served from the cache when
// possible and populated on miss; mutations purge the affected keys before
// they reach the backing store. Any cache failure aborts the call.
type Cached struct {
	storage Storage
	cache   cache.Cache
	ttl     time.Duration
	prefix  string
	logger  *slog.Logger
}

var _ Storage = (*Cached)(nil)

// NewCached wraps storage with c.
func NewCached(storage Storage, c cache.Cache, opts ...CachedOption) *Cached {
	cr := &Cached{
		storage: storage,
		cache:   c,
		ttl:     DefaultTTL,
		prefix:  DefaultPrefix,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cr)
	}
	cr.logger = cr.logger.With(logger.Component("registry.cached"))
	return cr
}

// Key returns the cache key for op on tenant.
func (c *Cached) Key(tenant, op string) string {
	return c.prefix + tenant + "$" + op
}

// Unwrap returns the backing storage.
func (c *Cached) Unwrap() Storage {
	return c.storage
}

// Exists reports whether tenant is registered. Identifiers that fail
// ValidateTenant bypass the cache.
func (c *Cached) Exists(ctx context.Context, tenant string) (bool, error) {
	if ValidateTenant(tenant) != nil {
		return c.storage.Exists(ctx, tenant)
	}
	key := c.Key(tenant, opExists)

	var exists bool
	hit, err := c.lookup(ctx, key, &exists)
	if err != nil || hit {
		return exists, err
	}

	exists, err = c.storage.Exists(ctx, tenant)
	if err != nil {
		return false, err
	}
	if err := c.store(ctx, key, exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Get returns one tenant. Unknown tenants are not cached, and identifiers
// that fail ValidateTenant bypass the cache.
func (c *Cached) Get(ctx context.Context, tenant string) (Record, error) {
	if ValidateTenant(tenant) != nil {
		return c.storage.Get(ctx, tenant)
	}
	key := c.Key(tenant, opGet)

	var rec Record
	hit, err := c.lookup(ctx, key, &rec)
	if err != nil || hit {
		return rec, err
	}

	rec, err = c.storage.Get(ctx, tenant)
	if err != nil {
		return Record{}, err
	}
	if err := c.store(ctx, key, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns all tenants, cached under the AllTenants key.
func (c *Cached) List(ctx context.Context) ([]Record, error) {
	key := c.Key(AllTenants, opGet)

	var recs []Record
	hit, err := c.lookup(ctx, key, &recs)
	if err != nil {
		return nil, err
	}
	if hit {
		return recs, nil
	}

	recs, err = c.storage.List(ctx)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []Record{}
	}
	if err := c.store(ctx, key, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Cached) Add(ctx context.Context, tenant string, settings json.RawMessage) (Record, error) {
	if err := c.purge(ctx, c.Key(tenant, opExists), c.Key(tenant, opGet), c.Key(AllTenants, opGet)); err != nil {
		return Record{}, err
	}
	return c.storage.Add(ctx, tenant, settings)
}

func (c *Cached) Remove(ctx context.Context, tenant string) (int64, error) {
	if err := c.purge(ctx, c.Key(tenant, opExists), c.Key(tenant, opGet), c.Key(AllTenants, opGet)); err != nil {
		return 0, err
	}
	return c.storage.Remove(ctx, tenant)
}

// UpdateSettings purges only the get keys; existence does not change.
func (c *Cached) UpdateSettings(ctx context.Context, tenant string, settings json.RawMessage) (Record, error) {
	if err := c.Invalidate(ctx, tenant); err != nil {
		return Record{}, err
	}
	return c.storage.UpdateSettings(ctx, tenant, settings)
}

// Invalidate drops the cached record of tenant and the cached list. Use it
// after changing tenant data outside the registry, e.g. backfilling the
// tenant column of rows that were stored without one.
func (c *Cached) Invalidate(ctx context.Context, tenant string) error {
	return c.purge(ctx, c.Key(tenant, opGet), c.Key(AllTenants, opGet))
}

func (c *Cached) lookup(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.cache.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrMiss):
		c.logger.DebugContext(ctx, "cache miss", logger.CacheKey(key))
		return false, nil
	case err != nil:
		return false, errors.Join(ErrCacheReadFailed, err)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		// An undecodable entry is treated as a miss and overwritten.
		c.logger.WarnContext(ctx, "discarding malformed cache entry", logger.CacheKey(key), logger.Error(err))
		return false, nil
	}
	return true, nil
}

func (c *Cached) store(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrCacheWriteFailed, err)
	}
	if err := c.cache.Set(ctx, key, string(b), c.ttl); err != nil {
		c.logger.ErrorContext(ctx, "failed to cache registry result", logger.CacheKey(key), logger.Error(err))
		return errors.Join(ErrCacheWriteFailed, err)
	}
	return nil
}

func (c *Cached) purge(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		present, err := c.cache.Has(ctx, key)
		if err != nil {
			return errors.Join(ErrCacheInvalidationFailed, err)
		}
		if !present {
			continue
		}
		if err := c.cache.Remove(ctx, key); err != nil {
			if errors.Is(err, cache.ErrNotRemoved) && c.expired(ctx, key) {
				continue
			}
			c.logger.ErrorContext(ctx, "failed to purge registry cache", logger.CacheKey(key), logger.Error(err))
			return errors.Join(ErrCacheInvalidationFailed, err)
		}
	}
	return nil
}

// expired reports whether key vanished between Has and Remove, through
// TTL expiry or a concurrent purge.
func (c *Cached) expired(ctx context.Context, key string) bool {
	present, err := c.cache.Has(ctx, key)
	return err == nil && !present
}
