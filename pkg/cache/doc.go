// Package cache provides the key/value store used for lookaside caching of the
// tenant registry.
//
// Two backends are included:
//
//   - Memory: in-process, bounded, TTL-aware, built on jellydator/ttlcache.
//   - Redis: shared across instances, built on redis/go-redis.
//
// Both implement Cache. Writes and deletes that the store does not acknowledge
// return ErrNotStored or ErrNotRemoved so that callers running a cache-aside
// sequence can abort instead of serving stale data.
//
// # Usage
//
//	import "github.com/dmitrymomot/mtenant/pkg/cache"
//
//	mem := cache.NewMemory(0)
//	defer mem.Close()
//
//	if err := mem.Set(ctx, "key", "value", time.Hour); err != nil {
//		return err
//	}
//
//	rc := cache.NewRedis(redisClient)
//	ok, err := rc.Has(ctx, "key")
//
// Use ParseKind to turn a configuration string into a backend Kind.
package cache
