// Package registry defines the tenant registry: the persisted set of known
// tenants and their settings.
//
// Storage is the backend contract. Backends live in subpackages: gormstore
// (any gorm dialect), pgstore (pgx with goose migrations) and mongostore.
// All of them keep one row per tenant in tenants_storage with the settings as
// a JSON text column.
//
// Cached decorates any Storage with a cache-aside layer over a cache.Cache.
// Lookups are cached under "<prefix><tenant>$exists" and "<prefix><tenant>$get"
// ("<prefix>$all$get" for List). Mutations purge the affected keys before
// reaching the backend and abort with ErrCacheInvalidationFailed if the purge
// fails, so a successful write is never followed by a stale cached read.
//
//	reg := registry.NewCached(gormstore.New(db), cache.NewRedis(client),
//	    registry.WithTTL(10*time.Minute),
//	)
//	if _, err := reg.Add(ctx, "acme", nil); err != nil {
//	    return err
//	}
package registry
