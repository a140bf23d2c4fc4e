// Package tenancy decides which tenant a unit of work belongs to and carries
// that decision through a call chain in a context.Context.
//
// A Coordinator is built once from Options:
//
//	coord, err := tenancy.New(tenancy.Options{
//	    Storage:         tenancy.StorageGorm,
//	    StorageSettings: tenancy.StorageSettings{Gorm: db},
//	    Cache:           cache.KindRedis,
//	    CacheClient:     redisClient,
//	    AllowTenant: func(ctx context.Context, rc *tenancy.RequestContext, tenant string) (bool, error) {
//	        return rc.Headers["X-Api-Key"] != "", nil
//	    },
//	})
//
// Resolution reads the X-Tenant-ID header (case-insensitively), then the
// "tenant" query parameter. A missing or empty value resolves to the default
// tenant "root", which is always allowed. Any other tenant must exist in the
// registry, when one is configured, and pass the guard; otherwise the
// operation fails with ErrTenantRejected.
//
// RunInScope and Middleware install Scope{Tenant, Enabled: true} for the
// duration of one operation. Code further down reads it with CurrentScope.
// DisableScope switches automatic scoping off for maintenance work that
// spans tenants while keeping the tenant value. Because scopes live in
// contexts, concurrent operations never observe each other's tenant.
package tenancy
