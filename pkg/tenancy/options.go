package tenancy

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	"github.com/dmitrymomot/mtenant/pkg/cache"
	"github.com/dmitrymomot/mtenant/pkg/registry"
)

const (
	DefaultHeaderName     = "X-Tenant-ID"
	DefaultQueryParameter = "tenant"
	DefaultTenant         = "root"
)

// Guard decides whether a tenant may be used for a request. rc is never nil.
type Guard func(ctx context.Context, rc *RequestContext, tenant string) (bool, error)

// AllowAll is the default guard.
func AllowAll(context.Context, *RequestContext, string) (bool, error) {
	return true, nil
}

// StorageKind selects a built-in registry backend.
type StorageKind string

const (
	StorageGorm     StorageKind = "gorm"
	StoragePostgres StorageKind = "postgres"
	StorageMongo    StorageKind = "mongo"
)

// StorageSettings holds the connection each StorageKind needs.
type StorageSettings struct {
	Gorm     *gorm.DB
	Postgres *pgxpool.Pool
	Mongo    *mongo.Database
}

// CacheOptions configures the registry cache.
type CacheOptions struct {
	TTL    time.Duration // registry.DefaultTTL when zero
	Prefix string        // registry.DefaultPrefix when empty
	// Capacity bounds the in-process cache (cache.DefaultMemoryCapacity when zero).
	Capacity int
}

// Options configures a Coordinator. The zero value resolves tenants from the
// X-Tenant-ID header or "tenant" query parameter, falls back to "root",
// allows every tenant and uses no registry.
type Options struct {
	Transport      TransportKind
	HeaderName     string
	QueryParameter string
	DefaultTenant  string

	// AllowTenant is consulted for every non-default tenant that passed the
	// registry check.
	AllowTenant Guard

	// AllowMissingTenant makes scoped reads also match rows without a tenant.
	// Nil means true.
	AllowMissingTenant *bool

	// Storage selects a built-in registry backend; StorageBackend supplies a
	// ready-made one. At most one may be set.
	Storage         StorageKind
	StorageBackend  registry.Storage
	StorageSettings StorageSettings

	// Cache selects a built-in cache; CacheBackend supplies a ready-made one.
	// Either requires a registry.
	Cache        cache.Kind
	CacheBackend cache.Cache
	CacheClient  redis.UniversalClient
	CacheOptions CacheOptions

	Logger *slog.Logger
}

// Bool returns a pointer to v, for AllowMissingTenant.
func Bool(v bool) *bool {
	return &v
}

func (o Options) withDefaults() Options {
	if o.Transport == "" {
		o.Transport = TransportHTTP
	}
	if o.HeaderName == "" {
		o.HeaderName = DefaultHeaderName
	}
	if o.QueryParameter == "" {
		o.QueryParameter = DefaultQueryParameter
	}
	if o.DefaultTenant == "" {
		o.DefaultTenant = DefaultTenant
	}
	if o.AllowTenant == nil {
		o.AllowTenant = AllowAll
	}
	if o.AllowMissingTenant == nil {
		o.AllowMissingTenant = Bool(true)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
