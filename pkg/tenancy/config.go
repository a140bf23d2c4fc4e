package tenancy

import (
	"time"

	"github.com/dmitrymomot/mtenant/pkg/cache"
)

// Config is the environment form of Options. Connections and the guard are
// attached to the result of Options by the caller.
type Config struct {
	Transport          string        `env:"TENANCY_TRANSPORT" envDefault:"http"`
	HeaderName         string        `env:"TENANCY_HEADER_NAME" envDefault:"X-Tenant-ID"`
	QueryParameter     string        `env:"TENANCY_QUERY_PARAMETER" envDefault:"tenant"`
	DefaultTenant      string        `env:"TENANCY_DEFAULT_TENANT" envDefault:"root"`
	AllowMissingTenant bool          `env:"TENANCY_ALLOW_MISSING_TENANT" envDefault:"true"`
	Storage            string        `env:"TENANCY_STORAGE"`
	Cache              string        `env:"TENANCY_CACHE"`
	CacheTTL           time.Duration `env:"TENANCY_CACHE_TTL" envDefault:"1h"`
	CachePrefix        string        `env:"TENANCY_CACHE_PREFIX" envDefault:"MTENANT_PCACHE/"`
	CacheCapacity      int           `env:"TENANCY_CACHE_CAPACITY" envDefault:"10000"`
	SkipPaths          []string      `env:"TENANCY_SKIP_PATHS" envSeparator:","`
}

func (c Config) Options() Options {
	return Options{
		Transport:          TransportKind(c.Transport),
		HeaderName:         c.HeaderName,
		QueryParameter:     c.QueryParameter,
		DefaultTenant:      c.DefaultTenant,
		AllowMissingTenant: Bool(c.AllowMissingTenant),
		Storage:            StorageKind(c.Storage),
		Cache:              cache.Kind(c.Cache),
		CacheOptions: CacheOptions{
			TTL:      c.CacheTTL,
			Prefix:   c.CachePrefix,
			Capacity: c.CacheCapacity,
		},
	}
}
