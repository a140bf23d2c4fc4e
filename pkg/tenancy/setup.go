package tenancy

import (
	"strings"

	"github.com/dmitrymomot/mtenant/pkg/cache"
	"github.com/dmitrymomot/mtenant/pkg/logger"
	"github.com/dmitrymomot/mtenant/pkg/registry"
	"github.com/dmitrymomot/mtenant/pkg/registry/gormstore"
	"github.com/dmitrymomot/mtenant/pkg/registry/mongostore"
	"github.com/dmitrymomot/mtenant/pkg/registry/pgstore"
)

func buildExtractor(o Options) (Extractor, error) {
	switch TransportKind(strings.ToLower(string(o.Transport))) {
	case TransportHTTP:
		return HTTPTransport{HeaderName: o.HeaderName, QueryParameter: o.QueryParameter}, nil
	case TransportHeader:
		return HTTPTransport{HeaderName: o.HeaderName}, nil
	default:
		return nil, ErrUnknownTransport
	}
}

func buildStorage(o Options) (registry.Storage, error) {
	if o.StorageBackend != nil {
		if o.Storage != "" {
			return nil, ErrAmbiguousBackend
		}
		return o.StorageBackend, nil
	}

	switch StorageKind(strings.ToLower(string(o.Storage))) {
	case "":
		return nil, nil
	case StorageGorm:
		if o.StorageSettings.Gorm == nil {
			return nil, ErrMissingBackendConnection
		}
		return gormstore.New(o.StorageSettings.Gorm), nil
	case StoragePostgres:
		if o.StorageSettings.Postgres == nil {
			return nil, ErrMissingBackendConnection
		}
		return pgstore.New(o.StorageSettings.Postgres), nil
	case StorageMongo:
		if o.StorageSettings.Mongo == nil {
			return nil, ErrMissingBackendConnection
		}
		return mongostore.New(o.StorageSettings.Mongo), nil
	default:
		return nil, ErrUnknownStorage
	}
}

// buildCache returns the configured cache and whether the coordinator owns it.
func buildCache(o Options) (cache.Cache, bool, error) {
	if o.CacheBackend != nil {
		if o.Cache != "" {
			return nil, false, ErrAmbiguousBackend
		}
		return o.CacheBackend, false, nil
	}
	if o.Cache == "" {
		return nil, false, nil
	}

	kind, err := cache.ParseKind(string(o.Cache))
	if err != nil {
		return nil, false, ErrUnknownCache
	}
	switch kind {
	case cache.KindRedis:
		if o.CacheClient == nil {
			return nil, false, ErrMissingBackendConnection
		}
		return cache.NewRedis(o.CacheClient), false, nil
	default:
		return cache.NewMemory(o.CacheOptions.Capacity), true, nil
	}
}

func wrapCached(storage registry.Storage, c cache.Cache, o Options) registry.Storage {
	return registry.NewCached(storage, c,
		registry.WithTTL(o.CacheOptions.TTL),
		registry.WithPrefix(o.CacheOptions.Prefix),
		registry.WithLogger(o.Logger.With(logger.Backend(string(o.Cache)))),
	)
}

func hasCache(o Options) bool {
	return o.Cache != "" || o.CacheBackend != nil
}
