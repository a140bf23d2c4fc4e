package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups non-nil errors under "errors". All-nil input yields an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under "error". A nil err yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Tenant records the tenant identifier under "tenant".
func Tenant(tenant string) slog.Attr {
	return slog.String("tenant", tenant)
}

// CacheKey records a cache key under "cache_key".
func CacheKey(key string) slog.Attr {
	return slog.String("cache_key", key)
}

// Entity records a tenant-scoped entity name under "entity".
func Entity(name string) slog.Attr {
	return slog.String("entity", name)
}

// Backend records a storage or cache backend kind under "backend".
func Backend(kind string) slog.Attr {
	return slog.String("backend", kind)
}

// RequestID records the request identifier under "request_id".
// A nil id yields an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
