package tenancy

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/mtenant/pkg/registry"
)

var (
	// ErrConfiguration is the parent of every setup error. Setup errors are
	// returned by New and are never retried.
	ErrConfiguration = errors.New("tenancy: invalid configuration")

	ErrUnknownTransport         = fmt.Errorf("%w: unknown transport", ErrConfiguration)
	ErrUnknownStorage           = fmt.Errorf("%w: unknown storage backend", ErrConfiguration)
	ErrUnknownCache             = fmt.Errorf("%w: unknown cache backend", ErrConfiguration)
	ErrCacheWithoutStorage      = fmt.Errorf("%w: cache requires a storage backend", ErrConfiguration)
	ErrAmbiguousBackend         = fmt.Errorf("%w: both a backend kind and a ready-made backend are set", ErrConfiguration)
	ErrMissingBackendConnection = fmt.Errorf("%w: backend connection not provided", ErrConfiguration)

	// ErrTenantRejected is returned when a requested tenant is unknown to the
	// registry or denied by the guard.
	ErrTenantRejected = errors.New("tenancy: tenant not allowed")
)

func rejected(tenant string) error {
	return fmt.Errorf("%w: %q", ErrTenantRejected, tenant)
}

// HTTPStatus maps tenancy and registry errors to a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrTenantRejected):
		return http.StatusNotAcceptable
	case errors.Is(err, registry.ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrTenantExists):
		return http.StatusConflict
	case errors.Is(err, registry.ErrInvalidTenant), errors.Is(err, registry.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrCacheConsistency), errors.Is(err, registry.ErrCacheReadFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
