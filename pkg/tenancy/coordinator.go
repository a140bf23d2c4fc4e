package tenancy

import (
	"context"
	"io"
	"log/slog"

	"github.com/dmitrymomot/mtenant/pkg/logger"
	"github.com/dmitrymomot/mtenant/pkg/registry"
)

// Coordinator resolves the tenant of an operation, validates it against the
// registry and guard, and installs the resulting Scope in a context.
// It is safe for concurrent use; all per-operation state lives in contexts.
type Coordinator struct {
	opts      Options
	extractor Extractor
	storage   registry.Storage
	closers   []io.Closer
	logger    *slog.Logger
}

// New validates opts and builds the registry stack. Invalid combinations
// return an error wrapping ErrConfiguration.
func New(opts Options) (*Coordinator, error) {
	opts = opts.withDefaults()

	extractor, err := buildExtractor(opts)
	if err != nil {
		return nil, err
	}

	storage, err := buildStorage(opts)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		opts:      opts,
		extractor: extractor,
		storage:   storage,
		logger:    opts.Logger.With(logger.Component("tenancy")),
	}

	if hasCache(opts) {
		if storage == nil {
			return nil, ErrCacheWithoutStorage
		}
		kv, owned, err := buildCache(opts)
		if err != nil {
			return nil, err
		}
		if closer, ok := kv.(io.Closer); ok && owned {
			c.closers = append(c.closers, closer)
		}
		c.storage = wrapCached(storage, kv, opts)
	}

	return c, nil
}

// MustNew is New for process startup; it panics on invalid configuration.
func MustNew(opts Options) *Coordinator {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Close releases resources the coordinator created itself, such as an
// in-process cache. Connections passed in through Options are left open.
func (c *Coordinator) Close() error {
	var first error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// Options returns the effective options, defaults applied.
func (c *Coordinator) Options() Options {
	return c.opts
}

// Registry returns the (possibly cached) tenant registry, or nil.
func (c *Coordinator) Registry() registry.Storage {
	return c.storage
}

// AllowMissingTenant reports whether rows without a tenant are visible to
// every tenant.
func (c *Coordinator) AllowMissingTenant() bool {
	return *c.opts.AllowMissingTenant
}

// ResolveTenant extracts the tenant of rc. A missing or empty value resolves
// to the default tenant; any other value must pass IsTenantAllowed or
// ErrTenantRejected is returned.
func (c *Coordinator) ResolveTenant(ctx context.Context, rc *RequestContext) (string, error) {
	tenant, ok := c.extractor.Extract(rc)
	if !ok || tenant == "" {
		return c.opts.DefaultTenant, nil
	}

	allowed, err := c.IsTenantAllowed(ctx, rc, tenant)
	if err != nil {
		return "", err
	}
	if !allowed {
		c.logger.WarnContext(ctx, "tenant rejected", logger.Tenant(tenant))
		return "", rejected(tenant)
	}
	return tenant, nil
}

// IsTenantAllowed reports whether tenant may be used. The default tenant is
// always allowed. Otherwise a configured registry must know the tenant
// before the guard is asked. Registry and guard errors are returned as is.
func (c *Coordinator) IsTenantAllowed(ctx context.Context, rc *RequestContext, tenant string) (bool, error) {
	if tenant == c.opts.DefaultTenant {
		return true, nil
	}

	if c.storage != nil {
		exists, err := c.storage.Exists(ctx, tenant)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
	}

	if rc == nil {
		rc = &RequestContext{}
	}
	return c.opts.AllowTenant(ctx, rc, tenant)
}

// EnterScope resolves the tenant of rc and returns a context carrying it.
func (c *Coordinator) EnterScope(ctx context.Context, rc *RequestContext) (context.Context, error) {
	tenant, err := c.ResolveTenant(ctx, rc)
	if err != nil {
		return ctx, err
	}
	return WithScope(ctx, Scope{Tenant: tenant, Enabled: true}), nil
}

// RunInScope resolves the tenant of rc and calls fn with a context carrying
// the resulting scope. fn is not called when resolution fails.
func (c *Coordinator) RunInScope(ctx context.Context, rc *RequestContext, fn func(context.Context) error) error {
	scoped, err := c.EnterScope(ctx, rc)
	if err != nil {
		return err
	}
	return fn(scoped)
}

// SetTenant installs tenant explicitly after the same checks ResolveTenant
// applies. rc may be nil.
func (c *Coordinator) SetTenant(ctx context.Context, tenant string, rc *RequestContext) (context.Context, error) {
	allowed, err := c.IsTenantAllowed(ctx, rc, tenant)
	if err != nil {
		return ctx, err
	}
	if !allowed {
		return ctx, rejected(tenant)
	}
	return WithScope(ctx, Scope{Tenant: tenant, Enabled: true}), nil
}

// DisableScope keeps the current tenant but turns automatic scoping off for
// everything running under the returned context.
func (c *Coordinator) DisableScope(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	s := c.CurrentScope(ctx)
	s.Enabled = false
	return WithScope(ctx, s)
}

// CurrentScope returns the installed scope or {DefaultTenant, enabled}.
func (c *Coordinator) CurrentScope(ctx context.Context) Scope {
	if s, ok := ScopeFromContext(ctx); ok {
		return s
	}
	return Scope{Tenant: c.opts.DefaultTenant, Enabled: true}
}
