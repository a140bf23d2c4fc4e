package scoping

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrymomot/mtenant/pkg/tenancy"
)

const (
	DefaultTenantField = "tenant"
	DefaultIDField     = "id"
)

// EntityOptions names the fields tenancy reads on an entity.
type EntityOptions struct {
	TenantField string
	IDField     string
}

// Option customizes EntityOptions at registration.
type Option func(*EntityOptions)

// WithTenantField sets the column holding the tenant. Empty keeps "tenant".
func WithTenantField(name string) Option {
	return func(o *EntityOptions) {
		if name != "" {
			o.TenantField = name
		}
	}
}

// WithIDField sets the primary key column. Empty keeps the default.
func WithIDField(name string) Option {
	return func(o *EntityOptions) {
		if name != "" {
			o.IDField = name
		}
	}
}

// TenantID returns "<tenant>/<id>" for row, a key that is unique across tenants.
func TenantID(opts EntityOptions, row map[string]any) string {
	return fmt.Sprintf("%v/%v", row[opts.TenantField], row[opts.IDField])
}

// ScopeSource supplies the active scope. *tenancy.Coordinator implements it.
type ScopeSource interface {
	CurrentScope(ctx context.Context) tenancy.Scope
	AllowMissingTenant() bool
}

// Resolution is what injection needs to scope one entity.
type Resolution struct {
	Tenant       string
	Options      EntityOptions
	AllowMissing bool
}

type entity struct {
	opts    EntityOptions
	source  ScopeSource
	enabled bool
}

// Registry maps entity names (table or type names) to their tenancy options
// and the source of their scope. Populate it at startup; lookups are safe
// for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*entity
}

// NewRegistry returns an empty entity registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*entity)}
}

// Register marks name as tenant-scoped. Registering again replaces the
// options and keeps the binding.
func (r *Registry) Register(name string, opts ...Option) {
	o := EntityOptions{TenantField: DefaultTenantField, IDField: DefaultIDField}
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entities[name]; ok {
		e.opts = o
		return
	}
	r.entities[name] = &entity{opts: o, enabled: true}
}

// Bind associates the named entities with source.
func (r *Registry) Bind(source ScopeSource, names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		if _, ok := r.entities[name]; !ok {
			return fmt.Errorf("%w: %q", ErrEntityNotRegistered, name)
		}
	}
	for _, name := range names {
		r.entities[name].source = source
	}
	return nil
}

// SetEnabled switches scoping of one entity on or off.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entities[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrEntityNotRegistered, name)
	}
	e.enabled = enabled
	return nil
}

// Lookup returns the options of a registered entity, enabled or not.
func (r *Registry) Lookup(name string) (EntityOptions, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[name]
	if !ok {
		return EntityOptions{}, false
	}
	return e.opts, true
}

// Resolve decides whether name must be scoped under ctx. It reports false
// for unregistered or switched-off entities and for disabled scopes.
// A registered entity with no bound source is a wiring error.
func (r *Registry) Resolve(ctx context.Context, name string) (Resolution, bool, error) {
	r.mu.RLock()
	e, ok := r.entities[name]
	var (
		opts    EntityOptions
		source  ScopeSource
		enabled bool
	)
	if ok {
		opts, source, enabled = e.opts, e.source, e.enabled
	}
	r.mu.RUnlock()

	if !ok || !enabled {
		return Resolution{}, false, nil
	}
	if source == nil {
		return Resolution{}, false, fmt.Errorf("%w: %q", ErrEntityNotBound, name)
	}

	scope := source.CurrentScope(ctx)
	if !scope.Enabled {
		return Resolution{}, false, nil
	}
	return Resolution{
		Tenant:       scope.Tenant,
		Options:      opts,
		AllowMissing: source.AllowMissingTenant(),
	}, true, nil
}
