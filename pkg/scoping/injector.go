package scoping

import (
	"context"
	"fmt"
)

// Hook identifies the data-access event an Injector reacts to.
type Hook int

const (
	BeforeCreate Hook = iota
	BeforeBulkCreate
	BeforeUpdate
	BeforeDestroy
	BeforeBulkUpdate
	BeforeBulkDestroy
	BeforeFind
	BeforeUpsert
)

var hookNames = map[Hook]string{
	BeforeCreate:      "before_create",
	BeforeBulkCreate:  "before_bulk_create",
	BeforeUpdate:      "before_update",
	BeforeDestroy:     "before_destroy",
	BeforeBulkUpdate:  "before_bulk_update",
	BeforeBulkDestroy: "before_bulk_destroy",
	BeforeFind:        "before_find",
	BeforeUpsert:      "before_upsert",
}

func (h Hook) String() string {
	if name, ok := hookNames[h]; ok {
		return name
	}
	return fmt.Sprintf("hook(%d)", int(h))
}

// Event carries what a hook may rewrite: the rows being written and the
// query selecting affected rows.
type Event struct {
	Payloads []map[string]any
	Query    *Query
}

// Injector rewrites writes and queries so they stay within the active tenant.
type Injector struct {
	registry *Registry
}

// NewInjector scopes the entities bound in registry.
func NewInjector(registry *Registry) *Injector {
	return &Injector{registry: registry}
}

// Registry returns the entity registry the injector consults.
func (i *Injector) Registry() *Registry {
	return i.registry
}

// InjectWrite sets the tenant field of payload unless it already holds a
// value. Absent, nil and empty string count as no value.
func (i *Injector) InjectWrite(ctx context.Context, entity string, payload map[string]any) error {
	res, ok, err := i.registry.Resolve(ctx, entity)
	if err != nil || !ok {
		return err
	}
	fillTenant(res, payload)
	return nil
}

func fillTenant(res Resolution, payload map[string]any) {
	if payload == nil {
		return
	}
	if !blank(payload[res.Options.TenantField]) {
		return
	}
	payload[res.Options.TenantField] = res.Tenant
}

// InjectFilter constrains q to the active tenant. In allow-missing mode rows
// without a tenant also match. A query that already constrains the tenant
// field is left as is. Included queries are scoped with their own entity
// options; DisableTenancy exempts a query and everything it includes.
func (i *Injector) InjectFilter(ctx context.Context, q *Query) error {
	if q == nil || q.DisableTenancy {
		return nil
	}

	res, ok, err := i.registry.Resolve(ctx, q.Entity)
	if err != nil {
		return err
	}
	if ok {
		scopeQuery(res, q)
	}

	for _, inc := range q.Include {
		if err := i.InjectFilter(ctx, inc); err != nil {
			return err
		}
	}
	return nil
}

func scopeQuery(res Resolution, q *Query) {
	field := res.Options.TenantField
	if q.Where.constrains(field) {
		return
	}

	if len(q.Or) > 0 {
		alts := make([]Where, 0, len(q.Or)*2)
		for _, alt := range q.Or {
			if alt.constrains(field) {
				alts = append(alts, alt)
				continue
			}
			scoped := alt.clone()
			scoped[field] = res.Tenant
			alts = append(alts, scoped)
			if res.AllowMissing {
				orphan := alt.clone()
				orphan[field] = nil
				alts = append(alts, orphan)
			}
		}
		q.Or = alts
		return
	}

	if q.Where == nil {
		q.Where = Where{}
	}
	if res.AllowMissing {
		q.Where[field] = In{res.Tenant, nil}
		return
	}
	q.Where[field] = res.Tenant
}

// Apply runs the injection that hook calls for. Query-driven hooks get a
// fresh query when ev has none.
func (i *Injector) Apply(ctx context.Context, hook Hook, entity string, ev *Event) error {
	if ev == nil {
		return nil
	}
	if ev.Query != nil && ev.Query.DisableTenancy {
		return nil
	}

	switch hook {
	case BeforeCreate, BeforeBulkCreate, BeforeUpdate, BeforeDestroy:
		return i.injectPayloads(ctx, entity, ev.Payloads)
	case BeforeBulkUpdate, BeforeBulkDestroy, BeforeFind:
		return i.InjectFilter(ctx, ev.query(entity))
	case BeforeUpsert:
		if err := i.injectPayloads(ctx, entity, ev.Payloads); err != nil {
			return err
		}
		return i.InjectFilter(ctx, ev.query(entity))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownHook, hook)
	}
}

func (i *Injector) injectPayloads(ctx context.Context, entity string, payloads []map[string]any) error {
	for _, p := range payloads {
		if err := i.InjectWrite(ctx, entity, p); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Event) query(entity string) *Query {
	if ev.Query == nil {
		ev.Query = &Query{}
	}
	if ev.Query.Entity == "" {
		ev.Query.Entity = entity
	}
	return ev.Query
}
