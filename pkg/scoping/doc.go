// Package scoping keeps per-entity data access inside the active tenant.
//
// Entities are registered by name in a Registry and bound to a ScopeSource,
// normally a *tenancy.Coordinator. An Injector then fills the tenant field on
// writes and adds a tenant constraint to queries, following included
// (eagerly loaded) queries with their own entity options:
//
//	reg := scoping.NewRegistry()
//	reg.Register("notes")
//	reg.Register("attachments", scoping.WithTenantField("org"))
//	if err := reg.Bind(coordinator, "notes", "attachments"); err != nil {
//		return err
//	}
//
//	inj := scoping.NewInjector(reg)
//	q := &scoping.Query{Entity: "notes", Where: scoping.Where{"archived": false}}
//	if err := inj.InjectFilter(ctx, q); err != nil {
//		return err
//	}
//
// When missing tenants are allowed, rows whose tenant field is NULL match
// every tenant. Disabling the scope in the context, switching an entity off
// with SetEnabled, or setting Query.DisableTenancy bypasses injection.
//
// Query and Where can also be evaluated in memory with Match, which is how
// callers filter rows that did not come from a database.
package scoping
