// Package gormscope applies tenant scoping to gorm statements.
//
// Register the tenant-scoped tables in a scoping.Registry, bind them to a
// tenancy coordinator and install the plugin:
//
//	reg := scoping.NewRegistry()
//	reg.Register("notes")
//	_ = reg.Bind(coordinator, "notes")
//	if err := db.Use(gormscope.New(reg)); err != nil {
//		return err
//	}
//
// Creates fill the tenant column when it is empty. Queries, row scans,
// updates and deletes gain a tenant condition unless their WHERE clause
// already restricts that column. Preloaded associations pass through the
// same callbacks and are scoped with their own table's options.
//
// Raw SQL is never rewritten. Disable(db) or a context with a disabled
// tenancy scope bypasses the plugin.
package gormscope
