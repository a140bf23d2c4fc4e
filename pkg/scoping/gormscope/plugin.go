package gormscope

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/dmitrymomot/mtenant/pkg/scoping"
)

const (
	pluginName = "mtenant:scoping"
	disableKey = "mtenant:scoping:disable"
)

// Plugin scopes gorm statements on registered tables to the active tenant.
// Entities are registered under their table name.
type Plugin struct {
	registry *scoping.Registry
}

var _ gorm.Plugin = (*Plugin)(nil)

// New returns a plugin scoping the tables registered in registry. Register it
// with db.Use.
func New(registry *scoping.Registry) *Plugin {
	return &Plugin{registry: registry}
}

func (p *Plugin) Name() string {
	return pluginName
}

// Initialize registers the callbacks. It is called by db.Use.
func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register(pluginName+":create", p.beforeCreate); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register(pluginName+":query", p.beforeQuery); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register(pluginName+":row", p.beforeQuery); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register(pluginName+":update", p.beforeUpdate); err != nil {
		return err
	}
	return cb.Delete().Before("gorm:delete").Register(pluginName+":delete", p.beforeDelete)
}

// Disable returns a session whose statements skip tenant scoping.
func Disable(db *gorm.DB) *gorm.DB {
	return db.Set(disableKey, true)
}

func disabled(db *gorm.DB) bool {
	v, ok := db.Get(disableKey)
	if !ok {
		return false
	}
	off, _ := v.(bool)
	return off
}

// target is the statement's entity after resolution.
type target struct {
	res    scoping.Resolution
	field  *schema.Field
	column string
}

func (p *Plugin) resolve(db *gorm.DB) (target, bool) {
	stmt := db.Statement
	if db.Error != nil || stmt.Table == "" || disabled(db) {
		return target{}, false
	}

	res, ok, err := p.registry.Resolve(stmtContext(stmt), stmt.Table)
	if err != nil {
		_ = db.AddError(err)
		return target{}, false
	}
	if !ok {
		return target{}, false
	}

	t := target{res: res, column: res.Options.TenantField}
	if stmt.Schema != nil {
		t.field = stmt.Schema.LookUpField(res.Options.TenantField)
		if t.field == nil {
			_ = db.AddError(fmt.Errorf("%w: %s.%s", scoping.ErrUnknownTenantField, stmt.Table, res.Options.TenantField))
			return target{}, false
		}
		t.column = t.field.DBName
	}
	return t, true
}

func (p *Plugin) beforeCreate(db *gorm.DB) {
	t, ok := p.resolve(db)
	if !ok {
		return
	}
	if err := fill(db.Statement, t); err != nil {
		_ = db.AddError(err)
	}
}

func (p *Plugin) beforeQuery(db *gorm.DB) {
	if db.Statement.SQL.Len() > 0 {
		return
	}
	t, ok := p.resolve(db)
	if !ok {
		return
	}
	constrain(db.Statement, t)
}

func (p *Plugin) beforeUpdate(db *gorm.DB) {
	t, ok := p.resolve(db)
	if !ok {
		return
	}
	if sameTarget(db.Statement) {
		if err := fill(db.Statement, t); err != nil {
			_ = db.AddError(err)
			return
		}
	}
	if unconditional(db) {
		return
	}
	constrain(db.Statement, t)
}

func (p *Plugin) beforeDelete(db *gorm.DB) {
	t, ok := p.resolve(db)
	if !ok || unconditional(db) {
		return
	}
	constrain(db.Statement, t)
}

// unconditional reports a statement gorm is about to reject with
// ErrMissingWhereClause. Scoping it would turn it into a tenant-wide write.
func unconditional(db *gorm.DB) bool {
	stmt := db.Statement
	if _, ok := stmt.Clauses["WHERE"]; ok || db.AllowGlobalUpdate {
		return false
	}
	return !hasPrimaryKey(stmt)
}

func hasPrimaryKey(stmt *gorm.Statement) bool {
	if stmt.Schema == nil || !stmt.ReflectValue.IsValid() {
		return false
	}
	rv := reflect.Indirect(stmt.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Struct:
		for _, pf := range stmt.Schema.PrimaryFields {
			if _, zero := pf.ValueOf(stmtContext(stmt), rv); !zero {
				return true
			}
		}
	}
	return false
}

func sameTarget(stmt *gorm.Statement) bool {
	d, m := reflect.ValueOf(stmt.Dest), reflect.ValueOf(stmt.Model)
	return d.Kind() == reflect.Ptr && m.Kind() == reflect.Ptr && d.Pointer() == m.Pointer()
}

func stmtContext(stmt *gorm.Statement) context.Context {
	if stmt.Context != nil {
		return stmt.Context
	}
	return context.Background()
}
