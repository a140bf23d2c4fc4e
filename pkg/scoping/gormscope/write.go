package gormscope

import (
	"reflect"

	"gorm.io/gorm"
)

// fill sets the tenant on every row being written that has none yet.
func fill(stmt *gorm.Statement, t target) error {
	switch dest := stmt.Dest.(type) {
	case map[string]any:
		fillMap(dest, t)
		return nil
	case *map[string]any:
		fillMap(*dest, t)
		return nil
	case []map[string]any:
		for _, m := range dest {
			fillMap(m, t)
		}
		return nil
	case *[]map[string]any:
		for _, m := range *dest {
			fillMap(m, t)
		}
		return nil
	}

	if t.field == nil || !stmt.ReflectValue.IsValid() {
		return nil
	}

	rv := reflect.Indirect(stmt.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if err := fillStruct(stmt, t, reflect.Indirect(rv.Index(i))); err != nil {
				return err
			}
		}
	case reflect.Struct:
		return fillStruct(stmt, t, rv)
	}
	return nil
}

func fillStruct(stmt *gorm.Statement, t target, rv reflect.Value) error {
	if rv.Kind() != reflect.Struct {
		return nil
	}
	ctx := stmtContext(stmt)
	if v, zero := t.field.ValueOf(ctx, rv); !zero && !blank(v) {
		return nil
	}
	if t.field.FieldType.Kind() == reflect.Ptr {
		tenant := t.res.Tenant
		return t.field.Set(ctx, rv, &tenant)
	}
	return t.field.Set(ctx, rv, t.res.Tenant)
}

// fillMap accepts the field under its Go name or its column name.
func fillMap(m map[string]any, t target) {
	if m == nil {
		return
	}
	keys := []string{t.column}
	if t.field != nil && t.field.Name != t.column {
		keys = append(keys, t.field.Name)
	}
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if !blank(v) {
			return
		}
		m[k] = t.res.Tenant
		return
	}
	m[t.column] = t.res.Tenant
}

func blank(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case *string:
		return s == nil || *s == ""
	}
	return false
}
