package scoping

import (
	"maps"
	"reflect"
)

// In matches a field equal to any of its values. A nil element matches a
// missing or nil field.
type In []any

// Where is a conjunction of field constraints. A nil value means IS NULL,
// an In value means membership, anything else means equality.
type Where map[string]any

// Match reports whether row satisfies every constraint.
func (w Where) Match(row map[string]any) bool {
	for field, want := range w {
		if !matchValue(row[field], want) {
			return false
		}
	}
	return true
}

func (w Where) clone() Where {
	if w == nil {
		return Where{}
	}
	return maps.Clone(w)
}

// constrains reports whether w pins field to a value. A nil or empty string
// value does not count.
func (w Where) constrains(field string) bool {
	v, ok := w[field]
	return ok && !blank(v)
}

func blank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

func matchValue(got, want any) bool {
	if in, ok := want.(In); ok {
		for _, v := range in {
			if matchValue(got, v) {
				return true
			}
		}
		return false
	}
	if want == nil {
		return got == nil
	}
	return reflect.DeepEqual(got, want)
}

// Query describes a read, bulk update or bulk delete against one entity.
// Rows match when they satisfy Where and, if Or is non-empty, at least one
// of its alternatives. Include lists eagerly loaded related entities.
type Query struct {
	Entity         string
	Where          Where
	Or             []Where
	Include        []*Query
	DisableTenancy bool
}

// Match evaluates the query's own constraints against row.
// Include is not evaluated.
func (q *Query) Match(row map[string]any) bool {
	if q == nil {
		return true
	}
	if !q.Where.Match(row) {
		return false
	}
	if len(q.Or) == 0 {
		return true
	}
	for _, alt := range q.Or {
		if alt.Match(row) {
			return true
		}
	}
	return false
}

// Filter returns the rows that match q.
func (q *Query) Filter(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if q.Match(row) {
			out = append(out, row)
		}
	}
	return out
}
