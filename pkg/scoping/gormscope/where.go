package gormscope

import (
	"regexp"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// constrain adds the tenant condition unless the WHERE clause already
// restricts the tenant column.
func constrain(stmt *gorm.Statement, t target) {
	c, ok := stmt.Clauses["WHERE"]
	if ok {
		if where, ok := c.Expression.(clause.Where); ok {
			if constrainsAll(where.Exprs, t.column) {
				return
			}
			// A lone OR would otherwise bind to the appended condition.
			for _, expr := range where.Exprs {
				if or, ok := expr.(clause.OrConditions); ok && len(or.Exprs) == 1 {
					where.Exprs = []clause.Expression{clause.And(where.Exprs...)}
					c.Expression = where
					stmt.Clauses["WHERE"] = c
					break
				}
			}
		}
	}

	col := clause.Column{Table: clause.CurrentTable, Name: t.column}
	var cond clause.Expression = clause.Eq{Column: col, Value: t.res.Tenant}
	if t.res.AllowMissing {
		cond = clause.Or(cond, clause.Eq{Column: col, Value: nil})
	}
	stmt.AddClause(clause.Where{Exprs: []clause.Expression{cond}})
}

// constrainsAll reports whether a conjunction of exprs restricts column.
// Lone OR entries join the chain with OR, so any of them leaves it open.
func constrainsAll(exprs []clause.Expression, column string) bool {
	found := false
	for _, expr := range exprs {
		if or, ok := expr.(clause.OrConditions); ok && len(or.Exprs) == 1 {
			return false
		}
		if constrains(expr, column) {
			found = true
		}
	}
	return found
}

func constrains(expr clause.Expression, column string) bool {
	switch e := expr.(type) {
	case clause.Eq:
		return sameColumn(e.Column, column) && !blank(e.Value)
	case clause.IN:
		return sameColumn(e.Column, column)
	case clause.Expr:
		return mentions(e.SQL, column)
	case clause.NamedExpr:
		return mentions(e.SQL, column)
	case clause.AndConditions:
		return constrainsAll(e.Exprs, column)
	case clause.OrConditions:
		if len(e.Exprs) == 0 {
			return false
		}
		for _, sub := range e.Exprs {
			if !constrains(sub, column) {
				return false
			}
		}
		return true
	}
	return false
}

func sameColumn(c any, column string) bool {
	switch v := c.(type) {
	case string:
		return bareName(v) == column
	case clause.Column:
		return !v.Raw && bareName(v.Name) == column
	}
	return false
}

func bareName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.Trim(name, "`\"[]")
}

// patterns holds one compiled word-boundary pattern per tenant column.
var patterns sync.Map

func mentions(sql, column string) bool {
	return columnPattern(column).MatchString(sql)
}

func columnPattern(column string) *regexp.Regexp {
	if re, ok := patterns.Load(column); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(^|[^\w])` + regexp.QuoteMeta(column) + `([^\w]|$)`)
	actual, _ := patterns.LoadOrStore(column, re)
	return actual.(*regexp.Regexp)
}
