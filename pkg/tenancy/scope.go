package tenancy

import "context"

// Scope is the tenancy decision for one logical operation. Enabled=false
// suspends automatic scoping while keeping the last known tenant.
type Scope struct {
	Tenant  string `json:"tenant"`
	Enabled bool   `json:"enabled"`
}

// contextKey prevents collisions with other packages using context values
type contextKey struct{}

// WithScope returns a copy of ctx carrying s. Scopes are values: installing
// one never changes what the parent context or sibling operations see.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// ScopeFromContext returns the nearest installed scope.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	s, ok := ctx.Value(contextKey{}).(Scope)
	return s, ok
}
