package authgate

import (
	"context"
)

var securityCtxKey = &contextKey{"security"}

type contextKey struct {
	name string
}

// WithSecurityContext sets the SecurityContext in the given context
func WithSecurityContext(ctx context.Context, sc SecurityContext) context.Context {
	return context.WithValue(ctx, securityCtxKey, sc)
}

// SecurityContextFrom finds the SecurityContext in ctx. A context without
// one is anonymous.
func SecurityContextFrom(ctx context.Context) SecurityContext {
	if ctx == nil {
		return Anonymous()
	}
	sc, ok := ctx.Value(securityCtxKey).(SecurityContext)
	if !ok {
		return Anonymous()
	}
	return sc
}

// PrincipalFromContext returns the principal stored in ctx, if any
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	return SecurityContextFrom(ctx).Principal()
}
