package authgate

// SecurityContext is the per request authentication result. The zero
// value is anonymous. It is owned by a single request and must not be
// retained after the request completes.
type SecurityContext struct {
	principal *Principal
}

// Anonymous returns an empty context
func Anonymous() SecurityContext {
	return SecurityContext{}
}

// NewSecurityContext returns a context holding p
func NewSecurityContext(p *Principal) SecurityContext {
	return SecurityContext{principal: p}
}

// Principal returns the authenticated principal, if any
func (sc SecurityContext) Principal() (*Principal, bool) {
	return sc.principal, sc.principal != nil
}

// IsAuthenticated reports whether a principal is present
func (sc SecurityContext) IsAuthenticated() bool {
	return sc.principal != nil
}

// IsAnonymous reports whether no principal is present
func (sc SecurityContext) IsAnonymous() bool {
	return sc.principal == nil
}

// PrincipalID returns the principal id or an empty string
func (sc SecurityContext) PrincipalID() string {
	if sc.principal == nil {
		return ""
	}
	return sc.principal.ID
}
