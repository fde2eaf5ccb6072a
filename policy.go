package authgate

// Decision is the outcome of an authorization check
type Decision int

const (
	// DenyUnauthenticated the route needs a principal and there is none
	DenyUnauthenticated Decision = iota
	// DenyForbidden a principal is present but lacks the requirement
	DenyForbidden
	// Allow grants access
	Allow
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	default:
		return "unknown"
	}
}

// Err returns nil for Allow and the matching denial error otherwise
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return ErrUnauthenticated.Clone()
	default:
		return ErrForbidden.Clone()
	}
}

// RequirementKind is the access level a rule demands
type RequirementKind int

const (
	RequirePublic RequirementKind = iota
	RequireAuthenticated
	RequireRole
	RequireOwnerOrAdmin
)

func (k RequirementKind) String() string {
	switch k {
	case RequirePublic:
		return "PUBLIC"
	case RequireAuthenticated:
		return "AUTHENTICATED"
	case RequireRole:
		return "ROLE"
	case RequireOwnerOrAdmin:
		return "OWNER_OR_ADMIN"
	default:
		return "UNKNOWN"
	}
}

// Requirement is the access requirement attached to a rule
type Requirement struct {
	Kind RequirementKind
	Role Role
}

// Public grants access to everyone
func Public() Requirement {
	return Requirement{Kind: RequirePublic}
}

// Authenticated needs any principal
func Authenticated() Requirement {
	return Requirement{Kind: RequireAuthenticated}
}

// RoleRequired needs a principal holding role r
func RoleRequired(r Role) Requirement {
	return Requirement{Kind: RequireRole, Role: r}
}

// OwnerOrAdmin needs a principal at the route stage. Ownership itself is
// checked by the handler through Policy.AuthorizeOwner once the resource
// owner is known.
func OwnerOrAdmin() Requirement {
	return Requirement{Kind: RequireOwnerOrAdmin}
}

func (r Requirement) String() string {
	if r.Kind == RequireRole {
		return "ROLE(" + r.Role.String() + ")"
	}
	return r.Kind.String()
}

// Rule maps a method and path pattern to a requirement. An empty Method
// or "*" matches every method.
type Rule struct {
	Method      string
	Path        string
	Requirement Requirement
}

type compiledRule struct {
	rule    Rule
	pattern *pathPattern
}

// Policy evaluates an ordered rule table. It is immutable once built.
type Policy struct {
	rules []compiledRule
}

// NewPolicy compiles rules in declaration order. A malformed pattern or
// an unknown role fails here, at startup.
func NewPolicy(rules ...Rule) (*Policy, error) {
	p := &Policy{rules: make([]compiledRule, 0, len(rules))}
	for i, rule := range rules {
		if rule.Requirement.Kind == RequireRole && !rule.Requirement.Role.IsValid() {
			return nil, ErrInvalidRule.Clone().WithMetadata(map[string]any{
				"index": i,
				"path":  rule.Path,
				"role":  rule.Requirement.Role.String(),
			})
		}
		pattern, err := compilePathPattern(rule.Path)
		if err != nil {
			return nil, err
		}
		p.rules = append(p.rules, compiledRule{rule: rule, pattern: pattern})
	}
	return p, nil
}

// Rules returns a copy of the rule table
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	for i, cr := range p.rules {
		out[i] = cr.rule
	}
	return out
}

// Match returns the first rule matching method and path
func (p *Policy) Match(method, path string) (Rule, bool) {
	for _, cr := range p.rules {
		if methodMatches(cr.rule.Method, method) && cr.pattern.Match(path) {
			return cr.rule, true
		}
	}
	return Rule{}, false
}

// Authorize evaluates the first matching rule. When nothing matches the
// request is denied: anonymous callers get DenyUnauthenticated and
// authenticated callers DenyForbidden.
func (p *Policy) Authorize(method, path string, sc SecurityContext) Decision {
	rule, ok := p.Match(method, path)
	if !ok {
		return denyFor(sc)
	}
	return evaluate(rule.Requirement, sc)
}

// AuthorizeOwner grants access when the principal owns the resource or is
// an admin. Anonymous callers are unauthenticated.
func (p *Policy) AuthorizeOwner(sc SecurityContext, ownerID string) Decision {
	return AuthorizeOwner(sc, ownerID)
}

// AuthorizeOwner is the ownership check used by handlers
func AuthorizeOwner(sc SecurityContext, ownerID string) Decision {
	principal, ok := sc.Principal()
	if !ok {
		return DenyUnauthenticated
	}
	if principal.IsAdmin() {
		return Allow
	}
	if ownerID != "" && principal.ID == ownerID {
		return Allow
	}
	return DenyForbidden
}

func evaluate(req Requirement, sc SecurityContext) Decision {
	switch req.Kind {
	case RequirePublic:
		return Allow
	case RequireAuthenticated, RequireOwnerOrAdmin:
		if sc.IsAnonymous() {
			return DenyUnauthenticated
		}
		return Allow
	case RequireRole:
		principal, ok := sc.Principal()
		if !ok {
			return DenyUnauthenticated
		}
		if principal.HasRole(req.Role) {
			return Allow
		}
		return DenyForbidden
	default:
		return denyFor(sc)
	}
}

func denyFor(sc SecurityContext) Decision {
	if sc.IsAnonymous() {
		return DenyUnauthenticated
	}
	return DenyForbidden
}
