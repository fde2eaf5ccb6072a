package server

import (
	"github.com/goliatone/go-authgate"
)

// Rules is the platform route table, evaluated top to bottom. Anything
// not listed is denied.
func Rules() []authgate.Rule {
	return []authgate.Rule{
		{Method: "*", Path: "/api/auth/**", Requirement: authgate.Public()},
		{Method: "GET", Path: "/health", Requirement: authgate.Public()},
		{Method: "GET", Path: "/api/profiles/me", Requirement: authgate.Authenticated()},
		{Method: "GET", Path: "/api/profiles", Requirement: authgate.Public()},
		{Method: "GET", Path: "/api/profiles/{id}", Requirement: authgate.Public()},
		{Method: "PUT", Path: "/api/profiles/{id}", Requirement: authgate.OwnerOrAdmin()},
		{Method: "GET", Path: "/api/posts", Requirement: authgate.Public()},
		{Method: "GET", Path: "/api/posts/{id}", Requirement: authgate.Public()},
		{Method: "POST", Path: "/api/posts", Requirement: authgate.Authenticated()},
		{Method: "PUT", Path: "/api/posts/{id}", Requirement: authgate.OwnerOrAdmin()},
		{Method: "DELETE", Path: "/api/posts/{id}", Requirement: authgate.OwnerOrAdmin()},
		{Method: "*", Path: "/api/admin/**", Requirement: authgate.RoleRequired(authgate.RoleAdmin)},
		{Method: "GET", Path: "/metrics", Requirement: authgate.RoleRequired(authgate.RoleAdmin)},
		{Method: "*", Path: "/api/**", Requirement: authgate.Authenticated()},
	}
}

// NewPolicy compiles Rules
func NewPolicy() (*authgate.Policy, error) {
	return authgate.NewPolicy(Rules()...)
}
