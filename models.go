package authgate

import (
	"strings"
	"time"
)

// Role is the closed set of account roles
type Role string

const (
	// RoleUser is the default role for registered accounts
	RoleUser Role = "USER"
	// RoleAdmin can manage accounts and bypasses ownership checks
	RoleAdmin Role = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole safely parses a string into a Role. Matching ignores case and
// an optional ROLE_ prefix.
func ParseRole(s string) (Role, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "ROLE_")
	role := Role(v)
	if !role.IsValid() {
		return "", ErrInvalidRole.Clone().WithMetadata(map[string]any{"role": s})
	}
	return role, nil
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// Principal is the authenticated identity attached to a request
type Principal struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	Enabled     bool   `json:"enabled"`
}

// IsAdmin reports whether the principal holds the ADMIN role
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// HasRole reports whether the principal holds role r
func (p *Principal) HasRole(r Role) bool {
	return p != nil && p.Role == r
}

// Token is a signed, time bounded assertion of a subject
type Token struct {
	Value     string    `json:"token"`
	Subject   string    `json:"subject"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TTL is the lifetime the token was issued with
func (t Token) TTL() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}
