package authgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/health", "/health", true},
		{"/health", "/health/", true},
		{"/health", "/healthz", false},
		{"/api/profiles/{id}", "/api/profiles/42", true},
		{"/api/profiles/{id}", "/api/profiles/42/avatar", false},
		{"/api/profiles/{id}", "/api/profiles", false},
		{"/api/profiles/:id", "/api/profiles/42", true},
		{"/api/profiles/*", "/api/profiles/42", true},
		{"/api/auth/**", "/api/auth", true},
		{"/api/auth/**", "/api/auth/login", true},
		{"/api/auth/**", "/api/auth/a/b/c", true},
		{"/api/auth/**", "/api/authx", false},
		{"/api/**", "/api/admin/users/1/role", true},
		{"/api/**", "/metrics", false},
		{"/**", "/anything/at/all", true},
		{"/**", "/", true},
		{"/", "/", true},
		{"/", "/x", false},
		{"/api/admin/users/{id}/role", "/api/admin/users/7/role", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			p, err := compilePathPattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.path))
		})
	}
}

func TestCompilePathPatternErrors(t *testing.T) {
	for _, pattern := range []string{"", "   ", "api/profiles", "*/profiles"} {
		_, err := compilePathPattern(pattern)
		require.Error(t, err, pattern)
		assert.True(t, hasTextCode(err, TextCodeInvalidRule), pattern)
	}
}

func TestMethodMatches(t *testing.T) {
	assert.True(t, methodMatches("", "DELETE"))
	assert.True(t, methodMatches("*", "PATCH"))
	assert.True(t, methodMatches("GET", "GET"))
	assert.True(t, methodMatches("get", "GET"))
	assert.False(t, methodMatches("GET", "POST"))
	assert.True(t, methodMatches("GET", "HEAD"))
	assert.True(t, methodMatches("get", "head"))
	assert.False(t, methodMatches("HEAD", "GET"))
	assert.False(t, methodMatches("POST", "HEAD"))
}

func TestIsVariableSegment(t *testing.T) {
	assert.True(t, isVariableSegment("{id}"))
	assert.True(t, isVariableSegment(":id"))
	assert.False(t, isVariableSegment("{}"))
	assert.False(t, isVariableSegment(":"))
	assert.False(t, isVariableSegment("profiles"))
}
