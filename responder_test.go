package authgate_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func fixedResponder() *authgate.Responder {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	return authgate.NewResponder().
		WithClock(func() time.Time { return now }).
		WithLogger(authgate.NoopLogger())
}

func TestResponderForDecision(t *testing.T) {
	r := fixedResponder()

	body := r.ForDecision(authgate.DenyUnauthenticated, "/api/profiles/me")
	assert.Equal(t, http.StatusUnauthorized, body.Status)
	assert.Equal(t, "Unauthorized", body.Error)
	assert.Equal(t, "Unauthorized", body.Message)
	assert.Equal(t, "/api/profiles/me", body.Path)
	assert.Equal(t, time.UTC, body.Timestamp.Location())
	assert.Equal(t, 10, body.Timestamp.Hour())

	body = r.ForDecision(authgate.DenyForbidden, "/api/admin/users")
	assert.Equal(t, http.StatusForbidden, body.Status)
	assert.Equal(t, "Forbidden", body.Error)
	assert.Equal(t, "Forbidden", body.Message)
	assert.Nil(t, body.Fields)
}

func TestResponderForError(t *testing.T) {
	r := fixedResponder()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"nil", nil, http.StatusInternalServerError, "Internal Server Error"},
		{"plain error", assert.AnError, http.StatusInternalServerError, "Internal Server Error"},
		{"disabled", authgate.ErrAccountDisabled.Clone(), http.StatusForbidden, "Forbidden"},
		{"expired", authgate.ErrTokenExpired.Clone(), http.StatusUnauthorized, "Unauthorized"},
		{"malformed", authgate.ErrTokenMalformed.Clone(), http.StatusUnauthorized, "Unauthorized"},
		{"bad credentials", authgate.ErrInvalidCredentials.Clone(), http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", authgate.ErrForbidden.Clone(), http.StatusForbidden, "Forbidden"},
		{"conflict", authgate.ErrAccountExists.Clone(), http.StatusConflict, "account already exists"},
		{"bad role", authgate.ErrInvalidRole.Clone(), http.StatusBadRequest, "unknown or invalid role"},
		{"not found", errors.New("account not found", errors.CategoryNotFound), http.StatusNotFound, "account not found"},
		{"internal", errors.New("db exploded", errors.CategoryInternal), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := r.ForError(tt.err, "/x")
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, http.StatusText(tt.status), body.Error)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, "/x", body.Path)
		})
	}
}

func TestResponderValidationFields(t *testing.T) {
	r := fixedResponder()

	err := authgate.RegisterRequest{Email: "nope", Username: "ab", Password: "x", Country: "at"}.Validate()
	body := r.ForError(authgate.NewValidationError(err), "/api/auth/register")

	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "username")
	assert.Contains(t, body.Fields, "password")
	assert.Contains(t, body.Fields, "country")
}

func TestResponderSecurityFailuresLookTheSame(t *testing.T) {
	r := fixedResponder()

	expired := r.ForError(authgate.ErrTokenExpired.Clone(), "/p")
	malformed := r.ForError(authgate.ErrTokenMalformed.Clone(), "/p")
	denied := r.ForDecision(authgate.DenyUnauthenticated, "/p")

	assert.Equal(t, denied, expired)
	assert.Equal(t, denied, malformed)
}
