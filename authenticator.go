package authgate

import (
	"context"
	"strings"
)

// DefaultAuthScheme is the expected credential scheme
const DefaultAuthScheme = "Bearer"

// TokenVerifier verifies a raw token and returns its subject
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// SubjectResolver resolves a subject to a principal
type SubjectResolver interface {
	Resolve(ctx context.Context, subject string) (*Principal, error)
}

// RequestAuthenticator turns the raw Authorization header of a request
// into a SecurityContext.
type RequestAuthenticator struct {
	verifier TokenVerifier
	resolver SubjectResolver
	prefix   string
	logger   Logger
}

// NewRequestAuthenticator returns an authenticator using the Bearer scheme
func NewRequestAuthenticator(verifier TokenVerifier, resolver SubjectResolver) *RequestAuthenticator {
	return &RequestAuthenticator{
		verifier: verifier,
		resolver: resolver,
		prefix:   DefaultAuthScheme + " ",
		logger:   defLogger{},
	}
}

// WithAuthScheme overrides the credential scheme. The header must start
// with the scheme followed by a single space, compared case sensitively.
func (a *RequestAuthenticator) WithAuthScheme(scheme string) *RequestAuthenticator {
	scheme = strings.TrimSpace(scheme)
	if scheme != "" {
		a.prefix = scheme + " "
	}
	return a
}

// WithLogger sets the logger
func (a *RequestAuthenticator) WithLogger(logger Logger) *RequestAuthenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Authenticate resolves rawCredential. An empty header, a foreign scheme,
// a token that fails verification and a subject without account all
// yield an anonymous context and no error. A disabled account is the only
// failure: it returns ErrAccountDisabled.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, rawCredential string) (SecurityContext, error) {
	if rawCredential == "" || !strings.HasPrefix(rawCredential, a.prefix) {
		return Anonymous(), nil
	}

	tokenString := rawCredential[len(a.prefix):]

	subject, err := a.verifier.Verify(tokenString)
	if err != nil {
		a.logger.Debug("credential rejected, continuing as anonymous", "reason", reasonOf(err))
		return Anonymous(), nil
	}

	principal, err := a.resolver.Resolve(ctx, subject)
	if err != nil || principal == nil {
		a.logger.Debug("principal not resolved, continuing as anonymous", "reason", reasonOf(err))
		return Anonymous(), nil
	}

	if !principal.Enabled {
		a.logger.Info("rejected credential of disabled account", "principal_id", principal.ID)
		return Anonymous(), ErrAccountDisabled.Clone()
	}

	return NewSecurityContext(principal), nil
}

func reasonOf(err error) string {
	switch {
	case err == nil:
		return TextCodePrincipalNotFound
	case IsTokenExpired(err):
		return TextCodeTokenExpired
	case IsTokenMalformed(err):
		return TextCodeTokenMalformed
	case IsPrincipalNotFound(err):
		return TextCodePrincipalNotFound
	default:
		return "lookup_error"
	}
}
