package authgate

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidInput       = "INVALID_INPUT"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodePrincipalNotFound  = "PRINCIPAL_NOT_FOUND"
	TextCodeAccountDisabled    = "ACCOUNT_DISABLED"
	TextCodeSigningKeyTooShort = "SIGNING_KEY_TOO_SHORT"
	TextCodeInvalidTokenTTL    = "INVALID_TOKEN_TTL"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeAccountExists      = "ACCOUNT_EXISTS"
	TextCodeInvalidRole        = "INVALID_ROLE"
	TextCodeInvalidRule        = "INVALID_RULE"
	TextCodeUnauthenticated    = "UNAUTHENTICATED"
	TextCodeForbidden          = "FORBIDDEN"
)

// ErrInvalidInput is returned when a token is requested for a blank subject
var ErrInvalidInput = errors.New("subject must not be blank", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidInput).
	WithCode(errors.CodeBadRequest)

// ErrTokenMalformed covers unparsable tokens and signature mismatches
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when now >= exp
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrPrincipalNotFound no account matches the token subject
var ErrPrincipalNotFound = errors.New("principal not found", errors.CategoryNotFound).
	WithTextCode(TextCodePrincipalNotFound).
	WithCode(errors.CodeNotFound)

// ErrAccountDisabled is the only authentication failure surfaced to the client
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeForbidden)

// ErrSigningKeyTooShort HS256 needs at least MinSigningKeyLength bytes of secret
var ErrSigningKeyTooShort = errors.New("signing key is too short", errors.CategoryValidation).
	WithTextCode(TextCodeSigningKeyTooShort).
	WithCode(errors.CodeInternal)

// ErrInvalidTokenTTL token lifetime must be positive
var ErrInvalidTokenTTL = errors.New("token TTL must be greater than zero", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidTokenTTL).
	WithCode(errors.CodeInternal)

// ErrInvalidCredentials unknown email or wrong password
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrAccountExists email or username already taken
var ErrAccountExists = errors.New("account already exists", errors.CategoryConflict).
	WithTextCode(TextCodeAccountExists).
	WithCode(errors.CodeConflict)

// ErrInvalidRole role outside of the USER/ADMIN set
var ErrInvalidRole = errors.New("unknown or invalid role", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidRole).
	WithCode(errors.CodeBadRequest)

// ErrInvalidRule a rule could not be compiled
var ErrInvalidRule = errors.New("invalid authorization rule", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidRule).
	WithCode(errors.CodeInternal)

// ErrUnauthenticated a route or resource needs a principal
var ErrUnauthenticated = errors.New("Unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden the principal lacks the required role or ownership
var ErrForbidden = errors.New("Forbidden", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// IsTokenExpired will check for expired tokens
func IsTokenExpired(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenMalformed will check for malformed or tampered tokens
func IsTokenMalformed(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

// IsPrincipalNotFound reports a subject without account
func IsPrincipalNotFound(err error) bool {
	return hasTextCode(err, TextCodePrincipalNotFound)
}

// IsAccountDisabled reports a disabled account rejection
func IsAccountDisabled(err error) bool {
	return hasTextCode(err, TextCodeAccountDisabled)
}

// IsInvalidCredentials reports a failed login
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

// IsAccountExists reports a registration conflict
func IsAccountExists(err error) bool {
	return hasTextCode(err, TextCodeAccountExists)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
