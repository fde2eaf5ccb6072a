package authgate

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// MinSigningKeyLength is the minimum HS256 secret size in bytes
const MinSigningKeyLength = 32

// TokenService signs and verifies compact HS256 tokens. It holds no
// mutable state after construction and is safe for concurrent use.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
	logger     Logger
	parser     *jwt.Parser
}

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithClock overrides time.Now, used to evaluate issuance and expiry
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a TokenService from configuration. A short
// signing key or a non positive TTL is a configuration error.
func NewTokenService(cfg Config, opts ...TokenServiceOption) (*TokenService, error) {
	key := cfg.GetSigningKey()
	if len(key) < MinSigningKeyLength {
		return nil, ErrSigningKeyTooShort.Clone().WithMetadata(map[string]any{
			"min_length": MinSigningKeyLength,
			"length":     len(key),
		})
	}

	ttl := cfg.GetTokenTTL()
	if ttl <= 0 {
		return nil, ErrInvalidTokenTTL.Clone().WithMetadata(map[string]any{
			"ttl": ttl.String(),
		})
	}

	ts := &TokenService{
		signingKey: []byte(key),
		ttl:        ttl,
		issuer:     cfg.GetIssuer(),
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	ts.parser = jwt.NewParser(parserOptions...)

	return ts, nil
}

// TTL is the configured token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Issue signs a token for subject. Both timestamps are truncated to
// jwt.TimePrecision, the precision of the encoded claims, so ExpiresAt is
// the expiry enforced by Verify. A TTL below that precision yields a token
// that is already expired.
func (ts *TokenService) Issue(subject string) (Token, error) {
	if strings.TrimSpace(subject) == "" {
		return Token{}, ErrInvalidInput.Clone()
	}

	issuedAt := ts.now().Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.Add(ts.ttl.Truncate(jwt.TimePrecision))

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.signingKey)
	if err != nil {
		return Token{}, errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return Token{
		Value:     signed,
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks signature and expiry and returns the embedded subject.
// Expired tokens fail with ErrTokenExpired, everything else with
// ErrTokenMalformed.
func (ts *TokenService) Verify(tokenString string) (string, error) {
	claims := &TokenClaims{}
	token, err := ts.parser.ParseWithClaims(tokenString, claims, ts.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired.Clone()
		}
		return "", errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	if !token.Valid || strings.TrimSpace(claims.SubjectClaim()) == "" {
		return "", ErrTokenMalformed.Clone()
	}

	return claims.SubjectClaim(), nil
}

func (ts *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		ts.logger.Debug("token verify rejected signing method", "alg", t.Header["alg"])
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return ts.signingKey, nil
}
