package authgate_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-authgate"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockConfig implements authgate.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAuthScheme() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

// MockTokenVerifier implements authgate.TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(tokenString string) (string, error) {
	args := m.Called(tokenString)
	return args.String(0), args.Error(1)
}

// MockSubjectResolver implements authgate.SubjectResolver
type MockSubjectResolver struct {
	mock.Mock
}

func (m *MockSubjectResolver) Resolve(ctx context.Context, subject string) (*authgate.Principal, error) {
	args := m.Called(ctx, subject)
	p, _ := args.Get(0).(*authgate.Principal)
	return p, args.Error(1)
}

// MockAccountStore implements authgate.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) FindBySubject(ctx context.Context, subject string) (*authgate.Principal, error) {
	args := m.Called(ctx, subject)
	p, _ := args.Get(0).(*authgate.Principal)
	return p, args.Error(1)
}

const testSigningKey = "0123456789abcdef0123456789abcdef"

func newMockConfig(ttl time.Duration) *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return(testSigningKey)
	mockConfig.On("GetTokenTTL").Return(ttl)
	mockConfig.On("GetIssuer").Return("authgate-test")
	mockConfig.On("GetAuthScheme").Return("Bearer")
	mockConfig.On("GetContextKey").Return("security")
	return mockConfig
}

func newTokenService(t *testing.T, ttl time.Duration, opts ...authgate.TokenServiceOption) *authgate.TokenService {
	t.Helper()
	ts, err := authgate.NewTokenService(newMockConfig(ttl), opts...)
	require.NoError(t, err)
	return ts
}
