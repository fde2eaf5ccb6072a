package authgate_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-authgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "Longer than bcrypt accepts",
			password: strings.Repeat("a", 73),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := authgate.HashPasswordWithCost(tt.password, bcrypt.MinCost)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, authgate.TextCodeInvalidInput, textCode(err))
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NoError(t, authgate.ComparePasswordAndHash(tt.password, hash))
		})
	}
}

func TestHashPasswordDefaultCost(t *testing.T) {
	hash, err := authgate.HashPasswordWithCost("Passw0rd!", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, bcrypt.DefaultCost)
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := authgate.HashPasswordWithCost(password, bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Invalid hash",
			password: password,
			hash:     "invalidhash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authgate.ComparePasswordAndHash(tt.password, tt.hash)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, authgate.IsInvalidCredentials(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}
