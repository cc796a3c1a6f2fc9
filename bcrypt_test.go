package auth_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-loan-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "Valid password",
			password: "secret1",
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  auth.ErrNoEmptyString,
		},
		{
			name:     "Password at bcrypt limit",
			password: strings.Repeat("p", auth.MaxPasswordBytes),
		},
		{
			name:     "Password over bcrypt limit",
			password: strings.Repeat("p", auth.MaxPasswordBytes+1),
			wantErr:  auth.ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPassword(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, auth.PasswordHashCost, cost)

			assert.NoError(t, auth.ComparePasswordAndHash(tt.password, hash))
		})
	}
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	first, err := auth.HashPassword("pass123")
	require.NoError(t, err)
	second, err := auth.HashPassword("pass123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := auth.HashPassword(password)
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
			wantErr:  false,
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
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.hash == hash {
					assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	hasher := auth.NewBcryptHasher()

	hash, err := hasher.HashPassword("pass123")
	require.NoError(t, err)

	assert.NoError(t, hasher.ComparePasswordAndHash("pass123", hash))
	assert.ErrorIs(t, hasher.ComparePasswordAndHash("wrongpw", hash), auth.ErrMismatchedHashAndPassword)
}
