package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		email  string
		role   string
	}{
		{
			name:   "Customer token",
			userID: 1,
			email:  "test@example.com",
			role:   "customer",
		},
		{
			name:   "Admin token",
			userID: 2,
			email:  "admin@example.com",
			role:   "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.userID, tt.email, tt.role, testSecret, time.Hour)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := ValidateToken(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
		})
	}
}

func TestValidateToken(t *testing.T) {
	token, err := GenerateToken(123, "test@example.com", "customer", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{
			name:    "Valid token",
			token:   token,
			secret:  testSecret,
			wantErr: nil,
		},
		{
			name:    "Invalid secret",
			token:   token,
			secret:  "wrong-secret",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Invalid token format",
			token:   "invalid.token.format",
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Empty token",
			token:   "",
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				require.NotNil(t, claims)
				assert.Equal(t, uint(123), claims.UserID)
			}
		})
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateToken(1, "test@example.com", "customer", testSecret, time.Nanosecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	claims, err := ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestSessionToken(t *testing.T) {
	status := "verified"
	in := SessionClaims{
		SessionID:         "abc123",
		UserID:            42,
		Email:             "owner@example.com",
		Name:              "Ibu Sari",
		Role:              "umkm_owner",
		PhoneNumber:       "0812-3456-7890",
		UmkmProfileStatus: &status,
	}

	token, err := GenerateSessionToken(in, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, in.SessionID, claims.SessionID)
	assert.Equal(t, in.UserID, claims.UserID)
	assert.Equal(t, in.Email, claims.Email)
	assert.Equal(t, in.Role, claims.Role)
	require.NotNil(t, claims.UmkmProfileStatus)
	assert.Equal(t, "verified", *claims.UmkmProfileStatus)
	assert.NotNil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
	assert.True(t, claims.IssuedAt.Before(claims.ExpiresAt.Time))
}

func TestSessionTokenNilStatus(t *testing.T) {
	token, err := GenerateSessionToken(SessionClaims{
		SessionID: "def456",
		UserID:    7,
		Email:     "buyer@example.com",
		Role:      "customer",
	}, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Nil(t, claims.UmkmProfileStatus)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken(SessionClaims{
		SessionID: "ghi789",
		UserID:    7,
	}, "secret1", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token, "secret2")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestBearerTokenRejectedAsSessionToken(t *testing.T) {
	// Both token kinds are HS256 JWTs; separate secrets keep them from
	// being interchangeable.
	token, err := GenerateToken(1, "test@example.com", "customer", "jwt-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token, "session-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
