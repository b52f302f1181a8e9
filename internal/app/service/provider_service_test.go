package service

import (
	"context"
	"testing"
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/internal/db"
	"github.com/nimoapp/nimo-backend/pkg/oauth/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGoogleClient struct {
	info *google.UserInfo
	err  error
}

func (f *fakeGoogleClient) LoginURL(state string) string {
	return "https://accounts.google.com/o/oauth2/v2/auth?state=" + state
}

func (f *fakeGoogleClient) ExchangeCode(ctx context.Context, code string) (*google.UserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func setupProviderServiceTest(t *testing.T) (ProviderService, AuthService, *fakeGoogleClient, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	sessionRepo := repository.NewSessionRepository(testDB)
	authService := NewAuthService(userRepo, "test-jwt-secret", 7*24*time.Hour, testDB)
	googleClient := &fakeGoogleClient{}

	svc := NewProviderService(
		userRepo, sessionRepo, authService, googleClient,
		"test-session-secret", 30*24*time.Hour,
	)
	return svc, authService, googleClient, testDB
}

func TestProviderService_LoginWithCredentials(t *testing.T) {
	svc, authService, _, _ := setupProviderServiceTest(t)

	registered, _, err := authService.Register(RegisterInput{
		Email:    "sari@example.com",
		Password: "password123",
		Name:     "Ibu Sari",
		Phone:    "0812-3456-7890",
	})
	require.NoError(t, err)

	user, token, err := svc.LoginWithCredentials("sari@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	claims, err := svc.GetSession(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "sari@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "0812-3456-7890", claims.PhoneNumber)
	assert.Nil(t, claims.UmkmProfileStatus)

	_, _, err = svc.LoginWithCredentials("sari@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProviderService_ClaimsStaleUntilRefresh(t *testing.T) {
	svc, authService, _, testDB := setupProviderServiceTest(t)

	user, _, err := authService.Register(RegisterInput{
		Email:        "owner@example.com",
		Password:     "password123",
		Name:         "Pak Budi",
		AsUmkmOwner:  true,
		BusinessName: "Warung Budi",
	})
	require.NoError(t, err)

	_, token, err := svc.LoginWithCredentials("owner@example.com", "password123")
	require.NoError(t, err)

	// Admin approves after the session was minted.
	require.NoError(t, testDB.Model(&model.UmkmProfile{}).
		Where("user_id = ?", user.ID).
		Update("is_verified", true).Error)
	require.NoError(t, testDB.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("role", model.RoleUmkmOwner).Error)

	// The embedded claims still show the state at mint time.
	claims, err := svc.GetSession(token)
	require.NoError(t, err)
	assert.Equal(t, "customer", claims.Role)
	require.NotNil(t, claims.UmkmProfileStatus)
	assert.Equal(t, model.UmkmStatusPending, *claims.UmkmProfileStatus)

	// Refresh re-reads the database under the same session id.
	newToken, refreshed, err := svc.RefreshSession(token)
	require.NoError(t, err)
	assert.NotEmpty(t, newToken)
	assert.Equal(t, claims.SessionID, refreshed.SessionID)
	assert.Equal(t, "umkm_owner", refreshed.Role)
	require.NotNil(t, refreshed.UmkmProfileStatus)
	assert.Equal(t, model.UmkmStatusVerified, *refreshed.UmkmProfileStatus)
}

func TestProviderService_LogoutKillsSession(t *testing.T) {
	svc, authService, _, _ := setupProviderServiceTest(t)

	_, _, err := authService.Register(RegisterInput{
		Email:    "sari@example.com",
		Password: "password123",
		Name:     "Ibu Sari",
	})
	require.NoError(t, err)

	_, token, err := svc.LoginWithCredentials("sari@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(token))

	// The token still verifies cryptographically, but the backing row is gone.
	claims, err := svc.GetSession(token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, claims)

	// Logging out an unreadable token is a no-op.
	assert.NoError(t, svc.Logout("garbage-token"))
}

func TestProviderService_ExpiredSessionRow(t *testing.T) {
	svc, authService, _, testDB := setupProviderServiceTest(t)

	_, _, err := authService.Register(RegisterInput{
		Email:    "sari@example.com",
		Password: "password123",
		Name:     "Ibu Sari",
	})
	require.NoError(t, err)

	_, token, err := svc.LoginWithCredentials("sari@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.ProviderSession{}).
		Where("1 = 1").
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	claims, err := svc.GetSession(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Nil(t, claims)
}

func TestProviderService_GoogleCallbackProvisionsUser(t *testing.T) {
	svc, _, googleClient, testDB := setupProviderServiceTest(t)

	googleClient.info = &google.UserInfo{
		Sub:     "google-sub-123",
		Email:   "baru@example.com",
		Name:    "Pengguna Baru",
		Picture: "https://example.com/p.jpg",
	}

	user, token, err := svc.HandleGoogleCallback(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "baru@example.com", user.Email)
	assert.Equal(t, model.RoleCustomer, user.Role)
	assert.Nil(t, user.PasswordHash)
	assert.NotEmpty(t, token)

	// Second sign-in reuses the account.
	again, _, err := svc.HandleGoogleCallback(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	require.NoError(t, testDB.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProviderService_GoogleLoginURL(t *testing.T) {
	svc, _, _, _ := setupProviderServiceTest(t)

	url, state, err := svc.GoogleLoginURL()
	require.NoError(t, err)
	assert.NotEmpty(t, state)
	assert.Contains(t, url, state)
}
