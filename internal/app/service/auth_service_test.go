package service

import (
	"testing"
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(userRepo, "test-jwt-secret", 7*24*time.Hour, testDB)

	return authService, testDB
}

func TestAuthService_Register(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	username := "warung_sari"

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name: "Valid registration",
			input: RegisterInput{
				Email:    "sari@example.com",
				Username: username,
				Password: "password123",
				Name:     "Ibu Sari",
				Phone:    "0812-3456-7890",
			},
			wantErr: nil,
		},
		{
			name: "Duplicate email",
			input: RegisterInput{
				Email:    "sari@example.com",
				Password: "password456",
				Name:     "Another User",
			},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name: "Duplicate username",
			input: RegisterInput{
				Email:    "other@example.com",
				Username: username,
				Password: "password456",
				Name:     "Other User",
			},
			wantErr: ErrUsernameAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := authService.Register(tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.input.Email, user.Email)
				assert.Equal(t, tt.input.Name, user.Name)
				assert.Equal(t, model.RoleCustomer, user.Role)
			}
		})
	}
}

func TestAuthService_RegisterOwnerTrack(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	user, token, err := authService.Register(RegisterInput{
		Email:        "owner@example.com",
		Password:     "password123",
		Name:         "Pak Budi",
		AsUmkmOwner:  true,
		BusinessName: "Warung Budi",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// The role stays customer until an admin approves; the profile exists
	// unverified.
	assert.Equal(t, model.RoleCustomer, user.Role)

	var profile model.UmkmProfile
	require.NoError(t, testDB.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Warung Budi", profile.BusinessName)
	assert.False(t, profile.IsVerified)
	assert.Nil(t, profile.VerifiedAt)
}

func TestAuthService_Login(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register(RegisterInput{
		Email:    "sari@example.com",
		Username: "warung_sari",
		Password: "password123",
		Name:     "Ibu Sari",
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{
			name:       "Login by email",
			identifier: "sari@example.com",
			password:   "password123",
			wantErr:    nil,
		},
		{
			name:       "Login by username",
			identifier: "warung_sari",
			password:   "password123",
			wantErr:    nil,
		},
		{
			name:       "Wrong password",
			identifier: "sari@example.com",
			password:   "wrongpassword",
			wantErr:    ErrInvalidCredentials,
		},
		{
			name:       "Unknown identifier",
			identifier: "notfound@example.com",
			password:   "password123",
			wantErr:    ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := authService.Login(tt.identifier, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.NotEmpty(t, token)
				assert.Equal(t, "sari@example.com", user.Email)
			}
		})
	}
}

func TestAuthService_LoginPasswordlessAccount(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	// OAuth-provisioned account: no password hash. Credential login must fail
	// with the same error as a wrong password.
	user := &model.User{
		Email: "oauth@example.com",
		Name:  "OAuth User",
		Role:  model.RoleCustomer,
	}
	require.NoError(t, testDB.Create(user).Error)

	got, token, err := authService.Login("oauth@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, got)
	assert.Empty(t, token)
}

func TestAuthService_PasswordSecurity(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	password := "mySecretPassword123"
	user, _, err := authService.Register(RegisterInput{
		Email:    "sari@example.com",
		Password: password,
		Name:     "Ibu Sari",
	})
	require.NoError(t, err)

	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, password, *user.PasswordHash)
	assert.Contains(t, *user.PasswordHash, "$2a$")
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, _, err := authService.Register(RegisterInput{
		Email:    "sari@example.com",
		Password: "password123",
		Name:     "Ibu Sari",
	})
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(user.ID, "Sari Dewi", "0812-9999-8888", "Jl. Melati No. 3")
	require.NoError(t, err)
	assert.Equal(t, "Sari Dewi", updated.Name)
	assert.Equal(t, "0812-9999-8888", updated.Phone)
	assert.Equal(t, "Jl. Melati No. 3", updated.Address)

	_, err = authService.UpdateProfile(9999, "X", "", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
