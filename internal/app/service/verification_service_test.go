package service

import (
	"sync"
	"testing"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	refreshed []uint
}

func (n *recordingNotifier) NotifySessionRefresh(userID uint) {
	n.refreshed = append(n.refreshed, userID)
}

func setupVerificationServiceTest(t *testing.T) (VerificationService, *recordingNotifier, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	notifier := &recordingNotifier{}
	umkmRepo := repository.NewUmkmRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	svc := NewVerificationService(umkmRepo, userRepo, notifier, testDB)

	return svc, notifier, testDB
}

func createCustomer(t *testing.T, testDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email: email,
		Name:  "Test User",
		Role:  model.RoleCustomer,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func TestVerificationService_Apply(t *testing.T) {
	svc, _, testDB := setupVerificationServiceTest(t)
	user := createCustomer(t, testDB, "owner@example.com")

	profile, err := svc.Apply(user.ID, ApplyInput{
		BusinessName:    "Warung Sari",
		BusinessAddress: "Jl. Kenanga No. 12",
		ContactPhone:    "0812-3456-7890",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.False(t, profile.IsVerified)

	// Applying keeps the role untouched.
	var fresh model.User
	require.NoError(t, testDB.First(&fresh, user.ID).Error)
	assert.Equal(t, model.RoleCustomer, fresh.Role)

	// A second application while one is open is refused.
	_, err = svc.Apply(user.ID, ApplyInput{BusinessName: "Warung Lain"})
	assert.ErrorIs(t, err, ErrUmkmProfileExists)
}

func TestVerificationService_Approve(t *testing.T) {
	svc, notifier, testDB := setupVerificationServiceTest(t)
	user := createCustomer(t, testDB, "owner@example.com")

	profile, err := svc.Apply(user.ID, ApplyInput{BusinessName: "Warung Sari"})
	require.NoError(t, err)

	result, err := svc.Verify(profile.ID, true)
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.UserID)
	assert.Equal(t, model.RoleUmkmOwner, result.NewRole)
	require.NotNil(t, result.UmkmProfileStatus)
	assert.Equal(t, model.UmkmStatusVerified, *result.UmkmProfileStatus)

	// Role and profile flag flip together.
	var freshUser model.User
	require.NoError(t, testDB.First(&freshUser, user.ID).Error)
	assert.Equal(t, model.RoleUmkmOwner, freshUser.Role)

	var freshProfile model.UmkmProfile
	require.NoError(t, testDB.First(&freshProfile, profile.ID).Error)
	assert.True(t, freshProfile.IsVerified)
	assert.NotNil(t, freshProfile.VerifiedAt)

	// Live connections got nudged to refresh.
	assert.Contains(t, notifier.refreshed, user.ID)
}

func TestVerificationService_ApproveTwice(t *testing.T) {
	svc, _, testDB := setupVerificationServiceTest(t)
	user := createCustomer(t, testDB, "owner@example.com")

	profile, err := svc.Apply(user.ID, ApplyInput{BusinessName: "Warung Sari"})
	require.NoError(t, err)

	_, err = svc.Verify(profile.ID, true)
	require.NoError(t, err)

	// Only a still-pending application flips; the second decision loses.
	_, err = svc.Verify(profile.ID, true)
	assert.ErrorIs(t, err, ErrUmkmNotPending)
}

func TestVerificationService_ConcurrentApprove(t *testing.T) {
	svc, _, testDB := setupVerificationServiceTest(t)

	// A single connection keeps every goroutine on the same in-memory
	// database and serializes the transactions, like Postgres row locks would.
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	user := createCustomer(t, testDB, "owner@example.com")
	profile, err := svc.Apply(user.ID, ApplyInput{BusinessName: "Warung Sari"})
	require.NoError(t, err)

	const attempts = 4
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Verify(profile.ID, true)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// Exactly one attempt flips the pending application; the rest lose on
	// the conditional update.
	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrUmkmNotPending)
		}
	}
	assert.Equal(t, 1, succeeded)

	var freshUser model.User
	require.NoError(t, testDB.First(&freshUser, user.ID).Error)
	assert.Equal(t, model.RoleUmkmOwner, freshUser.Role)

	var freshProfile model.UmkmProfile
	require.NoError(t, testDB.First(&freshProfile, profile.ID).Error)
	assert.True(t, freshProfile.IsVerified)
	assert.NotNil(t, freshProfile.VerifiedAt)
}

func TestVerificationService_Reject(t *testing.T) {
	svc, _, testDB := setupVerificationServiceTest(t)
	user := createCustomer(t, testDB, "owner@example.com")

	profile, err := svc.Apply(user.ID, ApplyInput{BusinessName: "Warung Sari"})
	require.NoError(t, err)

	result, err := svc.Verify(profile.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, result.NewRole)
	assert.Nil(t, result.UmkmProfileStatus)

	// The profile is gone entirely.
	var count int64
	require.NoError(t, testDB.Unscoped().
		Model(&model.UmkmProfile{}).
		Where("user_id = ?", user.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var freshUser model.User
	require.NoError(t, testDB.First(&freshUser, user.ID).Error)
	assert.Equal(t, model.RoleCustomer, freshUser.Role)
}

func TestVerificationService_ReapplyAfterRejection(t *testing.T) {
	svc, _, testDB := setupVerificationServiceTest(t)
	user := createCustomer(t, testDB, "owner@example.com")

	profile, err := svc.Apply(user.ID, ApplyInput{BusinessName: "Warung Sari"})
	require.NoError(t, err)
	_, err = svc.Verify(profile.ID, false)
	require.NoError(t, err)

	// Rejection deletes the row outright, so the unique user_id index does
	// not block a fresh application.
	second, err := svc.Apply(user.ID, ApplyInput{BusinessName: "Warung Sari Baru"})
	require.NoError(t, err)
	assert.Equal(t, "Warung Sari Baru", second.BusinessName)
	assert.False(t, second.IsVerified)
}

func TestVerificationService_VerifyUnknownProfile(t *testing.T) {
	svc, _, _ := setupVerificationServiceTest(t)

	_, err := svc.Verify(9999, true)
	assert.ErrorIs(t, err, ErrUmkmProfileNotFound)
}

func TestVerificationService_ListByStatus(t *testing.T) {
	svc, _, testDB := setupVerificationServiceTest(t)

	a := createCustomer(t, testDB, "a@example.com")
	b := createCustomer(t, testDB, "b@example.com")

	profileA, err := svc.Apply(a.ID, ApplyInput{BusinessName: "Warung A"})
	require.NoError(t, err)
	_, err = svc.Apply(b.ID, ApplyInput{BusinessName: "Warung B"})
	require.NoError(t, err)

	_, err = svc.Verify(profileA.ID, true)
	require.NoError(t, err)

	pending, total, err := svc.ListPending(0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, "Warung B", pending[0].BusinessName)

	verified, total, err := svc.ListVerified(0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, verified, 1)
	assert.Equal(t, "Warung A", verified[0].BusinessName)
}
