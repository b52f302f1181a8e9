package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"github.com/nimoapp/nimo-backend/pkg/redis"
	"gorm.io/gorm"
)

var (
	ErrUmkmProfileExists   = errors.New("business profile already exists")
	ErrUmkmProfileNotFound = errors.New("business profile not found")
	ErrUmkmNotPending      = errors.New("application is not pending")
)

// SessionNotifier nudges a user's live connections to refresh their session
// after a server-side role change. Implemented by the websocket hub.
type SessionNotifier interface {
	NotifySessionRefresh(userID uint)
}

// ApplyInput is the partner application form.
type ApplyInput struct {
	BusinessName    string
	BusinessAddress string
	ContactPhone    string
	Description     string
}

// VerificationResult describes the outcome of an admin decision, echoed to
// the admin UI so it can update without a reload.
type VerificationResult struct {
	UserID            uint           `json:"user_id"`
	NewRole           model.UserRole `json:"new_role"`
	UmkmProfileStatus *string        `json:"umkm_profile_status"`
}

// VerificationService owns the partner lifecycle: application, admin
// approval (promote) and rejection (profile removed, role reset).
type VerificationService interface {
	Apply(userID uint, input ApplyInput) (*model.UmkmProfile, error)
	GetProfileByUserID(userID uint) (*model.UmkmProfile, error)
	GetProfileByID(id uint) (*model.UmkmProfile, error)
	ListPending(offset, limit int) ([]model.UmkmProfile, int64, error)
	ListVerified(offset, limit int) ([]model.UmkmProfile, int64, error)
	Verify(umkmID uint, approve bool) (*VerificationResult, error)
}

type verificationService struct {
	umkmRepo repository.UmkmRepository
	userRepo repository.UserRepository
	notifier SessionNotifier
	db       *gorm.DB
}

func NewVerificationService(
	umkmRepo repository.UmkmRepository,
	userRepo repository.UserRepository,
	notifier SessionNotifier,
	db *gorm.DB,
) VerificationService {
	return &verificationService{
		umkmRepo: umkmRepo,
		userRepo: userRepo,
		notifier: notifier,
		db:       db,
	}
}

func (s *verificationService) Apply(userID uint, input ApplyInput) (*model.UmkmProfile, error) {
	logger.Info("Partner application received", map[string]interface{}{
		"user_id":       userID,
		"business_name": input.BusinessName,
	})

	existing, err := s.umkmRepo.FindByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		logger.Warn("Partner application rejected: profile already exists", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrUmkmProfileExists
	}

	profile := &model.UmkmProfile{
		UserID:          userID,
		BusinessName:    input.BusinessName,
		BusinessAddress: input.BusinessAddress,
		ContactPhone:    input.ContactPhone,
		Description:     input.Description,
		IsVerified:      false,
	}
	if err := s.umkmRepo.Create(profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *verificationService) GetProfileByUserID(userID uint) (*model.UmkmProfile, error) {
	profile, err := s.umkmRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUmkmProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *verificationService) GetProfileByID(id uint) (*model.UmkmProfile, error) {
	profile, err := s.umkmRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUmkmProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *verificationService) ListPending(offset, limit int) ([]model.UmkmProfile, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.umkmRepo.ListPending(offset, limit)
}

func (s *verificationService) ListVerified(offset, limit int) ([]model.UmkmProfile, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.umkmRepo.ListVerified(offset, limit)
}

// Verify applies an admin decision. Approval and rejection each run in one
// transaction so the role and the profile flag can never disagree.
func (s *verificationService) Verify(umkmID uint, approve bool) (*VerificationResult, error) {
	profile, err := s.umkmRepo.FindByID(umkmID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUmkmProfileNotFound
		}
		return nil, err
	}

	var result *VerificationResult
	if approve {
		result, err = s.approve(profile)
	} else {
		result, err = s.reject(profile)
	}
	if err != nil {
		return nil, err
	}

	// Best effort: nudge the user's open connections and flag the stale
	// session claims for polling clients.
	if s.notifier != nil {
		s.notifier.NotifySessionRefresh(result.UserID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redis.MarkSessionStale(ctx, result.UserID, 24*time.Hour); err != nil {
		logger.Warn("Failed to mark session stale", map[string]interface{}{
			"user_id": result.UserID,
			"error":   err.Error(),
		})
	}

	return result, nil
}

func (s *verificationService) approve(profile *model.UmkmProfile) (*VerificationResult, error) {
	logger.Info("Approving partner application", map[string]interface{}{
		"umkm_id": profile.ID,
		"user_id": profile.UserID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during approval, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"umkm_id": profile.ID,
			})
		}
	}()

	now := time.Now()
	// Conditional update: only a still-pending application flips. Of two
	// concurrent approvals exactly one sees RowsAffected == 1.
	res := tx.Model(&model.UmkmProfile{}).
		Where("id = ? AND is_verified = ?", profile.ID, false).
		Updates(map[string]interface{}{
			"is_verified": true,
			"verified_at": now,
		})
	if res.Error != nil {
		tx.Rollback()
		logger.Error("Failed to flag profile verified", res.Error, map[string]interface{}{
			"umkm_id": profile.ID,
		})
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		logger.Warn("Approval skipped: application no longer pending", map[string]interface{}{
			"umkm_id": profile.ID,
		})
		return nil, ErrUmkmNotPending
	}

	if err := tx.Model(&model.User{}).
		Where("id = ?", profile.UserID).
		Update("role", model.RoleUmkmOwner).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to promote user role", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Partner application approved", map[string]interface{}{
		"umkm_id": profile.ID,
		"user_id": profile.UserID,
	})

	status := model.UmkmStatusVerified
	return &VerificationResult{
		UserID:            profile.UserID,
		NewRole:           model.RoleUmkmOwner,
		UmkmProfileStatus: &status,
	}, nil
}

// reject removes the profile outright and resets the role. The user can
// apply again later, which is why the row is deleted rather than flagged.
func (s *verificationService) reject(profile *model.UmkmProfile) (*VerificationResult, error) {
	logger.Info("Rejecting partner application", map[string]interface{}{
		"umkm_id": profile.ID,
		"user_id": profile.UserID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during rejection, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"umkm_id": profile.ID,
			})
		}
	}()

	// Hard delete so the unique user_id index does not block a re-apply.
	if err := tx.Unscoped().Delete(&model.UmkmProfile{}, profile.ID).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete business profile", err, map[string]interface{}{
			"umkm_id": profile.ID,
		})
		return nil, err
	}

	if err := tx.Model(&model.User{}).
		Where("id = ?", profile.UserID).
		Update("role", model.RoleCustomer).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to reset user role", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Partner application rejected", map[string]interface{}{
		"umkm_id": profile.ID,
		"user_id": profile.UserID,
	})

	return &VerificationResult{
		UserID:            profile.UserID,
		NewRole:           model.RoleCustomer,
		UmkmProfileStatus: nil,
	}, nil
}
