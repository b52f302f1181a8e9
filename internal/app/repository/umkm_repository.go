package repository

import (
	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"gorm.io/gorm"
)

type UmkmRepository interface {
	Create(profile *model.UmkmProfile) error
	FindByID(id uint) (*model.UmkmProfile, error)
	FindByUserID(userID uint) (*model.UmkmProfile, error)
	ListPending(offset, limit int) ([]model.UmkmProfile, int64, error)
	ListVerified(offset, limit int) ([]model.UmkmProfile, int64, error)
	Update(profile *model.UmkmProfile) error
}

type umkmRepository struct {
	db *gorm.DB
}

func NewUmkmRepository(db *gorm.DB) UmkmRepository {
	return &umkmRepository{db: db}
}

func (r *umkmRepository) Create(profile *model.UmkmProfile) error {
	if err := r.db.Create(profile).Error; err != nil {
		logger.Error("Failed to create UMKM profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}

	logger.Debug("UMKM profile created in database", map[string]interface{}{
		"umkm_id": profile.ID,
		"user_id": profile.UserID,
	})
	return nil
}

func (r *umkmRepository) FindByID(id uint) (*model.UmkmProfile, error) {
	var profile model.UmkmProfile
	if err := r.db.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *umkmRepository) FindByUserID(userID uint) (*model.UmkmProfile, error) {
	var profile model.UmkmProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *umkmRepository) ListPending(offset, limit int) ([]model.UmkmProfile, int64, error) {
	return r.listByVerified(false, offset, limit)
}

func (r *umkmRepository) ListVerified(offset, limit int) ([]model.UmkmProfile, int64, error) {
	return r.listByVerified(true, offset, limit)
}

func (r *umkmRepository) listByVerified(verified bool, offset, limit int) ([]model.UmkmProfile, int64, error) {
	var profiles []model.UmkmProfile
	var total int64

	query := r.db.Model(&model.UmkmProfile{}).Where("is_verified = ?", verified)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *umkmRepository) Update(profile *model.UmkmProfile) error {
	if err := r.db.Save(profile).Error; err != nil {
		logger.Error("Failed to update UMKM profile in database", err, map[string]interface{}{
			"umkm_id": profile.ID,
		})
		return err
	}
	return nil
}
