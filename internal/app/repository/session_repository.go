package repository

import (
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(session *model.ProviderSession) error
	FindByID(id string) (*model.ProviderSession, error)
	Touch(id string, expiresAt time.Time) error
	Delete(id string) error
	DeleteExpired() (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.ProviderSession) error {
	if err := r.db.Create(session).Error; err != nil {
		logger.Error("Failed to create provider session in database", err, map[string]interface{}{
			"user_id": session.UserID,
		})
		return err
	}
	return nil
}

func (r *sessionRepository) FindByID(id string) (*model.ProviderSession, error) {
	var session model.ProviderSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Touch extends a session's lifetime, used on claim refresh.
func (r *sessionRepository) Touch(id string, expiresAt time.Time) error {
	return r.db.Model(&model.ProviderSession{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt).Error
}

func (r *sessionRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.ProviderSession{}).Error
}

// DeleteExpired removes sessions past their lifetime; called by the sweeper.
func (r *sessionRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expires_at < ?", time.Now()).Delete(&model.ProviderSession{})
	return result.RowsAffected, result.Error
}
