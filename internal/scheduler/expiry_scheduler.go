package scheduler

import (
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ExpiryScheduler periodically deactivates listings past their best-before
// time and prunes expired provider sessions.
type ExpiryScheduler struct {
	cron        *cron.Cron
	productRepo repository.ProductRepository
	sessionRepo repository.SessionRepository
}

func NewExpiryScheduler(
	productRepo repository.ProductRepository,
	sessionRepo repository.SessionRepository,
) *ExpiryScheduler {
	return &ExpiryScheduler{
		cron:        cron.New(),
		productRepo: productRepo,
		sessionRepo: sessionRepo,
	}
}

// Start registers the jobs: listings sweep every 10 minutes, session cleanup
// daily at 04:00.
func (s *ExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc("*/10 * * * *", s.sweepListings)
	if err != nil {
		logger.Error("Failed to add listing sweep job", err)
		return err
	}

	_, err = s.cron.AddFunc("0 4 * * *", s.sweepSessions)
	if err != nil {
		logger.Error("Failed to add session cleanup job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Expiry scheduler started", nil)
	return nil
}

func (s *ExpiryScheduler) Stop() {
	logger.Info("Stopping expiry scheduler...", nil)
	s.cron.Stop()
	logger.Info("Expiry scheduler stopped", nil)
}

func (s *ExpiryScheduler) sweepListings() {
	count, err := s.productRepo.DeactivateExpired(time.Now())
	if err != nil {
		logger.Error("Failed to deactivate expired listings", err)
		return
	}
	if count > 0 {
		logger.Info("Deactivated expired listings", map[string]interface{}{
			"count": count,
		})
	}
}

func (s *ExpiryScheduler) sweepSessions() {
	count, err := s.sessionRepo.DeleteExpired()
	if err != nil {
		logger.Error("Failed to delete expired sessions", err)
		return
	}
	logger.Info("Expired sessions removed", map[string]interface{}{
		"count": count,
	})
}
