package service

import (
	"context"
	"errors"
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"github.com/nimoapp/nimo-backend/pkg/oauth/google"
	"github.com/nimoapp/nimo-backend/pkg/redis"
	"github.com/nimoapp/nimo-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrOAuthNotConfigured = errors.New("google oauth is not configured")
)

const (
	ProviderGoogle      = "google"
	ProviderCredentials = "credentials"
)

// GoogleExchanger is the slice of the OAuth client the service needs.
type GoogleExchanger interface {
	LoginURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*google.UserInfo, error)
}

// ProviderService manages provider-backed sessions: Google OAuth sign-in and
// credential sign-in both end in a persisted session row plus a signed session
// token with profile claims embedded.
type ProviderService interface {
	GoogleLoginURL() (url, state string, err error)
	HandleGoogleCallback(ctx context.Context, code string) (*model.User, string, error)
	LoginWithCredentials(identifier, password string) (*model.User, string, error)
	GetSession(token string) (*util.SessionClaims, error)
	SessionStale(userID uint) bool
	RefreshSession(token string) (string, *util.SessionClaims, error)
	Logout(token string) error
}

type providerService struct {
	userRepo      repository.UserRepository
	sessionRepo   repository.SessionRepository
	authService   AuthService
	googleClient  GoogleExchanger
	sessionSecret string
	sessionMaxAge time.Duration
}

func NewProviderService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	authService AuthService,
	googleClient GoogleExchanger,
	sessionSecret string,
	sessionMaxAge time.Duration,
) ProviderService {
	return &providerService{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		authService:   authService,
		googleClient:  googleClient,
		sessionSecret: sessionSecret,
		sessionMaxAge: sessionMaxAge,
	}
}

func (s *providerService) GoogleLoginURL() (string, string, error) {
	if s.googleClient == nil {
		return "", "", ErrOAuthNotConfigured
	}
	state, err := util.RandomHex(16)
	if err != nil {
		return "", "", err
	}
	return s.googleClient.LoginURL(state), state, nil
}

// HandleGoogleCallback exchanges the authorization code, provisions the user
// on first sign-in and mints a session.
func (s *providerService) HandleGoogleCallback(ctx context.Context, code string) (*model.User, string, error) {
	if s.googleClient == nil {
		return nil, "", ErrOAuthNotConfigured
	}
	info, err := s.googleClient.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Google code exchange failed", err, nil)
		return nil, "", err
	}

	user, err := s.userRepo.FindByEmail(info.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to look up user for OAuth sign-in", err, map[string]interface{}{
				"email": info.Email,
			})
			return nil, "", err
		}

		// First sign-in: provision a passwordless customer account.
		user = &model.User{
			Email:        info.Email,
			Name:         info.Name,
			ProfileImage: info.Picture,
			Role:         model.RoleCustomer,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, "", err
		}
		logger.Info("Provisioned user from Google sign-in", map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
		})
	}

	token, err := s.mint(user.ID, ProviderGoogle)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *providerService) LoginWithCredentials(identifier, password string) (*model.User, string, error) {
	user, err := s.authService.VerifyPassword(identifier, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.mint(user.ID, ProviderCredentials)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// mint persists the session row and signs the token with claims enriched from
// the database at this moment.
func (s *providerService) mint(userID uint, provider string) (string, error) {
	sessionID, err := util.RandomHex(32)
	if err != nil {
		return "", err
	}

	session := &model.ProviderSession{
		ID:        sessionID,
		UserID:    userID,
		Provider:  provider,
		ExpiresAt: time.Now().Add(s.sessionMaxAge),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return "", err
	}

	claims, err := s.buildClaims(sessionID, userID)
	if err != nil {
		return "", err
	}

	token, err := util.GenerateSessionToken(*claims, s.sessionSecret, s.sessionMaxAge)
	if err != nil {
		logger.Error("Failed to sign session token", err, map[string]interface{}{
			"user_id": userID,
		})
		return "", err
	}

	logger.Info("Provider session minted", map[string]interface{}{
		"user_id":  userID,
		"provider": provider,
	})
	return token, nil
}

// buildClaims reads the user row plus business profile and embeds them. This
// is the only place claims are assembled, so mint and refresh cannot drift.
func (s *providerService) buildClaims(sessionID string, userID uint) (*util.SessionClaims, error) {
	user, err := s.userRepo.FindByIDWithProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	claims := &util.SessionClaims{
		SessionID:         sessionID,
		UserID:            user.ID,
		Email:             user.Email,
		Name:              user.Name,
		Image:             user.ProfileImage,
		Role:              string(user.Role),
		PhoneNumber:       user.Phone,
		Address:           user.Address,
		UmkmProfileStatus: model.DeriveUmkmStatus(user.UmkmProfile),
	}
	if user.Username != nil {
		claims.Username = *user.Username
	}
	return claims, nil
}

// GetSession verifies the token and confirms the backing row still exists.
// The embedded claims are returned as-is; they may lag the database until the
// client refreshes.
func (s *providerService) GetSession(token string) (*util.SessionClaims, error) {
	claims, err := util.ValidateSessionToken(token, s.sessionSecret)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByID(claims.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Expired() {
		return nil, ErrSessionExpired
	}

	return claims, nil
}

// SessionStale reports whether a refresh has been requested for the user's
// claims since they were embedded (admin verification marks it, RefreshSession
// clears it). Advisory only; always false when Redis is not configured.
func (s *providerService) SessionStale(userID uint) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stale, err := redis.IsSessionStale(ctx, userID)
	if err != nil {
		logger.Warn("Failed to read session stale mark", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return false
	}
	return stale
}

// RefreshSession re-reads the user and re-embeds the claims under the same
// session id, extending the backing row's lifetime. This is how a client picks
// up a role change after admin verification.
func (s *providerService) RefreshSession(token string) (string, *util.SessionClaims, error) {
	current, err := s.GetSession(token)
	if err != nil {
		return "", nil, err
	}

	claims, err := s.buildClaims(current.SessionID, current.UserID)
	if err != nil {
		return "", nil, err
	}

	expiresAt := time.Now().Add(s.sessionMaxAge)
	if err := s.sessionRepo.Touch(current.SessionID, expiresAt); err != nil {
		return "", nil, err
	}

	newToken, err := util.GenerateSessionToken(*claims, s.sessionSecret, s.sessionMaxAge)
	if err != nil {
		return "", nil, err
	}

	// Stale mark is advisory only, failure to clear it is not fatal.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redis.ClearSessionStale(ctx, current.UserID); err != nil {
		logger.Warn("Failed to clear session stale mark", map[string]interface{}{
			"user_id": current.UserID,
			"error":   err.Error(),
		})
	}

	logger.Info("Provider session refreshed", map[string]interface{}{
		"user_id": current.UserID,
		"role":    claims.Role,
	})
	return newToken, claims, nil
}

// Logout deletes the backing session row. The token itself stays valid until
// expiry but GetSession will no longer honor it.
func (s *providerService) Logout(token string) error {
	claims, err := util.ValidateSessionToken(token, s.sessionSecret)
	if err != nil {
		// Nothing to delete for a token we cannot read.
		return nil
	}

	if err := s.sessionRepo.Delete(claims.SessionID); err != nil {
		logger.Error("Failed to delete provider session", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("Provider session logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}
