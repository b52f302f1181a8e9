package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"github.com/nimoapp/nimo-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserNotFound          = errors.New("user not found")
)

// RegisterInput carries the registration form. When AsUmkmOwner is set the
// stub business profile is created alongside the user, unverified; the role
// stays customer until an admin approves the application.
type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	Name            string
	Phone           string
	Address         string
	AsUmkmOwner     bool
	BusinessName    string
	BusinessAddress string
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, string, error)
	Login(identifier, password string) (*model.User, string, error)
	VerifyPassword(identifier, password string) (*model.User, error)
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(userID uint, name, phone, address string) (*model.User, error)
	ListUsers(role string, offset, limit int) ([]model.User, int64, error)
}

type authService struct {
	userRepo    repository.UserRepository
	jwtSecret   string
	tokenExpiry time.Duration
	db          *gorm.DB
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	tokenExpiry time.Duration,
	db *gorm.DB,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		db:          db,
	}
}

func (s *authService) Register(input RegisterInput) (*model.User, string, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email":         input.Email,
		"as_umkm_owner": input.AsUmkmOwner,
	})

	existing, err := s.userRepo.FindByEmail(input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, "", err
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": input.Email,
		})
		return nil, "", ErrEmailAlreadyExists
	}

	if input.Username != "" {
		existing, err = s.userRepo.FindByIdentifier(input.Username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", err
		}
		if existing != nil {
			logger.Warn("Registration failed: username already exists", map[string]interface{}{
				"username": input.Username,
			})
			return nil, "", ErrUsernameAlreadyExists
		}
	}

	hashed, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, "", err
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: &hashed,
		Name:         input.Name,
		Phone:        input.Phone,
		Address:      input.Address,
		Role:         model.RoleCustomer,
	}
	if input.Username != "" {
		username := input.Username
		user.Username = &username
	}

	// The stub business profile rides the same transaction so an
	// owner-track registration is all-or-nothing.
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during registration, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"email": input.Email,
			})
		}
	}()

	if err := tx.Create(user).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, "", err
	}

	if input.AsUmkmOwner {
		profile := &model.UmkmProfile{
			UserID:          user.ID,
			BusinessName:    input.BusinessName,
			BusinessAddress: input.BusinessAddress,
			ContactPhone:    input.Phone,
			IsVerified:      false,
		}
		if err := tx.Create(profile).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to create business profile during registration", err, map[string]interface{}{
				"email": input.Email,
			})
			return nil, "", err
		}
		user.UmkmProfile = profile
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit registration transaction", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, "", err
	}

	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.tokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":       user.ID,
		"email":         user.Email,
		"as_umkm_owner": input.AsUmkmOwner,
	})

	return user, token, nil
}

// VerifyPassword authenticates by email or username. Unknown identifiers,
// passwordless accounts and wrong passwords all come back as
// ErrInvalidCredentials so callers cannot probe which accounts exist.
func (s *authService) VerifyPassword(identifier, password string) (*model.User, error) {
	user, err := s.userRepo.FindByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"identifier": identifier,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"identifier": identifier,
		})
		return nil, err
	}

	if !user.HasPassword() || !util.VerifyPassword(*user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) Login(identifier, password string) (*model.User, string, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"identifier": identifier,
	})

	user, err := s.VerifyPassword(identifier, password)
	if err != nil {
		return nil, "", err
	}

	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.tokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return user, token, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByIDWithProfile(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, name, phone, address string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user for profile update", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	updated := false
	if name != "" && name != user.Name {
		user.Name = name
		updated = true
	}
	if phone != "" && phone != user.Phone {
		user.Phone = phone
		updated = true
	}
	if address != "" && address != user.Address {
		user.Address = address
		updated = true
	}

	if !updated {
		return user, nil
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User profile updated", map[string]interface{}{
		"user_id": user.ID,
	})

	return user, nil
}

func (s *authService) ListUsers(role string, offset, limit int) ([]model.User, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.userRepo.List(role, offset, limit)
}
