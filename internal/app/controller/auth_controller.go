package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/service"
	apperrors "github.com/nimoapp/nimo-backend/internal/errors"
	"github.com/nimoapp/nimo-backend/internal/middleware"
	"github.com/nimoapp/nimo-backend/pkg/redis"
)

type AuthController struct {
	authService   service.AuthService
	tokenExpiry   time.Duration
	secureCookies bool
}

func NewAuthController(authService service.AuthService, tokenExpiry time.Duration, secureCookies bool) *AuthController {
	return &AuthController{
		authService:   authService,
		tokenExpiry:   tokenExpiry,
		secureCookies: secureCookies,
	}
}

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username"`
	Password        string `json:"password" binding:"required,min=8"`
	Name            string `json:"name" binding:"required"`
	Phone           string `json:"phone_number"`
	Address         string `json:"address"`
	AsUmkmOwner     bool   `json:"as_umkm_owner"`
	BusinessName    string `json:"business_name"`
	BusinessAddress string `json:"business_address"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // email or username
	Password   string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone_number"`
	Address string `json:"address"`
}

// userResponse is the user shape shared by the auth endpoints.
func userResponse(user *model.User) gin.H {
	resp := gin.H{
		"id":                  user.ID,
		"email":               user.Email,
		"name":                user.Name,
		"profile_image":       user.ProfileImage,
		"phone_number":        user.Phone,
		"address":             user.Address,
		"role":                user.Role,
		"umkm_profile_status": model.DeriveUmkmStatus(user.UmkmProfile),
	}
	if user.Username != nil {
		resp["username"] = *user.Username
	}
	return resp
}

// redirectURLFor picks the post-login landing page by role and partner state.
func redirectURLFor(user *model.User) string {
	switch {
	case user.Role == model.RoleAdmin:
		return "/admin"
	case user.Role == model.RoleUmkmOwner && user.UmkmProfile != nil && user.UmkmProfile.IsVerified:
		return "/partner"
	default:
		return "/dashboard"
	}
}

// setTokenCookie writes the bearer token cookie for browser clients.
func (ctrl *AuthController) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookieName, token, int(ctrl.tokenExpiry.Seconds()), "/", "", ctrl.secureCookies, true)
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	if req.AsUmkmOwner && req.BusinessName == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Nama usaha wajib diisi untuk pendaftaran UMKM")
		return
	}

	user, token, err := ctrl.authService.Register(service.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		Name:            req.Name,
		Phone:           req.Phone,
		Address:         req.Address,
		AsUmkmOwner:     req.AsUmkmOwner,
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email sudah terdaftar")
			return
		}
		if errors.Is(err, service.ErrUsernameAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "Username sudah digunakan")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	ctrl.setTokenCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Pendaftaran berhasil",
		"user":         userResponse(user),
		"token":        token,
		"redirect_url": redirectURLFor(user),
	})
}

// Login authenticates by email or username and issues the bearer token, both
// in the response body and as the token cookie.
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	user, token, err := ctrl.authService.Login(req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Email/username atau kata sandi salah")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"identifier": req.Identifier,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	// Re-read with the business profile so the redirect target is right.
	full, err := ctrl.authService.GetUserByID(user.ID)
	if err == nil {
		user = full
	}

	ctrl.setTokenCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message":      "Berhasil masuk",
		"user":         userResponse(user),
		"token":        token,
		"redirect_url": redirectURLFor(user),
	})
}

// Logout clears the token cookie and revokes the presented token until its
// natural expiry.
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var token string
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		token, _ = c.Cookie(middleware.TokenCookieName)
	}

	if token != "" {
		if err := redis.BlacklistToken(c.Request.Context(), token, ctrl.tokenExpiry); err != nil {
			// Blacklist is best effort; logout still succeeds.
			log.Warn("Failed to blacklist token on logout", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", ctrl.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Berhasil keluar",
	})
}

// GetMe returns the authenticated user
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Pengguna tidak ditemukan")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userResponse(user),
	})
}

// UpdateMe updates the authenticated user's profile
// PUT /api/v1/auth/me
func (ctrl *AuthController) UpdateMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, req.Name, req.Phone, req.Address)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Pengguna tidak ditemukan")
			return
		}
		log.Error("Profile update failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profil berhasil diperbarui",
		"user":    userResponse(user),
	})
}
