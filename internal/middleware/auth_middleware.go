package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/internal/errors"
	"github.com/nimoapp/nimo-backend/pkg/redis"
	"github.com/nimoapp/nimo-backend/pkg/util"
)

// Context keys for the resolved identity
const (
	UserIDKey     = "user_id"
	UserEmailKey  = "user_email"
	UserRoleKey   = "user_role"
	AuthMethodKey = "auth_method"
	UmkmIDKey     = "umkm_id"
)

// Auth methods, recorded so handlers can tell how the caller signed in.
const (
	AuthMethodBearer  = "bearer"
	AuthMethodCookie  = "cookie"
	AuthMethodSession = "session"
)

// TokenCookieName carries the stateless bearer token for browser clients.
const TokenCookieName = "token"

// SessionResolver verifies a provider-session token against its backing row.
type SessionResolver interface {
	GetSession(token string) (*util.SessionClaims, error)
}

type AuthMiddleware struct {
	jwtSecret         string
	sessionCookieName string
	sessions          SessionResolver
	userRepo          repository.UserRepository
	umkmRepo          repository.UmkmRepository
}

func NewAuthMiddleware(
	jwtSecret string,
	sessionCookieName string,
	sessions SessionResolver,
	userRepo repository.UserRepository,
	umkmRepo repository.UmkmRepository,
) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:         jwtSecret,
		sessionCookieName: sessionCookieName,
		sessions:          sessions,
		userRepo:          userRepo,
		umkmRepo:          umkmRepo,
	}
}

// Authenticate resolves the caller's identity, trying in order: the
// Authorization header, the token cookie, then the provider-session cookie.
// The first credential present decides the outcome; a bad bearer token is a
// 401 even when a valid session cookie rides the same request.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Format autentikasi tidak valid")
				c.Abort()
				return
			}
			m.resolveToken(c, parts[1], AuthMethodBearer)
			return
		}

		if token, err := c.Cookie(TokenCookieName); err == nil && token != "" {
			m.resolveToken(c, token, AuthMethodCookie)
			return
		}

		if sessionToken, err := c.Cookie(m.sessionCookieName); err == nil && sessionToken != "" {
			m.resolveSession(c, sessionToken)
			return
		}

		// WebSocket clients cannot set headers; they pass the bearer token
		// as a query parameter.
		if token := c.Query("token"); token != "" {
			m.resolveToken(c, token, AuthMethodBearer)
			return
		}

		log.Warn("No credentials on request", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		errors.Unauthorized(c, "")
		c.Abort()
	}
}

func (m *AuthMiddleware) resolveToken(c *gin.Context, token, method string) {
	log := GetLoggerFromContext(c)

	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		log.Warn("Token validation failed", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		if err == util.ErrExpiredToken {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Sesi Anda telah berakhir, silakan masuk kembali")
		} else {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Token tidak valid")
		}
		c.Abort()
		return
	}

	revoked, err := redis.IsTokenBlacklisted(c.Request.Context(), token)
	if err == nil && revoked {
		log.Warn("Revoked token presented", map[string]interface{}{
			"user_id": claims.UserID,
		})
		errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token telah dicabut")
		c.Abort()
		return
	}

	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(AuthMethodKey, method)

	log.Debug("User authenticated", map[string]interface{}{
		"user_id": claims.UserID,
		"method":  method,
	})
	c.Next()
}

func (m *AuthMiddleware) resolveSession(c *gin.Context, token string) {
	log := GetLoggerFromContext(c)

	claims, err := m.sessions.GetSession(token)
	if err != nil {
		log.Warn("Session validation failed", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthSessionInvalid, "Sesi tidak valid, silakan masuk kembali")
		c.Abort()
		return
	}

	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(AuthMethodKey, AuthMethodSession)

	log.Debug("User authenticated", map[string]interface{}{
		"user_id": claims.UserID,
		"method":  AuthMethodSession,
	})
	c.Next()
}

// OptionalAuthenticate resolves credentials when present but lets the request
// through as a guest otherwise. Used on public catalog endpoints that
// personalize when signed in.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		var method string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
				method = AuthMethodBearer
			}
		}
		if token == "" {
			if t, err := c.Cookie(TokenCookieName); err == nil {
				token = t
				method = AuthMethodCookie
			}
		}

		if token != "" {
			if claims, err := util.ValidateToken(token, m.jwtSecret); err == nil {
				c.Set(UserIDKey, claims.UserID)
				c.Set(UserEmailKey, claims.Email)
				c.Set(UserRoleKey, model.UserRole(claims.Role))
				c.Set(AuthMethodKey, method)
			}
			c.Next()
			return
		}

		if sessionToken, err := c.Cookie(m.sessionCookieName); err == nil && sessionToken != "" {
			if claims, err := m.sessions.GetSession(sessionToken); err == nil {
				c.Set(UserIDKey, claims.UserID)
				c.Set(UserEmailKey, claims.Email)
				c.Set(UserRoleKey, model.UserRole(claims.Role))
				c.Set(AuthMethodKey, AuthMethodSession)
			}
		}

		c.Next()
	}
}

// RequireRole gates on the role carried by the credential. Cheap but can lag
// the database; use RequireFreshRole where that matters.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		userRole, exists := c.Get(UserRoleKey)
		if !exists {
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "Informasi peran tidak ditemukan")
			c.Abort()
			return
		}

		role := userRole.(model.UserRole)
		for _, r := range roles {
			if role == model.UserRole(r) {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "")
		c.Abort()
	}
}

// RequireFreshRole re-reads the user row and gates on the database role, not
// the one embedded in the credential. Admin endpoints and partner mutations
// use this so a demotion or promotion takes effect before the next token
// refresh.
func (m *AuthMiddleware) RequireFreshRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		userID, ok := GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(userID)
		if err != nil {
			log.Warn("Fresh role check failed: user not found", map[string]interface{}{
				"user_id": userID,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// The fresh role supersedes whatever the credential claimed.
		c.Set(UserRoleKey, user.Role)

		for _, r := range roles {
			if user.Role == model.UserRole(r) {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions after fresh role check", map[string]interface{}{
			"user_id":        userID,
			"user_role":      user.Role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "")
		c.Abort()
	}
}

// RequireVerifiedPartner resolves the caller's business profile from the
// database and requires it verified. Sets UmkmIDKey for the handler.
func (m *AuthMiddleware) RequireVerifiedPartner() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		userID, ok := GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		profile, err := m.umkmRepo.FindByUserID(userID)
		if err != nil {
			log.Warn("Partner check failed: no business profile", map[string]interface{}{
				"user_id": userID,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzNotVerified, "Anda belum terdaftar sebagai mitra UMKM")
			c.Abort()
			return
		}
		if !profile.IsVerified {
			log.Warn("Partner check failed: profile pending verification", map[string]interface{}{
				"user_id": userID,
				"umkm_id": profile.ID,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzNotVerified, "Profil UMKM Anda masih menunggu verifikasi")
			c.Abort()
			return
		}

		c.Set(UmkmIDKey, profile.ID)
		c.Next()
	}
}

// GetUserID extracts the resolved user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserEmail extracts the resolved email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetUserRole extracts the resolved role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	return role.(model.UserRole), true
}

// GetUmkmID extracts the partner profile ID set by RequireVerifiedPartner
func GetUmkmID(c *gin.Context) (uint, bool) {
	umkmID, exists := c.Get(UmkmIDKey)
	if !exists {
		return 0, false
	}
	return umkmID.(uint), true
}
