package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimoapp/nimo-backend/internal/app/service"
	apperrors "github.com/nimoapp/nimo-backend/internal/errors"
	"github.com/nimoapp/nimo-backend/internal/middleware"
	"github.com/nimoapp/nimo-backend/pkg/util"
)

const oauthStateCookie = "oauth_state"

// SessionController serves the provider-session endpoints: Google OAuth
// sign-in and credential sign-in backed by a persisted session.
type SessionController struct {
	providerService   service.ProviderService
	sessionCookieName string
	sessionMaxAge     time.Duration
	secureCookies     bool
	frontendURL       string
}

func NewSessionController(
	providerService service.ProviderService,
	sessionCookieName string,
	sessionMaxAge time.Duration,
	secureCookies bool,
	frontendURL string,
) *SessionController {
	return &SessionController{
		providerService:   providerService,
		sessionCookieName: sessionCookieName,
		sessionMaxAge:     sessionMaxAge,
		secureCookies:     secureCookies,
		frontendURL:       frontendURL,
	}
}

// setSessionCookie writes the session cookie. SameSite is Lax, not Strict,
// because the OAuth callback arrives as a cross-site redirect.
func (ctrl *SessionController) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ctrl.sessionCookieName, token, maxAge, "/", "", ctrl.secureCookies, true)
}

// GoogleLogin redirects to the Google consent screen. The state nonce is
// persisted in a short-lived cookie for the callback to check.
// GET /api/v1/auth/google/login
func (ctrl *SessionController) GoogleLogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	url, state, err := ctrl.providerService.GoogleLoginURL()
	if err != nil {
		log.Error("Failed to build Google login URL", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", ctrl.secureCookies, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback completes the OAuth flow: verifies the state nonce,
// exchanges the code and sets the session cookie.
// GET /api/v1/auth/google/callback
func (ctrl *SessionController) GoogleCallback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	state := c.Query("state")
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != expected {
		log.Warn("OAuth state mismatch", map[string]interface{}{
			"has_cookie": err == nil,
		})
		apperrors.BadRequest(c, apperrors.AuthOAuthFailed, "Permintaan masuk tidak valid, silakan coba lagi")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", ctrl.secureCookies, true)

	code := c.Query("code")
	if code == "" {
		apperrors.BadRequest(c, apperrors.AuthOAuthFailed, "Proses masuk dengan Google dibatalkan")
		return
	}

	user, token, err := ctrl.providerService.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		log.Error("Google callback failed", err, nil)
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.AuthOAuthFailed, "Gagal masuk dengan Google. Silakan coba lagi")
		return
	}

	ctrl.setSessionCookie(c, token, int(ctrl.sessionMaxAge.Seconds()))

	log.Info("Google sign-in completed", map[string]interface{}{
		"user_id": user.ID,
	})
	c.Redirect(http.StatusTemporaryRedirect, ctrl.frontendURL+"/dashboard")
}

// SessionLogin signs in with credentials through the session scheme.
// POST /api/v1/auth/session/login
func (ctrl *SessionController) SessionLogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data yang dimasukkan tidak valid")
		return
	}

	user, token, err := ctrl.providerService.LoginWithCredentials(req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Email/username atau kata sandi salah")
			return
		}
		log.Error("Session login failed", err, map[string]interface{}{
			"identifier": req.Identifier,
		})
		apperrors.InternalError(c, "")
		return
	}

	ctrl.setSessionCookie(c, token, int(ctrl.sessionMaxAge.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"message": "Berhasil masuk",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// GetSession returns the session claims as embedded in the cookie. Claims can
// lag the database; `stale` tells the client a refresh is worth calling.
// GET /api/v1/auth/session
func (ctrl *SessionController) GetSession(c *gin.Context) {
	token, err := c.Cookie(ctrl.sessionCookieName)
	if err != nil || token == "" {
		apperrors.Unauthorized(c, "")
		return
	}

	claims, err := ctrl.providerService.GetSession(token)
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": sessionResponse(claims),
		"stale":   ctrl.providerService.SessionStale(claims.UserID),
	})
}

// RefreshSession re-reads the user from the database, re-embeds the claims
// and rotates the cookie. Clients call this after a session_refresh nudge.
// POST /api/v1/auth/session/refresh
func (ctrl *SessionController) RefreshSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, err := c.Cookie(ctrl.sessionCookieName)
	if err != nil || token == "" {
		apperrors.Unauthorized(c, "")
		return
	}

	newToken, claims, err := ctrl.providerService.RefreshSession(token)
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}

	ctrl.setSessionCookie(c, newToken, int(ctrl.sessionMaxAge.Seconds()))

	log.Info("Session refreshed", map[string]interface{}{
		"user_id": claims.UserID,
		"role":    claims.Role,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Sesi diperbarui",
		"session": sessionResponse(claims),
	})
}

// SessionLogout deletes the backing session row and clears the cookie.
// POST /api/v1/auth/session/logout
func (ctrl *SessionController) SessionLogout(c *gin.Context) {
	token, err := c.Cookie(ctrl.sessionCookieName)
	if err == nil && token != "" {
		if err := ctrl.providerService.Logout(token); err != nil {
			middleware.GetLoggerFromContext(c).Warn("Session logout cleanup failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	ctrl.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{
		"message": "Berhasil keluar",
	})
}

func (ctrl *SessionController) respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrExpiredToken), errors.Is(err, service.ErrSessionExpired):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Sesi Anda telah berakhir, silakan masuk kembali")
	case errors.Is(err, util.ErrInvalidToken), errors.Is(err, service.ErrSessionNotFound):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthSessionInvalid, "Sesi tidak valid, silakan masuk kembali")
	default:
		apperrors.InternalError(c, "")
	}
}

func sessionResponse(claims *util.SessionClaims) gin.H {
	return gin.H{
		"user_id":             claims.UserID,
		"email":               claims.Email,
		"name":                claims.Name,
		"image":               claims.Image,
		"role":                claims.Role,
		"username":            claims.Username,
		"phone_number":        claims.PhoneNumber,
		"address":             claims.Address,
		"umkm_profile_status": claims.UmkmProfileStatus,
		"expires_at":          claims.ExpiresAt,
	}
}
