package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/internal/app/service"
	"github.com/nimoapp/nimo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionCookie = "nimo_session"

func setupSessionControllerTest(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	sessionRepo := repository.NewSessionRepository(testDB)
	authService := service.NewAuthService(userRepo, "test-jwt-secret", 7*24*time.Hour, testDB)
	providerService := service.NewProviderService(
		userRepo, sessionRepo, authService, nil,
		"test-session-secret", 24*time.Hour,
	)

	_, _, err = authService.Register(service.RegisterInput{
		Email:    "sari@example.com",
		Password: "password123",
		Name:     "Ibu Sari",
	})
	require.NoError(t, err)

	ctrl := NewSessionController(providerService, testSessionCookie, 24*time.Hour, false, "")

	router := gin.New()
	router.POST("/auth/session/login", ctrl.SessionLogin)
	router.GET("/auth/session", ctrl.GetSession)

	return router
}

func TestSessionController_GetSession(t *testing.T) {
	router := setupSessionControllerTest(t)

	w := postJSON(t, router, "/auth/session/login", gin.H{
		"identifier": "sari@example.com",
		"password":   "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == testSessionCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	req := httptest.NewRequest("GET", "/auth/session", nil)
	req.AddCookie(sessionCookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	sess := resp["session"].(map[string]interface{})
	assert.Equal(t, "sari@example.com", sess["email"])
	assert.Equal(t, "customer", sess["role"])

	// The staleness flag always rides along; without Redis it stays false.
	stale, ok := resp["stale"].(bool)
	require.True(t, ok)
	assert.False(t, stale)
}

func TestSessionController_GetSessionWithoutCookie(t *testing.T) {
	router := setupSessionControllerTest(t)

	req := httptest.NewRequest("GET", "/auth/session", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
