package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mizutanik/tasktree-api/internal/middleware"
	"github.com/mizutanik/tasktree-api/internal/models"
	"github.com/mizutanik/tasktree-api/internal/repository"
	"github.com/mizutanik/tasktree-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	authService := services.NewAuthService(repository.NewUserRepository(db), "test-secret", time.Hour)
	handler := NewAuthHandler(authService)

	r := gin.New()
	auth := r.Group("/api/v1/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.GET("/me", middleware.RequireAuth(authService), handler.GetCurrentUser)

	return authTestEnv{db: db, router: r, authService: authService}
}

func (env authTestEnv) doJSON(t *testing.T, method, url, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "a@x.com",
		"name":     "Alice",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		User struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotZero(t, resp.User.ID)
	require.Equal(t, "a@x.com", resp.User.Email)
	require.NotEmpty(t, resp.AccessToken)

	// No password material in the response, in any shape.
	require.NotContains(t, w.Body.String(), "password")
	require.NotContains(t, w.Body.String(), "hash")
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := map[string]string{"email": "a@x.com", "name": "Alice", "password": "password1"}
	w := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_RegisterInvalidBody(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"name":     "Alice",
		"password": "password1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, _, err := env.authService.Register(services.RegisterInput{Email: "a@x.com", Name: "Alice", Password: "password1"})
	require.NoError(t, err)

	w := env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, token, err := env.authService.Register(services.RegisterInput{Email: "a@x.com", Name: "Alice", Password: "password1"})
	require.NoError(t, err)

	w := env.doJSON(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.Equal(t, "a@x.com", me["email"])

	w = env.doJSON(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// A decodable token whose subject is gone is rejected with 403.
	require.NoError(t, env.db.Delete(&models.User{}, user.ID).Error)
	w = env.doJSON(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}
