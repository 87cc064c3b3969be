package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authgate/internal/database"
	"authgate/internal/domain"
	"authgate/internal/middleware"
	"authgate/internal/modules/auth"
	"authgate/internal/modules/token"
	jwtsvc "authgate/internal/pkg/jwt"
	"authgate/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testSuite struct {
	router *gin.Engine
	db     *gorm.DB
}

type testResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *errorDetail           `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupSuite(t *testing.T, refreshTTL time.Duration) *testSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)

	j := jwtsvc.New("test_secret_key_32_characters_min", 15*time.Minute)
	tokenService := token.NewService(tokenRepo, userRepo, j, token.NewHasher("test-pepper"), refreshTTL)

	authService := auth.NewService(userRepo, tokenService)
	authHandler := auth.NewHandler(authService)

	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				authHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	return &testSuite{router: r, db: db}
}

func (s *testSuite) do(t *testing.T, method, path string, body any, bearer string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return w, resp
}

func (s *testSuite) register(t *testing.T, email string) (access, refresh string) {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	tokens := resp.Data["tokens"].(map[string]interface{})
	return tokens["access_token"].(string), tokens["refresh_token"].(string)
}

func (s *testSuite) refresh(t *testing.T, refreshToken string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/v1/auth/refresh", gin.H{"refresh_token": refreshToken}, "")
}

func TestRotationFlow(t *testing.T) {
	s := setupSuite(t, 7*24*time.Hour)

	_, r0 := s.register(t, "rotate@example.com")

	// first rotation succeeds and returns a fresh pair
	w, resp := s.refresh(t, r0)
	require.Equal(t, http.StatusOK, w.Code)
	r1 := resp.Data["tokens"].(map[string]interface{})["refresh_token"].(string)
	assert.NotEqual(t, r0, r1)

	// replaying the consumed token is rejected with the uniform 401
	w, resp = s.refresh(t, r0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_REFRESH", resp.Error.Code)

	// ...and the replay burned the whole family, including the new token
	w, resp = s.refresh(t, r1)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_REFRESH", resp.Error.Code)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	s := setupSuite(t, 7*24*time.Hour)

	w, resp := s.refresh(t, "not-a-real-secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_REFRESH", resp.Error.Code)
}

func TestExpiredRefreshRejected(t *testing.T) {
	s := setupSuite(t, time.Millisecond)

	_, r0 := s.register(t, "expired@example.com")
	time.Sleep(10 * time.Millisecond)

	w, resp := s.refresh(t, r0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// expired is indistinguishable from any other refresh failure
	assert.Equal(t, "INVALID_REFRESH", resp.Error.Code)
}

func TestLogoutRevokesEverySession(t *testing.T) {
	s := setupSuite(t, 7*24*time.Hour)

	// two independent logins -> two token families
	access, rA := s.register(t, "logout@example.com")
	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "logout@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	rB := resp.Data["tokens"].(map[string]interface{})["refresh_token"].(string)

	// an unrelated user stays logged in
	_, otherRefresh := s.register(t, "bystander@example.com")

	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", nil, access)
	require.Equal(t, http.StatusOK, w.Code)

	for _, r := range []string{rA, rB} {
		w, resp = s.refresh(t, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_REFRESH", resp.Error.Code)
	}

	w, _ = s.refresh(t, otherRefresh)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutRequiresAccessToken(t *testing.T) {
	s := setupSuite(t, 7*24*time.Hour)

	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/logout", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)
}

func TestGetMe(t *testing.T) {
	s := setupSuite(t, 7*24*time.Hour)

	access, _ := s.register(t, "me@example.com")

	w, resp := s.do(t, http.MethodGet, "/api/v1/users/me", nil, access)
	require.Equal(t, http.StatusOK, w.Code)
	user := resp.Data["user"].(map[string]interface{})
	assert.Equal(t, "me@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
}

func TestAdminRevokeFamily(t *testing.T) {
	s := setupSuite(t, 7*24*time.Hour)

	// victim holds a valid refresh token
	_, victimRefresh := s.register(t, "victim@example.com")

	var rec domain.RefreshToken
	require.NoError(t, s.db.First(&rec).Error)

	// seed an admin account directly
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-password1"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&domain.User{
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Name:         "Admin",
		Role:         domain.RoleAdmin,
	}).Error)

	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "admin-password1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	adminAccess := resp.Data["tokens"].(map[string]interface{})["access_token"].(string)

	path := fmt.Sprintf("/api/v1/admin/token-families/%s/revoke", rec.TokenFamily)
	w, _ = s.do(t, http.MethodPost, path, nil, adminAccess)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.refresh(t, victimRefresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_REFRESH", resp.Error.Code)

	// a non-admin cannot reach the endpoint
	victimAccess, _ := s.register(t, "victim2@example.com")
	w, _ = s.do(t, http.MethodPost, path, nil, victimAccess)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
