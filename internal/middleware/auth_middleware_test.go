package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/pkg/auth"
)

func newTestJWTService(accessExp time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "osas.test",
	})
}

func signedToken(t *testing.T, svc *auth.JWTService, role models.Role) string {
	t.Helper()
	user := &models.User{ID: 42, Username: "staff1", Role: role}
	access, _, _, _, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	return access
}

func newAuthTestRouter(m *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{m.JWTAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	router := newAuthTestRouter(NewAuthMiddleware(svc))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, svc, models.RoleStaff))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":42`)
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	router := newAuthTestRouter(NewAuthMiddleware(newTestJWTService(time.Hour)))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsMalformedHeader(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	router := newAuthTestRouter(NewAuthMiddleware(svc))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token "+signedToken(t, svc, models.RoleStaff))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	svc := newTestJWTService(-time.Minute)
	router := newAuthTestRouter(NewAuthMiddleware(svc))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, svc, models.RoleStaff))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_003")
}

func TestJWTAuthRejectsTokenSignedWithOtherSecret(t *testing.T) {
	other := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "different-secret",
		AccessTokenExp: time.Hour,
	})
	router := newAuthTestRouter(NewAuthMiddleware(newTestJWTService(time.Hour)))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, other, models.RoleStaff))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleRequiredAllowsMatchingRole(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	m := NewAuthMiddleware(svc)
	router := newAuthTestRouter(m, m.RoleRequired(models.RoleStaff))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, svc, models.RoleStaff))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleRequiredAdminPassesAnyCheck(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	m := NewAuthMiddleware(svc)
	router := newAuthTestRouter(m, m.RoleRequired(models.RoleStaff))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, svc, models.RoleAdmin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleRequiredBlocksInsufficientRole(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	m := NewAuthMiddleware(svc)
	router := newAuthTestRouter(m, m.RoleRequired(models.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, svc, models.RoleStaff))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
