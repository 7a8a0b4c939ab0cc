package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/internal/services"
	"github.com/voyagee/travel-backend/pkg/jwt"
)

const testSecret = "test-secret-key-123456789"

// stubResolver returns identities from a map keyed by id
type stubResolver struct {
	identities map[uuid.UUID]*models.Identity
	err        error
}

func (r *stubResolver) ResolveIdentity(ctx context.Context, userID uuid.UUID) (*models.Identity, error) {
	if r.err != nil {
		return nil, r.err
	}
	identity, ok := r.identities[userID]
	if !ok {
		return nil, &services.ServiceError{Kind: services.KindUnauthenticated, Message: "Usuário não encontrado"}
	}
	return identity, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func newIdentity(role string) *models.Identity {
	return &models.Identity{ID: uuid.New(), Nome: "Ana", Email: "ana@example.com", Role: role, Tipo: models.TipoViajante, IsActive: true}
}

func perform(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtService := jwt.NewService(testSecret, "voyagee-test", time.Hour)
	identity := newIdentity(models.RoleUser)
	resolver := &stubResolver{identities: map[uuid.UUID]*models.Identity{identity.ID: identity}}

	router := setupTestRouter()
	router.GET("/protected", AuthMiddleware(jwtService, resolver, quietLogger()), func(c *gin.Context) {
		got := MustGetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "id": got.ID})
	})

	token, err := jwtService.GenerateToken(identity.ID, identity.Email, identity.Role, identity.Tipo)
	require.NoError(t, err)

	w := perform(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), identity.ID.String())
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	jwtService := jwt.NewService(testSecret, "voyagee-test", time.Hour)
	expiredService := jwt.NewService(testSecret, "voyagee-test", -time.Hour)
	otherService := jwt.NewService("another-secret-key-987654321", "voyagee-test", time.Hour)

	known := newIdentity(models.RoleUser)
	resolver := &stubResolver{identities: map[uuid.UUID]*models.Identity{known.ID: known}}

	expired, err := expiredService.GenerateToken(known.ID, known.Email, known.Role, known.Tipo)
	require.NoError(t, err)
	forged, err := otherService.GenerateToken(known.ID, known.Email, models.RoleAdmin, known.Tipo)
	require.NoError(t, err)
	ghost, err := jwtService.GenerateToken(uuid.New(), "ghost@example.com", models.RoleUser, models.TipoViajante)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		code    string
		message string
	}{
		{"missing header", "", "MISSING_AUTH_HEADER", "Token de acesso não fornecido"},
		{"no bearer prefix", "some-token", "INVALID_AUTH_FORMAT", "Formato de token inválido"},
		{"wrong scheme", "Basic some-token", "INVALID_AUTH_FORMAT", "Formato de token inválido"},
		{"empty bearer", "Bearer ", "INVALID_AUTH_FORMAT", "Formato de token inválido"},
		{"malformed token", "Bearer invalid.token.here", "INVALID_TOKEN", "Token inválido"},
		{"wrong signature", "Bearer " + forged, "INVALID_TOKEN", "Token inválido"},
		{"expired token", "Bearer " + expired, "TOKEN_EXPIRED", "Token expirado"},
		{"deleted person", "Bearer " + ghost, "USER_NOT_FOUND", "Usuário não encontrado"},
	}

	router := setupTestRouter()
	router.GET("/protected", AuthMiddleware(jwtService, resolver, quietLogger()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
			assert.Contains(t, w.Body.String(), tt.code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.NotContains(t, w.Body.String(), "should not reach here")
		})
	}
}

func TestAuthMiddleware_ResolverFailureIs500(t *testing.T) {
	jwtService := jwt.NewService(testSecret, "voyagee-test", time.Hour)
	resolver := &stubResolver{err: &services.ServiceError{Kind: services.KindInternal, Message: "Erro interno do servidor", Err: errors.New("db down")}}

	router := setupTestRouter()
	router.GET("/protected", AuthMiddleware(jwtService, resolver, quietLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, err := jwtService.GenerateToken(uuid.New(), "ana@example.com", models.RoleUser, models.TipoViajante)
	require.NoError(t, err)

	w := perform(router, "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestOptionalAuth(t *testing.T) {
	jwtService := jwt.NewService(testSecret, "voyagee-test", time.Hour)
	admin := newIdentity(models.RoleAdmin)
	resolver := &stubResolver{identities: map[uuid.UUID]*models.Identity{admin.ID: admin}}

	router := setupTestRouter()
	router.GET("/protected", OptionalAuth(jwtService, resolver, quietLogger()), func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok, "admin": identity.IsAdmin()})
	})

	t.Run("anonymous", func(t *testing.T) {
		w := perform(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"authenticated":false,"admin":false}`, w.Body.String())
	})

	t.Run("invalid token falls back to anonymous", func(t *testing.T) {
		w := perform(router, "Bearer garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"authenticated":false,"admin":false}`, w.Body.String())
	})

	t.Run("admin token", func(t *testing.T) {
		token, err := jwtService.GenerateToken(admin.ID, admin.Email, admin.Role, admin.Tipo)
		require.NoError(t, err)

		w := perform(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"authenticated":true,"admin":true}`, w.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	withIdentity := func(identity *models.Identity) gin.HandlerFunc {
		return func(c *gin.Context) {
			if identity != nil {
				c.Set(IdentityContextKey, identity)
			}
			c.Next()
		}
	}

	tests := []struct {
		name     string
		identity *models.Identity
		status   int
	}{
		{"admin passes", newIdentity(models.RoleAdmin), http.StatusOK},
		{"guide is forbidden", newIdentity(models.RoleGuide), http.StatusForbidden},
		{"user is forbidden", newIdentity(models.RoleUser), http.StatusForbidden},
		{"missing identity", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/protected", withIdentity(tt.identity), RequireAdmin(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := perform(router, "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
