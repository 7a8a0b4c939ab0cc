package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/internal/services"
	"github.com/voyagee/travel-backend/pkg/jwt"
)

// IdentityContextKey is the key used to store the authenticated identity in Gin context
const IdentityContextKey = "identity"

// IdentityResolver reloads the person behind a verified token
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uuid.UUID) (*models.Identity, error)
}

type authFailure struct {
	status  int
	message string
	code    string
}

// AuthMiddleware validates the bearer token, reloads the identity from storage
// and stores it in the context. Any failure aborts with 401.
func AuthMiddleware(jwtService *jwt.Service, resolver IdentityResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, failure := authenticate(c, jwtService, resolver, logger)
		if failure != nil {
			abort(c, failure)
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// OptionalAuth resolves the identity when a valid bearer token is present and
// otherwise lets the request through anonymously
func OptionalAuth(jwtService *jwt.Service, resolver IdentityResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		identity, failure := authenticate(c, jwtService, resolver, logger)
		if failure != nil {
			if failure.status == http.StatusInternalServerError {
				abort(c, failure)
				return
			}
			c.Next()
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// RequireAdmin rejects non-admin identities with 403. Must be used after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := GetIdentity(c)
		if !exists {
			abort(c, &authFailure{http.StatusUnauthorized, "Usuário não autenticado", "MISSING_USER_CONTEXT"})
			return
		}

		if !identity.IsAdmin() {
			abort(c, &authFailure{http.StatusForbidden, "Acesso negado. Apenas administradores.", "INSUFFICIENT_PERMISSIONS"})
			return
		}

		c.Next()
	}
}

// GetIdentity retrieves the authenticated identity from Gin context
func GetIdentity(c *gin.Context) (*models.Identity, bool) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil, false
	}

	identity, ok := value.(*models.Identity)
	if !ok || identity == nil {
		return nil, false
	}

	return identity, true
}

// MustGetIdentity retrieves the identity or panics (use only after AuthMiddleware)
func MustGetIdentity(c *gin.Context) *models.Identity {
	identity, exists := GetIdentity(c)
	if !exists {
		panic("identity not found - ensure AuthMiddleware is applied")
	}
	return identity
}

func authenticate(c *gin.Context, jwtService *jwt.Service, resolver IdentityResolver, logger *logrus.Logger) (*models.Identity, *authFailure) {
	entry := logger.WithFields(logrus.Fields{
		"path": c.Request.URL.Path,
		"ip":   c.ClientIP(),
	})

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		entry.Warn("Auth failed: missing authorization header")
		return nil, &authFailure{http.StatusUnauthorized, "Token de acesso não fornecido", "MISSING_AUTH_HEADER"}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		entry.Warn("Auth failed: invalid authorization format")
		return nil, &authFailure{http.StatusUnauthorized, "Formato de token inválido. Use: Bearer <token>", "INVALID_AUTH_FORMAT"}
	}

	claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			entry.WithError(err).Warn("Auth failed: token expired")
			return nil, &authFailure{http.StatusUnauthorized, "Token expirado", "TOKEN_EXPIRED"}
		}
		entry.WithError(err).Warn("Auth failed: invalid token")
		return nil, &authFailure{http.StatusUnauthorized, "Token inválido", "INVALID_TOKEN"}
	}

	identity, err := resolver.ResolveIdentity(c.Request.Context(), claims.UserID)
	if err != nil {
		var se *services.ServiceError
		if errors.As(err, &se) && se.Kind == services.KindUnauthenticated {
			entry.WithField("user_id", claims.UserID).Warn("Auth failed: " + se.Message)
			return nil, &authFailure{http.StatusUnauthorized, se.Message, "USER_NOT_FOUND"}
		}
		entry.WithError(err).Error("Auth failed: could not load identity")
		return nil, &authFailure{http.StatusInternalServerError, "Erro interno do servidor", "INTERNAL_ERROR"}
	}

	return identity, nil
}

func abort(c *gin.Context, failure *authFailure) {
	c.AbortWithStatusJSON(failure.status, gin.H{
		"success": false,
		"message": failure.message,
		"code":    failure.code,
	})
}
