package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voyagee/travel-backend/internal/middleware"
	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/internal/services"
)

// AuthHandler handles authentication and profile HTTP requests
type AuthHandler struct {
	auth   *services.AuthService
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	// anonymous callers are allowed; an admin caller may grant the admin role
	requester, _ := middleware.GetIdentity(c)

	if err := h.auth.Register(c.Request.Context(), requester, req, requestMeta(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Usuário registrado com sucesso",
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       result.User,
	})
}

// VerifyToken handles GET /auth/verify-token
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    identity(c),
	})
}

// ListUsers handles GET /auth/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
	})
}

// GetUser handles GET /auth/users/:id
func (h *AuthHandler) GetUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.auth.GetUser(c.Request.Context(), identity(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    profile,
	})
}

// UpdateProfile handles PATCH /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	profile, err := h.auth.UpdateProfile(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Perfil atualizado com sucesso",
		"user":    profile,
	})
}
