package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/voyagee/travel-backend/internal/config"
	"github.com/voyagee/travel-backend/internal/middleware"
	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/internal/services"
	"github.com/voyagee/travel-backend/internal/utils"
)

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var statusByKind = map[services.ErrorKind]int{
	services.KindValidation:         http.StatusBadRequest,
	services.KindInvalidState:       http.StatusBadRequest,
	services.KindUnauthenticated:    http.StatusUnauthorized,
	services.KindInvalidCredentials: http.StatusUnauthorized,
	services.KindForbidden:          http.StatusForbidden,
	services.KindNotFound:           http.StatusNotFound,
	services.KindConflict:           http.StatusConflict,
	services.KindInternal:           http.StatusInternalServerError,
}

// respondError maps a service error to its HTTP status. Internal causes are
// logged and never sent to the client.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var se *services.ServiceError
	if !errors.As(err, &se) {
		se = &services.ServiceError{Kind: services.KindInternal, Message: "Erro interno do servidor", Err: err}
	}

	status, ok := statusByKind[se.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("Request failed")
		_ = c.Error(err)
	}

	c.JSON(status, ErrorResponse{Success: false, Message: se.Message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Message: message})
}

const msgInvalidBody = "Dados inválidos"

// bindJSON decodes and validates the body. Failures get a fixed 400 message;
// the binding detail only goes to the log.
func bindJSON(c *gin.Context, logger *logrus.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Debug("Request body rejected")
		badRequest(c, msgInvalidBody)
		return false
	}
	return true
}

// uuidParam parses a path parameter; an invalid id is answered with 400
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "ID inválido")
		return uuid.Nil, false
	}
	return id, true
}

// uuidQuery parses an optional query parameter
func uuidQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "Parâmetro "+name+" inválido")
		return nil, false
	}
	return &id, true
}

// floatQuery parses an optional numeric query parameter
func floatQuery(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		badRequest(c, "Parâmetro "+name+" inválido")
		return nil, false
	}
	return &v, true
}

// Pager reads page and limit query parameters
type Pager struct {
	defaultLimit int
	maxLimit     int
}

// NewPager creates a pager from the pagination config
func NewPager(cfg config.PaginationConfig) Pager {
	return Pager{defaultLimit: cfg.DefaultLimit, maxLimit: cfg.MaxLimit}
}

// Parse returns the requested page. Missing or invalid values fall back to
// page 1 and the default limit; limit is capped at the maximum.
func (p Pager) Parse(c *gin.Context) models.PageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = p.defaultLimit
	}
	if limit > p.maxLimit {
		limit = p.maxLimit
	}

	return models.PageRequest{Page: page, Limit: limit}
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

// identity returns the authenticated caller; routes using it sit behind AuthMiddleware
func identity(c *gin.Context) *models.Identity {
	return middleware.MustGetIdentity(c)
}
