package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/internal/services"
)

// DestinationHandler handles /destinos
type DestinationHandler struct {
	destinations *services.DestinationService
	pager        Pager
	logger       *logrus.Logger
}

// NewDestinationHandler creates a new destination handler
func NewDestinationHandler(destinations *services.DestinationService, pager Pager, logger *logrus.Logger) *DestinationHandler {
	return &DestinationHandler{
		destinations: destinations,
		pager:        pager,
		logger:       logger,
	}
}

// Create handles POST /destinos
func (h *DestinationHandler) Create(c *gin.Context) {
	var req models.CreateDestinationRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	destination, err := h.destinations.Create(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Destino criado com sucesso",
		"destino": destination,
	})
}

// List handles GET /destinos
func (h *DestinationHandler) List(c *gin.Context) {
	h.list(c, models.DestinationFilter{
		Estado: c.Query("estado"),
		Cidade: c.Query("cidade"),
	})
}

// ListByUser handles GET /destinos/usuario/:userId
func (h *DestinationHandler) ListByUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	h.list(c, models.DestinationFilter{
		Estado:    c.Query("estado"),
		Cidade:    c.Query("cidade"),
		CriadorID: &userID,
	})
}

func (h *DestinationHandler) list(c *gin.Context, filter models.DestinationFilter) {
	destinations, pagination, err := h.destinations.List(c.Request.Context(), filter, h.pager.Parse(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"destinos":   destinations,
		"pagination": pagination,
	})
}

// Get handles GET /destinos/:id
func (h *DestinationHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	destination, err := h.destinations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"destino": destination,
	})
}

// Update handles PATCH /destinos/:id
func (h *DestinationHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateDestinationRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	destination, err := h.destinations.Update(c.Request.Context(), identity(c), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Destino atualizado com sucesso",
		"destino": destination,
	})
}

// Delete handles DELETE /destinos/:id
func (h *DestinationHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.destinations.Delete(c.Request.Context(), identity(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Destino removido com sucesso",
	})
}
