package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/internal/services"
)

// ItineraryHandler handles /roteiros
type ItineraryHandler struct {
	itineraries *services.ItineraryService
	pager       Pager
	logger      *logrus.Logger
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(itineraries *services.ItineraryService, pager Pager, logger *logrus.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		itineraries: itineraries,
		pager:       pager,
		logger:      logger,
	}
}

// Create handles POST /roteiros
func (h *ItineraryHandler) Create(c *gin.Context) {
	var req models.CreateItineraryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	itinerary, err := h.itineraries.Create(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Roteiro criado com sucesso",
		"roteiro": itinerary,
	})
}

// List handles GET /roteiros
func (h *ItineraryHandler) List(c *gin.Context) {
	destinoID, ok := uuidQuery(c, "destino")
	if !ok {
		return
	}
	criadorID, ok := uuidQuery(c, "criador_id")
	if !ok {
		return
	}

	h.list(c, models.ItineraryFilter{
		Status:    c.Query("status"),
		Data:      c.Query("data"),
		DestinoID: destinoID,
		CriadorID: criadorID,
	})
}

// ListByUser handles GET /roteiros/usuario/:userId
func (h *ItineraryHandler) ListByUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	h.list(c, models.ItineraryFilter{
		Status:    c.Query("status"),
		CriadorID: &userID,
	})
}

func (h *ItineraryHandler) list(c *gin.Context, filter models.ItineraryFilter) {
	itineraries, pagination, err := h.itineraries.List(c.Request.Context(), filter, h.pager.Parse(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"roteiros":   itineraries,
		"pagination": pagination,
	})
}

// Get handles GET /roteiros/:id
func (h *ItineraryHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	itinerary, err := h.itineraries.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"roteiro": itinerary,
	})
}

// Update handles PATCH /roteiros/:id
func (h *ItineraryHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateItineraryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	itinerary, err := h.itineraries.Update(c.Request.Context(), identity(c), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Roteiro atualizado com sucesso",
		"roteiro": itinerary,
	})
}

// Delete handles DELETE /roteiros/:id
func (h *ItineraryHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.itineraries.Delete(c.Request.Context(), identity(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Roteiro removido com sucesso",
	})
}

// Rate handles POST /roteiros/:id/avaliar
func (h *ItineraryHandler) Rate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.RateItineraryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	summary, err := h.itineraries.Rate(c.Request.Context(), identity(c), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Avaliação registrada com sucesso",
		"avaliacao": summary,
	})
}
