package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/internal/services"
)

// TourHandler handles /passeios
type TourHandler struct {
	tours  *services.TourService
	pager  Pager
	logger *logrus.Logger
}

// NewTourHandler creates a new tour handler
func NewTourHandler(tours *services.TourService, pager Pager, logger *logrus.Logger) *TourHandler {
	return &TourHandler{
		tours:  tours,
		pager:  pager,
		logger: logger,
	}
}

// Create handles POST /passeios
func (h *TourHandler) Create(c *gin.Context) {
	var req models.CreateTourRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tour, err := h.tours.Create(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Passeio criado com sucesso",
		"passeio": tour,
	})
}

// List handles GET /passeios
func (h *TourHandler) List(c *gin.Context) {
	destinoID, ok := uuidQuery(c, "destino_id")
	if !ok {
		return
	}
	criadorID, ok := uuidQuery(c, "criador_id")
	if !ok {
		return
	}
	precoMin, ok := floatQuery(c, "preco_min")
	if !ok {
		return
	}
	precoMax, ok := floatQuery(c, "preco_max")
	if !ok {
		return
	}

	filter := models.TourFilter{
		DestinoID:        destinoID,
		CriadorID:        criadorID,
		NivelDificuldade: c.Query("nivel_dificuldade"),
		PrecoMin:         precoMin,
		PrecoMax:         precoMax,
	}

	tours, pagination, err := h.tours.List(c.Request.Context(), filter, h.pager.Parse(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"passeios":   tours,
		"pagination": pagination,
	})
}

// ListByUser handles GET /passeios/usuario/:userId
func (h *TourHandler) ListByUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	tours, pagination, err := h.tours.ListByCreator(c.Request.Context(), userID, c.Query("nivel_dificuldade"), h.pager.Parse(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"passeios":   tours,
		"pagination": pagination,
	})
}

// Get handles GET /passeios/:id
func (h *TourHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	tour, err := h.tours.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"passeio": tour,
	})
}

// Update handles PATCH /passeios/:id
func (h *TourHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTourRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tour, err := h.tours.Update(c.Request.Context(), identity(c), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Passeio atualizado com sucesso",
		"passeio": tour,
	})
}

// Delete handles DELETE /passeios/:id
func (h *TourHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.tours.Delete(c.Request.Context(), identity(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Passeio removido com sucesso",
	})
}
