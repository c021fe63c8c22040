package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bikeride/internal/domain"
	"bikeride/internal/service"
)

// LocationHandler accepts GPS samples from riders' devices.
type LocationHandler struct {
	ingestionService *service.IngestionService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(ingestionService *service.IngestionService) *LocationHandler {
	return &LocationHandler{ingestionService: ingestionService}
}

// LocationRequest is the HTTP request body for a location sample.
type LocationRequest struct {
	Lat        *float64 `json:"lat" binding:"required"`
	Lng        *float64 `json:"lng" binding:"required"`
	Timestamp  int64    `json:"timestamp" binding:"required"`
	CustomerID string   `json:"customer_id"`
}

// IngestSample handles POST /v1/journeys/:id/locations
func (h *LocationHandler) IngestSample(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	err := h.ingestionService.IngestSample(c.Request.Context(), c.Param("id"), domain.LocationSample{
		Lat:        *req.Lat,
		Lng:        *req.Lng,
		Timestamp:  req.Timestamp,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}
