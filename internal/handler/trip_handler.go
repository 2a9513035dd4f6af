package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LoganWeir/muni-predict/internal/service"
	"github.com/LoganWeir/muni-predict/pkg/response"
)

// TripHandler handles HTTP requests for committed trips
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *service.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// GetTrips handles GET /api/v1/trips
func (h *TripHandler) GetTrips(c *gin.Context) {
	trips, err := h.service.GetTrips()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get trips", err)
		return
	}

	response.Success(c, gin.H{
		"data":  trips,
		"total": len(trips),
	})
}

// GetTripRecords handles GET /api/v1/trips/:tripId/records
func (h *TripHandler) GetTripRecords(c *gin.Context) {
	tripID := c.Param("tripId")

	records, err := h.service.GetTripRecords(tripID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get trip records", err)
		return
	}
	if len(records) == 0 {
		response.NotFound(c, "Trip not found")
		return
	}

	response.Success(c, gin.H{
		"tripId": tripID,
		"data":   records,
		"total":  len(records),
	})
}
