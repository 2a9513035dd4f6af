package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LoganWeir/muni-predict/internal/service"
	"github.com/LoganWeir/muni-predict/pkg/response"
)

// FeatureHandler handles HTTP requests for model features
type FeatureHandler struct {
	service *service.FeatureService
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(service *service.FeatureService) *FeatureHandler {
	return &FeatureHandler{service: service}
}

// GetTripFeatures handles GET /api/v1/features/trips
func (h *FeatureHandler) GetTripFeatures(c *gin.Context) {
	feats, err := h.service.GetTripFeatures()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get trip features", err)
		return
	}

	response.Success(c, gin.H{
		"data":  feats,
		"total": len(feats),
	})
}

// GetChunkFeatures handles GET /api/v1/features/chunks?resolution=N&tripId=X
func (h *FeatureHandler) GetChunkFeatures(c *gin.Context) {
	resolution, err := strconv.Atoi(c.Query("resolution"))
	if err != nil || resolution < 1 {
		response.Error(c, http.StatusBadRequest, "Invalid resolution", err)
		return
	}

	feats, err := h.service.GetChunkFeatures(resolution, c.Query("tripId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get chunk features", err)
		return
	}

	response.Success(c, gin.H{
		"resolution": resolution,
		"data":       feats,
		"total":      len(feats),
	})
}

// GetFeatureSummary handles GET /api/v1/features/summary
func (h *FeatureHandler) GetFeatureSummary(c *gin.Context) {
	summary, err := h.service.GetFeatureSummary()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get feature summary", err)
		return
	}

	response.Success(c, summary)
}
