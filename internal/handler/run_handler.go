package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LoganWeir/muni-predict/internal/service"
	"github.com/LoganWeir/muni-predict/pkg/response"
)

// RunHandler handles HTTP requests for pipeline run summaries
type RunHandler struct {
	service *service.RunService
}

// NewRunHandler creates a new run handler
func NewRunHandler(service *service.RunService) *RunHandler {
	return &RunHandler{service: service}
}

// GetRuns handles GET /api/v1/runs
func (h *RunHandler) GetRuns(c *gin.Context) {
	runs, err := h.service.GetRuns()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get run summaries", err)
		return
	}

	response.Success(c, gin.H{
		"data":  runs,
		"total": len(runs),
	})
}
