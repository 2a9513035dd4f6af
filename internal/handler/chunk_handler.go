package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LoganWeir/muni-predict/internal/service"
	"github.com/LoganWeir/muni-predict/pkg/response"
)

// ChunkHandler handles HTTP requests for chunk definitions
type ChunkHandler struct {
	service *service.ChunkService
}

// NewChunkHandler creates a new chunk handler
func NewChunkHandler(service *service.ChunkService) *ChunkHandler {
	return &ChunkHandler{service: service}
}

// GetDefinitions handles GET /api/v1/chunks/definitions
func (h *ChunkHandler) GetDefinitions(c *gin.Context) {
	defs, err := h.service.GetDefinitions()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get chunk definitions", err)
		return
	}

	response.Success(c, gin.H{
		"data":  defs,
		"total": len(defs),
	})
}
