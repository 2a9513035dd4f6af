package service

import (
	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/repository"
)

// ChunkService handles business logic for chunk definitions
type ChunkService struct {
	repo *repository.ChunkRepository
}

// NewChunkService creates a new chunk service
func NewChunkService(repo *repository.ChunkRepository) *ChunkService {
	return &ChunkService{repo: repo}
}

// GetDefinitions retrieves every stored chunk definition
func (s *ChunkService) GetDefinitions() ([]models.ChunkDefinition, error) {
	return s.repo.Definitions()
}
