package service

import (
	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/repository"
)

// RunService handles business logic for pipeline run summaries
type RunService struct {
	repo *repository.RunRepository
}

// NewRunService creates a new run service
func NewRunService(repo *repository.RunRepository) *RunService {
	return &RunService{repo: repo}
}

// GetRuns retrieves the stored run summaries, newest first
func (s *RunService) GetRuns() ([]models.RunSummary, error) {
	return s.repo.ListSummaries()
}
