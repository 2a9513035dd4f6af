package service

import (
	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/repository"
)

// TripService handles business logic for committed trips
type TripService struct {
	repo *repository.TripRepository
}

// NewTripService creates a new trip service
func NewTripService(repo *repository.TripRepository) *TripService {
	return &TripService{repo: repo}
}

// GetTrips retrieves the committed trip summaries
func (s *TripService) GetTrips() ([]models.TripSummary, error) {
	return s.repo.TripSummaries()
}

// GetTripRecords retrieves the labeled records of one trip, ordered by time
func (s *TripService) GetTripRecords(tripID string) ([]models.TripRecord, error) {
	return s.repo.TripRecords(tripID)
}
