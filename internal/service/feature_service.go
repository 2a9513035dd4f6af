package service

import (
	"sort"

	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/repository"
	"github.com/LoganWeir/muni-predict/internal/stats"
)

// FeatureService handles business logic for model features
type FeatureService struct {
	repo *repository.FeatureRepository
}

// NewFeatureService creates a new feature service
func NewFeatureService(repo *repository.FeatureRepository) *FeatureService {
	return &FeatureService{repo: repo}
}

// GetTripFeatures retrieves the trip-level feature rows
func (s *FeatureService) GetTripFeatures() ([]models.TripFeature, error) {
	return s.repo.TripFeatures()
}

// GetChunkFeatures retrieves chunk features for one resolution, optionally
// filtered to one trip
func (s *FeatureService) GetChunkFeatures(resolution int, tripID string) ([]models.ChunkFeature, error) {
	return s.repo.ChunkFeatures(resolution, tripID)
}

// GetFeatureSummary builds distribution summaries over the trip durations
// and the per-sequence chunk elapsed times
func (s *FeatureService) GetFeatureSummary() (models.FeatureSummary, error) {
	var summary models.FeatureSummary

	trips, err := s.repo.TripFeatures()
	if err != nil {
		return summary, err
	}
	durations := make([]float64, len(trips))
	for i, f := range trips {
		durations[i] = f.Duration
	}
	summary.TripDuration = distribution(durations)

	resolutions, err := s.repo.Resolutions()
	if err != nil {
		return summary, err
	}
	for _, resolution := range resolutions {
		feats, err := s.repo.ChunkFeatures(resolution, "")
		if err != nil {
			return summary, err
		}

		bySeq := make(map[int][]float64)
		for _, f := range feats {
			bySeq[f.Seq] = append(bySeq[f.Seq], f.ElapsedSeconds)
		}
		seqs := make([]int, 0, len(bySeq))
		for seq := range bySeq {
			seqs = append(seqs, seq)
		}
		sort.Ints(seqs)

		for _, seq := range seqs {
			summary.Chunks = append(summary.Chunks, models.ChunkElapsedSummary{
				Resolution: resolution,
				Seq:        seq,
				Elapsed:    distribution(bySeq[seq]),
			})
		}
	}
	return summary, nil
}

func distribution(values []float64) models.Distribution {
	return models.Distribution{
		Count:  len(values),
		Mean:   stats.Mean(values),
		StdDev: stats.StdDev(values),
		Min:    stats.Min(values),
		P10:    stats.Quantile(values, 0.1),
		Median: stats.Median(values),
		P90:    stats.Quantile(values, 0.9),
		Max:    stats.Max(values),
	}
}
