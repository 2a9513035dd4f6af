package models

import "time"

// Pipeline stage names recorded on run summaries.
const (
	StageSegmentation = "segmentation"
	StageChunking     = "chunking"
)

// RunSummary records the per-run diagnostic counters for one pipeline stage.
// Counters that do not apply to the stage stay zero.
type RunSummary struct {
	ID         string    `json:"id" db:"id"` // uuid
	Stage      string    `json:"stage" db:"stage"`
	StartedAt  time.Time `json:"startedAt" db:"started_at"`
	FinishedAt time.Time `json:"finishedAt" db:"finished_at"`

	// Ingest
	TotalLines int `json:"totalLines" db:"total_lines"`
	KeptLines  int `json:"keptLines" db:"kept_lines"`

	// Start detection
	StartHits       int `json:"startHits" db:"start_hits"`             // raw geofence intersections
	LabeledStarts   int `json:"labeledStarts" db:"labeled_starts"`     // starts matched to a departure
	UnmatchedStarts int `json:"unmatchedStarts" db:"unmatched_starts"` // geofence false positives

	// Trip extension
	CommittedTrips     int `json:"committedTrips" db:"committed_trips"`
	CommittedDocuments int `json:"committedDocuments" db:"committed_documents"`
	EmptyTrips         int `json:"emptyTrips" db:"empty_trips"`
	EndlessTrips       int `json:"endlessTrips" db:"endless_trips"`
	SparseTrips        int `json:"sparseTrips" db:"sparse_trips"`
	TooSmallTrips      int `json:"tooSmallTrips" db:"too_small_trips"`
	TooLargeTrips      int `json:"tooLargeTrips" db:"too_large_trips"`

	// Chunking
	Definitions   int `json:"definitions" db:"definitions"`       // one per resolution
	ChunkedTrips  int `json:"chunkedTrips" db:"chunked_trips"`    // (trip, resolution) pairs labeled
	FeatureTrips  int `json:"featureTrips" db:"feature_trips"`    // trips with trip-level features
	StrictRejects int `json:"strictRejects" db:"strict_rejects"`  // trips dropped by the chunk ceiling
}

// CountTrip bumps the rejection counter matching a trip outcome class.
func (s *RunSummary) CountTrip(class string) {
	switch class {
	case TripCommitted:
		s.CommittedTrips++
	case TripEmpty:
		s.EmptyTrips++
	case TripEndless:
		s.EndlessTrips++
	case TripSparse:
		s.SparseTrips++
	case TripTooSmall:
		s.TooSmallTrips++
	case TripTooLarge:
		s.TooLargeTrips++
	}
}
