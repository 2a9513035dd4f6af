package repository

import (
	"database/sql"
	"fmt"

	"github.com/LoganWeir/muni-predict/internal/models"
)

// RunRepository handles database operations for run summaries.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// InsertSummary persists one stage's diagnostic counters.
func (r *RunRepository) InsertSummary(s models.RunSummary) error {
	_, err := r.db.Exec(`
		INSERT INTO run_summaries (
			id, stage, started_at, finished_at,
			total_lines, kept_lines,
			start_hits, labeled_starts, unmatched_starts,
			committed_trips, committed_documents,
			empty_trips, endless_trips, sparse_trips, too_small_trips, too_large_trips,
			definitions, chunked_trips, feature_trips, strict_rejects
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Stage, s.StartedAt, s.FinishedAt,
		s.TotalLines, s.KeptLines,
		s.StartHits, s.LabeledStarts, s.UnmatchedStarts,
		s.CommittedTrips, s.CommittedDocuments,
		s.EmptyTrips, s.EndlessTrips, s.SparseTrips, s.TooSmallTrips, s.TooLargeTrips,
		s.Definitions, s.ChunkedTrips, s.FeatureTrips, s.StrictRejects)
	if err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}

// ListSummaries returns all run summaries, newest first.
func (r *RunRepository) ListSummaries() ([]models.RunSummary, error) {
	rows, err := r.db.Query(`
		SELECT id, stage, started_at, finished_at,
		       total_lines, kept_lines,
		       start_hits, labeled_starts, unmatched_starts,
		       committed_trips, committed_documents,
		       empty_trips, endless_trips, sparse_trips, too_small_trips, too_large_trips,
		       definitions, chunked_trips, feature_trips, strict_rejects
		FROM run_summaries
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.RunSummary
	for rows.Next() {
		var s models.RunSummary
		if err := rows.Scan(&s.ID, &s.Stage, &s.StartedAt, &s.FinishedAt,
			&s.TotalLines, &s.KeptLines,
			&s.StartHits, &s.LabeledStarts, &s.UnmatchedStarts,
			&s.CommittedTrips, &s.CommittedDocuments,
			&s.EmptyTrips, &s.EndlessTrips, &s.SparseTrips, &s.TooSmallTrips, &s.TooLargeTrips,
			&s.Definitions, &s.ChunkedTrips, &s.FeatureTrips, &s.StrictRejects); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
