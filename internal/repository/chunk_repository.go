package repository

import (
	"database/sql"
	"fmt"

	"github.com/LoganWeir/muni-predict/internal/models"
)

// ChunkRepository handles database operations for chunk definitions and
// per-record chunk labels.
type ChunkRepository struct {
	db *sql.DB
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ClearDefinitions empties the chunk definition collection.
func (r *ChunkRepository) ClearDefinitions() error {
	if _, err := r.db.Exec("DELETE FROM chunk_boundaries"); err != nil {
		return fmt.Errorf("failed to clear chunk_boundaries: %w", err)
	}
	return nil
}

// ClearLabels empties all per-record chunk labels.
func (r *ChunkRepository) ClearLabels() error {
	if _, err := r.db.Exec("DELETE FROM chunk_labels"); err != nil {
		return fmt.Errorf("failed to clear chunk_labels: %w", err)
	}
	return nil
}

// InsertDefinition persists one resolution's boundary stops.
func (r *ChunkRepository) InsertDefinition(def models.ChunkDefinition) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO chunk_boundaries (resolution, seq, stop_id, stop_seq, stop_name, stop_lat, stop_lon, cum_distance, seg_distance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range def.Boundaries {
		if _, err := stmt.Exec(def.Resolution, b.Seq, b.StopID, b.StopSeq, b.StopName,
			b.StopLat, b.StopLon, b.CumulativeDistance, b.SegmentDistance); err != nil {
			return fmt.Errorf("failed to insert boundary %d/%d: %w", def.Resolution, b.Seq, err)
		}
	}
	return tx.Commit()
}

// Definitions returns every persisted chunk definition, boundaries ordered
// by sequence.
func (r *ChunkRepository) Definitions() ([]models.ChunkDefinition, error) {
	rows, err := r.db.Query(`
		SELECT resolution, seq, stop_id, stop_seq, stop_name, stop_lat, stop_lon, cum_distance, seg_distance
		FROM chunk_boundaries
		ORDER BY resolution, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk definitions: %w", err)
	}
	defer rows.Close()

	byResolution := make(map[int]*models.ChunkDefinition)
	var order []int
	for rows.Next() {
		var resolution int
		var b models.ChunkBoundary
		if err := rows.Scan(&resolution, &b.Seq, &b.StopID, &b.StopSeq, &b.StopName,
			&b.StopLat, &b.StopLon, &b.CumulativeDistance, &b.SegmentDistance); err != nil {
			return nil, fmt.Errorf("failed to scan chunk boundary: %w", err)
		}
		def, ok := byResolution[resolution]
		if !ok {
			def = &models.ChunkDefinition{Resolution: resolution}
			byResolution[resolution] = def
			order = append(order, resolution)
		}
		def.Boundaries = append(def.Boundaries, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	defs := make([]models.ChunkDefinition, 0, len(order))
	for _, resolution := range order {
		defs = append(defs, *byResolution[resolution])
	}
	return defs, nil
}

// UpsertLabels writes chunk labels, idempotent per (record, resolution).
func (r *ChunkRepository) UpsertLabels(labels []models.ChunkLabel) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO chunk_labels (record_id, trip_id, resolution, seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(record_id, resolution) DO UPDATE SET seq = excluded.seq
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, l := range labels {
		if _, err := stmt.Exec(l.RecordID, l.TripID, l.Resolution, l.Seq); err != nil {
			return fmt.Errorf("failed to upsert chunk label: %w", err)
		}
	}
	return tx.Commit()
}

// LabelsFor returns a trip's record-id to sequence mapping at one resolution.
func (r *ChunkRepository) LabelsFor(tripID string, resolution int) (map[int64]int, error) {
	rows, err := r.db.Query(`
		SELECT record_id, seq FROM chunk_labels
		WHERE trip_id = ? AND resolution = ?
	`, tripID, resolution)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels for trip %s: %w", tripID, err)
	}
	defer rows.Close()

	labels := make(map[int64]int)
	for rows.Next() {
		var recordID int64
		var seq int
		if err := rows.Scan(&recordID, &seq); err != nil {
			return nil, fmt.Errorf("failed to scan chunk label: %w", err)
		}
		labels[recordID] = seq
	}
	return labels, rows.Err()
}
