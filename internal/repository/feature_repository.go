package repository

import (
	"database/sql"
	"fmt"

	"github.com/LoganWeir/muni-predict/internal/models"
)

// FeatureRepository handles database operations for trip and chunk features.
type FeatureRepository struct {
	db *sql.DB
}

// NewFeatureRepository creates a new feature repository
func NewFeatureRepository(db *sql.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

// Clear empties both feature collections before a new chunking run.
func (r *FeatureRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM trip_features"); err != nil {
		return fmt.Errorf("failed to clear trip_features: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM chunk_features"); err != nil {
		return fmt.Errorf("failed to clear chunk_features: %w", err)
	}
	return nil
}

// InsertTripFeature writes one trip's feature row. Write-once per run.
func (r *FeatureRepository) InsertTripFeature(f models.TripFeature) error {
	_, err := r.db.Exec(`
		INSERT INTO trip_features (trip_id, start_timestamp, duration, minutes_since_midnight, minutes_noon_sqr)
		VALUES (?, ?, ?, ?, ?)
	`, f.TripID, f.StartTimestamp, f.Duration, f.MinutesSinceMidnight, f.MinutesNoonSqr)
	if err != nil {
		return fmt.Errorf("failed to insert trip feature %s: %w", f.TripID, err)
	}
	return nil
}

// InsertChunkFeatures writes one trip's chunk features for one resolution.
func (r *FeatureRepository) InsertChunkFeatures(feats []models.ChunkFeature) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO chunk_features (trip_id, resolution, seq, elapsed_seconds, minutes_noon_sqr, mean_speed, speed_samples)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range feats {
		if _, err := stmt.Exec(f.TripID, f.Resolution, f.Seq, f.ElapsedSeconds,
			f.MinutesNoonSqr, f.MeanSpeed, f.SpeedSamples); err != nil {
			return fmt.Errorf("failed to insert chunk feature %s/%d/%d: %w", f.TripID, f.Resolution, f.Seq, err)
		}
	}
	return tx.Commit()
}

// Resolutions returns the distinct resolutions present in the chunk feature
// collection, ascending.
func (r *FeatureRepository) Resolutions() ([]int, error) {
	rows, err := r.db.Query("SELECT DISTINCT resolution FROM chunk_features ORDER BY resolution")
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()

	var resolutions []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan resolution: %w", err)
		}
		resolutions = append(resolutions, n)
	}
	return resolutions, rows.Err()
}

// TripFeatures returns every trip feature row.
func (r *FeatureRepository) TripFeatures() ([]models.TripFeature, error) {
	rows, err := r.db.Query(`
		SELECT trip_id, start_timestamp, duration, minutes_since_midnight, minutes_noon_sqr
		FROM trip_features ORDER BY start_timestamp
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip features: %w", err)
	}
	defer rows.Close()

	var feats []models.TripFeature
	for rows.Next() {
		var f models.TripFeature
		if err := rows.Scan(&f.TripID, &f.StartTimestamp, &f.Duration,
			&f.MinutesSinceMidnight, &f.MinutesNoonSqr); err != nil {
			return nil, fmt.Errorf("failed to scan trip feature: %w", err)
		}
		feats = append(feats, f)
	}
	return feats, rows.Err()
}

// ChunkFeatures returns the chunk features at one resolution, optionally
// filtered to a single trip.
func (r *FeatureRepository) ChunkFeatures(resolution int, tripID string) ([]models.ChunkFeature, error) {
	query := `
		SELECT trip_id, resolution, seq, elapsed_seconds, minutes_noon_sqr, mean_speed, speed_samples
		FROM chunk_features WHERE resolution = ?
	`
	args := []interface{}{resolution}
	if tripID != "" {
		query += " AND trip_id = ?"
		args = append(args, tripID)
	}
	query += " ORDER BY trip_id, seq"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk features: %w", err)
	}
	defer rows.Close()

	var feats []models.ChunkFeature
	for rows.Next() {
		var f models.ChunkFeature
		if err := rows.Scan(&f.TripID, &f.Resolution, &f.Seq, &f.ElapsedSeconds,
			&f.MinutesNoonSqr, &f.MeanSpeed, &f.SpeedSamples); err != nil {
			return nil, fmt.Errorf("failed to scan chunk feature: %w", err)
		}
		feats = append(feats, f)
	}
	return feats, rows.Err()
}
