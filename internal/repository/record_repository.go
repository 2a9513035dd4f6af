package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/LoganWeir/muni-predict/internal/models"
)

// RecordRepository handles database operations for raw AVL records.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new raw record repository
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Clear empties the raw collection. Ingest for a new run never merges with a
// prior run's records.
func (r *RecordRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM avl_records"); err != nil {
		return fmt.Errorf("failed to clear avl_records: %w", err)
	}
	return nil
}

// InsertRecords bulk-inserts raw records inside one transaction.
func (r *RecordRepository) InsertRecords(records []models.Record) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO avl_records (block, vehicle_tag, latitude, longitude, speed, heading, report_time, timestamp, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		extra, err := marshalExtra(rec.Extra)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(rec.Block, rec.VehicleTag, rec.Latitude, rec.Longitude,
			rec.Speed, rec.Heading, rec.ReportTime, rec.Timestamp, extra); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}
	return tx.Commit()
}

// DistinctBlocks lists the unique block names present in the raw collection.
func (r *RecordRepository) DistinctBlocks() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT block FROM avl_records ORDER BY block")
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct blocks: %w", err)
	}
	defer rows.Close()

	var blocks []string
	for rows.Next() {
		var block string
		if err := rows.Scan(&block); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

// RecordsForBlock returns one block's records sorted by timestamp.
func (r *RecordRepository) RecordsForBlock(block string) ([]models.Record, error) {
	rows, err := r.db.Query(`
		SELECT id, block, vehicle_tag, latitude, longitude, speed, heading, report_time, timestamp, extra
		FROM avl_records
		WHERE block = ?
		ORDER BY timestamp
	`, block)
	if err != nil {
		return nil, fmt.Errorf("failed to query records for block %s: %w", block, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CandidateRecords returns the extension candidates for one trip start: the
// same block and vehicle, timestamps inside the search window, excluding
// anything already claimed by a labeled trip (trip starts included).
func (r *RecordRepository) CandidateRecords(filter models.RecordFilter) ([]models.Record, error) {
	rows, err := r.db.Query(`
		SELECT a.id, a.block, a.vehicle_tag, a.latitude, a.longitude, a.speed, a.heading, a.report_time, a.timestamp, a.extra
		FROM avl_records a
		WHERE a.block = ?
		  AND a.vehicle_tag = ?
		  AND a.timestamp > ?
		  AND a.timestamp < ?
		  AND NOT EXISTS (SELECT 1 FROM trip_records t WHERE t.record_id = a.id)
		ORDER BY a.timestamp
	`, filter.Block, filter.VehicleTag, filter.AfterTS, filter.BeforeTS)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Count returns the number of raw records staged.
func (r *RecordRepository) Count() (int64, error) {
	var n int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM avl_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count avl_records: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	var records []models.Record
	for rows.Next() {
		var rec models.Record
		var extra sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Block, &rec.VehicleTag, &rec.Latitude, &rec.Longitude,
			&rec.Speed, &rec.Heading, &rec.ReportTime, &rec.Timestamp, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if extra.Valid && extra.String != "" {
			if err := json.Unmarshal([]byte(extra.String), &rec.Extra); err != nil {
				return nil, fmt.Errorf("failed to decode record extra: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func marshalExtra(extra map[string]string) (string, error) {
	if len(extra) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("failed to encode record extra: %w", err)
	}
	return string(raw), nil
}
