package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/LoganWeir/muni-predict/internal/models"
)

// TripRepository handles database operations for labeled trip records.
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// Clear empties the labeled collection before a new segmentation run.
func (r *TripRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM trip_records"); err != nil {
		return fmt.Errorf("failed to clear trip_records: %w", err)
	}
	return nil
}

const tripRecordColumns = `record_id, trip_id, block, vehicle_tag, latitude, longitude, speed, heading,
	report_time, timestamp, extra, trip_start, trip_end, sched_trip_id, sched_diff_seconds, service_id, minutes_noon_sqr`

// UpsertStart writes a trip start record: the raw record plus the schedule
// match fields, flagged trip_start. Idempotent on record id.
func (r *TripRepository) UpsertStart(start models.TripStart, rec models.Record) error {
	extra, err := marshalExtra(rec.Extra)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO trip_records (`+tripRecordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, 0, ?, ?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			trip_id = excluded.trip_id,
			trip_start = 1,
			sched_trip_id = excluded.sched_trip_id,
			sched_diff_seconds = excluded.sched_diff_seconds,
			service_id = excluded.service_id,
			minutes_noon_sqr = excluded.minutes_noon_sqr
	`, rec.ID, start.TripID, rec.Block, rec.VehicleTag, rec.Latitude, rec.Longitude,
		rec.Speed, rec.Heading, rec.ReportTime, rec.Timestamp, extra,
		start.SchedTripID, start.SchedDiffSeconds, start.ServiceID, start.MinutesNoonSqr)
	if err != nil {
		return fmt.Errorf("failed to upsert trip start %s: %w", start.TripID, err)
	}
	return nil
}

// UpsertTripRecords writes a committed trip's extension records, upserting
// by record id so a rerun cannot duplicate documents.
func (r *TripRepository) UpsertTripRecords(records []models.TripRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO trip_records (` + tripRecordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, NULL, NULL)
		ON CONFLICT(record_id) DO UPDATE SET
			trip_id = excluded.trip_id,
			trip_end = excluded.trip_end
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		extra, err := marshalExtra(rec.Extra)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(rec.ID, rec.TripID, rec.Block, rec.VehicleTag, rec.Latitude,
			rec.Longitude, rec.Speed, rec.Heading, rec.ReportTime, rec.Timestamp, extra,
			boolToInt(rec.TripStart), boolToInt(rec.TripEnd)); err != nil {
			return fmt.Errorf("failed to upsert trip record %d: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteTrip removes every document of a rejected trip, start included.
func (r *TripRepository) DeleteTrip(tripID string) error {
	if _, err := r.db.Exec("DELETE FROM trip_records WHERE trip_id = ?", tripID); err != nil {
		return fmt.Errorf("failed to delete trip %s: %w", tripID, err)
	}
	return nil
}

// TripStarts returns every start record as a TripStart, ordered by start
// timestamp.
func (r *TripRepository) TripStarts() ([]models.TripStart, error) {
	rows, err := r.db.Query(`
		SELECT trip_id, sched_trip_id, block, vehicle_tag, timestamp, sched_diff_seconds, service_id, minutes_noon_sqr, record_id
		FROM trip_records
		WHERE trip_start = 1
		ORDER BY timestamp
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip starts: %w", err)
	}
	defer rows.Close()

	var starts []models.TripStart
	for rows.Next() {
		var s models.TripStart
		var schedTripID, serviceID sql.NullString
		var schedDiff, noonSqr sql.NullInt64
		if err := rows.Scan(&s.TripID, &schedTripID, &s.Block, &s.VehicleTag, &s.StartTimestamp,
			&schedDiff, &serviceID, &noonSqr, &s.RecordID); err != nil {
			return nil, fmt.Errorf("failed to scan trip start: %w", err)
		}
		s.SchedTripID = schedTripID.String
		s.ServiceID = serviceID.String
		s.SchedDiffSeconds = int(schedDiff.Int64)
		s.MinutesNoonSqr = int(noonSqr.Int64)
		starts = append(starts, s)
	}
	return starts, rows.Err()
}

// DistinctTripIDs lists the committed trip identifiers.
func (r *TripRepository) DistinctTripIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT trip_id FROM trip_records ORDER BY trip_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct trip ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan trip id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TripRecords returns one trip's documents sorted by timestamp.
func (r *TripRepository) TripRecords(tripID string) ([]models.TripRecord, error) {
	rows, err := r.db.Query(`
		SELECT `+tripRecordColumns+`
		FROM trip_records
		WHERE trip_id = ?
		ORDER BY timestamp
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records for trip %s: %w", tripID, err)
	}
	defer rows.Close()

	var records []models.TripRecord
	for rows.Next() {
		rec, err := scanTripRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// TripSummaries returns the API-facing view of every committed trip.
func (r *TripRepository) TripSummaries() ([]models.TripSummary, error) {
	rows, err := r.db.Query(`
		SELECT t.trip_id,
		       MAX(CASE WHEN t.trip_start = 1 THEN COALESCE(t.sched_trip_id, '') ELSE '' END),
		       t.block,
		       t.vehicle_tag,
		       MIN(t.timestamp),
		       MAX(t.timestamp),
		       COUNT(*)
		FROM trip_records t
		GROUP BY t.trip_id
		ORDER BY MIN(t.timestamp)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.TripSummary
	for rows.Next() {
		var s models.TripSummary
		if err := rows.Scan(&s.TripID, &s.SchedTripID, &s.Block, &s.VehicleTag,
			&s.StartTimestamp, &s.EndTimestamp, &s.RecordCount); err != nil {
			return nil, fmt.Errorf("failed to scan trip summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// CountRecords returns the number of labeled trip documents.
func (r *TripRepository) CountRecords() (int64, error) {
	var n int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM trip_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count trip_records: %w", err)
	}
	return n, nil
}

func scanTripRecord(rows *sql.Rows) (models.TripRecord, error) {
	var rec models.TripRecord
	var extra, schedTripID, serviceID sql.NullString
	var tripStart, tripEnd int
	var schedDiff, noonSqr sql.NullInt64
	if err := rows.Scan(&rec.ID, &rec.TripID, &rec.Block, &rec.VehicleTag, &rec.Latitude,
		&rec.Longitude, &rec.Speed, &rec.Heading, &rec.ReportTime, &rec.Timestamp, &extra,
		&tripStart, &tripEnd, &schedTripID, &schedDiff, &serviceID, &noonSqr); err != nil {
		return rec, fmt.Errorf("failed to scan trip record: %w", err)
	}
	rec.TripStart = tripStart == 1
	rec.TripEnd = tripEnd == 1
	rec.SchedTripID = schedTripID.String
	rec.ServiceID = serviceID.String
	rec.SchedDiffSeconds = int(schedDiff.Int64)
	rec.MinutesNoonSqr = int(noonSqr.Int64)
	if extra.Valid && extra.String != "" {
		if err := json.Unmarshal([]byte(extra.String), &rec.Extra); err != nil {
			return rec, fmt.Errorf("failed to decode trip record extra: %w", err)
		}
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
