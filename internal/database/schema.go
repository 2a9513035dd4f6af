package database

import (
	"database/sql"
	"fmt"
)

// The three logical staging collections plus derived outputs. Raw records
// and trip records keep the same ping schema; trip records add the trip
// labeling fields, and chunk labels hang off them per resolution.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS avl_records (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		block        TEXT NOT NULL,
		vehicle_tag  TEXT NOT NULL,
		latitude     REAL NOT NULL,
		longitude    REAL NOT NULL,
		speed        TEXT,
		heading      TEXT,
		report_time  TEXT NOT NULL,
		timestamp    REAL NOT NULL,
		extra        TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_avl_block_ts ON avl_records(block, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_avl_block_tag_ts ON avl_records(block, vehicle_tag, timestamp)`,

	`CREATE TABLE IF NOT EXISTS trip_records (
		record_id          INTEGER PRIMARY KEY,
		trip_id            TEXT NOT NULL,
		block              TEXT NOT NULL,
		vehicle_tag        TEXT NOT NULL,
		latitude           REAL NOT NULL,
		longitude          REAL NOT NULL,
		speed              TEXT,
		heading            TEXT,
		report_time        TEXT NOT NULL,
		timestamp          REAL NOT NULL,
		extra              TEXT,
		trip_start         INTEGER NOT NULL DEFAULT 0,
		trip_end           INTEGER NOT NULL DEFAULT 0,
		sched_trip_id      TEXT,
		sched_diff_seconds INTEGER,
		service_id         TEXT,
		minutes_noon_sqr   INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trip_records_trip_ts ON trip_records(trip_id, timestamp)`,

	`CREATE TABLE IF NOT EXISTS chunk_labels (
		record_id  INTEGER NOT NULL,
		trip_id    TEXT NOT NULL,
		resolution INTEGER NOT NULL,
		seq        INTEGER NOT NULL,
		PRIMARY KEY (record_id, resolution)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chunk_labels_trip ON chunk_labels(trip_id, resolution)`,

	`CREATE TABLE IF NOT EXISTS chunk_boundaries (
		resolution   INTEGER NOT NULL,
		seq          INTEGER NOT NULL,
		stop_id      TEXT NOT NULL,
		stop_seq     INTEGER NOT NULL,
		stop_name    TEXT,
		stop_lat     REAL NOT NULL,
		stop_lon     REAL NOT NULL,
		cum_distance REAL NOT NULL,
		seg_distance REAL NOT NULL,
		PRIMARY KEY (resolution, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS trip_features (
		trip_id                TEXT PRIMARY KEY,
		start_timestamp        REAL NOT NULL,
		duration               REAL NOT NULL,
		minutes_since_midnight INTEGER NOT NULL,
		minutes_noon_sqr       INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS chunk_features (
		trip_id         TEXT NOT NULL,
		resolution      INTEGER NOT NULL,
		seq             INTEGER NOT NULL,
		elapsed_seconds REAL NOT NULL,
		minutes_noon_sqr INTEGER NOT NULL,
		mean_speed      REAL NOT NULL,
		speed_samples   INTEGER NOT NULL,
		PRIMARY KEY (trip_id, resolution, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS run_summaries (
		id                  TEXT PRIMARY KEY,
		stage               TEXT NOT NULL,
		started_at          TIMESTAMP NOT NULL,
		finished_at         TIMESTAMP NOT NULL,
		total_lines         INTEGER NOT NULL DEFAULT 0,
		kept_lines          INTEGER NOT NULL DEFAULT 0,
		start_hits          INTEGER NOT NULL DEFAULT 0,
		labeled_starts      INTEGER NOT NULL DEFAULT 0,
		unmatched_starts    INTEGER NOT NULL DEFAULT 0,
		committed_trips     INTEGER NOT NULL DEFAULT 0,
		committed_documents INTEGER NOT NULL DEFAULT 0,
		empty_trips         INTEGER NOT NULL DEFAULT 0,
		endless_trips       INTEGER NOT NULL DEFAULT 0,
		sparse_trips        INTEGER NOT NULL DEFAULT 0,
		too_small_trips     INTEGER NOT NULL DEFAULT 0,
		too_large_trips     INTEGER NOT NULL DEFAULT 0,
		definitions         INTEGER NOT NULL DEFAULT 0,
		chunked_trips       INTEGER NOT NULL DEFAULT 0,
		feature_trips       INTEGER NOT NULL DEFAULT 0,
		strict_rejects      INTEGER NOT NULL DEFAULT 0
	)`,
}

func createSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
