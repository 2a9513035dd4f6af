package models

// Record represents a single AVL position ping after ingest filtering.
// Speed is kept as the raw feed string; it is only parsed when features are
// aggregated, since the feed occasionally emits non-numeric values.
type Record struct {
	ID         int64   `json:"id" db:"id"`
	Block      string  `json:"block" db:"block"` // AVL TRAIN_ASSIGNMENT block name
	VehicleTag string  `json:"vehicleTag" db:"vehicle_tag"`
	Latitude   float64 `json:"latitude" db:"latitude"`
	Longitude  float64 `json:"longitude" db:"longitude"`
	Speed      string  `json:"speed" db:"speed"`
	Heading    string  `json:"heading,omitempty" db:"heading"`
	ReportTime string  `json:"reportTime" db:"report_time"` // MM/DD/YYYY HH:MM:SS, feed-local
	Timestamp  float64 `json:"timestamp" db:"timestamp"`    // seconds since epoch, derived from ReportTime

	// Raw feed columns the engine does not interpret, keyed by header name.
	// Persisted as a JSON blob so nothing from the feed is lost.
	Extra map[string]string `json:"extra,omitempty" db:"extra"`
}

// TripRecord is a Record that has been labeled as part of a trip.
// The start record additionally carries the schedule match fields.
type TripRecord struct {
	Record

	TripID    string `json:"tripId" db:"trip_id"`
	TripStart bool   `json:"tripStart" db:"trip_start"`
	TripEnd   bool   `json:"tripEnd" db:"trip_end"`

	// Schedule match, populated on the start record only
	SchedTripID      string `json:"schedTripId,omitempty" db:"sched_trip_id"`
	SchedDiffSeconds int    `json:"schedDiffSeconds,omitempty" db:"sched_diff_seconds"`
	ServiceID        string `json:"serviceId,omitempty" db:"service_id"`
	MinutesNoonSqr   int    `json:"minutesNoonSqr,omitempty" db:"minutes_noon_sqr"`
}

// RecordFilter narrows raw-record scans. Zero values mean "no constraint".
type RecordFilter struct {
	Block      string
	VehicleTag string
	AfterTS    float64 // exclusive lower bound on Timestamp
	BeforeTS   float64 // exclusive upper bound on Timestamp
}
