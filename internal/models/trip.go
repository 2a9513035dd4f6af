package models

// TripStart is a committed cluster representative matched to a scheduled
// departure. One TripStart seeds one trip extension scan.
type TripStart struct {
	TripID           string  `json:"tripId" db:"trip_id"` // {sched_trip_id}_{iso_date}_{suffix}
	SchedTripID      string  `json:"schedTripId" db:"sched_trip_id"`
	Block            string  `json:"block" db:"block"`
	VehicleTag       string  `json:"vehicleTag" db:"vehicle_tag"`
	StartTimestamp   float64 `json:"startTimestamp" db:"start_timestamp"`
	SchedDiffSeconds int     `json:"schedDiffSeconds" db:"sched_diff_seconds"`
	ServiceID        string  `json:"serviceId" db:"service_id"`
	MinutesNoonSqr   int     `json:"minutesNoonSqr" db:"minutes_noon_sqr"`

	// The raw record the start was minted from
	RecordID int64 `json:"recordId" db:"record_id"`
}

// Trip quality classes assigned by the trip extender. Only TripCommitted
// trips survive; every other class is counted and discarded.
const (
	TripCommitted = "committed"
	TripEmpty     = "empty"
	TripEndless   = "endless"
	TripSparse    = "sparse"
	TripTooSmall  = "too_small"
	TripTooLarge  = "too_large"
)

// TripOutcome is the result of extending one TripStart.
type TripOutcome struct {
	TripID  string       `json:"tripId"`
	Class   string       `json:"class"`
	Records []TripRecord `json:"records,omitempty"` // populated only when committed
}

// TripSummary is the API-facing view of a committed trip.
type TripSummary struct {
	TripID         string  `json:"tripId"`
	SchedTripID    string  `json:"schedTripId"`
	Block          string  `json:"block"`
	VehicleTag     string  `json:"vehicleTag"`
	StartTimestamp float64 `json:"startTimestamp"`
	EndTimestamp   float64 `json:"endTimestamp"`
	RecordCount    int     `json:"recordCount"`
}
