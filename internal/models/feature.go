package models

// TripFeature holds the trip-level temporal features. Write-once.
type TripFeature struct {
	TripID               string  `json:"tripId" db:"trip_id"`
	StartTimestamp       float64 `json:"startTimestamp" db:"start_timestamp"`
	Duration             float64 `json:"duration" db:"duration"` // seconds
	MinutesSinceMidnight int     `json:"minutesSinceMidnight" db:"minutes_since_midnight"`
	MinutesNoonSqr       int     `json:"minutesNoonSqr" db:"minutes_noon_sqr"` // carried from start labeling
}

// Distribution summarizes one feature column across trips.
type Distribution struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	P10    float64 `json:"p10"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// ChunkElapsedSummary is the elapsed-seconds distribution for one chunk
// sequence at one resolution.
type ChunkElapsedSummary struct {
	Resolution int          `json:"resolution"`
	Seq        int          `json:"seq"`
	Elapsed    Distribution `json:"elapsed"`
}

// FeatureSummary is the API-facing distribution view over the feature
// collections.
type FeatureSummary struct {
	TripDuration Distribution          `json:"tripDuration"` // seconds
	Chunks       []ChunkElapsedSummary `json:"chunks"`
}

// ChunkFeature holds the per-chunk features for one trip at one resolution.
// SpeedSamples counts the records whose speed field parsed as a number;
// MeanSpeed is meaningless when it is zero.
type ChunkFeature struct {
	TripID         string  `json:"tripId" db:"trip_id"`
	Resolution     int     `json:"resolution" db:"resolution"`
	Seq            int     `json:"seq" db:"seq"`
	ElapsedSeconds float64 `json:"elapsedSeconds" db:"elapsed_seconds"`
	MinutesNoonSqr int     `json:"minutesNoonSqr" db:"minutes_noon_sqr"` // at the chunk's first record
	MeanSpeed      float64 `json:"meanSpeed" db:"mean_speed"`
	SpeedSamples   int     `json:"speedSamples" db:"speed_samples"`
}
