package models

// ChunkBoundary anchors one chunk interval to a representative schedule stop.
// CumulativeDistance is the schedule distance from the route start to the
// stop; SegmentDistance is the increment over the previous boundary.
type ChunkBoundary struct {
	Seq                int     `json:"seq" db:"seq"` // 1..Resolution
	StopID             string  `json:"stopId" db:"stop_id"`
	StopSeq            int     `json:"stopSeq" db:"stop_seq"`
	StopName           string  `json:"stopName" db:"stop_name"`
	StopLat            float64 `json:"stopLat" db:"stop_lat"`
	StopLon            float64 `json:"stopLon" db:"stop_lon"`
	CumulativeDistance float64 `json:"cumulativeDistance" db:"cum_distance"`
	SegmentDistance    float64 `json:"segmentDistance" db:"seg_distance"`
}

// ChunkDefinition is the full set of boundary stops for one resolution,
// computed once per run and shared by every trip.
type ChunkDefinition struct {
	Resolution int             `json:"resolution" db:"resolution"`
	Boundaries []ChunkBoundary `json:"boundaries"`
}

// ChunkLabel assigns one trip record to a chunk sequence at one resolution.
type ChunkLabel struct {
	RecordID   int64  `json:"recordId" db:"record_id"`
	TripID     string `json:"tripId" db:"trip_id"`
	Resolution int    `json:"resolution" db:"resolution"`
	Seq        int    `json:"seq" db:"seq"`
}
