package features

import (
	"fmt"
	"strconv"
	"time"

	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/stats"
)

// DefaultChunkCeilingSeconds is the strict-variant elapsed-time ceiling: a
// trip whose chunk exceeds it is excluded from that resolution's output.
const DefaultChunkCeilingSeconds = 1500.0

// TripFeatures computes the trip-level temporal features from a committed
// trip's ordered records. The squared minutes-from-noon value is carried
// from start labeling, not recomputed.
func TripFeatures(records []models.TripRecord, loc *time.Location) (models.TripFeature, error) {
	if len(records) == 0 {
		return models.TripFeature{}, fmt.Errorf("no records")
	}
	start := records[0]
	if !start.TripStart {
		return models.TripFeature{}, fmt.Errorf("trip %s: first record is not start-flagged", start.TripID)
	}

	endTS := 0.0
	found := false
	for _, rec := range records {
		if rec.TripEnd {
			endTS = rec.Timestamp
			found = true
			break
		}
	}
	if !found {
		return models.TripFeature{}, fmt.Errorf("trip %s has no end-flagged record", start.TripID)
	}

	startTime := time.Unix(int64(start.Timestamp), 0).In(loc)
	return models.TripFeature{
		TripID:               start.TripID,
		StartTimestamp:       start.Timestamp,
		Duration:             endTS - start.Timestamp,
		MinutesSinceMidnight: startTime.Hour()*60 + startTime.Minute(),
		MinutesNoonSqr:       start.MinutesNoonSqr,
	}, nil
}

// ChunkFeatures computes per-chunk features for one trip at one resolution.
// labels maps record id to chunk sequence. A chunk with no records drops the
// whole trip from this resolution, as does any chunk whose elapsed seconds
// exceed ceilingSeconds when the ceiling is positive. The boolean reports
// whether the trip survived.
func ChunkFeatures(tripID string, resolution int, records []models.TripRecord,
	labels map[int64]int, ceilingSeconds float64, loc *time.Location) ([]models.ChunkFeature, bool) {

	var feats []models.ChunkFeature
	for seq := 1; seq <= resolution; seq++ {
		var chunk []models.TripRecord
		for _, rec := range records {
			if labels[rec.ID] == seq {
				chunk = append(chunk, rec)
			}
		}
		if len(chunk) == 0 {
			return nil, false
		}

		minTS := chunk[0].Timestamp
		maxTS := chunk[0].Timestamp
		for _, rec := range chunk[1:] {
			if rec.Timestamp < minTS {
				minTS = rec.Timestamp
			}
			if rec.Timestamp > maxTS {
				maxTS = rec.Timestamp
			}
		}
		elapsed := maxTS - minTS
		if ceilingSeconds > 0 && elapsed > ceilingSeconds {
			return nil, false
		}

		mean, samples := meanSpeed(chunk)
		minTime := time.Unix(int64(minTS), 0).In(loc)
		minutes := minTime.Hour()*60 + minTime.Minute()

		feats = append(feats, models.ChunkFeature{
			TripID:         tripID,
			Resolution:     resolution,
			Seq:            seq,
			ElapsedSeconds: elapsed,
			MinutesNoonSqr: (minutes - 720) * (minutes - 720),
			MeanSpeed:      mean,
			SpeedSamples:   samples,
		})
	}
	return feats, true
}

// meanSpeed averages the records' speed fields, ignoring values that do not
// parse as numbers. The feed emits blanks and sentinel strings for stopped
// vehicles.
func meanSpeed(records []models.TripRecord) (float64, int) {
	var speeds []float64
	for _, rec := range records {
		v, err := strconv.ParseFloat(rec.Speed, 64)
		if err != nil {
			continue
		}
		speeds = append(speeds, v)
	}
	return stats.Mean(speeds), len(speeds)
}
