package chunking

import (
	"sort"

	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/spatial"
)

// LabelTrip assigns every record of one trip to a chunk interval under the
// given definition. It is a pure function of the records and the definition,
// so relabeling an already-labeled trip yields identical labels.
//
// A running window start begins at the trip's first timestamp. For each
// boundary in sequence order the record closest to the boundary stop at or
// after the window start is matched (ties keep the earliest record), every
// record in [window_start, t_match) gets the boundary's sequence number, and
// the window advances to t_match. Records after the final boundary's match
// stay unlabeled for this resolution.
func LabelTrip(records []models.TripRecord, def models.ChunkDefinition) []models.ChunkLabel {
	if len(records) == 0 {
		return nil
	}

	boundaries := append([]models.ChunkBoundary(nil), def.Boundaries...)
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Seq < boundaries[j].Seq })

	var labels []models.ChunkLabel
	windowStart := records[0].Timestamp

	for _, boundary := range boundaries {
		matchTS, ok := closestRecordTS(records, windowStart, boundary)
		if !ok {
			break
		}

		for _, rec := range records {
			if rec.Timestamp >= windowStart && rec.Timestamp < matchTS {
				labels = append(labels, models.ChunkLabel{
					RecordID:   rec.ID,
					TripID:     rec.TripID,
					Resolution: def.Resolution,
					Seq:        boundary.Seq,
				})
			}
		}
		windowStart = matchTS
	}
	return labels
}

// closestRecordTS finds the timestamp of the record at or after windowStart
// with minimum distance to the boundary stop. Strict less-than keeps the
// first record encountered in sort order on ties.
func closestRecordTS(records []models.TripRecord, windowStart float64, boundary models.ChunkBoundary) (float64, bool) {
	bestTS := 0.0
	bestDist := 0.0
	found := false
	for _, rec := range records {
		if rec.Timestamp < windowStart {
			continue
		}
		d := spatial.HaversineDistance(rec.Latitude, rec.Longitude, boundary.StopLat, boundary.StopLon)
		if !found || d < bestDist {
			found = true
			bestDist = d
			bestTS = rec.Timestamp
		}
	}
	return bestTS, found
}
