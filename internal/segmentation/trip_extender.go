package segmentation

import (
	"github.com/LoganWeir/muni-predict/internal/gtfs"
	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/spatial"
)

const (
	// EndGeofenceMeters is the radius around the trip's terminal stop that
	// terminates a scan.
	EndGeofenceMeters = 150.0

	// MaxGapSeconds is the largest tolerated gap between consecutive pings;
	// beyond it the trip is sparse.
	MaxGapSeconds = 180.0

	// SearchWindowSeconds bounds the scan after a trip start.
	SearchWindowSeconds = 10800.0

	// Committed trips carry between MinTripRecords and MaxTripRecords pings.
	MinTripRecords = 40
	MaxTripRecords = 150
)

// ExtendTrip walks one start's candidate records in increasing timestamp
// order until the end geofence is hit or the window is exhausted, then
// classifies the run. Candidates must already be restricted to the start's
// block and vehicle tag, to timestamps inside the search window, and must
// exclude records labeled by other trips.
//
// Classification is mutually exclusive, in priority order: empty, endless,
// sparse, too-small, too-large, committed. Only committed outcomes carry
// records.
func ExtendTrip(start models.TripStart, candidates []models.Record, lastStop gtfs.StopLocation) models.TripOutcome {
	outcome := models.TripOutcome{TripID: start.TripID}

	if len(candidates) == 0 {
		outcome.Class = models.TripEmpty
		return outcome
	}

	var (
		records []models.TripRecord
		sparse  bool
		ended   bool
	)
	for i, rec := range candidates {
		if i != 0 && rec.Timestamp-candidates[i-1].Timestamp > MaxGapSeconds {
			sparse = true
			break
		}

		labeled := models.TripRecord{Record: rec, TripID: start.TripID}
		if spatial.WithinRadius(lastStop.Lat, lastStop.Lon, rec.Latitude, rec.Longitude, EndGeofenceMeters) {
			labeled.TripEnd = true
			records = append(records, labeled)
			ended = true
			break
		}
		records = append(records, labeled)
	}

	switch {
	case !ended && !sparse:
		outcome.Class = models.TripEndless
	case sparse:
		outcome.Class = models.TripSparse
	case len(records) < MinTripRecords:
		outcome.Class = models.TripTooSmall
	case len(records) > MaxTripRecords:
		outcome.Class = models.TripTooLarge
	default:
		outcome.Class = models.TripCommitted
		outcome.Records = records
	}
	return outcome
}
