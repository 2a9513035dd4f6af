package segmentation

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/LoganWeir/muni-predict/internal/gtfs"
	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/spatial"
)

const (
	// StartGeofenceMeters is the radius around the route's first stop within
	// which a ping counts as a start intersection.
	StartGeofenceMeters = 25.0

	// ClusterGapSeconds bounds the time gap for a ping to join an existing
	// temporal cluster.
	ClusterGapSeconds = 110.0

	// MaxSchedDiffSeconds is the tolerance for matching a cluster
	// representative to a scheduled departure. Representatives further from
	// every departure are geofence false positives and dropped.
	MaxSchedDiffSeconds = 1800

	tripIDSuffixLen     = 5
	tripIDSuffixCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// StartStats counts what happened during start detection for run diagnostics.
type StartStats struct {
	GeofenceHits int // raw start-geofence intersections
	Labeled      int // starts matched to a scheduled departure
	Unmatched    int // representatives with no departure within tolerance
}

// StartDetector finds trip starts in the raw ping stream of one vehicle
// block: geofence filtering, temporal clustering, and schedule matching.
type StartDetector struct {
	sched     *gtfs.ScheduleContext
	startStop gtfs.StopLocation
	loc       *time.Location
	rng       *rand.Rand
}

// NewStartDetector builds a detector against the run's schedule context.
// Timestamps are interpreted in loc, the feed's timezone.
func NewStartDetector(sched *gtfs.ScheduleContext, loc *time.Location, rng *rand.Rand) (*StartDetector, error) {
	startStop, err := sched.StartingStop()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve the starting stop: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &StartDetector{sched: sched, startStop: startStop, loc: loc, rng: rng}, nil
}

// DetectStarts scans one block's records, sorted by timestamp, and returns a
// TripStart per committed cluster representative.
func (d *StartDetector) DetectStarts(records []models.Record) ([]models.TripStart, StartStats) {
	var stats StartStats

	var hits []models.Record
	for _, rec := range records {
		if spatial.WithinRadius(d.startStop.Lat, d.startStop.Lon, rec.Latitude, rec.Longitude, StartGeofenceMeters) {
			hits = append(hits, rec)
		}
	}
	stats.GeofenceHits = len(hits)

	clusters := clusterByTime(hits)

	var starts []models.TripStart
	for _, cluster := range clusters {
		rep := latestRecord(cluster)
		start, ok := d.matchSchedule(rep)
		if !ok {
			stats.Unmatched++
			continue
		}
		starts = append(starts, start)
	}
	stats.Labeled = len(starts)
	return starts, stats
}

// clusterByTime greedily groups geofence hits: a record joins the first
// existing cluster holding any member within ClusterGapSeconds of it,
// otherwise it opens a new cluster. First-match wins, not best-match; the
// tie-break is part of the clustering contract and changing it would change
// the clusters.
func clusterByTime(hits []models.Record) [][]models.Record {
	var clusters [][]models.Record

	for _, hit := range hits {
		matched := false
		for i, cluster := range clusters {
			for _, member := range cluster {
				if hit.Timestamp-member.Timestamp < ClusterGapSeconds {
					clusters[i] = append(clusters[i], hit)
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			clusters = append(clusters, []models.Record{hit})
		}
	}
	return clusters
}

// latestRecord picks the cluster member with the maximum timestamp: the
// point where the vehicle has settled at the stop, not the first ping seen.
func latestRecord(cluster []models.Record) models.Record {
	best := cluster[0]
	for _, rec := range cluster[1:] {
		if rec.Timestamp > best.Timestamp {
			best = rec
		}
	}
	return best
}

// matchSchedule finds the scheduled first-stop departure closest in
// time-of-day to the representative ping and mints the TripStart. Returns
// ok=false when no departure lies within tolerance.
func (d *StartDetector) matchSchedule(rep models.Record) (models.TripStart, bool) {
	repTime := time.Unix(int64(rep.Timestamp), 0).In(d.loc)
	serviceIDs := d.sched.ServiceIDsActive(repTime)

	departures := d.sched.Departures(rep.Block, serviceIDs)
	if len(departures) == 0 {
		log.Printf("[StartDetector] No scheduled departures for block %s at %s", rep.Block, repTime.Format("2006-01-02 15:04"))
		return models.TripStart{}, false
	}

	repSecs := repTime.Hour()*3600 + repTime.Minute()*60 + repTime.Second()
	best := departures[0]
	bestDiff := absInt(best.SecondsOfDay - repSecs)
	for _, dep := range departures[1:] {
		if diff := absInt(dep.SecondsOfDay - repSecs); diff < bestDiff {
			best = dep
			bestDiff = diff
		}
	}
	if bestDiff > MaxSchedDiffSeconds {
		return models.TripStart{}, false
	}

	minutes := repTime.Hour()*60 + repTime.Minute()
	return models.TripStart{
		TripID:           d.mintTripID(best.TripID, repTime),
		SchedTripID:      best.TripID,
		Block:            rep.Block,
		VehicleTag:       rep.VehicleTag,
		StartTimestamp:   rep.Timestamp,
		SchedDiffSeconds: bestDiff,
		ServiceID:        best.ServiceID,
		MinutesNoonSqr:   (minutes - 720) * (minutes - 720),
		RecordID:         rep.ID,
	}, true
}

// mintTripID builds {sched_trip_id}_{iso_date}_{suffix}. Five base-36
// characters keep the collision probability negligible for one run.
func (d *StartDetector) mintTripID(schedTripID string, start time.Time) string {
	suffix := make([]byte, tripIDSuffixLen)
	for i := range suffix {
		suffix[i] = tripIDSuffixCharset[d.rng.Intn(len(tripIDSuffixCharset))]
	}
	return fmt.Sprintf("%s_%s_%s", schedTripID, start.Format("2006-01-02"), suffix)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
