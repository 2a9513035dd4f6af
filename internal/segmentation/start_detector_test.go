package segmentation

import (
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoganWeir/muni-predict/internal/gtfs"
	"github.com/LoganWeir/muni-predict/internal/models"
)

const (
	startLat = 37.7600
	startLon = -122.4500
)

// writeSchedule lays out one block with a morning and a past-midnight
// departure from the same first stop.
func writeSchedule(t *testing.T) *gtfs.ScheduleContext {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"trips.txt": "trip_id,route_id,service_id,block_id,direction_id,shape_id\n" +
			"T1,R33,WKD,0102,0,SH1\n" +
			"T2,R33,WKD,0102,0,SH1\n",
		"stop_times.txt": "trip_id,stop_id,stop_sequence,arrival_time,departure_time\n" +
			"T1,S1,1,08:00:00,08:00:00\n" +
			"T1,S2,2,08:30:00,08:30:00\n" +
			"T2,S1,1,25:30:00,25:30:00\n" +
			"T2,S2,2,26:00:00,26:00:00\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"S1,First St,37.7600,-122.4500\n" +
			"S2,Terminal,37.7700,-122.4400\n",
		"shapes.txt": "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence,shape_dist_traveled\n" +
			"SH1,37.7600,-122.4500,1,0\n" +
			"SH1,37.7700,-122.4400,2,1000\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" +
			"WKD,1,1,1,1,1,0,0\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	ctx, err := gtfs.LoadScheduleContext(dir, map[string]string{"3301": "102"}, 0)
	require.NoError(t, err)
	return ctx
}

func ping(id int64, ts float64, lat, lon float64) models.Record {
	return models.Record{
		ID:         id,
		Block:      "3301",
		VehicleTag: "5678",
		Latitude:   lat,
		Longitude:  lon,
		Timestamp:  ts,
	}
}

func TestClusterByTimeJoinsWithinGap(t *testing.T) {
	// Pings at t, t+30 and t+90 chain into one cluster even though the
	// endpoints are 90s apart
	hits := []models.Record{
		ping(1, 1000, startLat, startLon),
		ping(2, 1030, startLat, startLon),
		ping(3, 1090, startLat, startLon),
	}
	clusters := clusterByTime(hits)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0], 3)
}

func TestClusterByTimeSplitsOnGap(t *testing.T) {
	hits := []models.Record{
		ping(1, 1000, startLat, startLon),
		ping(2, 1200, startLat, startLon),
	}
	clusters := clusterByTime(hits)
	require.Len(t, clusters, 2)
}

func TestLatestRecord(t *testing.T) {
	cluster := []models.Record{
		ping(1, 1000, startLat, startLon),
		ping(3, 1090, startLat, startLon),
		ping(2, 1030, startLat, startLon),
	}
	assert.Equal(t, int64(3), latestRecord(cluster).ID)
}

func TestDetectStartsMatchesDeparture(t *testing.T) {
	sched := writeSchedule(t)
	detector, err := NewStartDetector(sched, time.UTC, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// Wednesday 08:05 UTC, 300s past the T1 departure
	base := float64(time.Date(2023, 6, 14, 8, 5, 0, 0, time.UTC).Unix())
	records := []models.Record{
		ping(1, base, startLat, startLon),
		ping(2, base+30, startLat, startLon),
		ping(3, base+90, startLat, startLon),
		ping(4, base+60, 37.7700, -122.4400), // outside the start geofence
	}

	starts, stats := detector.DetectStarts(records)
	require.Len(t, starts, 1)
	assert.Equal(t, 3, stats.GeofenceHits)
	assert.Equal(t, 1, stats.Labeled)
	assert.Zero(t, stats.Unmatched)

	start := starts[0]
	assert.Equal(t, "T1", start.SchedTripID)
	assert.Equal(t, "WKD", start.ServiceID)
	assert.Equal(t, int64(3), start.RecordID) // latest cluster member
	assert.Equal(t, base+90, start.StartTimestamp)
	assert.InDelta(t, 300+90, start.SchedDiffSeconds, 0)

	// 08:06 is 354 minutes before noon
	minutes := 8*60 + 6
	assert.Equal(t, (minutes-720)*(minutes-720), start.MinutesNoonSqr)

	assert.Regexp(t, regexp.MustCompile(`^T1_2023-06-14_[A-Z0-9]{5}$`), start.TripID)
}

func TestDetectStartsRejectsFarFromSchedule(t *testing.T) {
	sched := writeSchedule(t)
	detector, err := NewStartDetector(sched, time.UTC, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// Wednesday 03:00: 5400s from the folded 25:30 departure, beyond
	// tolerance
	ts := float64(time.Date(2023, 6, 14, 3, 0, 0, 0, time.UTC).Unix())
	starts, stats := detector.DetectStarts([]models.Record{ping(1, ts, startLat, startLon)})

	assert.Empty(t, starts)
	assert.Equal(t, 1, stats.GeofenceHits)
	assert.Equal(t, 1, stats.Unmatched)
}
