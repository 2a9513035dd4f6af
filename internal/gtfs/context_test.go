package gtfs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeGTFS lays out a minimal period directory: one route with two trips on
// block 0102 in direction 0, one opposite-direction trip, and a shape
// following the stops.
func writeGTFS(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"routes.txt": "route_id,route_short_name,route_long_name\n" +
			"R33,33,Ashbury-18th St\n",
		"trips.txt": "trip_id,route_id,service_id,block_id,direction_id,shape_id\n" +
			"T1,R33,WKD,0102,0,SH1\n" +
			"T2,R33,WKD,0102,0,SH1\n" +
			"T3,R33,WKD,0102,1,SH2\n",
		"stop_times.txt": "trip_id,stop_id,stop_sequence,arrival_time,departure_time\n" +
			"T1,S1,1,08:00:00,08:00:00\n" +
			"T1,S2,2,08:10:00,08:10:00\n" +
			"T1,S3,3,08:20:00,08:20:00\n" +
			"T2,S1,1,25:30:00,25:30:00\n" +
			"T2,S2,2,25:40:00,25:40:00\n" +
			"T2,S3,3,25:50:00,25:50:00\n" +
			"T2,S4,4,26:00:00,26:00:00\n" +
			"T3,S4,1,09:00:00,09:00:00\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"S1,First St,37.7600,-122.4500\n" +
			"S2,Second St,37.7700,-122.4400\n" +
			"S3,Third St,37.7800,-122.4300\n" +
			"S4,Terminal,37.7900,-122.4200\n",
		"shapes.txt": "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence,shape_dist_traveled\n" +
			"SH1,37.7600,-122.4500,1,0\n" +
			"SH1,37.7700,-122.4400,2,500\n" +
			"SH1,37.7800,-122.4300,3,1000\n" +
			"SH1,37.7900,-122.4200,4,1500\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" +
			"WKD,1,1,1,1,1,0,0\n" +
			"SUN,0,0,0,0,0,0,1\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func loadTestContext(t *testing.T) *ScheduleContext {
	t.Helper()
	// AVL block name 3301 runs GTFS block 0102
	ctx, err := LoadScheduleContext(writeGTFS(t), map[string]string{"3301": "102"}, 0)
	require.NoError(t, err)
	return ctx
}

func TestLoadScheduleContextFilters(t *testing.T) {
	ctx := loadTestContext(t)

	// T3 runs the other direction and must be gone
	assert.Len(t, ctx.Trips(), 2)
	_, ok := ctx.TripByID("T3")
	assert.False(t, ok)

	// Block matching ignores zero padding
	_, ok = ctx.TripByID("T1")
	assert.True(t, ok)
}

func TestLoadScheduleContextNoMatch(t *testing.T) {
	_, err := LoadScheduleContext(writeGTFS(t), map[string]string{"9999": "9999"}, 0)
	assert.Error(t, err)
}

func TestStartingStop(t *testing.T) {
	ctx := loadTestContext(t)

	start, err := ctx.StartingStop()
	require.NoError(t, err)
	assert.Equal(t, "S1", start.StopID)
	assert.InDelta(t, 37.7600, start.Lat, 1e-9)
}

func TestLastStop(t *testing.T) {
	ctx := loadTestContext(t)

	last, err := ctx.LastStop("T2")
	require.NoError(t, err)
	assert.Equal(t, "S4", last.StopID)

	last, err = ctx.LastStop("T1")
	require.NoError(t, err)
	assert.Equal(t, "S3", last.StopID)

	_, err = ctx.LastStop("missing")
	assert.Error(t, err)
}

func TestServiceIDsActive(t *testing.T) {
	ctx := loadTestContext(t)

	// Wednesday noon: weekday service only
	wedNoon := time.Date(2023, 6, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"WKD"}, ctx.ServiceIDsActive(wedNoon))

	// Monday 06:00: the previous service day wraps to Sunday
	monEarly := time.Date(2023, 6, 12, 6, 0, 0, 0, time.UTC)
	assert.ElementsMatch(t, []string{"WKD", "SUN"}, ctx.ServiceIDsActive(monEarly))

	// Tuesday 06:00: Monday's service is the same id, no duplicate
	tueEarly := time.Date(2023, 6, 13, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"WKD"}, ctx.ServiceIDsActive(tueEarly))
}

func TestDepartures(t *testing.T) {
	ctx := loadTestContext(t)

	// Addressed by the AVL block name through the alias
	deps := ctx.Departures("3301", []string{"WKD"})
	require.Len(t, deps, 2)

	bySeconds := make(map[string]int)
	for _, d := range deps {
		bySeconds[d.TripID] = d.SecondsOfDay
	}
	assert.Equal(t, 8*3600, bySeconds["T1"])
	// 25:30:00 folds back to 01:30:00
	assert.Equal(t, 1*3600+30*60, bySeconds["T2"])

	// The raw GTFS block number works without an alias
	deps = ctx.Departures("0102", []string{"WKD"})
	assert.Len(t, deps, 2)

	assert.Empty(t, ctx.Departures("3301", []string{"SUN"}))
	assert.Empty(t, ctx.Departures("500", []string{"WKD"}))
}

func TestSampleSchedule(t *testing.T) {
	ctx := loadTestContext(t)

	// Longest among the given ids
	sched, err := ctx.SampleSchedule([]string{"T1"})
	require.NoError(t, err)
	require.Len(t, sched, 3)
	assert.Equal(t, "S1", sched[0].StopID)
	assert.InDelta(t, 0, sched[0].Distance, 1e-9)
	assert.InDelta(t, 1000, sched[2].Distance, 1e-9)

	// No ids given: fall back to the longest filtered trip
	sched, err = ctx.SampleSchedule(nil)
	require.NoError(t, err)
	require.Len(t, sched, 4)
	assert.Equal(t, "Terminal", sched[3].StopName)
	assert.InDelta(t, 1500, sched[3].Distance, 1e-9)
}

func TestNormalizeScheduleTime(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"08:15:30", 8*3600 + 15*60 + 30},
		{"24:00:00", 0},
		{"25:30:00", 1*3600 + 30*60},
		{"30:34:00", 6*3600 + 34*60},
		{"00:00:00", 0},
	}
	for _, tc := range cases {
		got, err := NormalizeScheduleTime(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := NormalizeScheduleTime("8:15")
	assert.Error(t, err)
	_, err = NormalizeScheduleTime("ab:cd:ef")
	assert.Error(t, err)
}

func TestNormalizeBlockID(t *testing.T) {
	assert.Equal(t, "102", NormalizeBlockID("0102"))
	assert.Equal(t, "102", NormalizeBlockID("102"))
	assert.Equal(t, "0", NormalizeBlockID("000"))
	assert.Equal(t, "", NormalizeBlockID(""))
	assert.Equal(t, "12", NormalizeBlockID(" 012 "))
}

func TestRouteBlocks(t *testing.T) {
	dir := writeGTFS(t)

	blocks, err := RouteBlocks(dir, "33", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"0102"}, blocks)

	_, err = RouteBlocks(dir, "99", 0)
	assert.Error(t, err)
}

func TestPeriodByIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gtfs_lookup.csv")
	content := "from_date,to_date,directory,sign_id\n" +
		"2023-06-01,2023-08-31,google_transit_summer,1234\n" +
		"2023-03-01,2023-05-31,google_transit_spring,1233\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	period, err := PeriodByIndex(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "google_transit_summer", period.Directory)
	assert.Equal(t, "1234", period.SignID)
	assert.Equal(t, 2023, period.FromDate.Year())

	_, err = PeriodByIndex(path, 5)
	assert.Error(t, err)
}
