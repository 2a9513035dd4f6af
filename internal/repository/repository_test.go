package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoganWeir/muni-predict/internal/database"
	"github.com/LoganWeir/muni-predict/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "staging.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func rawRecord(ts float64, block, tag string) models.Record {
	return models.Record{
		Block:      block,
		VehicleTag: tag,
		Latitude:   37.76,
		Longitude:  -122.45,
		Speed:      "12.5",
		Heading:    "270",
		ReportTime: "06/14/2023 08:00:05",
		Timestamp:  ts,
		Extra:      map[string]string{"PREDICTABLE": "1"},
	}
}

func TestRecordRepositoryRoundTrip(t *testing.T) {
	repo := NewRecordRepository(testDB(t))

	require.NoError(t, repo.InsertRecords([]models.Record{
		rawRecord(1002, "102", "5678"),
		rawRecord(1001, "102", "5678"),
		rawRecord(1003, "103", "9999"),
	}))

	n, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	blocks, err := repo.DistinctBlocks()
	require.NoError(t, err)
	assert.Equal(t, []string{"102", "103"}, blocks)

	records, err := repo.RecordsForBlock("102")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1001.0, records[0].Timestamp)
	assert.Equal(t, "1", records[0].Extra["PREDICTABLE"])

	require.NoError(t, repo.Clear())
	n, err = repo.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCandidateRecordsWindowAndExclusion(t *testing.T) {
	db := testDB(t)
	records := NewRecordRepository(db)
	trips := NewTripRepository(db)

	require.NoError(t, records.InsertRecords([]models.Record{
		rawRecord(1000, "102", "5678"), // at the window edge, excluded
		rawRecord(1100, "102", "5678"),
		rawRecord(1200, "102", "5678"),
		rawRecord(1300, "102", "9999"), // other vehicle
		rawRecord(20000, "102", "5678"), // past the window
	}))

	// Claim the 1100 record for another trip
	staged, err := records.RecordsForBlock("102")
	require.NoError(t, err)
	var claimed models.Record
	for _, rec := range staged {
		if rec.Timestamp == 1100 {
			claimed = rec
		}
	}
	require.NoError(t, trips.UpsertTripRecords([]models.TripRecord{
		{Record: claimed, TripID: "other-trip"},
	}))

	got, err := records.CandidateRecords(models.RecordFilter{
		Block:      "102",
		VehicleTag: "5678",
		AfterTS:    1000,
		BeforeTS:   1000 + 10800,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1200.0, got[0].Timestamp)
}

func TestTripStartLifecycle(t *testing.T) {
	db := testDB(t)
	records := NewRecordRepository(db)
	trips := NewTripRepository(db)

	require.NoError(t, records.InsertRecords([]models.Record{rawRecord(1000, "102", "5678")}))
	staged, err := records.RecordsForBlock("102")
	require.NoError(t, err)
	rec := staged[0]

	start := models.TripStart{
		TripID:           "T1_2023-06-14_ABCDE",
		SchedTripID:      "T1",
		Block:            "102",
		VehicleTag:       "5678",
		StartTimestamp:   1000,
		SchedDiffSeconds: 300,
		ServiceID:        "WKD",
		MinutesNoonSqr:   54756,
		RecordID:         rec.ID,
	}
	require.NoError(t, trips.UpsertStart(start, rec))
	// Idempotent on the record id
	require.NoError(t, trips.UpsertStart(start, rec))

	starts, err := trips.TripStarts()
	require.NoError(t, err)
	require.Len(t, starts, 1)
	assert.Equal(t, start.TripID, starts[0].TripID)
	assert.Equal(t, "T1", starts[0].SchedTripID)
	assert.Equal(t, 300, starts[0].SchedDiffSeconds)
	assert.Equal(t, 54756, starts[0].MinutesNoonSqr)
	assert.Equal(t, rec.ID, starts[0].RecordID)

	require.NoError(t, trips.DeleteTrip(start.TripID))
	starts, err = trips.TripStarts()
	require.NoError(t, err)
	assert.Empty(t, starts)
}

func TestUpsertTripRecordsIdempotent(t *testing.T) {
	db := testDB(t)
	records := NewRecordRepository(db)
	trips := NewTripRepository(db)

	require.NoError(t, records.InsertRecords([]models.Record{
		rawRecord(1000, "102", "5678"),
		rawRecord(1030, "102", "5678"),
	}))
	staged, err := records.RecordsForBlock("102")
	require.NoError(t, err)

	labeled := []models.TripRecord{
		{Record: staged[0], TripID: "trip-a"},
		{Record: staged[1], TripID: "trip-a", TripEnd: true},
	}
	require.NoError(t, trips.UpsertTripRecords(labeled))
	require.NoError(t, trips.UpsertTripRecords(labeled))

	n, err := trips.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := trips.TripRecords("trip-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].TripEnd)
	assert.True(t, got[1].TripEnd)
	assert.Equal(t, "1", got[0].Extra["PREDICTABLE"])

	summaries, err := trips.TripSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "trip-a", summaries[0].TripID)
	assert.Equal(t, 1000.0, summaries[0].StartTimestamp)
	assert.Equal(t, 1030.0, summaries[0].EndTimestamp)
	assert.Equal(t, 2, summaries[0].RecordCount)

	ids, err := trips.DistinctTripIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"trip-a"}, ids)
}

func TestChunkRepository(t *testing.T) {
	repo := NewChunkRepository(testDB(t))

	def := models.ChunkDefinition{
		Resolution: 2,
		Boundaries: []models.ChunkBoundary{
			{Seq: 1, StopID: "S2", StopSeq: 2, StopName: "Second St", StopLat: 37.765, StopLon: -122.445, CumulativeDistance: 700, SegmentDistance: 700},
			{Seq: 2, StopID: "S4", StopSeq: 4, StopName: "Terminal", StopLat: 37.775, StopLon: -122.435, CumulativeDistance: 2100, SegmentDistance: 1400},
		},
	}
	require.NoError(t, repo.InsertDefinition(def))

	defs, err := repo.Definitions()
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, def, defs[0])

	labels := []models.ChunkLabel{
		{RecordID: 1, TripID: "trip-a", Resolution: 2, Seq: 1},
		{RecordID: 2, TripID: "trip-a", Resolution: 2, Seq: 2},
	}
	require.NoError(t, repo.UpsertLabels(labels))
	// Relabeling overwrites instead of duplicating
	labels[1].Seq = 1
	require.NoError(t, repo.UpsertLabels(labels))

	got, err := repo.LabelsFor("trip-a", 2)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 1, 2: 1}, got)

	require.NoError(t, repo.ClearLabels())
	got, err = repo.LabelsFor("trip-a", 2)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.ClearDefinitions())
	defs, err = repo.Definitions()
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestFeatureRepository(t *testing.T) {
	repo := NewFeatureRepository(testDB(t))

	require.NoError(t, repo.InsertTripFeature(models.TripFeature{
		TripID: "trip-a", StartTimestamp: 1000, Duration: 1200, MinutesSinceMidnight: 480, MinutesNoonSqr: 54756,
	}))

	feats := []models.ChunkFeature{
		{TripID: "trip-a", Resolution: 2, Seq: 1, ElapsedSeconds: 300, MinutesNoonSqr: 57600, MeanSpeed: 20, SpeedSamples: 3},
		{TripID: "trip-a", Resolution: 2, Seq: 2, ElapsedSeconds: 300, MinutesNoonSqr: 56644, MeanSpeed: 15, SpeedSamples: 3},
	}
	require.NoError(t, repo.InsertChunkFeatures(feats))

	tripFeats, err := repo.TripFeatures()
	require.NoError(t, err)
	require.Len(t, tripFeats, 1)
	assert.Equal(t, 1200.0, tripFeats[0].Duration)

	got, err := repo.ChunkFeatures(2, "")
	require.NoError(t, err)
	assert.Equal(t, feats, got)

	got, err = repo.ChunkFeatures(2, "trip-b")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.Clear())
	tripFeats, err = repo.TripFeatures()
	require.NoError(t, err)
	assert.Empty(t, tripFeats)
}

func TestRunRepository(t *testing.T) {
	repo := NewRunRepository(testDB(t))

	older := models.RunSummary{
		ID: "run-1", Stage: models.StageSegmentation,
		StartedAt: time.Now().Add(-time.Hour), FinishedAt: time.Now().Add(-time.Hour),
		CommittedTrips: 5,
	}
	newer := models.RunSummary{
		ID: "run-2", Stage: models.StageChunking,
		StartedAt: time.Now(), FinishedAt: time.Now(),
		Definitions: 3,
	}
	require.NoError(t, repo.InsertSummary(older))
	require.NoError(t, repo.InsertSummary(newer))

	got, err := repo.ListSummaries()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-2", got[0].ID)
	assert.Equal(t, 3, got[0].Definitions)
	assert.Equal(t, "run-1", got[1].ID)
	assert.Equal(t, 5, got[1].CommittedTrips)
}
