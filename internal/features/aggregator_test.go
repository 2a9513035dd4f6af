package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoganWeir/muni-predict/internal/models"
)

func labeledTrip(baseTS float64) []models.TripRecord {
	speeds := []string{"10", "20", "", "30", "bad", "15", "25", "5"}
	records := make([]models.TripRecord, len(speeds))
	for i, speed := range speeds {
		records[i] = models.TripRecord{
			Record: models.Record{
				ID:        int64(i + 1),
				Timestamp: baseTS + float64(i)*100,
				Speed:     speed,
			},
			TripID: "trip-a",
		}
	}
	records[0].TripStart = true
	records[0].MinutesNoonSqr = 54756
	records[len(records)-1].TripEnd = true
	return records
}

func TestTripFeatures(t *testing.T) {
	// 08:00 UTC start
	base := float64(time.Date(2023, 6, 14, 8, 0, 0, 0, time.UTC).Unix())
	records := labeledTrip(base)

	f, err := TripFeatures(records, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "trip-a", f.TripID)
	assert.Equal(t, base, f.StartTimestamp)
	assert.Equal(t, 700.0, f.Duration)
	assert.Equal(t, 8*60, f.MinutesSinceMidnight)
	assert.Equal(t, 54756, f.MinutesNoonSqr)
}

func TestTripFeaturesValidation(t *testing.T) {
	_, err := TripFeatures(nil, time.UTC)
	assert.Error(t, err)

	records := labeledTrip(1000)
	records[0].TripStart = false
	_, err = TripFeatures(records, time.UTC)
	assert.Error(t, err)

	records = labeledTrip(1000)
	records[len(records)-1].TripEnd = false
	_, err = TripFeatures(records, time.UTC)
	assert.Error(t, err)
}

func TestChunkFeatures(t *testing.T) {
	base := float64(time.Date(2023, 6, 14, 8, 0, 0, 0, time.UTC).Unix())
	records := labeledTrip(base)

	// First four records in chunk 1, the rest in chunk 2
	labels := make(map[int64]int)
	for _, rec := range records[:4] {
		labels[rec.ID] = 1
	}
	for _, rec := range records[4:] {
		labels[rec.ID] = 2
	}

	feats, ok := ChunkFeatures("trip-a", 2, records, labels, 0, time.UTC)
	require.True(t, ok)
	require.Len(t, feats, 2)

	first := feats[0]
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 300.0, first.ElapsedSeconds)
	// Speeds "10","20","30" parse; the blank does not
	assert.InDelta(t, 20.0, first.MeanSpeed, 1e-9)
	assert.Equal(t, 3, first.SpeedSamples)

	// 08:00 is 240 minutes before noon
	assert.Equal(t, 240*240, first.MinutesNoonSqr)

	second := feats[1]
	assert.Equal(t, 2, second.Seq)
	assert.Equal(t, 300.0, second.ElapsedSeconds)
	assert.Equal(t, 3, second.SpeedSamples)
}

func TestChunkFeaturesEmptyChunkDropsTrip(t *testing.T) {
	records := labeledTrip(1000)
	labels := make(map[int64]int)
	for _, rec := range records {
		labels[rec.ID] = 1
	}

	feats, ok := ChunkFeatures("trip-a", 2, records, labels, 0, time.UTC)
	assert.False(t, ok)
	assert.Nil(t, feats)
}

func TestChunkFeaturesCeilingDropsTrip(t *testing.T) {
	records := labeledTrip(1000)
	labels := make(map[int64]int)
	for _, rec := range records[:4] {
		labels[rec.ID] = 1
	}
	for _, rec := range records[4:] {
		labels[rec.ID] = 2
	}

	// Both chunks span 300s; a 250s ceiling rejects the trip
	feats, ok := ChunkFeatures("trip-a", 2, records, labels, 250, time.UTC)
	assert.False(t, ok)
	assert.Nil(t, feats)

	// A disabled ceiling keeps it
	_, ok = ChunkFeatures("trip-a", 2, records, labels, 0, time.UTC)
	assert.True(t, ok)
}
