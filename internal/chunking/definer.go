package chunking

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"

	"github.com/LoganWeir/muni-predict/internal/gtfs"
	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/spatial"
	"github.com/LoganWeir/muni-predict/internal/stats"
)

// SampleFraction of committed trips used to derive chunk boundaries. The
// sample is drawn once per run and shared across every resolution.
const SampleFraction = 0.2

// TripTimeline is one committed trip's records in timestamp order, start
// record first, end-flagged record last.
type TripTimeline struct {
	TripID  string
	Records []models.TripRecord
}

// StartTimestamp returns the trip's first record timestamp.
func (t TripTimeline) StartTimestamp() float64 {
	return t.Records[0].Timestamp
}

// EndTimestamp returns the timestamp of the end-flagged record.
func (t TripTimeline) EndTimestamp() (float64, error) {
	for _, rec := range t.Records {
		if rec.TripEnd {
			return rec.Timestamp, nil
		}
	}
	return 0, fmt.Errorf("trip %s has no end-flagged record", t.TripID)
}

// SampleTripIDs draws the shared boundary-derivation sample.
func SampleTripIDs(tripIDs []string, rng *rand.Rand) []string {
	size := int(math.Round(float64(len(tripIDs)) * SampleFraction))
	ids := append([]string(nil), tripIDs...)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids[:size]
}

// MeanDuration computes the rounded mean trip duration over the sample.
func MeanDuration(sample []TripTimeline) (float64, error) {
	if len(sample) == 0 {
		return 0, fmt.Errorf("no sampled trips to average")
	}
	durations := make([]float64, 0, len(sample))
	for _, t := range sample {
		end, err := t.EndTimestamp()
		if err != nil {
			return 0, err
		}
		durations = append(durations, end-t.StartTimestamp())
	}
	return math.Round(stats.Mean(durations)), nil
}

// BuildDefinitions derives one ChunkDefinition per requested resolution from
// the shared trip sample and the sample schedule.
func BuildDefinitions(resolutions []int, sample []TripTimeline, sched []gtfs.ScheduleStop) ([]models.ChunkDefinition, error) {
	if len(sched) == 0 {
		return nil, fmt.Errorf("empty sample schedule")
	}
	meanDuration, err := MeanDuration(sample)
	if err != nil {
		return nil, err
	}
	log.Printf("[ChunkDefiner] Mean trip duration over %d sampled trips: %.0fs", len(sample), meanDuration)

	var defs []models.ChunkDefinition
	for _, resolution := range resolutions {
		if resolution < 1 {
			return nil, fmt.Errorf("invalid chunk resolution %d", resolution)
		}
		defs = append(defs, buildDefinition(resolution, meanDuration, sample, sched))
	}
	return defs, nil
}

// buildDefinition picks a boundary stop per chunk sequence: the stop whose
// mean distance to the sampled trips' locations at the time-proportional
// checkpoint is smallest. The final sequence is always anchored to the
// terminal scheduled stop, independent of sampling.
func buildDefinition(resolution int, meanDuration float64, sample []TripTimeline, sched []gtfs.ScheduleStop) models.ChunkDefinition {
	def := models.ChunkDefinition{Resolution: resolution}
	block := meanDuration / float64(resolution)

	for seq := 1; seq <= resolution; seq++ {
		var stop gtfs.ScheduleStop
		if seq == resolution {
			stop = sched[len(sched)-1]
		} else {
			offset := block * float64(seq)
			locations := locationsAtOffset(sample, offset)
			stop = closestMeanStop(sched, locations)
		}

		boundary := models.ChunkBoundary{
			Seq:                seq,
			StopID:             stop.StopID,
			StopSeq:            stop.StopSeq,
			StopName:           stop.StopName,
			StopLat:            stop.Lat,
			StopLon:            stop.Lon,
			CumulativeDistance: stop.Distance,
		}
		if seq == 1 {
			boundary.SegmentDistance = boundary.CumulativeDistance
		} else {
			boundary.SegmentDistance = boundary.CumulativeDistance - def.Boundaries[seq-2].CumulativeDistance
		}
		def.Boundaries = append(def.Boundaries, boundary)
	}
	return def
}

type latLon struct {
	lat, lon float64
}

// locationsAtOffset finds, for each sampled trip, the first record strictly
// after start+offset and collects its location. Trips whose records end
// before the checkpoint contribute nothing.
func locationsAtOffset(sample []TripTimeline, offset float64) []latLon {
	var locations []latLon
	for _, trip := range sample {
		cutoff := trip.StartTimestamp() + offset
		idx := sort.Search(len(trip.Records), func(i int) bool {
			return trip.Records[i].Timestamp > cutoff
		})
		if idx == len(trip.Records) {
			continue
		}
		rec := trip.Records[idx]
		locations = append(locations, latLon{lat: rec.Latitude, lon: rec.Longitude})
	}
	return locations
}

// closestMeanStop returns the schedule stop minimizing the mean distance to
// the checkpoint locations. Ties keep the first stop in schedule order.
func closestMeanStop(sched []gtfs.ScheduleStop, locations []latLon) gtfs.ScheduleStop {
	best := sched[0]
	bestMean := math.Inf(1)
	for _, stop := range sched {
		var total float64
		for _, loc := range locations {
			total += spatial.HaversineDistance(stop.Lat, stop.Lon, loc.lat, loc.lon)
		}
		mean := total / float64(len(locations))
		if mean < bestMean {
			best = stop
			bestMean = mean
		}
	}
	return best
}
