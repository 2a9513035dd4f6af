package pipeline

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/LoganWeir/muni-predict/internal/chunking"
	"github.com/LoganWeir/muni-predict/internal/features"
	"github.com/LoganWeir/muni-predict/internal/gtfs"
	"github.com/LoganWeir/muni-predict/internal/models"
)

// RunChunking executes the second batch stage over the committed trips:
// derive the interval chunk definitions from a shared sample, label every
// trip's records against them, and compute trip and chunk features.
func (p *Pipeline) RunChunking() (models.RunSummary, error) {
	summary := models.RunSummary{
		ID:        uuid.NewString(),
		Stage:     models.StageChunking,
		StartedAt: time.Now(),
	}
	log.Printf("[Pipeline] Chunking run %s starting", summary.ID)

	if err := p.chunks.ClearDefinitions(); err != nil {
		return summary, err
	}
	if err := p.chunks.ClearLabels(); err != nil {
		return summary, err
	}
	if err := p.features.Clear(); err != nil {
		return summary, err
	}

	timelines, err := p.loadTimelines()
	if err != nil {
		return summary, err
	}
	if len(timelines) == 0 {
		return summary, fmt.Errorf("no committed trips to chunk")
	}

	sampleSched, err := p.loadSampleSchedule()
	if err != nil {
		return summary, err
	}

	defs, err := p.buildDefinitions(timelines, sampleSched, &summary)
	if err != nil {
		return summary, err
	}

	if err := p.labelAndAggregate(timelines, defs, &summary); err != nil {
		return summary, err
	}

	summary.FinishedAt = time.Now()
	if err := p.runs.InsertSummary(summary); err != nil {
		return summary, err
	}
	log.Printf("[Pipeline] Chunking done: %d definitions, %d trip/resolution pairs labeled, %d feature trips, %d strict rejects",
		summary.Definitions, summary.ChunkedTrips, summary.FeatureTrips, summary.StrictRejects)
	return summary, nil
}

// loadTimelines reads every committed trip back into memory, ordered by
// timestamp.
func (p *Pipeline) loadTimelines() ([]chunking.TripTimeline, error) {
	tripIDs, err := p.trips.DistinctTripIDs()
	if err != nil {
		return nil, err
	}

	timelines := make([]chunking.TripTimeline, 0, len(tripIDs))
	for _, tripID := range tripIDs {
		records, err := p.trips.TripRecords(tripID)
		if err != nil {
			return nil, err
		}
		timelines = append(timelines, chunking.TripTimeline{TripID: tripID, Records: records})
	}
	return timelines, nil
}

// loadSampleSchedule resolves the sample schedule from the scheduled trips
// the committed starts matched against.
func (p *Pipeline) loadSampleSchedule() ([]gtfs.ScheduleStop, error) {
	period, err := gtfs.PeriodByIndex(p.cfg.GTFSLookupPath, p.cfg.GTFSPeriod)
	if err != nil {
		return nil, err
	}
	gtfsDir := filepath.Join(p.cfg.GTFSDir, period.Directory)

	aliases, err := p.loadBlockAliases(gtfsDir, period)
	if err != nil {
		return nil, err
	}
	sched, err := gtfs.LoadScheduleContext(gtfsDir, aliases, p.cfg.DirectionID)
	if err != nil {
		return nil, err
	}

	starts, err := p.trips.TripStarts()
	if err != nil {
		return nil, err
	}
	schedTripIDs := make([]string, 0, len(starts))
	for _, start := range starts {
		schedTripIDs = append(schedTripIDs, start.SchedTripID)
	}
	return sched.SampleSchedule(schedTripIDs)
}

// buildDefinitions samples the trips, derives one definition per configured
// resolution, and persists them.
func (p *Pipeline) buildDefinitions(timelines []chunking.TripTimeline,
	sampleSched []gtfs.ScheduleStop, summary *models.RunSummary) ([]models.ChunkDefinition, error) {

	tripIDs := make([]string, len(timelines))
	byID := make(map[string]chunking.TripTimeline, len(timelines))
	for i, tl := range timelines {
		tripIDs[i] = tl.TripID
		byID[tl.TripID] = tl
	}

	sampleIDs := chunking.SampleTripIDs(tripIDs, p.rng)
	sample := make([]chunking.TripTimeline, len(sampleIDs))
	for i, id := range sampleIDs {
		sample[i] = byID[id]
	}
	log.Printf("[Pipeline] Sampled %d of %d trips for chunk definitions", len(sample), len(timelines))

	defs, err := chunking.BuildDefinitions(p.cfg.ChunkResolutions, sample, sampleSched)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if err := p.chunks.InsertDefinition(def); err != nil {
			return nil, err
		}
		summary.Definitions++
	}
	return defs, nil
}

// labelAndAggregate labels every trip against every definition and computes
// the feature rows in the same pass, reusing the in-memory label maps.
func (p *Pipeline) labelAndAggregate(timelines []chunking.TripTimeline,
	defs []models.ChunkDefinition, summary *models.RunSummary) error {

	for _, tl := range timelines {
		feature, err := features.TripFeatures(tl.Records, p.cfg.Location)
		if err != nil {
			log.Printf("[Pipeline] Skipping features for trip %s: %v", tl.TripID, err)
		} else {
			if err := p.features.InsertTripFeature(feature); err != nil {
				return err
			}
			summary.FeatureTrips++
		}

		for _, def := range defs {
			labels := chunking.LabelTrip(tl.Records, def)
			if err := p.chunks.UpsertLabels(labels); err != nil {
				return err
			}
			summary.ChunkedTrips++

			byRecord := make(map[int64]int, len(labels))
			for _, label := range labels {
				byRecord[label.RecordID] = label.Seq
			}

			feats, ok := features.ChunkFeatures(tl.TripID, def.Resolution, tl.Records,
				byRecord, p.cfg.ChunkCeiling, p.cfg.Location)
			if !ok {
				summary.StrictRejects++
				continue
			}
			if err := p.features.InsertChunkFeatures(feats); err != nil {
				return err
			}
		}
	}
	return nil
}
