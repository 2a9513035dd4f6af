package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/LoganWeir/muni-predict/internal/gtfs"
	"github.com/LoganWeir/muni-predict/internal/ingest"
	"github.com/LoganWeir/muni-predict/internal/models"
	"github.com/LoganWeir/muni-predict/internal/segmentation"
)

// RunSegmentation executes the first batch stage: ingest the feed window,
// detect trip starts per block, and extend each start into a classified
// trip. Only committed trips survive in the labeled collection.
func (p *Pipeline) RunSegmentation() (models.RunSummary, error) {
	summary := models.RunSummary{
		ID:        uuid.NewString(),
		Stage:     models.StageSegmentation,
		StartedAt: time.Now(),
	}
	log.Printf("[Pipeline] Segmentation run %s starting", summary.ID)

	period, err := gtfs.PeriodByIndex(p.cfg.GTFSLookupPath, p.cfg.GTFSPeriod)
	if err != nil {
		return summary, err
	}
	gtfsDir := filepath.Join(p.cfg.GTFSDir, period.Directory)

	aliases, err := p.loadBlockAliases(gtfsDir, period)
	if err != nil {
		return summary, err
	}

	if err := p.ingestFeed(aliases, period, &summary); err != nil {
		return summary, err
	}

	sched, err := gtfs.LoadScheduleContext(gtfsDir, aliases, p.cfg.DirectionID)
	if err != nil {
		return summary, err
	}

	if err := p.detectStarts(sched, &summary); err != nil {
		return summary, err
	}
	if err := p.extendTrips(sched, &summary); err != nil {
		return summary, err
	}

	summary.FinishedAt = time.Now()
	if err := p.runs.InsertSummary(summary); err != nil {
		return summary, err
	}
	logSegmentationSummary(summary)
	return summary, nil
}

// loadBlockAliases resolves the route's GTFS block numbers to the AVL block
// names that appear in the feed.
func (p *Pipeline) loadBlockAliases(gtfsDir string, period gtfs.Period) (map[string]string, error) {
	blockNums, err := gtfs.RouteBlocks(gtfsDir, p.cfg.Route, p.cfg.DirectionID)
	if err != nil {
		return nil, err
	}
	return ingest.LoadBlockAliases(p.cfg.BlockRefPath, period.SignID, blockNums)
}

// ingestFeed clears the staging collections and loads the feed window.
func (p *Pipeline) ingestFeed(aliases map[string]string, period gtfs.Period, summary *models.RunSummary) error {
	if err := p.records.Clear(); err != nil {
		return err
	}
	if err := p.trips.Clear(); err != nil {
		return err
	}

	blockNames := ingest.BlockNames(aliases)

	files, err := ingest.SelectFeedFiles(p.cfg.FeedDir, period, p.cfg.Days)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no feed files in %s for period %s..%s",
			p.cfg.FeedDir, period.FromDate.Format("2006-01-02"), period.ToDate.Format("2006-01-02"))
	}

	for _, file := range files {
		log.Printf("[Pipeline] Ingesting %s", file.Name)
		reader := ingest.NewReader(blockNames, p.cfg.Location)

		f, err := os.Open(filepath.Join(p.cfg.FeedDir, file.Name))
		if err != nil {
			return fmt.Errorf("failed to open feed file: %w", err)
		}

		var batch []models.Record
		err = reader.ReadAll(f, func(rec models.Record) error {
			batch = append(batch, rec)
			return nil
		})
		f.Close()
		if err != nil {
			return err
		}

		if err := p.records.InsertRecords(batch); err != nil {
			return err
		}
		summary.TotalLines += reader.TotalLines
		summary.KeptLines += reader.KeptLines
	}

	log.Printf("[Pipeline] Ingest done: %d lines read, %d kept", summary.TotalLines, summary.KeptLines)
	return nil
}

// detectStarts runs the start detector over every block and persists the
// labeled starts.
func (p *Pipeline) detectStarts(sched *gtfs.ScheduleContext, summary *models.RunSummary) error {
	detector, err := segmentation.NewStartDetector(sched, p.cfg.Location, p.rng)
	if err != nil {
		return err
	}

	blocks, err := p.records.DistinctBlocks()
	if err != nil {
		return err
	}

	for _, block := range blocks {
		records, err := p.records.RecordsForBlock(block)
		if err != nil {
			return err
		}

		byID := make(map[int64]models.Record, len(records))
		for _, rec := range records {
			byID[rec.ID] = rec
		}

		starts, stats := detector.DetectStarts(records)
		summary.StartHits += stats.GeofenceHits
		summary.LabeledStarts += stats.Labeled
		summary.UnmatchedStarts += stats.Unmatched

		for _, start := range starts {
			if err := p.trips.UpsertStart(start, byID[start.RecordID]); err != nil {
				return err
			}
		}
	}

	log.Printf("[Pipeline] Start detection done: %d geofence hits, %d starts labeled, %d unmatched",
		summary.StartHits, summary.LabeledStarts, summary.UnmatchedStarts)
	return nil
}

// extendTrips follows each labeled start through the raw stream and commits
// or discards the resulting trip.
func (p *Pipeline) extendTrips(sched *gtfs.ScheduleContext, summary *models.RunSummary) error {
	starts, err := p.trips.TripStarts()
	if err != nil {
		return err
	}

	for _, start := range starts {
		lastStop, err := sched.LastStop(start.SchedTripID)
		if err != nil {
			// Schedule lookup failure is fatal for the trip, not the run
			log.Printf("[Pipeline] Skipping trip %s: %v", start.TripID, err)
			if err := p.trips.DeleteTrip(start.TripID); err != nil {
				return err
			}
			continue
		}

		candidates, err := p.records.CandidateRecords(models.RecordFilter{
			Block:      start.Block,
			VehicleTag: start.VehicleTag,
			AfterTS:    start.StartTimestamp,
			BeforeTS:   start.StartTimestamp + segmentation.SearchWindowSeconds,
		})
		if err != nil {
			return err
		}

		outcome := segmentation.ExtendTrip(start, candidates, lastStop)
		summary.CountTrip(outcome.Class)

		if outcome.Class != models.TripCommitted {
			if err := p.trips.DeleteTrip(start.TripID); err != nil {
				return err
			}
			continue
		}
		if err := p.trips.UpsertTripRecords(outcome.Records); err != nil {
			return err
		}
		// The start record counts toward the trip's documents
		summary.CommittedDocuments += len(outcome.Records) + 1
	}
	return nil
}

func logSegmentationSummary(s models.RunSummary) {
	log.Printf("[Pipeline] ----------------")
	log.Printf("[Pipeline] Committed trips: %d (%d documents)", s.CommittedTrips, s.CommittedDocuments)
	log.Printf("[Pipeline] Empty trips: %d", s.EmptyTrips)
	log.Printf("[Pipeline] Endless trips: %d", s.EndlessTrips)
	log.Printf("[Pipeline] Sparse trips: %d", s.SparseTrips)
	log.Printf("[Pipeline] Too-small trips: %d", s.TooSmallTrips)
	log.Printf("[Pipeline] Too-large trips: %d", s.TooLargeTrips)
}
