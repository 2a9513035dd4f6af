package pipeline

import (
	"database/sql"
	"math/rand"
	"time"

	"github.com/LoganWeir/muni-predict/internal/config"
	"github.com/LoganWeir/muni-predict/internal/repository"
)

// Pipeline wires the batch stages to the staging store. Stages run in
// strict order: segmentation fully commits its trips before chunking reads
// them, and each stage clears its own output collections before writing.
type Pipeline struct {
	cfg *config.Config

	records  *repository.RecordRepository
	trips    *repository.TripRepository
	chunks   *repository.ChunkRepository
	features *repository.FeatureRepository
	runs     *repository.RunRepository

	rng *rand.Rand
}

// New builds a pipeline over an initialized database.
func New(cfg *config.Config, db *sql.DB) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		records:  repository.NewRecordRepository(db),
		trips:    repository.NewTripRepository(db),
		chunks:   repository.NewChunkRepository(db),
		features: repository.NewFeatureRepository(db),
		runs:     repository.NewRunRepository(db),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}
