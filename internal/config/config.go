package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/LoganWeir/muni-predict/internal/features"
)

// Config is the run configuration: one route, one direction, one GTFS
// period at a time.
type Config struct {
	Port   string
	DBPath string

	// Data layout
	FeedDir        string // daily AVL csv drops
	GTFSDir        string // per-period GTFS directories
	GTFSLookupPath string // period lookup table
	BlockRefPath   string // block number to block name reference

	// Run parameters
	Route       string // route short name, e.g. "33"
	DirectionID int
	GTFSPeriod  int // index into the period lookup table
	Days        int // newest feed days to ingest; 0 means all in period

	ChunkResolutions []int
	ChunkCeiling     float64 // per-chunk elapsed ceiling in seconds; 0 disables

	Location *time.Location // timezone of the AVL feed
}

// Load reads configuration from the environment, with .env support.
func Load() (*Config, error) {
	// Ignore a missing .env
	_ = godotenv.Load()

	dataDir := getenvDefault("DATA_DIR", "./data")

	cfg := &Config{
		Port:           getenvDefault("PORT", ":8080"),
		DBPath:         getenvDefault("DB_PATH", filepath.Join(dataDir, "muni.db")),
		FeedDir:        getenvDefault("FEED_DIR", filepath.Join(dataDir, "avl")),
		GTFSDir:        getenvDefault("GTFS_DIR", filepath.Join(dataDir, "gtfs")),
		GTFSLookupPath: getenvDefault("GTFS_LOOKUP_PATH", filepath.Join(dataDir, "gtfs_lookup.csv")),
		BlockRefPath:   getenvDefault("BLOCK_REF_PATH", filepath.Join(dataDir, "lookUpBlockIDToBlockNumNam.csv")),
		Route:          getenvDefault("ROUTE", "33"),
	}

	var err error
	if cfg.DirectionID, err = intEnv("DIRECTION_ID", 0); err != nil {
		return nil, err
	}
	if cfg.GTFSPeriod, err = intEnv("GTFS_PERIOD", 0); err != nil {
		return nil, err
	}
	if cfg.Days, err = intEnv("FEED_DAYS", 30); err != nil {
		return nil, err
	}

	resolutions := getenvDefault("CHUNK_RESOLUTIONS", "2,4,6")
	for _, part := range strings.Split(resolutions, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid CHUNK_RESOLUTIONS entry %q", part)
		}
		cfg.ChunkResolutions = append(cfg.ChunkResolutions, n)
	}

	cfg.ChunkCeiling = features.DefaultChunkCeilingSeconds
	if v := os.Getenv("CHUNK_CEILING_SECONDS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("invalid CHUNK_CEILING_SECONDS: %q", v)
		}
		cfg.ChunkCeiling = f
	}

	tz := getenvDefault("FEED_TZ", "America/Los_Angeles")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_TZ %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}
