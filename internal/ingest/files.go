package ingest

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/LoganWeir/muni-predict/internal/gtfs"
)

const (
	feedFilePrefix = "sfmtaAVLRaw"
	feedDateLayout = "01022006" // MMDDYYYY in the file name
)

// FeedFile is one daily AVL drop inside the feed directory.
type FeedFile struct {
	Name string
	Date time.Time
}

// SelectFeedFiles lists the daily feed files whose dates fall inside the
// GTFS period, newest first, capped at days files (0 means no cap). File
// names look like sfmtaAVLRawData03152018.csv; anything else in the
// directory is ignored.
func SelectFeedFiles(dir string, period gtfs.Period, days int) ([]FeedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed directory: %w", err)
	}

	var files []FeedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, feedFilePrefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		rawDate := name[len(name)-len(feedDateLayout)-4 : len(name)-4]
		if strings.HasPrefix(rawDate, "_") {
			continue
		}
		date, err := time.ParseInLocation(feedDateLayout, rawDate, period.FromDate.Location())
		if err != nil {
			continue
		}
		if date.Before(period.FromDate) || !date.Before(period.ToDate) {
			continue
		}
		files = append(files, FeedFile{Name: name, Date: date})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Date.After(files[j].Date)
	})
	if days > 0 && len(files) > days {
		files = files[:days]
	}
	return files, nil
}
