package gtfs

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"
)

// Period is one row of the GTFS period lookup table: a date range, the
// directory holding that period's GTFS files, and the AVL sign id active
// during the period.
type Period struct {
	FromDate  time.Time
	ToDate    time.Time
	Directory string
	SignID    string
}

// LoadPeriods reads the period lookup table. The file is sorted with the
// most recent period first, and periods are addressed by row index.
func LoadPeriods(path string) ([]Period, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open period lookup: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read period lookup: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("period lookup %s has no data rows", path)
	}

	idx := makeIndex(rows[0])
	periods := make([]Period, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		from, err := time.ParseInLocation("2006-01-02", field(rec, idx, "from_date"), time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to parse from_date: %w", err)
		}
		to, err := time.ParseInLocation("2006-01-02", field(rec, idx, "to_date"), time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to parse to_date: %w", err)
		}
		periods = append(periods, Period{
			FromDate:  from,
			ToDate:    to,
			Directory: field(rec, idx, "directory"),
			SignID:    field(rec, idx, "sign_id"),
		})
	}
	return periods, nil
}

// PeriodByIndex returns the period at the given lookup-table index.
func PeriodByIndex(path string, index int) (Period, error) {
	periods, err := LoadPeriods(path)
	if err != nil {
		return Period{}, err
	}
	if index < 0 || index >= len(periods) {
		return Period{}, fmt.Errorf("gtfs period index %d out of range (have %d periods)", index, len(periods))
	}
	return periods[index], nil
}

// NormalizeBlockID canonicalizes a block identifier for comparison between
// GTFS block_id values and AVL block numbers, which disagree on zero padding.
func NormalizeBlockID(s string) string {
	s = strings.TrimSpace(s)
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		return "0"
	}
	return trimmed
}
