package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/LoganWeir/muni-predict/internal/models"
)

// Feed line contract: the first line of a daily file is at least this long
// and carries the comma-separated header in its first headerSegment bytes,
// followed immediately by the first data row.
const (
	headerLineMin = 125
	headerSegment = 89

	// Column index of the block name in every data row
	blockColumn = 7

	// REPORT_TIME layout, feed-local time
	reportTimeLayout = "01/02/2006 15:04:05"
)

// Reader converts raw AVL feed lines into Records, keeping only rows whose
// block name belongs to the route under study. It carries the header state
// across lines, since the header arrives glued to the first data row.
type Reader struct {
	blocks map[string]bool
	loc    *time.Location
	header []string

	// Diagnostic counters over everything read so far
	TotalLines int
	KeptLines  int
}

// NewReader builds a reader filtering to the given AVL block names.
// Timestamps are derived in loc, the timezone of the feed.
func NewReader(blockNames []string, loc *time.Location) *Reader {
	blocks := make(map[string]bool, len(blockNames))
	for _, b := range blockNames {
		blocks[b] = true
	}
	if loc == nil {
		loc = time.Local
	}
	return &Reader{blocks: blocks, loc: loc}
}

// ReadLine parses one feed line. The returned record is nil when the line is
// blank, belongs to another block, or only (re)establishes the header.
func (r *Reader) ReadLine(line string) (*models.Record, error) {
	if len(line) > headerLineMin {
		r.header = strings.Split(line[:headerSegment], ",")
		line = line[headerSegment:]
	}
	if len(line) == 0 {
		return nil, nil
	}

	r.TotalLines++
	fields := strings.Split(line, ",")
	if len(fields) <= blockColumn {
		return nil, nil
	}
	if !r.blocks[fields[blockColumn]] {
		return nil, nil
	}
	if r.header == nil {
		return nil, fmt.Errorf("data row seen before the feed header")
	}

	record, err := r.buildRecord(fields)
	if err != nil {
		return nil, err
	}
	r.KeptLines++
	return record, nil
}

// ReadAll streams a whole feed file through ReadLine, passing each kept
// record to fn.
func (r *Reader) ReadAll(src io.Reader, fn func(models.Record) error) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		record, err := r.ReadLine(scanner.Text())
		if err != nil {
			return err
		}
		if record == nil {
			continue
		}
		if err := fn(*record); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read feed lines: %w", err)
	}
	return nil
}

// buildRecord zips a data row to the header, lifting the interpreted columns
// into struct fields and passing the rest through untouched.
func (r *Reader) buildRecord(fields []string) (*models.Record, error) {
	record := &models.Record{Extra: make(map[string]string)}
	for i, name := range r.header {
		if i >= len(fields) {
			break
		}
		value := fields[i]
		switch name {
		case "REPORT_TIME":
			record.ReportTime = value
		case "VEHICLE_TAG":
			record.VehicleTag = value
		case "TRAIN_ASSIGNMENT":
			record.Block = value
		case "LATITUDE":
			record.Latitude = parseCoord(value)
		case "LONGITUDE":
			record.Longitude = parseCoord(value)
		case "SPEED":
			record.Speed = value
		case "HEADING":
			record.Heading = value
		default:
			record.Extra[name] = value
		}
	}

	reported, err := time.ParseInLocation(reportTimeLayout, record.ReportTime, r.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REPORT_TIME %q: %w", record.ReportTime, err)
	}
	record.Timestamp = float64(reported.Unix())
	return record, nil
}

func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
