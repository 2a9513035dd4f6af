package gtfs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// makeIndex maps header column names to their positions.
func makeIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))] = i
	}
	return idx
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// eachRow streams the data rows of one GTFS file through fn.
func eachRow(dir, name string, fn func(record []string, idx map[string]int) error) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read %s header: %w", name, err)
	}
	idx := makeIndex(header)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s row: %w", name, err)
		}
		if err := fn(record, idx); err != nil {
			return err
		}
	}
	return nil
}

func loadRoutes(dir string) ([]Route, error) {
	var routes []Route
	err := eachRow(dir, "routes.txt", func(rec []string, idx map[string]int) error {
		routes = append(routes, Route{
			RouteID:   field(rec, idx, "route_id"),
			ShortName: field(rec, idx, "route_short_name"),
			LongName:  field(rec, idx, "route_long_name"),
		})
		return nil
	})
	return routes, err
}

func loadTrips(dir string) ([]Trip, error) {
	var trips []Trip
	err := eachRow(dir, "trips.txt", func(rec []string, idx map[string]int) error {
		direction, _ := strconv.Atoi(field(rec, idx, "direction_id"))
		trips = append(trips, Trip{
			TripID:      field(rec, idx, "trip_id"),
			RouteID:     field(rec, idx, "route_id"),
			ServiceID:   field(rec, idx, "service_id"),
			BlockID:     field(rec, idx, "block_id"),
			DirectionID: direction,
			ShapeID:     field(rec, idx, "shape_id"),
		})
		return nil
	})
	return trips, err
}

func loadStopTimes(dir string) ([]StopTime, error) {
	var stopTimes []StopTime
	err := eachRow(dir, "stop_times.txt", func(rec []string, idx map[string]int) error {
		seq, _ := strconv.Atoi(field(rec, idx, "stop_sequence"))
		stopTimes = append(stopTimes, StopTime{
			TripID:        field(rec, idx, "trip_id"),
			StopID:        field(rec, idx, "stop_id"),
			StopSeq:       seq,
			ArrivalTime:   field(rec, idx, "arrival_time"),
			DepartureTime: field(rec, idx, "departure_time"),
		})
		return nil
	})
	return stopTimes, err
}

func loadStops(dir string) ([]Stop, error) {
	var stops []Stop
	err := eachRow(dir, "stops.txt", func(rec []string, idx map[string]int) error {
		lat, _ := strconv.ParseFloat(field(rec, idx, "stop_lat"), 64)
		lon, _ := strconv.ParseFloat(field(rec, idx, "stop_lon"), 64)
		stops = append(stops, Stop{
			StopID: field(rec, idx, "stop_id"),
			Name:   field(rec, idx, "stop_name"),
			Lat:    lat,
			Lon:    lon,
		})
		return nil
	})
	return stops, err
}

func loadShapes(dir string) (map[string][]ShapePoint, error) {
	shapes := make(map[string][]ShapePoint)
	err := eachRow(dir, "shapes.txt", func(rec []string, idx map[string]int) error {
		lat, _ := strconv.ParseFloat(field(rec, idx, "shape_pt_lat"), 64)
		lon, _ := strconv.ParseFloat(field(rec, idx, "shape_pt_lon"), 64)
		seq, _ := strconv.Atoi(field(rec, idx, "shape_pt_sequence"))
		dist, _ := strconv.ParseFloat(field(rec, idx, "shape_dist_traveled"), 64)
		id := field(rec, idx, "shape_id")
		shapes[id] = append(shapes[id], ShapePoint{
			ShapeID:      id,
			Lat:          lat,
			Lon:          lon,
			Seq:          seq,
			DistTraveled: dist,
		})
		return nil
	})
	return shapes, err
}

// weekdayColumns orders calendar.txt columns to match time.Weekday remapped
// to Monday=0 .. Sunday=6.
var weekdayColumns = [7]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

func loadCalendar(dir string) ([]CalendarRow, error) {
	var rows []CalendarRow
	err := eachRow(dir, "calendar.txt", func(rec []string, idx map[string]int) error {
		row := CalendarRow{ServiceID: field(rec, idx, "service_id")}
		for day, col := range weekdayColumns {
			row.Weekdays[day] = field(rec, idx, col) == "1"
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}
