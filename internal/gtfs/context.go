package gtfs

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/LoganWeir/muni-predict/internal/spatial"
)

// ScheduleContext is the read-only schedule state for one run: trips filtered
// to the route's vehicle blocks and travel direction, their stop-time
// schedule, stop coordinates, shapes, and the weekday calendar. Loaded once
// and passed explicitly to every stage that needs it.
type ScheduleContext struct {
	trips     []Trip
	tripsByID map[string]Trip
	stopTimes map[string][]StopTime // by trip id, ordered by stop sequence
	stops     map[string]Stop
	shapes    map[string][]ShapePoint
	calendar  []CalendarRow

	// AVL block name to normalized GTFS block number
	blockAliases map[string]string

	longestTripID string
}

// LoadScheduleContext loads and filters the GTFS tables of one period
// directory. blockAliases maps AVL block names to the GTFS block numbers
// they run; matching against GTFS block_id values ignores zero padding.
func LoadScheduleContext(dir string, blockAliases map[string]string, directionID int) (*ScheduleContext, error) {
	trips, err := loadTrips(dir)
	if err != nil {
		return nil, err
	}
	stopTimes, err := loadStopTimes(dir)
	if err != nil {
		return nil, err
	}
	stops, err := loadStops(dir)
	if err != nil {
		return nil, err
	}
	calendar, err := loadCalendar(dir)
	if err != nil {
		return nil, err
	}
	shapes, err := loadShapes(dir)
	if err != nil {
		return nil, err
	}

	blockSet := make(map[string]bool, len(blockAliases))
	aliases := make(map[string]string, len(blockAliases))
	for name, num := range blockAliases {
		normalized := NormalizeBlockID(num)
		blockSet[normalized] = true
		aliases[NormalizeBlockID(name)] = normalized
	}

	ctx := &ScheduleContext{
		tripsByID:    make(map[string]Trip),
		stopTimes:    make(map[string][]StopTime),
		stops:        make(map[string]Stop),
		shapes:       shapes,
		calendar:     calendar,
		blockAliases: aliases,
	}

	for _, trip := range trips {
		if trip.DirectionID != directionID {
			continue
		}
		if !blockSet[NormalizeBlockID(trip.BlockID)] {
			continue
		}
		ctx.trips = append(ctx.trips, trip)
		ctx.tripsByID[trip.TripID] = trip
	}
	if len(ctx.trips) == 0 {
		return nil, fmt.Errorf("no trips in %s match the given blocks and direction %d", dir, directionID)
	}

	maxSeq := -1
	for _, st := range stopTimes {
		if _, ok := ctx.tripsByID[st.TripID]; !ok {
			continue
		}
		ctx.stopTimes[st.TripID] = append(ctx.stopTimes[st.TripID], st)
		if st.StopSeq > maxSeq {
			maxSeq = st.StopSeq
			ctx.longestTripID = st.TripID
		}
	}
	for id := range ctx.stopTimes {
		sort.Slice(ctx.stopTimes[id], func(i, j int) bool {
			return ctx.stopTimes[id][i].StopSeq < ctx.stopTimes[id][j].StopSeq
		})
	}

	wanted := make(map[string]bool)
	for _, sts := range ctx.stopTimes {
		for _, st := range sts {
			wanted[st.StopID] = true
		}
	}
	for _, stop := range stops {
		if wanted[stop.StopID] {
			ctx.stops[stop.StopID] = stop
		}
	}

	log.Printf("[ScheduleContext] Loaded %s: %d trips, %d scheduled stops, %d calendar rows",
		dir, len(ctx.trips), len(ctx.stops), len(ctx.calendar))
	return ctx, nil
}

// Trips returns the filtered trip list.
func (c *ScheduleContext) Trips() []Trip {
	return c.trips
}

// TripByID looks up a filtered trip.
func (c *ScheduleContext) TripByID(tripID string) (Trip, bool) {
	t, ok := c.tripsByID[tripID]
	return t, ok
}

// StopsFor returns the trip's stop times ordered by stop sequence.
func (c *ScheduleContext) StopsFor(tripID string) []StopTime {
	return c.stopTimes[tripID]
}

// Stop returns the coordinates of one scheduled stop.
func (c *ScheduleContext) Stop(stopID string) (Stop, bool) {
	s, ok := c.stops[stopID]
	return s, ok
}

// StartingStop returns the location of the route's first scheduled stop.
// Every trip of a single-direction route shares it.
func (c *ScheduleContext) StartingStop() (StopLocation, error) {
	for _, sts := range c.stopTimes {
		for _, st := range sts {
			if st.StopSeq != 1 {
				continue
			}
			stop, ok := c.stops[st.StopID]
			if !ok {
				continue
			}
			return StopLocation{StopID: stop.StopID, Lat: stop.Lat, Lon: stop.Lon}, nil
		}
	}
	return StopLocation{}, fmt.Errorf("no stop with sequence 1 in the filtered schedule")
}

// LastStop returns the location of the trip's terminal scheduled stop.
func (c *ScheduleContext) LastStop(tripID string) (StopLocation, error) {
	sts := c.stopTimes[tripID]
	if len(sts) == 0 {
		return StopLocation{}, fmt.Errorf("no stop times for trip %s", tripID)
	}
	last := sts[len(sts)-1]
	stop, ok := c.stops[last.StopID]
	if !ok {
		return StopLocation{}, fmt.Errorf("stop %s of trip %s missing from the filtered schedule", last.StopID, tripID)
	}
	return StopLocation{StopID: stop.StopID, Lat: stop.Lat, Lon: stop.Lon}, nil
}

// ServiceIDsActive returns the service ids that could govern a departure at
// the given local time. Scheduled times run past midnight (up to ~30:34:00),
// so departures before 07:00 also consider the previous weekday's service;
// Monday's previous day wraps to Sunday.
func (c *ScheduleContext) ServiceIDsActive(t time.Time) []string {
	day := mondayIndex(t.Weekday())

	days := []int{day}
	if t.Hour() <= 7 {
		prev := day - 1
		if prev < 0 {
			prev = 6
		}
		if prev != day {
			days = append(days, prev)
		}
	}

	var ids []string
	seen := make(map[string]bool)
	for _, d := range days {
		for _, row := range c.calendar {
			if row.Weekdays[d] && !seen[row.ServiceID] {
				seen[row.ServiceID] = true
				ids = append(ids, row.ServiceID)
			}
		}
	}
	return ids
}

// Departures returns every scheduled first-stop departure for the block
// under the given service ids, with times normalized to seconds of day.
// blockName is an AVL block name when an alias for it exists, otherwise it
// is compared against GTFS block ids directly.
func (c *ScheduleContext) Departures(blockName string, serviceIDs []string) []Departure {
	block := NormalizeBlockID(blockName)
	if num, ok := c.blockAliases[block]; ok {
		block = num
	}
	serviceSet := make(map[string]bool, len(serviceIDs))
	for _, id := range serviceIDs {
		serviceSet[id] = true
	}

	var departures []Departure
	for _, trip := range c.trips {
		if NormalizeBlockID(trip.BlockID) != block || !serviceSet[trip.ServiceID] {
			continue
		}
		for _, st := range c.stopTimes[trip.TripID] {
			if st.StopSeq != 1 {
				continue
			}
			secs, err := NormalizeScheduleTime(st.DepartureTime)
			if err != nil {
				log.Printf("[ScheduleContext] Skipping unparseable departure %q for trip %s: %v",
					st.DepartureTime, trip.TripID, err)
				continue
			}
			departures = append(departures, Departure{
				TripID:       trip.TripID,
				ServiceID:    trip.ServiceID,
				SecondsOfDay: secs,
			})
		}
	}
	return departures
}

// SampleSchedule builds a sample stop sequence with each stop's cumulative
// shape distance: the distance traveled at the shape point nearest to the
// stop. The sample trip is the longest trip (highest stop sequence) among
// the given trip ids, so models span the longest run of the route and
// shorter trips stay comparable as subsections; with no ids given the
// longest trip of the whole filtered schedule is used.
func (c *ScheduleContext) SampleSchedule(tripIDs []string) ([]ScheduleStop, error) {
	sampleID := c.longestTripID
	if len(tripIDs) > 0 {
		maxSeq := -1
		for _, id := range tripIDs {
			sts := c.stopTimes[id]
			if len(sts) == 0 {
				continue
			}
			if seq := sts[len(sts)-1].StopSeq; seq > maxSeq {
				maxSeq = seq
				sampleID = id
			}
		}
	}

	trip, ok := c.tripsByID[sampleID]
	if !ok {
		return nil, fmt.Errorf("sample trip %s missing from the filtered trips", sampleID)
	}
	shape := c.shapes[trip.ShapeID]
	if len(shape) == 0 {
		return nil, fmt.Errorf("no shape points for shape %s of trip %s", trip.ShapeID, trip.TripID)
	}

	var sched []ScheduleStop
	for _, st := range c.stopTimes[trip.TripID] {
		stop, ok := c.stops[st.StopID]
		if !ok {
			return nil, fmt.Errorf("stop %s of trip %s missing from the filtered schedule", st.StopID, trip.TripID)
		}

		best := -1
		bestDist := 0.0
		for i, pt := range shape {
			d := spatial.HaversineDistance(stop.Lat, stop.Lon, pt.Lat, pt.Lon)
			if best < 0 || d < bestDist {
				best = i
				bestDist = d
			}
		}

		sched = append(sched, ScheduleStop{
			StopID:   stop.StopID,
			StopSeq:  st.StopSeq,
			StopName: stop.Name,
			Lat:      stop.Lat,
			Lon:      stop.Lon,
			Distance: shape[best].DistTraveled,
		})
	}
	return sched, nil
}

// NormalizeScheduleTime converts a GTFS HH:MM:SS string to seconds of day.
// Hours past 24 represent next-day service and are folded back so a service
// day's late trips compare against same-day clock times.
func NormalizeScheduleTime(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed schedule time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed schedule hour %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed schedule minute %q", s)
	}
	second, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("malformed schedule second %q", s)
	}

	if hour > 24 {
		hour -= 24
	} else if hour == 24 {
		hour = 0
	}
	return hour*3600 + minute*60 + second, nil
}

// mondayIndex remaps time.Weekday (Sunday=0) to Monday=0 .. Sunday=6.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
