package gtfs

// Route is a row of routes.txt.
type Route struct {
	RouteID   string
	ShortName string
	LongName  string
}

// Trip is a row of trips.txt.
type Trip struct {
	TripID      string
	RouteID     string
	ServiceID   string
	BlockID     string
	DirectionID int
	ShapeID     string
}

// StopTime is a row of stop_times.txt. DepartureTime keeps the raw GTFS
// string, which can run past 24:00:00 for next-day service.
type StopTime struct {
	TripID        string
	StopID        string
	StopSeq       int
	ArrivalTime   string
	DepartureTime string
}

// Stop is a row of stops.txt.
type Stop struct {
	StopID   string
	Name     string
	Lat      float64
	Lon      float64
}

// ShapePoint is a row of shapes.txt with its cumulative distance traveled.
type ShapePoint struct {
	ShapeID      string
	Lat          float64
	Lon          float64
	Seq          int
	DistTraveled float64
}

// CalendarRow is a row of calendar.txt with the weekday columns remapped to
// day-of-week indices (Monday=0 .. Sunday=6).
type CalendarRow struct {
	ServiceID string
	Weekdays  [7]bool
}

// StopLocation is a stop coordinate pair used for geofence checks.
type StopLocation struct {
	StopID string
	Lat    float64
	Lon    float64
}

// Departure is one scheduled first-stop departure for a block.
type Departure struct {
	TripID     string
	ServiceID  string
	SecondsOfDay int // normalized departure time
}

// ScheduleStop is one stop of the sample schedule, carrying the cumulative
// shape distance from the route start.
type ScheduleStop struct {
	StopID   string
	StopSeq  int
	StopName string
	Lat      float64
	Lon      float64
	Distance float64 // shape_dist_traveled at the nearest shape point
}
