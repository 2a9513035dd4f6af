package gtfs

import (
	"fmt"
	"strings"
)

// RouteID resolves a route short name (e.g. "33") to its route_id within a
// period directory. Short names in the feed carry stray whitespace.
func RouteID(dir, shortName string) (string, error) {
	routes, err := loadRoutes(dir)
	if err != nil {
		return "", err
	}
	want := strings.TrimSpace(shortName)
	for _, r := range routes {
		if strings.TrimSpace(r.ShortName) == want {
			return r.RouteID, nil
		}
	}
	return "", fmt.Errorf("route %q not found in %s", shortName, dir)
}

// RouteBlocks returns the unique block ids of every trip on the route in the
// given direction. These are the GTFS block numbers; the AVL feed is filtered
// by the block names they map to.
func RouteBlocks(dir, routeShortName string, directionID int) ([]string, error) {
	routeID, err := RouteID(dir, routeShortName)
	if err != nil {
		return nil, err
	}
	trips, err := loadTrips(dir)
	if err != nil {
		return nil, err
	}

	var blocks []string
	seen := make(map[string]bool)
	for _, trip := range trips {
		if trip.RouteID != routeID || trip.DirectionID != directionID {
			continue
		}
		if trip.BlockID == "" || seen[trip.BlockID] {
			continue
		}
		seen[trip.BlockID] = true
		blocks = append(blocks, trip.BlockID)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("no blocks for route %q direction %d in %s", routeShortName, directionID, dir)
	}
	return blocks, nil
}
