package services

import (
	"math"

	"solar-strategy-service/internal/domain"
)

// In-memory ordered view of one route with derived per-segment quantities.
// Built once per simulation run from externally supplied rows; owns its
// waypoint and segment data for the duration of the run.
type RouteGraph struct {
	RouteID   string
	Waypoints []domain.Waypoint

	segments []domain.RouteSegment
}

// BuildRouteGraph validates the ordered waypoint rows of a route and derives
// segment distance, azimuth, and elevation delta between each consecutive
// pair. It is a pure transform over the supplied rows.
func BuildRouteGraph(routeID string, waypoints []domain.Waypoint) (*RouteGraph, error) {
	if len(waypoints) < 2 {
		return nil, &domain.MalformedRouteError{
			RouteID:    routeID,
			WaypointID: -1,
			Reason:     "route needs at least 2 waypoints",
		}
	}

	for i, wp := range waypoints {
		if i > 0 && wp.ID <= waypoints[i-1].ID {
			return nil, &domain.MalformedRouteError{
				RouteID:    routeID,
				WaypointID: wp.ID,
				Reason:     "waypoint ids must be strictly increasing",
			}
		}
		for _, v := range []float64{wp.Lat, wp.Lon, wp.Elevation, wp.Distance, wp.SpeedLimit} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &domain.MalformedRouteError{
					RouteID:    routeID,
					WaypointID: wp.ID,
					Reason:     "required numeric field is missing or non-finite",
				}
			}
		}
		if wp.SpeedLimit < 0 {
			return nil, &domain.MalformedRouteError{
				RouteID:    routeID,
				WaypointID: wp.ID,
				Reason:     "speed limit must be non-negative",
			}
		}
	}

	segments := make([]domain.RouteSegment, len(waypoints)-1)
	for i := range segments {
		from, to := &waypoints[i], &waypoints[i+1]
		dist := to.Distance - from.Distance
		if dist < 0 {
			return nil, &domain.MalformedRouteError{
				RouteID:    routeID,
				WaypointID: to.ID,
				Reason:     "cumulative distance must be non-decreasing",
			}
		}
		// Zero-length segments are tolerated only at the route terminus.
		if dist == 0 && i != len(segments)-1 {
			return nil, &domain.MalformedRouteError{
				RouteID:    routeID,
				WaypointID: to.ID,
				Reason:     "segment distance must be strictly positive before the final waypoint",
			}
		}
		segments[i] = domain.RouteSegment{
			From:          from,
			To:            to,
			Distance:      dist,
			Azimuth:       domain.Azimuth(from.Lat, from.Lon, to.Lat, to.Lon),
			ElevationGain: to.Elevation - from.Elevation,
		}
	}

	return &RouteGraph{RouteID: routeID, Waypoints: waypoints, segments: segments}, nil
}

// Segment returns the directed edge from waypoint index i to i+1.
func (g *RouteGraph) Segment(i int) domain.RouteSegment {
	return g.segments[i]
}

// SegmentCount returns the number of directed edges in the route.
func (g *RouteGraph) SegmentCount() int {
	return len(g.segments)
}

// TotalDistance returns the cumulative route length in meters.
func (g *RouteGraph) TotalDistance() float64 {
	return g.Waypoints[len(g.Waypoints)-1].Distance - g.Waypoints[0].Distance
}
