package domain

import "math"

// Classification of a waypoint along the route.
// A mandatory stop forces vehicle speed to zero; a reverse point additionally
// flips the direction of travel once the vehicle has stopped.
type StopType string

const (
	StopNone      StopType = "none"
	StopMandatory StopType = "mandatory-stop"
	StopReverse   StopType = "reverse-point"
)

// A single surveyed point along a race route.
// Waypoints are immutable once ingested; environmental readings (GHI, wind)
// are optional and may be absent for parts of the route.
type Waypoint struct {
	RouteID    string
	ID         int     // monotonic within RouteID
	Lat        float64 // degrees
	Lon        float64 // degrees
	Elevation  float64 // meters above sea level
	Distance   float64 // cumulative meters from route start
	SpeedLimit float64 // m/s
	Stop       StopType
	GHI        *int     // W/m², nil when no irradiance reading exists
	WindDir    *float64 // degrees clockwise from north
	WindSpeed  *float64 // m/s
}

// Directed edge between two consecutive waypoints.
// Derived by the route graph, never persisted.
type RouteSegment struct {
	From          *Waypoint
	To            *Waypoint
	Distance      float64 // meters, great-circle
	Azimuth       float64 // initial bearing, degrees clockwise from north
	ElevationGain float64 // meters, To minus From
}

// GradeSin and GradeCos resolve the segment slope for force decomposition.
// A zero-length segment reports flat ground.
func (s RouteSegment) GradeSin() float64 {
	h := math.Hypot(s.Distance, s.ElevationGain)
	if h == 0 {
		return 0
	}
	return s.ElevationGain / h
}

func (s RouteSegment) GradeCos() float64 {
	h := math.Hypot(s.Distance, s.ElevationGain)
	if h == 0 {
		return 1
	}
	return s.Distance / h
}
