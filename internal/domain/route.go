package domain

// Summary of a stored route, used by listing endpoints. A route is an
// ordered sequence of waypoints sharing one route identifier (the placemark
// name of the surveyed segment); the route graph enforces its invariants at
// ingestion.
type RouteInfo struct {
	ID            string
	WaypointCount int
	TotalDistance float64 // meters
}
