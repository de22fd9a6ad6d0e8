package domain

// One persisted simulation output row, keyed by (RouteID, WaypointID).
// Static waypoint attributes are denormalized alongside the outputs so the
// map/graph consumers can query a single table. Immutable once written: a
// given route+waypoint pair is simulated-and-written at most once per run.
type TelemetryRecord struct {
	RouteID    string
	WaypointID int

	// Static waypoint attributes (denormalized).
	Lat        float64
	Lon        float64
	Elevation  float64
	Distance   float64
	SpeedLimit float64
	Stop       StopType
	GHI        *int
	WindDir    *float64
	WindSpeed  *float64

	// Simulation outputs.
	Speed    float64 // m/s at the waypoint crossing
	Torque   float64 // Nm applied over the approaching segment
	SOC      float64 // battery state of charge, fraction
	ElapsedS float64 // seconds since simulation start
}

// NewTelemetryRecord denormalizes a waypoint's static attributes into an
// output row.
func NewTelemetryRecord(wp Waypoint, speed, torque, soc, elapsed float64) TelemetryRecord {
	return TelemetryRecord{
		RouteID:    wp.RouteID,
		WaypointID: wp.ID,
		Lat:        wp.Lat,
		Lon:        wp.Lon,
		Elevation:  wp.Elevation,
		Distance:   wp.Distance,
		SpeedLimit: wp.SpeedLimit,
		Stop:       wp.Stop,
		GHI:        wp.GHI,
		WindDir:    wp.WindDir,
		WindSpeed:  wp.WindSpeed,
		Speed:      speed,
		Torque:     torque,
		SOC:        soc,
		ElapsedS:   elapsed,
	}
}
