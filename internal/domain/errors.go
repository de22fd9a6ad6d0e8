package domain

import (
	"errors"
	"fmt"
)

// Terminal condition: the battery reached zero charge while net power was
// still negative. The run transitions to Depleted and keeps the telemetry
// emitted so far; this is an expected outcome, not a crash.
var ErrBatteryDepleted = errors.New("battery depleted")

// Input topology error raised while ingesting route rows.
// Fatal for the run: no telemetry is produced.
type MalformedRouteError struct {
	RouteID    string
	WaypointID int // -1 when the route as a whole is at fault
	Reason     string
}

func (e *MalformedRouteError) Error() string {
	if e.WaypointID < 0 {
		return fmt.Sprintf("malformed route %q: %s", e.RouteID, e.Reason)
	}
	return fmt.Sprintf("malformed route %q at waypoint %d: %s", e.RouteID, e.WaypointID, e.Reason)
}

// Impossible speed/constraint combination, either supplied by the caller
// (negative entry speed) or detected mid-run (no forward progress possible).
// The run halts and reports the offending waypoint rather than substituting
// a physically wrong value.
type InvalidKinematicStateError struct {
	RouteID    string
	WaypointID int
	Speed      float64
	Reason     string
}

func (e *InvalidKinematicStateError) Error() string {
	return fmt.Sprintf("invalid kinematic state on route %q at waypoint %d (speed=%.3f m/s): %s",
		e.RouteID, e.WaypointID, e.Speed, e.Reason)
}

// Bad motor curve configuration. Always raised at startup while the energy
// model is constructed, never mid-run.
type InvalidMotorCurveError struct {
	Curve  string // "torque" or "efficiency"
	Reason string
}

func (e *InvalidMotorCurveError) Error() string {
	return fmt.Sprintf("invalid %s curve: %s", e.Curve, e.Reason)
}
