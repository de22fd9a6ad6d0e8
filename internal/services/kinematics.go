package services

import (
	"math"

	"go.uber.org/zap"

	"solar-strategy-service/internal/domain"
)

// Achievable state at one waypoint of a solved profile.
type ProfilePoint struct {
	WaypointID int
	Speed      float64 // m/s
	Torque     float64 // Nm over the approaching segment, negative when braking
}

// Speed/torque profile aligned to a route's waypoints. The profile satisfies
// the waypoint speed limits, mandatory stops, and forward/backward
// reachability under the vehicle's traction and braking bounds.
type SpeedProfile struct {
	RouteID string
	Points  []ProfilePoint
}

// Speed returns the achievable speed at waypoint index i.
func (p *SpeedProfile) Speed(i int) float64 { return p.Points[i].Speed }

// Computes the maximum achievable speed at every waypoint of a route under
// acceleration, deceleration, speed-limit, and stop constraints.
type KinematicsSolver struct {
	params domain.VehicleParams
	log    *zap.Logger
}

func NewKinematicsSolver(params domain.VehicleParams, log *zap.Logger) *KinematicsSolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &KinematicsSolver{params: params, log: log}
}

// SolveProfile runs the two-pass reachability algorithm over the route.
//
// The forward pass propagates the traction bound from the entry speed; the
// backward pass propagates the braking bound from the exit target. Mandatory
// stops and reverse points are pinned to zero before either pass, which
// chains the algorithm across each zero-speed boundary exactly as if the
// sub-intervals were solved independently.
//
// A negative or non-finite entry speed is rejected outright; the solver
// never silently clamps it to zero.
func (s *KinematicsSolver) SolveProfile(g *RouteGraph, entrySpeed, exitSpeed float64) (*SpeedProfile, error) {
	if entrySpeed < 0 || math.IsNaN(entrySpeed) || math.IsInf(entrySpeed, 0) {
		return nil, &domain.InvalidKinematicStateError{
			RouteID:    g.RouteID,
			WaypointID: g.Waypoints[0].ID,
			Speed:      entrySpeed,
			Reason:     "entry speed must be finite and non-negative",
		}
	}
	if exitSpeed < 0 || math.IsNaN(exitSpeed) || math.IsInf(exitSpeed, 0) {
		return nil, &domain.InvalidKinematicStateError{
			RouteID:    g.RouteID,
			WaypointID: g.Waypoints[len(g.Waypoints)-1].ID,
			Speed:      exitSpeed,
			Reason:     "exit speed must be finite and non-negative",
		}
	}

	n := len(g.Waypoints)
	caps := make([]float64, n)
	for i, wp := range g.Waypoints {
		caps[i] = wp.SpeedLimit
		if wp.Stop != domain.StopNone {
			caps[i] = 0
		}
	}

	// Forward pass: traction reachability clipped by each waypoint cap.
	v := make([]float64, n)
	v[0] = math.Min(entrySpeed, caps[0])
	for i := 0; i < n-1; i++ {
		d := g.Segment(i).Distance
		reach := math.Sqrt(v[i]*v[i] + 2*s.params.MaxAccel(v[i])*d)
		v[i+1] = math.Min(caps[i+1], reach)
	}

	// Backward pass: braking reachability from the terminal speed target.
	v[n-1] = math.Min(v[n-1], exitSpeed)
	for i := n - 2; i >= 0; i-- {
		d := g.Segment(i).Distance
		allowed := math.Sqrt(v[i+1]*v[i+1] + 2*s.params.MaxBrakingDecel*d)
		v[i] = math.Min(v[i], allowed)
	}

	points := make([]ProfilePoint, n)
	points[0] = ProfilePoint{WaypointID: g.Waypoints[0].ID, Speed: v[0]}
	for i := 1; i < n; i++ {
		seg := g.Segment(i - 1)
		speed, torque := s.segmentTorque(g.RouteID, seg, v[i-1], v[i])
		v[i] = speed
		points[i] = ProfilePoint{WaypointID: g.Waypoints[i].ID, Speed: speed, Torque: torque}
	}

	return &SpeedProfile{RouteID: g.RouteID, Points: points}, nil
}

// segmentTorque derives the drivetrain torque needed to go from vIn to vOut
// over the segment, re-clipped against the motor's torque-speed limit. When
// the required torque exceeds the limit the profile is inconsistent: the
// violation is logged and the slower feasible arrival speed substituted.
func (s *KinematicsSolver) segmentTorque(routeID string, seg domain.RouteSegment, vIn, vOut float64) (float64, float64) {
	if seg.Distance == 0 {
		return vIn, 0
	}

	accel := (vOut*vOut - vIn*vIn) / (2 * seg.Distance)
	vMid := (vIn + vOut) / 2
	resistive := s.roadLoad(seg, vMid)

	force := s.params.MassKg*accel + resistive
	torque := force * s.params.WheelRadiusM

	limit := s.params.MaxTorque(vMid)
	if torque <= limit {
		return vOut, torque
	}

	feasAccel := (limit/s.params.WheelRadiusM - resistive) / s.params.MassKg
	feasible := math.Sqrt(math.Max(0, vIn*vIn+2*feasAccel*seg.Distance))
	if feasible > vOut {
		feasible = vOut
	}

	s.log.Warn("torque limit exceeded, substituting feasible speed",
		zap.String("route_id", routeID),
		zap.Int("waypoint_id", seg.To.ID),
		zap.Float64("required_torque", torque),
		zap.Float64("torque_limit", limit),
		zap.Float64("requested_speed", vOut),
		zap.Float64("feasible_speed", feasible),
	)
	return feasible, limit
}

// roadLoad sums drag, rolling resistance, and grade force at the given speed.
// Drag works against the along-track wind component carried by the segment's
// origin waypoint.
func (s *KinematicsSolver) roadLoad(seg domain.RouteSegment, speed float64) float64 {
	return dragForce(s.params, seg, speed) + s.params.RollingForce(seg) + s.params.GradeForce(seg)
}

// dragForce computes aerodynamic drag at the given ground speed, reduced or
// amplified by the wind component along the segment heading. A tailwind
// faster than the vehicle produces zero drag rather than thrust.
func dragForce(p domain.VehicleParams, seg domain.RouteSegment, speed float64) float64 {
	const airDensity = 1.225 // kg/m³ at sea level

	relative := speed - windAlongTrack(seg)
	if relative < 0 {
		relative = 0
	}
	return 0.5 * airDensity * p.DragCoeff * p.FrontalAreaM2 * relative * relative
}

// windAlongTrack projects the origin waypoint's wind vector onto the segment
// heading. Positive means tailwind. Missing wind data contributes nothing.
func windAlongTrack(seg domain.RouteSegment) float64 {
	wp := seg.From
	if wp.WindDir == nil || wp.WindSpeed == nil {
		return 0
	}
	// Wind direction is reported as the bearing the wind blows FROM; the
	// vector it pushes along is the opposite bearing.
	pushAzimuth := *wp.WindDir + 180
	diff := (pushAzimuth - seg.Azimuth) * math.Pi / 180
	return *wp.WindSpeed * math.Cos(diff)
}
