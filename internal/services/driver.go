package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"solar-strategy-service/internal/domain"
	"solar-strategy-service/internal/platform/obs"
	"solar-strategy-service/internal/ports"
)

// Lifecycle of a simulation run.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateDepleted  RunState = "depleted"
	StateFailed    RunState = "failed"
	StateCancelled RunState = "cancelled"
)

// Travel direction; flips at reverse points after the zero-speed boundary.
type Direction int

const (
	Forward Direction = 1
	Reverse Direction = -1
)

// Mutable per-run simulation state. Created at simulation start, mutated
// once per step, discarded at simulation end. Its history is the telemetry.
type VehicleState struct {
	WaypointIndex int
	Position      float64 // cumulative meters from route start
	Speed         float64 // m/s
	Torque        float64 // Nm applied during the last step
	SOC           float64
	Elapsed       float64 // seconds
	Direction     Direction
}

// Progress is delivered to the optional callback on every waypoint crossing.
type Progress struct {
	RouteID        string
	WaypointID     int
	WaypointsDone  int
	WaypointsTotal int
	Elapsed        float64
	SOC            float64
}

type ProgressFunc func(Progress)

// Per-run tuning. Zero values fall back to the vehicle configuration; a nil
// EntrySpeed uses the configured initial speed, so an explicit 0 m/s entry
// stays expressible.
type RunOptions struct {
	EntrySpeed *float64
	ExitSpeed  float64
	TimeStep   float64   // seconds; 0 uses VehicleParams.TimeStepS
	StartTime  time.Time // wall clock for solar geometry; zero uses time.Now
	Progress   ProgressFunc
}

// Outcome of a run. Records counts telemetry rows appended; on Depleted,
// Failed, or Cancelled outcomes the rows already appended are retained.
type RunResult struct {
	RunID   string
	RouteID string
	State   RunState
	Records int
	Final   VehicleState
}

// Orchestrates the time-stepped walk along a route: one deterministic,
// sequential step loop per run, suspended only at the telemetry store
// boundary. Independent routes may run in parallel; no state is shared
// between runs.
type SimulationDriver struct {
	params domain.VehicleParams
	solver *KinematicsSolver
	energy *EnergyModel
	store  ports.TelemetryStore
	log    *zap.Logger
}

func NewSimulationDriver(params domain.VehicleParams, solver *KinematicsSolver, energy *EnergyModel, store ports.TelemetryStore, log *zap.Logger) *SimulationDriver {
	if log == nil {
		log = zap.NewNop()
	}
	return &SimulationDriver{params: params, solver: solver, energy: energy, store: store, log: log}
}

// Run simulates one route end to end, emitting a telemetry record for every
// waypoint crossed. Cancellation is checked once per timestep; a cancelled
// run keeps its partial telemetry, like a depleted one.
func (d *SimulationDriver) Run(ctx context.Context, g *RouteGraph, opts RunOptions) (_ *RunResult, err error) {
	defer obs.Time(ctx, d.log, "simulate route")(&err)

	result := &RunResult{RunID: uuid.NewString(), RouteID: g.RouteID, State: StateIdle}
	wallStart := time.Now()
	defer func() { obs.ObserveSimulation(string(result.State), result.Records, time.Since(wallStart)) }()
	log := d.log.With(zap.String("run_id", result.RunID), zap.String("route_id", g.RouteID))

	dt := opts.TimeStep
	if dt <= 0 {
		dt = d.params.TimeStepS
	}
	startTime := opts.StartTime
	if startTime.IsZero() {
		startTime = time.Now().UTC()
	}
	entrySpeed := d.params.InitialSpeed
	if opts.EntrySpeed != nil {
		entrySpeed = *opts.EntrySpeed
	}

	profile, err := d.solver.SolveProfile(g, entrySpeed, opts.ExitSpeed)
	if err != nil {
		result.State = StateFailed
		return result, fmt.Errorf("run %s: solve profile: %w", result.RunID, err)
	}

	n := len(g.Waypoints)
	state := VehicleState{
		Position:  g.Waypoints[0].Distance,
		Speed:     profile.Speed(0),
		SOC:       d.params.InitialSOC,
		Direction: Forward,
	}
	result.State = StateRunning
	log.Info("simulation started",
		zap.Int("waypoints", n),
		zap.Float64("dt", dt),
		zap.Float64("entry_speed", state.Speed),
	)

	// The starting waypoint is a crossing too.
	if err := d.emit(ctx, g.Waypoints[0], profile.Points[0], &state, result, opts.Progress, n); err != nil {
		result.State = StateFailed
		return result, err
	}

	for state.WaypointIndex < n-1 {
		if err := ctx.Err(); err != nil {
			result.State = StateCancelled
			result.Final = state
			log.Info("simulation cancelled", zap.Int("records", result.Records))
			return result, err
		}

		seg := g.Segment(state.WaypointIndex)
		target := profile.Speed(state.WaypointIndex + 1)
		distToNext := seg.To.Distance - state.Position

		// A zero-length segment (allowed at the route terminus) is crossed
		// without consuming simulation time.
		if distToNext <= 0 {
			if err := d.cross(ctx, g, profile, &state, result, opts.Progress, n); err != nil {
				result.State = StateFailed
				result.Final = state
				return result, err
			}
			continue
		}

		accel, stalled := d.proposeAccel(seg, state.Speed, target, distToNext, dt)
		if stalled {
			result.State = StateFailed
			result.Final = state
			return result, &domain.InvalidKinematicStateError{
				RouteID:    g.RouteID,
				WaypointID: seg.To.ID,
				Speed:      state.Speed,
				Reason:     "no forward progress possible on a positive-length segment",
			}
		}

		// Energy balance over this step, evaluated at the pre-step speed.
		wheelForce := d.params.MassKg*accel + d.solver.roadLoad(seg, state.Speed)
		torque := wheelForce * d.params.WheelRadiusM
		motorW := d.energy.MotorPower(torque, state.Speed)
		solarW := d.energy.SolarPower(*seg.From, seg.Azimuth, startTime.Add(time.Duration(state.Elapsed*float64(time.Second))))
		netW := d.energy.NetPower(solarW, motorW)

		soc, socErr := d.energy.StepSOC(state.SOC, netW, dt)
		state.SOC = soc
		if socErr != nil {
			result.State = StateDepleted
			result.Final = state
			log.Warn("battery depleted",
				zap.Float64("elapsed_s", state.Elapsed),
				zap.Float64("position_m", state.Position),
				zap.Int("records", result.Records),
			)
			return result, nil
		}

		step := state.Speed*dt + 0.5*accel*dt*dt
		if step < 0 {
			step = 0
		}
		state.Position += step
		state.Speed = math.Max(0, state.Speed+accel*dt)
		state.Torque = torque
		state.Elapsed += dt

		if err := d.cross(ctx, g, profile, &state, result, opts.Progress, n); err != nil {
			result.State = StateFailed
			result.Final = state
			return result, err
		}
	}

	result.State = StateCompleted
	result.Final = state
	log.Info("simulation completed",
		zap.Float64("elapsed_s", state.Elapsed),
		zap.Float64("final_soc", state.SOC),
		zap.Int("records", result.Records),
	)
	return result, nil
}

// cross advances WaypointIndex over every waypoint the vehicle has reached,
// clamping speed to the solved profile and emitting one telemetry record per
// crossing; with a large dt one step may span several waypoints. A mandatory
// stop pins the vehicle at the stop waypoint; overshoot past it is
// discarded, never skipped.
func (d *SimulationDriver) cross(ctx context.Context, g *RouteGraph, profile *SpeedProfile, state *VehicleState, result *RunResult, progress ProgressFunc, n int) error {
	for state.WaypointIndex < n-1 && state.Position >= g.Waypoints[state.WaypointIndex+1].Distance {
		state.WaypointIndex++
		wp := g.Waypoints[state.WaypointIndex]
		pt := profile.Points[state.WaypointIndex]

		if state.Speed > pt.Speed {
			state.Speed = pt.Speed
		}
		halted := wp.Stop != domain.StopNone
		if halted {
			state.Position = wp.Distance
			state.Speed = 0
			if wp.Stop == domain.StopReverse {
				state.Direction = -state.Direction
			}
		}

		if err := d.emit(ctx, wp, pt, state, result, progress, n); err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
	return nil
}

// proposeAccel picks the acceleration for one timestep: brake inside the
// stopping envelope for the downstream target, otherwise accelerate toward
// the segment speed limit without overshooting either bound.
func (d *SimulationDriver) proposeAccel(seg domain.RouteSegment, speed, target, distToNext, dt float64) (accel float64, stalled bool) {
	envelope := math.Sqrt(target*target + 2*d.params.MaxBrakingDecel*math.Max(0, distToNext))
	segLimit := seg.From.SpeedLimit
	if seg.From.Stop != domain.StopNone && segLimit == 0 {
		// A stop row may carry a zero limit; the zero-speed pin applies at
		// the stop point itself, not to the stretch that follows it.
		segLimit = seg.To.SpeedLimit
	}
	cap := math.Min(segLimit, envelope)

	switch {
	case speed > cap:
		return -math.Min(d.params.MaxBrakingDecel, (speed-cap)/dt), false
	case speed < cap:
		a := math.Min(d.params.MaxAccel(speed), (cap-speed)/dt)
		if a <= 0 && speed == 0 {
			return 0, distToNext > 0
		}
		return a, false
	default:
		if cap == 0 && distToNext > 0 {
			return 0, true
		}
		return 0, false
	}
}

// emit appends one telemetry record and reports progress. Append errors,
// including a duplicate primary key, fail the run; records already written
// are never retracted.
func (d *SimulationDriver) emit(ctx context.Context, wp domain.Waypoint, pt ProfilePoint, state *VehicleState, result *RunResult, progress ProgressFunc, total int) error {
	rec := domain.NewTelemetryRecord(wp, state.Speed, pt.Torque, state.SOC, state.Elapsed)
	if err := d.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("run %s: append telemetry waypoint=%d: %w", result.RunID, wp.ID, err)
	}
	result.Records++

	if progress != nil {
		progress(Progress{
			RouteID:        wp.RouteID,
			WaypointID:     wp.ID,
			WaypointsDone:  result.Records,
			WaypointsTotal: total,
			Elapsed:        state.Elapsed,
			SOC:            state.SOC,
		})
	}
	return nil
}
