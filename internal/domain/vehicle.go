package domain

import (
	"fmt"
	"math"
	"sort"
)

// One sample of a speed-indexed motor curve.
type CurvePoint struct {
	Speed float64 `yaml:"speed"` // m/s
	Value float64 `yaml:"value"` // Nm for the torque curve, fraction for efficiency
}

// Vehicle and simulation physical parameters.
// One explicit structure is threaded through the route graph, solver, energy
// model, and driver construction; nothing reads ambient global state.
type VehicleParams struct {
	MassKg       float64 `yaml:"mass_kg"`
	WheelRadiusM float64 `yaml:"wheel_radius_m"`

	DragCoeff       float64 `yaml:"drag_coeff"`
	FrontalAreaM2   float64 `yaml:"frontal_area_m2"`
	RollingResCoeff float64 `yaml:"rolling_res_coeff"`

	// Maximum deliverable torque (Nm) as a function of vehicle speed.
	TorqueCurve []CurvePoint `yaml:"torque_curve"`
	// Motor drive efficiency (0,1] as a function of vehicle speed.
	EfficiencyCurve []CurvePoint `yaml:"efficiency_curve"`

	PanelAreaM2     float64 `yaml:"panel_area_m2"`
	PanelEfficiency float64 `yaml:"panel_efficiency"`
	PanelTiltDeg    float64 `yaml:"panel_tilt_deg"`

	BatteryCapacityJ float64 `yaml:"battery_capacity_j"`
	AuxiliaryLoadW   float64 `yaml:"auxiliary_load_w"`

	MaxBrakingDecel float64 `yaml:"max_braking_decel"` // m/s², positive magnitude
	TimeStepS       float64 `yaml:"time_step_s"`
	InitialSOC      float64 `yaml:"initial_soc"`   // fraction of capacity
	InitialSpeed    float64 `yaml:"initial_speed"` // m/s
}

const gravity = 9.80665 // m/s²

func (p VehicleParams) Validate() error {
	if p.MassKg <= 0 {
		return fmt.Errorf("vehicle params: mass must be positive, got %v", p.MassKg)
	}
	if p.WheelRadiusM <= 0 {
		return fmt.Errorf("vehicle params: wheel radius must be positive, got %v", p.WheelRadiusM)
	}
	if p.BatteryCapacityJ <= 0 {
		return fmt.Errorf("vehicle params: battery capacity must be positive, got %v", p.BatteryCapacityJ)
	}
	if p.MaxBrakingDecel <= 0 {
		return fmt.Errorf("vehicle params: braking deceleration must be positive, got %v", p.MaxBrakingDecel)
	}
	if p.TimeStepS <= 0 {
		return fmt.Errorf("vehicle params: time step must be positive, got %v", p.TimeStepS)
	}
	if p.InitialSOC < 0 || p.InitialSOC > 1 {
		return fmt.Errorf("vehicle params: initial SOC must be within [0,1], got %v", p.InitialSOC)
	}
	if err := validateCurve("torque", p.TorqueCurve, 0, math.Inf(1)); err != nil {
		return err
	}
	if err := validateCurve("efficiency", p.EfficiencyCurve, math.SmallestNonzeroFloat64, 1); err != nil {
		return err
	}
	return nil
}

func validateCurve(name string, points []CurvePoint, minValue, maxValue float64) error {
	if len(points) == 0 {
		return &InvalidMotorCurveError{Curve: name, Reason: "curve has no points"}
	}
	if !sort.SliceIsSorted(points, func(i, j int) bool { return points[i].Speed < points[j].Speed }) {
		return &InvalidMotorCurveError{Curve: name, Reason: "curve speeds must be strictly increasing"}
	}
	for i, pt := range points {
		if i > 0 && points[i-1].Speed == pt.Speed {
			return &InvalidMotorCurveError{Curve: name, Reason: fmt.Sprintf("duplicate speed %v", pt.Speed)}
		}
		if !isFinite(pt.Speed) || !isFinite(pt.Value) {
			return &InvalidMotorCurveError{Curve: name, Reason: fmt.Sprintf("non-finite point at index %d", i)}
		}
		if pt.Speed < 0 {
			return &InvalidMotorCurveError{Curve: name, Reason: fmt.Sprintf("negative speed %v", pt.Speed)}
		}
		if pt.Value < minValue || pt.Value > maxValue {
			return &InvalidMotorCurveError{Curve: name, Reason: fmt.Sprintf("value %v out of range at speed %v", pt.Value, pt.Speed)}
		}
	}
	return nil
}

// Interpolate looks up a curve value at the given speed using linear
// interpolation, clamping to the first/last point outside the sampled range.
func Interpolate(points []CurvePoint, speed float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if speed <= points[0].Speed {
		return points[0].Value
	}
	last := points[len(points)-1]
	if speed >= last.Speed {
		return last.Value
	}
	i := sort.Search(len(points), func(i int) bool { return points[i].Speed >= speed })
	lo, hi := points[i-1], points[i]
	frac := (speed - lo.Speed) / (hi.Speed - lo.Speed)
	return lo.Value + frac*(hi.Value-lo.Value)
}

// MaxTorque returns the deliverable motor torque at the given speed.
func (p VehicleParams) MaxTorque(speed float64) float64 {
	return Interpolate(p.TorqueCurve, speed)
}

// Efficiency returns the drive efficiency at the given speed, clamped to (0,1].
func (p VehicleParams) Efficiency(speed float64) float64 {
	eff := Interpolate(p.EfficiencyCurve, speed)
	if eff <= 0 {
		// Validate rejects zero/negative samples, so interpolation cannot
		// produce them; kept as a floor against pathological inputs.
		return math.SmallestNonzeroFloat64
	}
	if eff > 1 {
		return 1
	}
	return eff
}

// MaxAccel converts the torque limit at the given speed into a traction
// acceleration bound through wheel radius and vehicle mass.
func (p VehicleParams) MaxAccel(speed float64) float64 {
	return p.MaxTorque(speed) / (p.WheelRadiusM * p.MassKg)
}

// Gravity force component along a slope for this vehicle.
func (p VehicleParams) GradeForce(seg RouteSegment) float64 {
	return p.MassKg * gravity * seg.GradeSin()
}

// Rolling resistance force on a slope for this vehicle.
func (p VehicleParams) RollingForce(seg RouteSegment) float64 {
	return p.RollingResCoeff * p.MassKg * gravity * seg.GradeCos()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
