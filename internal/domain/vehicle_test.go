package domain

import (
	"math"
	"testing"
)

func sampleParams() VehicleParams {
	return VehicleParams{
		MassKg:       200,
		WheelRadiusM: 0.25,
		TorqueCurve: []CurvePoint{
			{Speed: 0, Value: 40},
			{Speed: 10, Value: 40},
			{Speed: 20, Value: 20},
		},
		EfficiencyCurve: []CurvePoint{
			{Speed: 0, Value: 0.8},
			{Speed: 20, Value: 0.9},
		},
		BatteryCapacityJ: 1e6,
		MaxBrakingDecel:  3,
		TimeStepS:        0.1,
		InitialSOC:       1,
	}
}

func TestMaxTorqueInterpolation(t *testing.T) {
	p := sampleParams()

	cases := []struct {
		speed float64
		want  float64
	}{
		{0, 40},
		{5, 40},    // flat section
		{15, 30},   // midpoint of 40 -> 20
		{-3, 40},   // clamped below the curve
		{100, 20},  // clamped above the curve
		{17.5, 25}, // interpolated
	}
	for _, tc := range cases {
		if got := p.MaxTorque(tc.speed); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("MaxTorque(%v): expected %v, got %v", tc.speed, tc.want, got)
		}
	}
}

func TestMaxAccel(t *testing.T) {
	p := sampleParams()
	// 40 Nm / (0.25 m * 200 kg) = 0.8 m/s².
	if got := p.MaxAccel(0); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("expected 0.8, got %v", got)
	}
}

func TestValidateRejectsBadParams(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*VehicleParams)
	}{
		{"zero mass", func(p *VehicleParams) { p.MassKg = 0 }},
		{"zero wheel radius", func(p *VehicleParams) { p.WheelRadiusM = 0 }},
		{"zero capacity", func(p *VehicleParams) { p.BatteryCapacityJ = 0 }},
		{"zero braking", func(p *VehicleParams) { p.MaxBrakingDecel = 0 }},
		{"zero timestep", func(p *VehicleParams) { p.TimeStepS = 0 }},
		{"soc out of range", func(p *VehicleParams) { p.InitialSOC = 1.1 }},
		{"empty torque curve", func(p *VehicleParams) { p.TorqueCurve = nil }},
		{"unsorted torque curve", func(p *VehicleParams) {
			p.TorqueCurve = []CurvePoint{{Speed: 10, Value: 40}, {Speed: 0, Value: 40}}
		}},
		{"efficiency above one", func(p *VehicleParams) {
			p.EfficiencyCurve = []CurvePoint{{Speed: 0, Value: 1.2}}
		}},
		{"zero efficiency", func(p *VehicleParams) {
			p.EfficiencyCurve = []CurvePoint{{Speed: 0, Value: 0}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := sampleParams()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}

	if err := sampleParams().Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
}

func TestGradeForces(t *testing.T) {
	p := sampleParams()

	flat := RouteSegment{Distance: 100, ElevationGain: 0}
	if got := p.GradeForce(flat); got != 0 {
		t.Fatalf("expected zero grade force on flat ground, got %v", got)
	}

	climb := RouteSegment{Distance: 100, ElevationGain: 10}
	descend := RouteSegment{Distance: 100, ElevationGain: -10}
	if p.GradeForce(climb) <= 0 {
		t.Fatalf("expected positive grade force climbing, got %v", p.GradeForce(climb))
	}
	if p.GradeForce(descend) >= 0 {
		t.Fatalf("expected negative grade force descending, got %v", p.GradeForce(descend))
	}

	p.RollingResCoeff = 0.01
	// 0.01 * 200 kg * g * cos(grade); close to 19.6 N on shallow grades.
	if got := p.RollingForce(flat); math.Abs(got-0.01*200*9.80665) > 1e-9 {
		t.Fatalf("unexpected rolling force: %v", got)
	}
}
