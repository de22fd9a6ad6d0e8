package services

import (
	"time"

	"solar-strategy-service/internal/domain"
	"solar-strategy-service/internal/ports"
)

// Computes instantaneous electrical power and integrates net power into
// battery state of charge. Curve configuration is validated once at
// construction; a bad curve never surfaces mid-run.
type EnergyModel struct {
	params domain.VehicleParams
	solar  ports.SolarEstimator
}

func NewEnergyModel(params domain.VehicleParams, solar ports.SolarEstimator) (*EnergyModel, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &EnergyModel{params: params, solar: solar}, nil
}

// MotorPower returns the electrical draw of the drivetrain in watts.
// Braking torque draws nothing: regenerative capture is out of scope, the
// braking limit is modeled purely as a deceleration bound.
func (m *EnergyModel) MotorPower(torque, speed float64) float64 {
	if torque <= 0 || speed <= 0 {
		return 0
	}
	angularSpeed := speed / m.params.WheelRadiusM
	return torque * angularSpeed / m.params.Efficiency(speed)
}

// SolarPower returns the array charging power in watts at a waypoint while
// heading along the given azimuth. Missing irradiance data yields zero.
func (m *EnergyModel) SolarPower(wp domain.Waypoint, headingAzimuth float64, t time.Time) float64 {
	if m.solar == nil {
		return 0
	}
	return m.solar.PanelPower(wp, headingAzimuth, t)
}

// NetPower balances solar charge against motor draw and the constant
// auxiliary load.
func (m *EnergyModel) NetPower(solarW, motorW float64) float64 {
	return solarW - motorW - m.params.AuxiliaryLoadW
}

// StepSOC integrates net power over one timestep into state of charge,
// clipped to [0,1]. Draining to empty while net power is negative is the
// terminal battery condition and is surfaced, not silently continued.
func (m *EnergyModel) StepSOC(soc, netPowerW, dt float64) (float64, error) {
	next := soc + netPowerW*dt/m.params.BatteryCapacityJ
	if next > 1 {
		next = 1
	}
	if next <= 0 {
		next = 0
		if netPowerW < 0 {
			return next, domain.ErrBatteryDepleted
		}
	}
	return next, nil
}
