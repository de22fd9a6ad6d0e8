package environment

import (
	"time"

	"solar-strategy-service/internal/domain"
)

// MockSolarEstimator returns a fixed panel power regardless of waypoint,
// heading, or time. Useful for tests and dry runs with deterministic energy.
type MockSolarEstimator struct {
	PowerW float64
}

func NewMockSolarEstimator(powerW float64) *MockSolarEstimator {
	return &MockSolarEstimator{PowerW: powerW}
}

func (e *MockSolarEstimator) PanelPower(_ domain.Waypoint, _ float64, _ time.Time) float64 {
	return e.PowerW
}
