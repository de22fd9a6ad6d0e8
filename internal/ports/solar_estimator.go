package ports

import (
	"time"

	"solar-strategy-service/internal/domain"
)

// Port: estimates the array charging power at a waypoint.
// Implementations resolve sun geometry against the panel orientation; the
// energy model treats the result as an opaque power figure.
type SolarEstimator interface {
	// Return charging power in watts for a vehicle at the waypoint heading
	// along the given azimuth at wall-clock time t. A waypoint with no GHI
	// reading yields zero power, not an error.
	PanelPower(wp domain.Waypoint, headingAzimuth float64, t time.Time) float64
}
