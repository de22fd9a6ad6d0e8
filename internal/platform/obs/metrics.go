package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	simulationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarsim_simulation_runs_total",
			Help: "Simulation runs by terminal state",
		},
		[]string{"state"},
	)

	simulationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solarsim_simulation_duration_seconds",
			Help:    "Wall-clock duration of one route simulation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)

	simulationRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solarsim_simulation_records",
			Help:    "Telemetry records emitted per run",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)
)

// ObserveSimulation records the outcome of one finished simulation run.
func ObserveSimulation(state string, records int, dur time.Duration) {
	simulationRunsTotal.WithLabelValues(state).Inc()
	simulationDuration.Observe(dur.Seconds())
	simulationRecords.Observe(float64(records))
}
