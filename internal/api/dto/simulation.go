package dto

import "time"

// SimulationRequest triggers a batch run. An empty route_id simulates every
// stored route. A null entry_speed falls back to the configured initial
// speed; an explicit 0 forces a standing start.
type SimulationRequest struct {
	RouteID    string     `json:"route_id"`
	EntrySpeed *float64   `json:"entry_speed"`
	ExitSpeed  float64    `json:"exit_speed"`
	TimeStepS  float64    `json:"time_step_s"`
	StartTime  *time.Time `json:"start_time"`
	Workers    int        `json:"workers"`
}

type RunResultResponse struct {
	RunID     string  `json:"run_id"`
	RouteID   string  `json:"route_id"`
	State     string  `json:"state"`
	Records   int     `json:"records"`
	FinalSOC  float64 `json:"final_soc"`
	ElapsedS  float64 `json:"elapsed_s"`
	PositionM float64 `json:"position_m"`
	Error     string  `json:"error,omitempty"`
}

type SimulationResponse struct {
	Results []RunResultResponse `json:"results"`
}
