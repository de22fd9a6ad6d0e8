package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"solar-strategy-service/internal/api/dto"
	"solar-strategy-service/internal/ports"
	"solar-strategy-service/internal/services"
)

// SimulationHandler orchestrates simulation runs over stored routes.
// A shared rate limiter bounds how often batch runs can be triggered, since
// each run is CPU-bound and writes the full telemetry table.
type SimulationHandler struct {
	Source  ports.RouteSource
	Driver  *services.SimulationDriver
	Workers int
	Limiter *rate.Limiter
	Log     *zap.Logger
}

func (h *SimulationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil && !h.Limiter.Allow() {
		writeError(w, r, h.Log, http.StatusTooManyRequests, "simulation rate limit exceeded")
		return
	}

	var req dto.SimulationRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, h.Log, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if (req.EntrySpeed != nil && *req.EntrySpeed < 0) || req.ExitSpeed < 0 {
		writeError(w, r, h.Log, http.StatusBadRequest, "entry_speed and exit_speed must be non-negative")
		return
	}
	if req.TimeStepS < 0 {
		writeError(w, r, h.Log, http.StatusBadRequest, "time_step_s must be non-negative")
		return
	}
	if req.Workers < 0 {
		writeError(w, r, h.Log, http.StatusBadRequest, "workers must be non-negative")
		return
	}

	opts := services.RunOptions{
		EntrySpeed: req.EntrySpeed,
		ExitSpeed:  req.ExitSpeed,
		TimeStep:   req.TimeStepS,
	}
	if req.StartTime != nil {
		opts.StartTime = *req.StartTime
	}

	var outcomes []services.RouteOutcome
	if routeID := strings.TrimSpace(req.RouteID); routeID != "" {
		outcomes = []services.RouteOutcome{
			services.SimulateRoute(r.Context(), h.Source, h.Driver, opts, routeID),
		}
	} else {
		var err error
		outcomes, err = services.SimulateAll(r.Context(), h.Source, h.Driver, opts, h.workers(req.Workers), h.Log)
		if err != nil {
			h.Log.Error("batch simulation failed", zap.Error(err))
			writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	res := dto.SimulationResponse{Results: make([]dto.RunResultResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		rr := dto.RunResultResponse{RouteID: o.RouteID}
		if o.Result != nil {
			rr.RunID = o.Result.RunID
			rr.State = string(o.Result.State)
			rr.Records = o.Result.Records
			rr.FinalSOC = o.Result.Final.SOC
			rr.ElapsedS = o.Result.Final.Elapsed
			rr.PositionM = o.Result.Final.Position
		}
		if o.Err != nil {
			rr.Error = o.Err.Error()
		}
		res.Results = append(res.Results, rr)
	}

	writeJSON(w, r, h.Log, http.StatusOK, res)
}

// workers resolves the pool size for a batch run. A per-request value wins,
// capped so one request cannot spawn an unbounded pool; otherwise the
// configured default applies.
func (h *SimulationHandler) workers(requested int) int {
	if requested > 0 {
		if requested > maxWorkers {
			return maxWorkers
		}
		return requested
	}
	if h.Workers > 0 {
		return h.Workers
	}
	return 4
}

const maxWorkers = 16

// NewSimulationLimiter allows one batch trigger per interval with a small
// burst for interactive retries.
func NewSimulationLimiter(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 2)
}
