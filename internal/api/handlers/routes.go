package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"solar-strategy-service/internal/api/dto"
	"solar-strategy-service/internal/domain"
	"solar-strategy-service/internal/ports"
)

// RouteHandler exposes read-only route and telemetry retrieval endpoints.
type RouteHandler struct {
	Source ports.RouteSource
	Store  ports.TelemetryStore
	Log    *zap.Logger
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Source.ListRoutes(r.Context())
	if err != nil {
		h.Log.Error("list routes failed", zap.Error(err))
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{
		Routes: make([]dto.RouteResponse, 0, len(routes)),
	}
	for _, rt := range routes {
		res.Routes = append(res.Routes, dto.RouteResponse{
			RouteID:        rt.ID,
			WaypointCount:  rt.WaypointCount,
			TotalDistanceM: rt.TotalDistance,
		})
	}

	writeJSON(w, r, h.Log, http.StatusOK, res)
}

// Telemetry returns the simulated output rows for one route, in waypoint
// order. Waypoints the simulation never reached are absent.
func (h *RouteHandler) Telemetry(w http.ResponseWriter, r *http.Request) {
	routeID := strings.TrimSpace(chi.URLParam(r, "routeID"))
	if routeID == "" {
		writeError(w, r, h.Log, http.StatusBadRequest, "route id is required")
		return
	}

	recs, err := h.Store.Query(r.Context(), routeID)
	if err != nil {
		h.Log.Error("query telemetry failed", zap.String("route_id", routeID), zap.Error(err))
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(recs) == 0 {
		writeError(w, r, h.Log, http.StatusNotFound, "no telemetry for route")
		return
	}

	res := dto.TelemetryResponse{
		RouteID: routeID,
		Rows:    make([]dto.TelemetryRowResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		stop := ""
		if rec.Stop != domain.StopNone {
			stop = string(rec.Stop)
		}
		res.Rows = append(res.Rows, dto.TelemetryRowResponse{
			WaypointID: rec.WaypointID,
			Lat:        rec.Lat,
			Lon:        rec.Lon,
			Elevation:  rec.Elevation,
			DistanceM:  rec.Distance,
			SpeedLimit: rec.SpeedLimit,
			StopType:   stop,
			GHI:        rec.GHI,
			WindDir:    rec.WindDir,
			WindSpeed:  rec.WindSpeed,
			Speed:      rec.Speed,
			Torque:     rec.Torque,
			SOC:        rec.SOC,
			ElapsedS:   rec.ElapsedS,
		})
	}

	writeJSON(w, r, h.Log, http.StatusOK, res)
}
