package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"solar-strategy-service/internal/domain"
)

type WaypointSeed struct {
	WaypointID int      `json:"waypoint_id"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Elevation  float64  `json:"elevation"`
	Distance   *float64 `json:"distance,omitempty"`
	SpeedLimit float64  `json:"speed_limit"`
	StopType   string   `json:"stop_type,omitempty"`
	GHI        *int     `json:"ghi,omitempty"`
	WindDir    *float64 `json:"wind_dir,omitempty"`
	WindSpeed  *float64 `json:"wind_speed,omitempty"`
}

type RouteSeed struct {
	RouteID   string         `json:"route_id"`
	Waypoints []WaypointSeed `json:"waypoints"`
}

// Populate route_data with surveyed waypoint rows from a JSON file.
// When a waypoint omits its cumulative distance, it is derived from the
// great-circle distance to the previous waypoint, the same derivation the
// survey ingestion applies to raw placemark coordinates.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed routes: read %q: %w", jsonPath, err)
	}

	var routes []RouteSeed
	if err := json.Unmarshal(bytes, &routes); err != nil {
		return fmt.Errorf("seed routes: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed routes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO route_data (
		route_id, waypoint_id, lat, lon, elevation, distance, speed_limit,
		stop_type, ghi, wind_dir, wind_speed, speed, torque, soc, elapsed_s
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, NULL, NULL);
	`)
	if err != nil {
		return fmt.Errorf("seed routes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, route := range routes {
		routeID := strings.TrimSpace(route.RouteID)
		if routeID == "" {
			return fmt.Errorf("seed routes: route with empty route_id")
		}
		if len(route.Waypoints) < 2 {
			return fmt.Errorf("seed routes: route %q needs at least 2 waypoints", routeID)
		}

		cumulative := 0.0
		for i, wp := range route.Waypoints {
			if i > 0 && wp.WaypointID <= route.Waypoints[i-1].WaypointID {
				return fmt.Errorf("seed routes: route %q waypoint ids must be strictly increasing at index %d", routeID, i)
			}

			if wp.Distance != nil {
				cumulative = *wp.Distance
			} else if i > 0 {
				prev := route.Waypoints[i-1]
				cumulative += domain.Haversine(prev.Lat, prev.Lon, wp.Lat, wp.Lon)
			}

			stop := strings.TrimSpace(wp.StopType)
			if stop != "" && stop != string(domain.StopNone) &&
				stop != string(domain.StopMandatory) && stop != string(domain.StopReverse) {
				return fmt.Errorf("seed routes: route %q waypoint %d: unknown stop_type %q", routeID, wp.WaypointID, stop)
			}

			_, err := stmt.Exec(
				routeID, wp.WaypointID, wp.Lat, wp.Lon, wp.Elevation,
				cumulative, wp.SpeedLimit,
				stopTypeValue(domain.StopType(stop)),
				nullableInt(wp.GHI), nullableFloat(wp.WindDir), nullableFloat(wp.WindSpeed),
			)
			if err != nil {
				return fmt.Errorf("seed routes: insert route=%q waypoint=%d: %w", routeID, wp.WaypointID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed routes: commit tx: %w", err)
	}

	return nil
}
