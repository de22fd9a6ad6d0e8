package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"solar-strategy-service/internal/domain"
)

// SQLite-backed implementation of the RouteSource port.
type SqliteRouteRepository struct{ DB *sql.DB }

func NewSqliteRouteRepository(db *sql.DB) *SqliteRouteRepository {
	return &SqliteRouteRepository{DB: db}
}

// Return a summary of every stored route.
func (s *SqliteRouteRepository) ListRoutes(ctx context.Context) ([]domain.RouteInfo, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	query := `
	SELECT
		route_id,
		COUNT(*),
		MAX(distance) - MIN(distance)
	FROM route_data
	GROUP BY route_id
	ORDER BY route_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list routes: query route_data table: %w", err)
	}
	defer rows.Close()

	routes := make([]domain.RouteInfo, 0, 16)
	for rows.Next() {
		var info domain.RouteInfo
		if err := rows.Scan(&info.ID, &info.WaypointCount, &info.TotalDistance); err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		routes = append(routes, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

// Return the ordered waypoint rows for one route.
func (s *SqliteRouteRepository) ListWaypoints(ctx context.Context, routeID string) ([]domain.Waypoint, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	query := `
	SELECT
		waypoint_id,
		lat,
		lon,
		elevation,
		distance,
		speed_limit,
		stop_type,
		ghi,
		wind_dir,
		wind_speed
	FROM route_data
	WHERE route_id = ?
	ORDER BY waypoint_id;
	`
	rows, err := s.DB.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("list waypoints: query route_data table: %w", err)
	}
	defer rows.Close()

	waypoints := make([]domain.Waypoint, 0, 256)
	for rows.Next() {
		wp, err := scanWaypoint(rows, routeID)
		if err != nil {
			return nil, fmt.Errorf("list waypoints: %w", err)
		}
		waypoints = append(waypoints, wp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list waypoints: row iteration: %w", err)
	}

	return waypoints, nil
}

func scanWaypoint(rows *sql.Rows, routeID string) (domain.Waypoint, error) {
	var (
		wp       domain.Waypoint
		stopType sql.NullString
		ghi      sql.NullInt64
		windDir  sql.NullFloat64
		windSpd  sql.NullFloat64
	)
	err := rows.Scan(
		&wp.ID,
		&wp.Lat,
		&wp.Lon,
		&wp.Elevation,
		&wp.Distance,
		&wp.SpeedLimit,
		&stopType,
		&ghi,
		&windDir,
		&windSpd,
	)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("scan row: %w", err)
	}

	wp.RouteID = routeID
	wp.Stop = domain.StopNone
	if stopType.Valid && stopType.String != "" {
		wp.Stop = domain.StopType(stopType.String)
	}
	if ghi.Valid {
		v := int(ghi.Int64)
		wp.GHI = &v
	}
	if windDir.Valid {
		v := windDir.Float64
		wp.WindDir = &v
	}
	if windSpd.Valid {
		v := windSpd.Float64
		wp.WindSpeed = &v
	}
	return wp, nil
}
