package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"solar-strategy-service/internal/domain"
	"solar-strategy-service/internal/ports"
)

// Postgres-backed implementation of the RouteSource and TelemetryStore
// ports, for deployments that share route data between the strategy service
// and the telemetry dashboards. Opened through internal/platform/db.
type PostgresStore struct{ DB *sql.DB }

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// Initialize the Postgres route_data schema.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("postgres store: DB is nil")
	}

	stmt := `
	CREATE TABLE IF NOT EXISTS route_data (
		route_id    TEXT NOT NULL,
		waypoint_id INTEGER NOT NULL,
		lat         DOUBLE PRECISION NOT NULL,
		lon         DOUBLE PRECISION NOT NULL,
		elevation   DOUBLE PRECISION NOT NULL,
		distance    DOUBLE PRECISION NOT NULL,
		speed_limit DOUBLE PRECISION NOT NULL,
		stop_type   TEXT,
		ghi         INTEGER,
		wind_dir    DOUBLE PRECISION,
		wind_speed  DOUBLE PRECISION,
		speed       DOUBLE PRECISION,
		torque      DOUBLE PRECISION,
		soc         DOUBLE PRECISION,
		elapsed_s   DOUBLE PRECISION,
		PRIMARY KEY (route_id, waypoint_id)
	);
	`
	if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("postgres init schema: create route_data: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRoutes(ctx context.Context) ([]domain.RouteInfo, error) {
	if s.DB == nil {
		return nil, errors.New("postgres store: DB is nil")
	}

	query := `
	SELECT route_id, COUNT(*), MAX(distance) - MIN(distance)
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

func (s *PostgresStore) ListWaypoints(ctx context.Context, routeID string) ([]domain.Waypoint, error) {
	if s.DB == nil {
		return nil, errors.New("postgres store: DB is nil")
	}

	query := `
	SELECT waypoint_id, lat, lon, elevation, distance, speed_limit,
		stop_type, ghi, wind_dir, wind_speed
	FROM route_data
	WHERE route_id = $1
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

func (s *PostgresStore) Append(ctx context.Context, rec domain.TelemetryRecord) error {
	if s.DB == nil {
		return errors.New("postgres store: DB is nil")
	}

	update := `
	UPDATE route_data
	SET speed = $1, torque = $2, soc = $3, elapsed_s = $4
	WHERE route_id = $5 AND waypoint_id = $6
		AND speed IS NULL AND torque IS NULL;
	`
	res, err := s.DB.ExecContext(ctx, update,
		rec.Speed, rec.Torque, rec.SOC, rec.ElapsedS, rec.RouteID, rec.WaypointID)
	if err != nil {
		return fmt.Errorf("append telemetry: update route_data: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append telemetry: rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	// ON CONFLICT DO NOTHING keeps the insert race-free across parallel
	// runs; zero affected rows then means the key already exists.
	insert := `
	INSERT INTO route_data (
		route_id, waypoint_id, lat, lon, elevation, distance, speed_limit,
		stop_type, ghi, wind_dir, wind_speed, speed, torque, soc, elapsed_s
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (route_id, waypoint_id) DO NOTHING;
	`
	res, err = s.DB.ExecContext(ctx, insert,
		rec.RouteID, rec.WaypointID, rec.Lat, rec.Lon, rec.Elevation,
		rec.Distance, rec.SpeedLimit, stopTypeValue(rec.Stop),
		nullableInt(rec.GHI), nullableFloat(rec.WindDir), nullableFloat(rec.WindSpeed),
		rec.Speed, rec.Torque, rec.SOC, rec.ElapsedS,
	)
	if err != nil {
		return fmt.Errorf("append telemetry: insert route_data: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append telemetry: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("append telemetry route=%q waypoint=%d: %w",
			rec.RouteID, rec.WaypointID, ports.ErrDuplicateTelemetry)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, routeID string) ([]domain.TelemetryRecord, error) {
	if s.DB == nil {
		return nil, errors.New("postgres store: DB is nil")
	}

	query := `
	SELECT waypoint_id, lat, lon, elevation, distance, speed_limit,
		stop_type, ghi, wind_dir, wind_speed, speed, torque, soc, elapsed_s
	FROM route_data
	WHERE route_id = $1 AND speed IS NOT NULL AND torque IS NOT NULL
	ORDER BY waypoint_id;
	`
	rows, err := s.DB.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("query telemetry: query route_data table: %w", err)
	}
	defer rows.Close()

	records := make([]domain.TelemetryRecord, 0, 256)
	for rows.Next() {
		var (
			rec      domain.TelemetryRecord
			stopType sql.NullString
			ghi      sql.NullInt64
			windDir  sql.NullFloat64
			windSpd  sql.NullFloat64
		)
		err := rows.Scan(
			&rec.WaypointID, &rec.Lat, &rec.Lon, &rec.Elevation, &rec.Distance,
			&rec.SpeedLimit, &stopType, &ghi, &windDir, &windSpd,
			&rec.Speed, &rec.Torque, &rec.SOC, &rec.ElapsedS,
		)
		if err != nil {
			return nil, fmt.Errorf("query telemetry: scan row: %w", err)
		}
		rec.RouteID = routeID
		rec.Stop = domain.StopNone
		if stopType.Valid && stopType.String != "" {
			rec.Stop = domain.StopType(stopType.String)
		}
		if ghi.Valid {
			v := int(ghi.Int64)
			rec.GHI = &v
		}
		if windDir.Valid {
			v := windDir.Float64
			rec.WindDir = &v
		}
		if windSpd.Valid {
			v := windSpd.Float64
			rec.WindSpeed = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query telemetry: row iteration: %w", err)
	}
	return records, nil
}
