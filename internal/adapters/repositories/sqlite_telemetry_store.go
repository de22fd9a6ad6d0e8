package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"solar-strategy-service/internal/domain"
	"solar-strategy-service/internal/ports"
)

// SQLite-backed implementation of the TelemetryStore port.
//
// Waypoint rows are usually pre-seeded with NULL outputs; Append fills the
// outputs exactly once. The NULL guard on the UPDATE makes the write-once
// semantics atomic per record, which is all that parallel route runs need:
// two runs never target the same (route_id, waypoint_id).
type SqliteTelemetryStore struct{ DB *sql.DB }

func NewSqliteTelemetryStore(db *sql.DB) *SqliteTelemetryStore {
	return &SqliteTelemetryStore{DB: db}
}

// Persist one output row. A duplicate (route_id, waypoint_id) is rejected
// with ports.ErrDuplicateTelemetry and leaves the store unchanged.
func (s *SqliteTelemetryStore) Append(ctx context.Context, rec domain.TelemetryRecord) error {
	if s.DB == nil {
		return errors.New("sqlite telemetry store: DB is nil")
	}

	update := `
	UPDATE route_data
	SET speed = ?, torque = ?, soc = ?, elapsed_s = ?
	WHERE route_id = ? AND waypoint_id = ?
		AND speed IS NULL AND torque IS NULL;
	`
	res, err := s.DB.ExecContext(ctx, update,
		rec.Speed, rec.Torque, rec.SOC, rec.ElapsedS,
		rec.RouteID, rec.WaypointID,
	)
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

	exists, err := s.rowExists(ctx, rec.RouteID, rec.WaypointID)
	if err != nil {
		return fmt.Errorf("append telemetry: %w", err)
	}
	if exists {
		return fmt.Errorf("append telemetry route=%q waypoint=%d: %w",
			rec.RouteID, rec.WaypointID, ports.ErrDuplicateTelemetry)
	}

	// No seeded waypoint row: insert the full denormalized record.
	insert := `
	INSERT INTO route_data (
		route_id, waypoint_id, lat, lon, elevation, distance, speed_limit,
		stop_type, ghi, wind_dir, wind_speed, speed, torque, soc, elapsed_s
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(ctx, insert,
		rec.RouteID, rec.WaypointID, rec.Lat, rec.Lon, rec.Elevation,
		rec.Distance, rec.SpeedLimit, stopTypeValue(rec.Stop),
		nullableInt(rec.GHI), nullableFloat(rec.WindDir), nullableFloat(rec.WindSpeed),
		rec.Speed, rec.Torque, rec.SOC, rec.ElapsedS,
	)
	if err != nil {
		// A concurrent writer may have inserted the same key first.
		if exists, checkErr := s.rowExists(ctx, rec.RouteID, rec.WaypointID); checkErr == nil && exists {
			return fmt.Errorf("append telemetry route=%q waypoint=%d: %w",
				rec.RouteID, rec.WaypointID, ports.ErrDuplicateTelemetry)
		}
		return fmt.Errorf("append telemetry: insert route_data: %w", err)
	}
	return nil
}

// Return all output rows for a route ordered by waypoint id. Rows that were
// seeded but never simulated are not telemetry and are excluded.
func (s *SqliteTelemetryStore) Query(ctx context.Context, routeID string) ([]domain.TelemetryRecord, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite telemetry store: DB is nil")
	}

	query := `
	SELECT
		waypoint_id, lat, lon, elevation, distance, speed_limit,
		stop_type, ghi, wind_dir, wind_speed, speed, torque, soc, elapsed_s
	FROM route_data
	WHERE route_id = ? AND speed IS NOT NULL AND torque IS NOT NULL
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

// Reset clears the output columns for a route so it can be simulated again.
// Seeded waypoint attributes are untouched.
func (s *SqliteTelemetryStore) Reset(ctx context.Context, routeID string) error {
	if s.DB == nil {
		return errors.New("sqlite telemetry store: DB is nil")
	}

	stmt := `
	UPDATE route_data
	SET speed = NULL, torque = NULL, soc = NULL, elapsed_s = NULL
	WHERE route_id = ?;
	`
	if _, err := s.DB.ExecContext(ctx, stmt, routeID); err != nil {
		return fmt.Errorf("reset telemetry: update route_data: %w", err)
	}
	return nil
}

func (s *SqliteTelemetryStore) rowExists(ctx context.Context, routeID string, waypointID int) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx,
		`SELECT 1 FROM route_data WHERE route_id = ? AND waypoint_id = ?`,
		routeID, waypointID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check row exists: %w", err)
	}
	return true, nil
}

func stopTypeValue(st domain.StopType) any {
	if st == "" || st == domain.StopNone {
		return nil
	}
	return string(st)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
