package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite route_data schema. The single table carries both the
// surveyed waypoint attributes and the simulation output columns; output
// columns stay NULL until a run writes them.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRouteDataQuery := `
	CREATE TABLE IF NOT EXISTS route_data (
		route_id    TEXT NOT NULL,
		waypoint_id INTEGER NOT NULL,
		lat         REAL NOT NULL,
		lon         REAL NOT NULL,
		elevation   REAL NOT NULL,
		distance    REAL NOT NULL,
		speed_limit REAL NOT NULL,
		stop_type   TEXT,
		ghi         INTEGER,
		wind_dir    REAL,
		wind_speed  REAL,
		speed       REAL,
		torque      REAL,
		soc         REAL,
		elapsed_s   REAL,
		PRIMARY KEY (route_id, waypoint_id)
	);
	`

	if _, err := tx.Exec(createRouteDataQuery); err != nil {
		return fmt.Errorf("init schema: create route_data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// MigrateLegacy unifies older schema variants onto the current shape:
// the key column rename (segment_id -> route_id) and any columns the variant
// predates. Core logic never branches on schema version: this runs once at
// startup and the rest of the code sees only the unified table.
func MigrateLegacy(db *sql.DB) error {
	if db == nil {
		return errors.New("migrate legacy: DB is nil")
	}

	cols, err := tableColumns(db, "route_data")
	if err != nil {
		return fmt.Errorf("migrate legacy: %w", err)
	}
	if len(cols) == 0 {
		// Table absent; InitSchema will create the current shape.
		return nil
	}

	if _, ok := cols["segment_id"]; ok {
		if _, err := db.Exec(`ALTER TABLE route_data RENAME COLUMN segment_id TO route_id`); err != nil {
			return fmt.Errorf("migrate legacy: rename segment_id: %w", err)
		}
		delete(cols, "segment_id")
		cols["route_id"] = struct{}{}
	}

	missing := []struct{ name, decl string }{
		{"stop_type", "TEXT"},
		{"ghi", "INTEGER"},
		{"wind_dir", "REAL"},
		{"wind_speed", "REAL"},
		{"speed", "REAL"},
		{"torque", "REAL"},
		{"soc", "REAL"},
		{"elapsed_s", "REAL"},
	}
	for _, col := range missing {
		if _, ok := cols[col.name]; ok {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE route_data ADD COLUMN %s %s", col.name, col.decl)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate legacy: add column %s: %w", col.name, err)
		}
	}

	return nil
}

func tableColumns(db *sql.DB, table string) (map[string]struct{}, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table columns: pragma table_info: %w", err)
	}
	defer rows.Close()

	cols := map[string]struct{}{}
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return nil, fmt.Errorf("table columns: scan: %w", err)
		}
		cols[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table columns: row iteration: %w", err)
	}
	return cols, nil
}
