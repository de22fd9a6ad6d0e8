package repositories

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"solar-strategy-service/internal/domain"
	"solar-strategy-service/internal/ports"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedWaypoint(t *testing.T, db *sql.DB, routeID string, waypointID int, distance, limit float64) {
	t.Helper()
	_, err := db.Exec(`
	INSERT INTO route_data (route_id, waypoint_id, lat, lon, elevation, distance, speed_limit)
	VALUES (?, ?, 34.05, -118.24, 100.0, ?, ?);
	`, routeID, waypointID, distance, limit)
	if err != nil {
		t.Fatalf("seed waypoint: %v", err)
	}
}

func TestSqliteRouteRepository(t *testing.T) {
	db := openTestDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seedWaypoint(t, db, "R1", 0, 0, 20)
	seedWaypoint(t, db, "R1", 1, 100, 20)
	seedWaypoint(t, db, "R1", 2, 250, 0)
	seedWaypoint(t, db, "R2", 0, 0, 15)
	seedWaypoint(t, db, "R2", 1, 80, 0)

	repo := NewSqliteRouteRepository(db)
	ctx := context.Background()

	routes, err := repo.ListRoutes(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].ID != "R1" || routes[0].WaypointCount != 3 || routes[0].TotalDistance != 250 {
		t.Fatalf("unexpected route summary: %+v", routes[0])
	}

	wps, err := repo.ListWaypoints(ctx, "R1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wps) != 3 {
		t.Fatalf("expected 3 waypoints, got %d", len(wps))
	}
	for i, w := range wps {
		if w.ID != i {
			t.Fatalf("waypoint %d: expected id %d, got %d", i, i, w.ID)
		}
	}
	if wps[0].GHI != nil {
		t.Fatalf("expected nil GHI for unseeded column, got %v", *wps[0].GHI)
	}
}

func TestSqliteTelemetryStoreWriteOnce(t *testing.T) {
	db := openTestDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seedWaypoint(t, db, "R1", 0, 0, 20)

	store := NewSqliteTelemetryStore(db)
	ctx := context.Background()

	r := domain.TelemetryRecord{
		RouteID: "R1", WaypointID: 0,
		Lat: 34.05, Lon: -118.24, Elevation: 100, Distance: 0, SpeedLimit: 20,
		Speed: 0, Torque: 0, SOC: 1, ElapsedS: 0,
	}

	// Fills the pre-seeded row.
	if err := store.Append(ctx, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second write to the same key must be rejected.
	err := store.Append(ctx, r)
	if !errors.Is(err, ports.ErrDuplicateTelemetry) {
		t.Fatalf("expected ErrDuplicateTelemetry, got %v", err)
	}

	// Unseeded rows are inserted whole.
	r2 := r
	r2.WaypointID = 1
	r2.Distance = 100
	r2.Speed = 12
	if err := store.Append(ctx, r2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recs, err := store.Query(ctx, "R1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 output rows, got %d", len(recs))
	}
	if recs[1].Speed != 12 {
		t.Fatalf("expected speed 12 on inserted row, got %v", recs[1].Speed)
	}
}

func TestSqliteTelemetryStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := NewSqliteTelemetryStore(db)
	ctx := context.Background()

	ghi := 815
	windDir := 225.0
	windSpd := 4.2
	withWeather := domain.TelemetryRecord{
		RouteID: "R1", WaypointID: 0,
		Lat: 34.05, Lon: -118.24, Elevation: 100, Distance: 0, SpeedLimit: 20,
		Stop: domain.StopMandatory, GHI: &ghi, WindDir: &windDir, WindSpeed: &windSpd,
		Speed: 0, Torque: 42.5, SOC: 0.97, ElapsedS: 12.5,
	}
	withoutWeather := domain.TelemetryRecord{
		RouteID: "R1", WaypointID: 1,
		Lat: 34.06, Lon: -118.25, Elevation: 104, Distance: 500, SpeedLimit: 25,
		Stop:  domain.StopNone,
		Speed: 18, Torque: 7.1, SOC: 0.95, ElapsedS: 41.0,
	}

	for _, r := range []domain.TelemetryRecord{withWeather, withoutWeather} {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	recs, err := store.Query(ctx, "R1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recs))
	}
	if !reflect.DeepEqual(recs[0], withWeather) {
		t.Fatalf("weather row changed across append/query:\ngot  %+v\nwant %+v", recs[0], withWeather)
	}
	if !reflect.DeepEqual(recs[1], withoutWeather) {
		t.Fatalf("bare row changed across append/query:\ngot  %+v\nwant %+v", recs[1], withoutWeather)
	}
}

func TestSqliteTelemetryStoreReset(t *testing.T) {
	db := openTestDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seedWaypoint(t, db, "R1", 0, 0, 20)

	store := NewSqliteTelemetryStore(db)
	ctx := context.Background()

	r := domain.TelemetryRecord{RouteID: "R1", WaypointID: 0, Lat: 34.05, Lon: -118.24, SpeedLimit: 20, SOC: 1}
	if err := store.Append(ctx, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Reset(ctx, "R1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recs, err := store.Query(ctx, "R1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no output rows after reset, got %d", len(recs))
	}

	// The waypoint row itself survives, so the run can be repeated.
	if err := store.Append(ctx, r); err != nil {
		t.Fatalf("append after reset: %v", err)
	}
}

func TestMigrateLegacySchema(t *testing.T) {
	db := openTestDB(t)

	// Old survey dump: segment_id key, no stop/weather/output columns.
	_, err := db.Exec(`
	CREATE TABLE route_data (
		segment_id  TEXT NOT NULL,
		waypoint_id INTEGER NOT NULL,
		lat         REAL NOT NULL,
		lon         REAL NOT NULL,
		elevation   REAL NOT NULL,
		distance    REAL NOT NULL,
		speed_limit REAL NOT NULL,
		PRIMARY KEY (segment_id, waypoint_id)
	);
	`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	_, err = db.Exec(`
	INSERT INTO route_data (segment_id, waypoint_id, lat, lon, elevation, distance, speed_limit)
	VALUES ('L1', 0, 34.05, -118.24, 100.0, 0.0, 20.0);
	`)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	if err := MigrateLegacy(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := NewSqliteRouteRepository(db)
	wps, err := repo.ListWaypoints(context.Background(), "L1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wps) != 1 {
		t.Fatalf("expected the legacy row under route_id, got %d rows", len(wps))
	}
	if wps[0].Stop != domain.StopNone {
		t.Fatalf("expected no stop type on migrated row, got %q", wps[0].Stop)
	}

	// Migration is idempotent.
	if err := MigrateLegacy(db); err != nil {
		t.Fatalf("second migration: %v", err)
	}
}
