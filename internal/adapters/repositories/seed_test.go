package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const seedJSON = `[
  {
    "route_id": "S1",
    "waypoints": [
      { "waypoint_id": 0, "lat": 34.0522, "lon": -118.2437, "elevation": 89.0, "speed_limit": 0.0, "stop_type": "mandatory-stop" },
      { "waypoint_id": 1, "lat": 34.0555, "lon": -118.2410, "elevation": 95.0, "speed_limit": 15.6, "ghi": 815 },
      { "waypoint_id": 2, "lat": 34.0601, "lon": -118.2355, "elevation": 104.0, "speed_limit": 0.0, "distance": 1500.0 }
    ]
  }
]`

func TestSeedFromJSON(t *testing.T) {
	db := openTestDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "routes.json")
	if err := os.WriteFile(path, []byte(seedJSON), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	if err := SeedFromJSON(db, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := NewSqliteRouteRepository(db)
	wps, err := repo.ListWaypoints(context.Background(), "S1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wps) != 3 {
		t.Fatalf("expected 3 waypoints, got %d", len(wps))
	}

	// First row keeps distance zero; the second derives it from the
	// great-circle hop; the third takes the explicit value.
	if wps[0].Distance != 0 {
		t.Fatalf("expected distance 0 at origin, got %v", wps[0].Distance)
	}
	if wps[1].Distance < 300 || wps[1].Distance > 600 {
		t.Fatalf("derived distance implausible: %v", wps[1].Distance)
	}
	if wps[2].Distance != 1500 {
		t.Fatalf("expected explicit distance 1500, got %v", wps[2].Distance)
	}

	if wps[1].GHI == nil || *wps[1].GHI != 815 {
		t.Fatalf("expected GHI 815 on second waypoint, got %v", wps[1].GHI)
	}

	// Re-seeding replaces rows instead of failing.
	if err := SeedFromJSON(db, path); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
}

func TestSeedFromJSONRejectsBadInput(t *testing.T) {
	db := openTestDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name string
		body string
	}{
		{"empty route id", `[{"route_id": "", "waypoints": [
			{"waypoint_id": 0, "lat": 0, "lon": 0, "elevation": 0, "speed_limit": 0},
			{"waypoint_id": 1, "lat": 0, "lon": 1, "elevation": 0, "speed_limit": 0}]}]`},
		{"single waypoint", `[{"route_id": "X", "waypoints": [
			{"waypoint_id": 0, "lat": 0, "lon": 0, "elevation": 0, "speed_limit": 0}]}]`},
		{"ids not increasing", `[{"route_id": "X", "waypoints": [
			{"waypoint_id": 1, "lat": 0, "lon": 0, "elevation": 0, "speed_limit": 0},
			{"waypoint_id": 0, "lat": 0, "lon": 1, "elevation": 0, "speed_limit": 0}]}]`},
		{"unknown stop type", `[{"route_id": "X", "waypoints": [
			{"waypoint_id": 0, "lat": 0, "lon": 0, "elevation": 0, "speed_limit": 0, "stop_type": "pit-stop"},
			{"waypoint_id": 1, "lat": 0, "lon": 1, "elevation": 0, "speed_limit": 0}]}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "routes.json")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write seed: %v", err)
			}
			if err := SeedFromJSON(db, path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
