package services

import (
	"context"
	"fmt"
	"testing"

	"solar-strategy-service/internal/adapters/repositories"
	"solar-strategy-service/internal/domain"
)

// stubRouteSource serves routes from memory, keyed by route id.
type stubRouteSource struct {
	routes map[string][]domain.Waypoint
	order  []string
}

func (s *stubRouteSource) ListRoutes(ctx context.Context) ([]domain.RouteInfo, error) {
	infos := make([]domain.RouteInfo, 0, len(s.order))
	for _, id := range s.order {
		wps := s.routes[id]
		infos = append(infos, domain.RouteInfo{
			ID:            id,
			WaypointCount: len(wps),
			TotalDistance: wps[len(wps)-1].Distance,
		})
	}
	return infos, nil
}

func (s *stubRouteSource) ListWaypoints(ctx context.Context, routeID string) ([]domain.Waypoint, error) {
	wps, ok := s.routes[routeID]
	if !ok {
		return nil, fmt.Errorf("unknown route %q", routeID)
	}
	return wps, nil
}

func routeFor(id string) []domain.Waypoint {
	wps := []domain.Waypoint{wp(0, 0, 20), wp(1, 100, 20), wp(2, 250, 0)}
	for i := range wps {
		wps[i].RouteID = id
	}
	return wps
}

func TestSimulateAllRunsEveryRoute(t *testing.T) {
	source := &stubRouteSource{
		routes: map[string][]domain.Waypoint{
			"R1": routeFor("R1"),
			"R2": routeFor("R2"),
			"R3": routeFor("R3"),
		},
		order: []string{"R1", "R2", "R3"},
	}

	store := repositories.NewMemoryTelemetryStore()
	driver := newTestDriver(t, testParams(), store)

	outcomes, err := SimulateAll(context.Background(), source, driver, RunOptions{}, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}

	for i, id := range source.order {
		o := outcomes[i]
		if o.RouteID != id {
			t.Fatalf("outcome %d: expected route %q, got %q", i, id, o.RouteID)
		}
		if o.Err != nil {
			t.Fatalf("route %q: unexpected error: %v", id, o.Err)
		}
		if o.Result.State != StateCompleted {
			t.Fatalf("route %q: expected completed, got %s", id, o.Result.State)
		}
	}

	if store.Len() != 9 {
		t.Fatalf("expected 9 telemetry rows across routes, got %d", store.Len())
	}
}

func TestSimulateAllIsolatesFailures(t *testing.T) {
	bad := []domain.Waypoint{wp(0, 0, 20)} // too short to form a graph
	for i := range bad {
		bad[i].RouteID = "BAD"
	}

	source := &stubRouteSource{
		routes: map[string][]domain.Waypoint{
			"BAD": bad,
			"R2":  routeFor("R2"),
		},
		order: []string{"BAD", "R2"},
	}

	store := repositories.NewMemoryTelemetryStore()
	driver := newTestDriver(t, testParams(), store)

	outcomes, err := SimulateAll(context.Background(), source, driver, RunOptions{}, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcomes[0].Err == nil {
		t.Fatal("expected error for malformed route")
	}
	if outcomes[1].Err != nil {
		t.Fatalf("healthy route must not be affected: %v", outcomes[1].Err)
	}
	if outcomes[1].Result.State != StateCompleted {
		t.Fatalf("expected completed, got %s", outcomes[1].Result.State)
	}
}

func TestSimulateRouteSingle(t *testing.T) {
	source := &stubRouteSource{
		routes: map[string][]domain.Waypoint{"R1": routeFor("R1")},
		order:  []string{"R1"},
	}

	store := repositories.NewMemoryTelemetryStore()
	driver := newTestDriver(t, testParams(), store)

	o := SimulateRoute(context.Background(), source, driver, RunOptions{}, "R1")
	if o.Err != nil {
		t.Fatalf("unexpected error: %v", o.Err)
	}
	if o.Result.State != StateCompleted {
		t.Fatalf("expected completed, got %s", o.Result.State)
	}

	missing := SimulateRoute(context.Background(), source, driver, RunOptions{}, "NOPE")
	if missing.Err == nil {
		t.Fatal("expected error for unknown route")
	}
}
