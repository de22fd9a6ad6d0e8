package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"solar-strategy-service/internal/ports"
)

// Outcome of one route inside a batch run.
type RouteOutcome struct {
	RouteID string
	Result  *RunResult
	Err     error
}

// SimulateAll runs every stored route through the driver with a bounded
// worker pool. Runs share no mutable state (each gets its own route graph
// and vehicle state), so routes simulate fully in parallel; one route's
// failure does not abort the others. Outcomes are returned in route order.
func SimulateAll(
	ctx context.Context,
	source ports.RouteSource,
	driver *SimulationDriver,
	opts RunOptions,
	workers int,
	log *zap.Logger,
) ([]RouteOutcome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = 4
	}

	routes, err := source.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("simulate all: list routes: %w", err)
	}
	if len(routes) == 0 {
		return []RouteOutcome{}, nil
	}

	outcomes := make([]RouteOutcome, len(routes))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, info := range routes {
		wg.Add(1)
		go func(slot int, routeID string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			outcomes[slot] = simulateOne(ctx, source, driver, opts, routeID)
		}(i, info.ID)
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.Err != nil {
			log.Warn("route simulation did not complete",
				zap.String("route_id", o.RouteID),
				zap.Error(o.Err),
			)
		}
	}
	return outcomes, nil
}

// SimulateRoute runs a single stored route through the driver.
func SimulateRoute(ctx context.Context, source ports.RouteSource, driver *SimulationDriver, opts RunOptions, routeID string) RouteOutcome {
	return simulateOne(ctx, source, driver, opts, routeID)
}

func simulateOne(ctx context.Context, source ports.RouteSource, driver *SimulationDriver, opts RunOptions, routeID string) RouteOutcome {
	waypoints, err := source.ListWaypoints(ctx, routeID)
	if err != nil {
		return RouteOutcome{RouteID: routeID, Err: fmt.Errorf("simulate route %q: list waypoints: %w", routeID, err)}
	}

	graph, err := BuildRouteGraph(routeID, waypoints)
	if err != nil {
		return RouteOutcome{RouteID: routeID, Err: fmt.Errorf("simulate route %q: %w", routeID, err)}
	}

	result, err := driver.Run(ctx, graph, opts)
	return RouteOutcome{RouteID: routeID, Result: result, Err: err}
}
