package ports

import (
	"context"

	"solar-strategy-service/internal/domain"
)

// Port: a boundary for retrieving surveyed route rows from a data source.
type RouteSource interface {
	// Return summaries of every stored route.
	ListRoutes(ctx context.Context) ([]domain.RouteInfo, error)

	// Return the ordered waypoint rows for one route.
	ListWaypoints(ctx context.Context, routeID string) ([]domain.Waypoint, error)
}
