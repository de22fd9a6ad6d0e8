package ports

import (
	"context"
	"errors"

	"solar-strategy-service/internal/domain"
)

// Returned by Append when a record for the same (route_id, waypoint_id)
// already exists. The store is left unchanged by the rejected attempt.
var ErrDuplicateTelemetry = errors.New("telemetry record already exists")

// Port: the sink/source for simulation output rows. Durability and
// connection management are the adapter's concern; the core only requires
// per-record append atomicity across parallel runs.
type TelemetryStore interface {
	// Persist one output row. Appending a duplicate primary key is rejected
	// with ErrDuplicateTelemetry, never overwritten.
	Append(ctx context.Context, rec domain.TelemetryRecord) error

	// Return all output rows for a route ordered by waypoint id.
	Query(ctx context.Context, routeID string) ([]domain.TelemetryRecord, error)
}
