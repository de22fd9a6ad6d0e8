package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"solar-strategy-service/internal/domain"
	"solar-strategy-service/internal/ports"
)

type telemetryKey struct {
	routeID    string
	waypointID int
}

// In-memory implementation of the TelemetryStore port for tests and dry
// runs. Enforces the same append-or-reject semantics as the SQL stores.
type MemoryTelemetryStore struct {
	mu   sync.Mutex
	recs map[telemetryKey]domain.TelemetryRecord
}

func NewMemoryTelemetryStore() *MemoryTelemetryStore {
	return &MemoryTelemetryStore{recs: map[telemetryKey]domain.TelemetryRecord{}}
}

func (s *MemoryTelemetryStore) Append(ctx context.Context, rec domain.TelemetryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := telemetryKey{routeID: rec.RouteID, waypointID: rec.WaypointID}
	if _, ok := s.recs[key]; ok {
		return fmt.Errorf("append telemetry route=%q waypoint=%d: %w",
			rec.RouteID, rec.WaypointID, ports.ErrDuplicateTelemetry)
	}
	s.recs[key] = rec
	return nil
}

func (s *MemoryTelemetryStore) Query(ctx context.Context, routeID string) ([]domain.TelemetryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.TelemetryRecord, 0, len(s.recs))
	for key, rec := range s.recs {
		if key.routeID == routeID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WaypointID < out[j].WaypointID })
	return out, nil
}

// Len reports the total number of stored records across all routes.
func (s *MemoryTelemetryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}
