package routing

import (
	"context"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/geo"
	"sync/atomic"
)

// MockRouteClient returns a three-point route through the midpoint of the
// endpoints, with a distance of Detour times the great-circle distance.
// Destinations listed in Unreachable yield RouteNotFoundError.
type MockRouteClient struct {
	Detour      float64
	Unreachable map[domain.Coordinates]bool
	calls       atomic.Int64
}

func NewMockRouteClient(detour float64) *MockRouteClient {
	return &MockRouteClient{Detour: detour, Unreachable: map[domain.Coordinates]bool{}}
}

func (m *MockRouteClient) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	opts domain.RouteOptions,
) (domain.Route, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return domain.Route{}, err
	}
	if m.Unreachable[destination] {
		return domain.Route{}, &domain.RouteNotFoundError{Provider: "mock"}
	}

	mid := domain.Coordinates{
		Lat: (origin.Lat + destination.Lat) / 2,
		Lon: (origin.Lon + destination.Lon) / 2,
	}
	return domain.Route{
		Points:         []domain.Coordinates{origin, mid, destination},
		DistanceMeters: geo.DistanceKm(origin, destination) * 1000 * m.Detour,
	}, nil
}

// Calls returns how many FetchRoute calls were made.
func (m *MockRouteClient) Calls() int64 { return m.calls.Load() }
