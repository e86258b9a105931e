package ports

import (
	"context"
	"route-finder-service/internal/domain"
)

// Contract for retrieving a travel route between two coordinates.
type RouteClient interface {
	// Return path geometry in (lat, lon) order and total distance in meters.
	// Fails with *domain.RouteNotFoundError when the service reports zero routes.
	FetchRoute(ctx context.Context, origin, destination domain.Coordinates, opts domain.RouteOptions) (domain.Route, error)
}

// Implemented by route clients that never call a routing service and only
// synthesize a straight segment.
type StraightLineRouter interface {
	RouteClient
	StraightLine() bool
}
