package routing

import (
	"context"
	"fmt"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/geo"
	"route-finder-service/internal/platform/obs"
)

// StraightLineRouteClient synthesizes a two-point route without calling any
// service. Its distance is the great-circle distance.
type StraightLineRouteClient struct{}

func NewStraightLineRouteClient() *StraightLineRouteClient { return &StraightLineRouteClient{} }

func (StraightLineRouteClient) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	opts domain.RouteOptions,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, "straight.FetchRoute")(&err)

	if err := checkOptions(opts); err != nil {
		return domain.Route{}, fmt.Errorf("straight line route: %w", err)
	}
	return domain.Route{
		Points:         []domain.Coordinates{origin, destination},
		DistanceMeters: geo.DistanceKm(origin, destination) * 1000,
	}, nil
}

func (StraightLineRouteClient) StraightLine() bool { return true }
