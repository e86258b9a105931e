package routing

import (
	"context"
	"fmt"
	"net/http"
	"route-finder-service/internal/adapters/gmaps"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/geo"
	"route-finder-service/internal/platform/obs"

	"googlemaps.github.io/maps"
)

// GoogleRouteClient implements RouteClient with the Google Directions API.
// Route geometry arrives as an encoded overview polyline.
type GoogleRouteClient struct {
	client *maps.Client
}

func NewGoogleRouteClient(apiKey, baseURL string, hc *http.Client) (*GoogleRouteClient, error) {
	c, err := gmaps.NewClient(apiKey, baseURL, hc)
	if err != nil {
		return nil, err
	}
	return &GoogleRouteClient{client: c}, nil
}

func (g *GoogleRouteClient) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	opts domain.RouteOptions,
) (_ domain.Route, err error) {
	ctx, done := obs.Start(ctx, "google.FetchRoute")
	defer done(&err)

	if err := checkOptions(opts); err != nil {
		return domain.Route{}, fmt.Errorf("fetch google route: %w", err)
	}

	routes, _, err := g.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:       origin.String(),
		Destination:  destination.String(),
		Mode:         maps.TravelModeDriving,
		Alternatives: opts.Preference == domain.PreferenceShortest,
	})
	if err != nil {
		if gmaps.IsEmptyResult(err) {
			return domain.Route{}, &domain.RouteNotFoundError{Provider: "google"}
		}
		return domain.Route{}, &domain.NetworkError{Op: "google directions", Err: err}
	}
	if len(routes) == 0 {
		return domain.Route{}, &domain.RouteNotFoundError{Provider: "google"}
	}

	best := 0
	bestMeters := routeMeters(routes[0])
	if opts.Preference == domain.PreferenceShortest {
		for i := 1; i < len(routes); i++ {
			if m := routeMeters(routes[i]); m < bestMeters {
				best, bestMeters = i, m
			}
		}
	}

	points, err := geo.DecodePolyline(routes[best].OverviewPolyline.Points)
	if err != nil {
		return domain.Route{}, err
	}

	return domain.Route{
		Points:         ensureEndpoints(points, origin, destination),
		DistanceMeters: float64(bestMeters),
	}, nil
}

func routeMeters(r maps.Route) int {
	total := 0
	for _, leg := range r.Legs {
		total += leg.Distance.Meters
	}
	return total
}
