// Package routing holds the RouteClient adapters: OSRM, OpenRouteService,
// Google Directions and a provider-free straight-line router.
package routing

import (
	"fmt"
	"route-finder-service/internal/domain"
	"strconv"

	"github.com/paulmach/orb"
)

func checkOptions(opts domain.RouteOptions) error {
	switch opts.Mode {
	case "", domain.TravelModeDriving:
	default:
		return fmt.Errorf("unsupported travel mode %q", opts.Mode)
	}
	switch opts.Preference {
	case domain.PreferenceDefault, domain.PreferenceFastest, domain.PreferenceShortest:
	default:
		return fmt.Errorf("unsupported route preference %q", opts.Preference)
	}
	return nil
}

// lineToPoints converts a GeoJSON [lon, lat] line into (lat, lon) coordinates.
func lineToPoints(ls orb.LineString) []domain.Coordinates {
	out := make([]domain.Coordinates, 0, len(ls))
	for _, p := range ls {
		out = append(out, domain.Coordinates{Lat: p.Lat(), Lon: p.Lon()})
	}
	return out
}

// ensureEndpoints guarantees a drawable path of at least two points.
func ensureEndpoints(points []domain.Coordinates, origin, destination domain.Coordinates) []domain.Coordinates {
	if len(points) >= 2 {
		return points
	}
	return []domain.Coordinates{origin, destination}
}

func lonLat(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}
