package dto

import (
	"route-finder-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// NewRouteFeatureCollection renders a pipeline result as GeoJSON: the route
// line plus one point per endpoint.
func NewRouteFeatureCollection(res *domain.PipelineResult) *geojson.FeatureCollection {
	line := make(orb.LineString, 0, len(res.Route.Points))
	for _, p := range res.Route.Points {
		line = append(line, orb.Point{p.Lon, p.Lat})
	}

	fc := geojson.NewFeatureCollection()

	route := geojson.NewFeature(line)
	route.Properties["role"] = "route"
	route.Properties["distance_km"] = res.DistanceKm
	route.Properties["distance_source"] = string(res.DistanceSource)
	route.Properties["generation"] = res.Generation
	route.BBox = geojson.NewBBox(line.Bound())
	fc.Append(route)

	endpoints := []struct {
		role  string
		place domain.ResolvedPlace
	}{
		{"origin", res.Origin},
		{"destination", res.Destination},
	}
	for _, e := range endpoints {
		f := geojson.NewFeature(orb.Point{e.place.Coordinates.Lon, e.place.Coordinates.Lat})
		f.Properties["role"] = e.role
		f.Properties["query"] = e.place.Query
		fc.Append(f)
	}

	return fc
}
