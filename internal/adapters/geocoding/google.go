package geocoding

import (
	"context"
	"net/http"
	"route-finder-service/internal/adapters/gmaps"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/platform/obs"

	"googlemaps.github.io/maps"
)

// GoogleGeocoder resolves places with the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder builds a geocoder on top of hc. baseURL may be empty.
func NewGoogleGeocoder(apiKey, baseURL string, hc *http.Client) (*GoogleGeocoder, error) {
	c, err := gmaps.NewClient(apiKey, baseURL, hc)
	if err != nil {
		return nil, err
	}
	return &GoogleGeocoder{client: c}, nil
}

func (g *GoogleGeocoder) Resolve(ctx context.Context, query string) (_ domain.Coordinates, err error) {
	ctx, done := obs.Start(ctx, "google.Resolve")
	defer done(&err)

	norm := normalize(query)
	if norm == "" {
		return domain.Coordinates{}, &domain.NotFoundError{Query: query}
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: norm})
	if err != nil {
		if gmaps.IsEmptyResult(err) {
			return domain.Coordinates{}, &domain.NotFoundError{Query: query}
		}
		return domain.Coordinates{}, &domain.NetworkError{Op: "google geocode", Err: err}
	}
	if len(results) == 0 {
		return domain.Coordinates{}, &domain.NotFoundError{Query: query}
	}

	loc := results[0].Geometry.Location
	c := domain.Coordinates{Lat: loc.Lat, Lon: loc.Lng}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, &domain.NetworkError{Op: "google geocode", Err: err}
	}
	return c, nil
}

func (g *GoogleGeocoder) Reverse(ctx context.Context, c domain.Coordinates) (_ string, err error) {
	ctx, done := obs.Start(ctx, "google.Reverse")
	defer done(&err)

	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: c.Lat, Lng: c.Lon},
	})
	if err != nil {
		if gmaps.IsEmptyResult(err) {
			return "", &domain.NotFoundError{Query: c.String()}
		}
		return "", &domain.NetworkError{Op: "google reverse geocode", Err: err}
	}
	if len(results) == 0 {
		return "", &domain.NotFoundError{Query: c.String()}
	}
	return results[0].FormattedAddress, nil
}
