package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/platform/httpclient"
	"route-finder-service/internal/platform/obs"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const DefaultORSURL = "https://api.openrouteservice.org"

// ORSGeocoder resolves places using OpenRouteService (/geocode/search).
// The client is expected to carry the Authorization header.
type ORSGeocoder struct {
	client  *httpclient.Client
	baseURL string
}

func NewORSGeocoder(client *httpclient.Client, baseURL string) *ORSGeocoder {
	if baseURL == "" {
		baseURL = DefaultORSURL
	}
	return &ORSGeocoder{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (g *ORSGeocoder) Resolve(ctx context.Context, query string) (_ domain.Coordinates, err error) {
	ctx, done := obs.Start(ctx, "ors.Resolve")
	defer done(&err)

	norm := normalize(query)
	if norm == "" {
		return domain.Coordinates{}, &domain.NotFoundError{Query: query}
	}

	q := url.Values{}
	q.Set("text", norm)
	q.Set("size", "1")

	b, err := g.client.Fetch(ctx, "ors geocode", http.MethodGet, g.baseURL+"/geocode/search?"+q.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return domain.Coordinates{}, &domain.NetworkError{Op: "ors geocode", Err: fmt.Errorf("decode geocode response: %w", err)}
	}
	if len(fc.Features) == 0 {
		return domain.Coordinates{}, &domain.NotFoundError{Query: query}
	}

	pt, ok := fc.Features[0].Geometry.(orb.Point)
	if !ok {
		return domain.Coordinates{}, &domain.NetworkError{
			Op:  "ors geocode",
			Err: errors.New("invalid coordinate format: first feature is not a point"),
		}
	}

	// GeoJSON is [lon, lat].
	c := domain.Coordinates{Lat: pt.Lat(), Lon: pt.Lon()}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, &domain.NetworkError{Op: "ors geocode", Err: err}
	}
	return c, nil
}
