package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/platform/httpclient"
	"route-finder-service/internal/platform/obs"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const DefaultORSURL = "https://api.openrouteservice.org"

// Meters per reported ORS distance unit.
var orsUnitMeters = map[string]float64{
	"m":  1,
	"km": 1000,
	"mi": 1609.344,
}

// ORSRouteClient implements RouteClient using OpenRouteService
// (/v2/directions/{profile}/geojson). The client is expected to carry the
// Authorization header.
type ORSRouteClient struct {
	client  *httpclient.Client
	baseURL string
	profile string
	units   string
}

func NewORSRouteClient(client *httpclient.Client, baseURL, units string) (*ORSRouteClient, error) {
	if baseURL == "" {
		baseURL = DefaultORSURL
	}
	if units == "" {
		units = "m"
	}
	if _, ok := orsUnitMeters[units]; !ok {
		return nil, fmt.Errorf("unsupported ORS units %q", units)
	}

	return &ORSRouteClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving-car",
		units:   units,
	}, nil
}

type orsDirectionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Units       string      `json:"units"`
	Preference  string      `json:"preference,omitempty"`
}

func (o *ORSRouteClient) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	opts domain.RouteOptions,
) (_ domain.Route, err error) {
	ctx, done := obs.Start(ctx, "ors.FetchRoute")
	defer done(&err)

	if err := checkOptions(opts); err != nil {
		return domain.Route{}, fmt.Errorf("fetch ORS route: %w", err)
	}

	payload := orsDirectionsRequest{
		Coordinates: [][]float64{origin.CoordsToList(), destination.CoordsToList()},
		Units:       o.units,
		Preference:  string(opts.Preference),
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	b, err := o.client.Fetch(ctx, "ors directions", http.MethodPost, endpoint, payload)
	if err != nil {
		// 404 is ORS's "route could not be found" reply.
		if httpclient.StatusCode(err) == http.StatusNotFound {
			return domain.Route{}, &domain.RouteNotFoundError{Provider: "ors"}
		}
		return domain.Route{}, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return domain.Route{}, &domain.NetworkError{Op: "ors directions", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(fc.Features) == 0 {
		return domain.Route{}, &domain.RouteNotFoundError{Provider: "ors"}
	}

	feature := fc.Features[0]
	ls, ok := feature.Geometry.(orb.LineString)
	if !ok {
		return domain.Route{}, &domain.NetworkError{
			Op:  "ors directions",
			Err: errors.New("first feature is not a line string"),
		}
	}

	distance, err := summaryDistance(feature.Properties)
	if err != nil {
		return domain.Route{}, &domain.NetworkError{Op: "ors directions", Err: err}
	}

	return domain.Route{
		Points:         ensureEndpoints(lineToPoints(ls), origin, destination),
		DistanceMeters: distance * orsUnitMeters[o.units],
	}, nil
}

// summaryDistance reads properties.summary.distance. ORS omits it for
// zero-length routes.
func summaryDistance(props geojson.Properties) (float64, error) {
	raw, ok := props["summary"]
	if !ok {
		return 0, errors.New("missing route summary")
	}
	summary, ok := raw.(map[string]interface{})
	if !ok {
		return 0, errors.New("malformed route summary")
	}
	v, ok := summary["distance"]
	if !ok {
		return 0, nil
	}
	d, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("malformed summary distance %v", v)
	}
	return d, nil
}
