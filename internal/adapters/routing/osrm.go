package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/geo"
	"route-finder-service/internal/platform/httpclient"
	"route-finder-service/internal/platform/obs"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const DefaultOSRMURL = "https://router.project-osrm.org"

const (
	GeometryGeoJSON  = "geojson"
	GeometryPolyline = "polyline"
)

// OSRMRouteClient implements RouteClient against an OSRM /route/v1 service.
//
// Geometry is requested either as GeoJSON or as an encoded polyline; both are
// normalized into (lat, lon) points. The client is safe for concurrent use.
type OSRMRouteClient struct {
	client   *httpclient.Client
	baseURL  string
	geometry string
}

func NewOSRMRouteClient(client *httpclient.Client, baseURL, geometry string) (*OSRMRouteClient, error) {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if geometry == "" {
		geometry = GeometryGeoJSON
	}
	if geometry != GeometryGeoJSON && geometry != GeometryPolyline {
		return nil, fmt.Errorf("unsupported OSRM geometry %q", geometry)
	}

	return &OSRMRouteClient{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		geometry: geometry,
	}, nil
}

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Geometry json.RawMessage `json:"geometry"`
}

func (o *OSRMRouteClient) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	opts domain.RouteOptions,
) (_ domain.Route, err error) {
	ctx, done := obs.Start(ctx, "osrm.FetchRoute")
	defer done(&err)

	if err := checkOptions(opts); err != nil {
		return domain.Route{}, fmt.Errorf("fetch OSRM route: %w", err)
	}

	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", o.geometry)
	// OSRM only ranks by duration; shortest is picked from the alternatives.
	if opts.Preference == domain.PreferenceShortest {
		q.Set("alternatives", "true")
	}

	endpoint := fmt.Sprintf("%s/route/v1/driving/%s;%s?%s", o.baseURL, lonLat(origin), lonLat(destination), q.Encode())

	b, err := o.client.Fetch(ctx, "osrm route", http.MethodGet, endpoint, nil)
	if err != nil {
		// OSRM answers NoRoute/NoSegment with a 400 and a JSON body.
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			var decoded osrmResponse
			if json.Unmarshal([]byte(se.Body), &decoded) == nil && isOSRMNoRoute(decoded.Code) {
				return domain.Route{}, &domain.RouteNotFoundError{Provider: "osrm"}
			}
		}
		return domain.Route{}, err
	}

	var decoded osrmResponse
	if err := json.Unmarshal(b, &decoded); err != nil {
		return domain.Route{}, &domain.NetworkError{Op: "osrm route", Err: fmt.Errorf("decode response: %w", err)}
	}
	if isOSRMNoRoute(decoded.Code) || (decoded.Code == "Ok" && len(decoded.Routes) == 0) {
		return domain.Route{}, &domain.RouteNotFoundError{Provider: "osrm"}
	}
	if decoded.Code != "Ok" {
		return domain.Route{}, &domain.NetworkError{
			Op:  "osrm route",
			Err: fmt.Errorf("unexpected code %q: %s", decoded.Code, decoded.Message),
		}
	}

	best := decoded.Routes[0]
	if opts.Preference == domain.PreferenceShortest {
		for _, r := range decoded.Routes[1:] {
			if r.Distance < best.Distance {
				best = r
			}
		}
	}

	points, err := o.decodeGeometry(best.Geometry)
	if err != nil {
		return domain.Route{}, err
	}

	return domain.Route{
		Points:         ensureEndpoints(points, origin, destination),
		DistanceMeters: best.Distance,
	}, nil
}

func (o *OSRMRouteClient) decodeGeometry(raw json.RawMessage) ([]domain.Coordinates, error) {
	if o.geometry == GeometryPolyline {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, &domain.NetworkError{Op: "osrm route", Err: fmt.Errorf("decode polyline geometry: %w", err)}
		}
		return geo.DecodePolyline(encoded)
	}

	var g geojson.Geometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, &domain.NetworkError{Op: "osrm route", Err: fmt.Errorf("decode geojson geometry: %w", err)}
	}
	ls, ok := g.Coordinates.(orb.LineString)
	if !ok {
		return nil, &domain.NetworkError{
			Op:  "osrm route",
			Err: fmt.Errorf("unexpected geometry type %q", g.Type),
		}
	}
	return lineToPoints(ls), nil
}

func isOSRMNoRoute(code string) bool {
	return code == "NoRoute" || code == "NoSegment"
}
