package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"route-finder-service/internal/adapters/geocoding"
	"route-finder-service/internal/adapters/routing"
	"route-finder-service/internal/api/dto"
	"route-finder-service/internal/api/handlers"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/ports"
	"route-finder-service/internal/services"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

var (
	paris  = domain.Coordinates{Lat: 48.8566, Lon: 2.3522}
	berlin = domain.Coordinates{Lat: 52.52, Lon: 13.405}
	island = domain.Coordinates{Lat: -49.35, Lon: 70.22}
)

// resolveOnly hides the mock's reverse capability.
type resolveOnly struct{ ports.Geocoder }

func newTestApp(t *testing.T, g ports.Geocoder) *fiber.App {
	t.Helper()

	if g == nil {
		g = geocoding.NewMockGeocoder(map[string]domain.Coordinates{
			"Paris":     paris,
			"Berlin":    berlin,
			"Kerguelen": island,
		})
	}
	router := routing.NewMockRouteClient(1.2)
	router.Unreachable[island] = true

	p, err := services.NewPipeline(services.PipelineConfig{
		Geocoder:     g,
		Router:       router,
		PaddingPx:    30,
		GeocoderName: "mock",
		RouterName:   "mock",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return NewRouter(Dependencies{
		Pipeline: p,
		Sessions: services.NewSessionRegistry(p, 8),
	})
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string, out any) int {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestGetRoute(t *testing.T) {
	app := newTestApp(t, nil)

	var got dto.RouteResponse
	status := doJSON(t, app, "GET", "/v1/route?from=Paris&to=Berlin", "", &got)
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}

	if got.Origin.Query != "Paris" || got.Destination.Lat != berlin.Lat {
		t.Fatalf("endpoints = %+v -> %+v", got.Origin, got.Destination)
	}
	if got.DistanceSource != "routed" || got.DistanceKm <= 0 {
		t.Fatalf("distance = %v (%s)", got.DistanceKm, got.DistanceSource)
	}
	if len(got.Points) != 3 || got.Points[0] != [2]float64{paris.Lat, paris.Lon} {
		t.Fatalf("points = %v", got.Points)
	}
	if got.Polyline == "" {
		t.Fatal("missing polyline")
	}
	if got.Viewport.PaddingPx != 30 {
		t.Fatalf("padding = %d, want 30", got.Viewport.PaddingPx)
	}
}

func TestGetRouteSwapAndStraightLine(t *testing.T) {
	app := newTestApp(t, nil)

	var got dto.RouteResponse
	status := doJSON(t, app, "GET", "/v1/route?from=Paris&to=Berlin&swap=true&straight_line=true&padding=0", "", &got)
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if got.Origin.Query != "Berlin" || got.Destination.Query != "Paris" {
		t.Fatalf("swap not applied: %+v -> %+v", got.Origin, got.Destination)
	}
	if got.DistanceSource != "great_circle" || len(got.Points) != 2 {
		t.Fatalf("straight line not applied: %s, %d points", got.DistanceSource, len(got.Points))
	}
	if got.Viewport.PaddingPx != 0 {
		t.Fatalf("padding = %d, want 0", got.Viewport.PaddingPx)
	}
}

func TestPostRoute(t *testing.T) {
	app := newTestApp(t, nil)

	var got dto.RouteResponse
	status := doJSON(t, app, "POST", "/v1/route", `{"from":"Paris","to":"Berlin","preference":"shortest"}`, &got)
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if got.Destination.Query != "Berlin" {
		t.Fatalf("destination = %+v", got.Destination)
	}
}

func TestRouteErrors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		status   int
		code     string
		endpoint string
	}{
		{"missing to", "GET", "/v1/route?from=Paris", "", 400, "bad_request", ""},
		{"bad preference", "GET", "/v1/route?from=Paris&to=Berlin&preference=scenic", "", 400, "bad_request", ""},
		{"bad padding", "GET", "/v1/route?from=Paris&to=Berlin&padding=wide", "", 400, "bad_request", ""},
		{"negative padding", "POST", "/v1/route", `{"from":"Paris","to":"Berlin","padding":-1}`, 400, "bad_request", ""},
		{"malformed body", "POST", "/v1/route", `{"from":`, 400, "bad_request", ""},
		{"unknown destination", "GET", "/v1/route?from=Paris&to=Xyzzyville", "", 404, "place_not_found", "destination"},
		{"unknown origin", "GET", "/v1/route?from=Xyzzyville&to=Paris", "", 404, "place_not_found", "origin"},
		{"no route", "GET", "/v1/route?from=Paris&to=Kerguelen", "", 404, "route_not_found", ""},
		{"literal out of range", "GET", "/v1/route?from=91,0&to=Paris", "", 400, "bad_request", "origin"},
		{"NaN literal", "GET", "/v1/route?from=NaN%2C%200&to=Paris", "", 400, "bad_request", "origin"},
		{"infinite literal", "POST", "/v1/route", `{"from":"Paris","to":"0, Inf"}`, 400, "bad_request", "destination"},
	}

	app := newTestApp(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got handlers.APIError
			status := doJSON(t, app, tt.method, tt.target, tt.body, &got)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%+v)", status, tt.status, got)
			}
			if got.Code != tt.code {
				t.Fatalf("code = %q, want %q", got.Code, tt.code)
			}
			if got.Endpoint != tt.endpoint {
				t.Fatalf("endpoint = %q, want %q", got.Endpoint, tt.endpoint)
			}
			if got.RequestID == "" {
				t.Fatal("missing request id")
			}
		})
	}
}

func TestRouteGeoJSON(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest("GET", "/v1/route.geojson?from=Paris&to=Berlin", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Fatalf("content type = %q", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 3 {
		t.Fatalf("got %s with %d features", fc.Type, len(fc.Features))
	}
	if fc.Features[0].Geometry.Type != "LineString" || fc.Features[0].Properties["role"] != "route" {
		t.Fatalf("first feature = %+v", fc.Features[0])
	}
	if fc.Features[2].Properties["query"] != "Berlin" {
		t.Fatalf("destination feature = %+v", fc.Features[2])
	}
}

func TestSessionHeaderReportsGeneration(t *testing.T) {
	app := newTestApp(t, nil)

	for want := uint64(1); want <= 2; want++ {
		req := httptest.NewRequest("GET", "/v1/route?from=Paris&to=Berlin", nil)
		req.Header.Set(handlers.HeaderSessionID, "client-1")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}

		var got dto.RouteResponse
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()

		if got.Generation != want {
			t.Fatalf("generation = %d, want %d", got.Generation, want)
		}
	}
}

func TestGeocode(t *testing.T) {
	app := newTestApp(t, nil)

	var got dto.GeocodeResponse
	if status := doJSON(t, app, "GET", "/v1/geocode?q=Paris", "", &got); status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if got.Lat != paris.Lat || got.Lon != paris.Lon {
		t.Fatalf("got %+v", got)
	}

	var apiErr handlers.APIError
	if status := doJSON(t, app, "GET", "/v1/geocode?q=Xyzzyville", "", &apiErr); status != 404 {
		t.Fatalf("status = %d, want 404", status)
	}
	if apiErr.Code != "place_not_found" {
		t.Fatalf("code = %q", apiErr.Code)
	}

	if status := doJSON(t, app, "GET", "/v1/geocode", "", &apiErr); status != 400 {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestReverse(t *testing.T) {
	app := newTestApp(t, nil)

	var got dto.ReverseResponse
	if status := doJSON(t, app, "GET", "/v1/reverse?lat=48.8566&lon=2.3522", "", &got); status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if got.Name != "Paris" {
		t.Fatalf("name = %q, want Paris", got.Name)
	}

	var apiErr handlers.APIError
	for _, q := range []string{"lat=north&lon=2", "lat=NaN&lon=2", "lat=1&lon=-Inf"} {
		if status := doJSON(t, app, "GET", "/v1/reverse?"+q, "", &apiErr); status != 400 {
			t.Fatalf("%s: status = %d, want 400", q, status)
		}
	}
}

func TestReverseUnsupported(t *testing.T) {
	g := resolveOnly{geocoding.NewMockGeocoder(map[string]domain.Coordinates{"Paris": paris})}
	app := newTestApp(t, g)

	var apiErr handlers.APIError
	if status := doJSON(t, app, "GET", "/v1/reverse?lat=48.8566&lon=2.3522", "", &apiErr); status != 501 {
		t.Fatalf("status = %d, want 501", status)
	}
	if apiErr.Code != "not_implemented" {
		t.Fatalf("code = %q", apiErr.Code)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	app := newTestApp(t, nil)

	var health map[string]any
	if status := doJSON(t, app, "GET", "/health", "", &health); status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if health["status"] != "ok" || health["router"] != "mock" {
		t.Fatalf("health = %v", health)
	}

	var apiErr map[string]any
	if status := doJSON(t, app, "GET", "/v1/nope", "", &apiErr); status != 404 {
		t.Fatalf("status = %d, want 404", status)
	}
	if apiErr["code"] != "not_found" {
		t.Fatalf("code = %v", apiErr["code"])
	}
}
