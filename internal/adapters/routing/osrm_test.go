package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/platform/httpclient"
	"strings"
	"testing"
)

var (
	paris  = domain.Coordinates{Lat: 48.8566, Lon: 2.3522}
	berlin = domain.Coordinates{Lat: 52.52, Lon: 13.405}
)

func TestOSRMFetchRouteGeoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := "/route/v1/driving/2.3522,48.8566;13.405,52.52"; r.URL.Path != want {
			t.Errorf("path = %s, want %s", r.URL.Path, want)
		}
		if got := r.URL.Query().Get("overview"); got != "full" {
			t.Errorf("overview = %q, want full", got)
		}
		if got := r.URL.Query().Get("geometries"); got != "geojson" {
			t.Errorf("geometries = %q, want geojson", got)
		}
		fmt.Fprint(w, `{"code":"Ok","routes":[{"distance":1054000.5,"duration":36000,
			"geometry":{"type":"LineString","coordinates":[[2.3522,48.8566],[8.0,50.5],[13.405,52.52]]}}]}`)
	}))
	defer srv.Close()

	c, err := NewOSRMRouteClient(httpclient.New(httpclient.Options{}), srv.URL, GeometryGeoJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	route, err := c.FetchRoute(context.Background(), paris, berlin, domain.RouteOptions{Mode: domain.TravelModeDriving})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.DistanceMeters != 1054000.5 {
		t.Fatalf("distance = %v", route.DistanceMeters)
	}
	if len(route.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(route.Points))
	}
	if route.Points[0] != paris || route.Points[2] != berlin {
		t.Fatalf("points not in (lat, lon) order: %+v", route.Points)
	}
	if route.Points[1].Lat != 50.5 || route.Points[1].Lon != 8.0 {
		t.Fatalf("middle point = %+v", route.Points[1])
	}
}

func TestOSRMFetchRoutePolylineShortest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("alternatives"); got != "true" {
			t.Errorf("alternatives = %q, want true", got)
		}
		fmt.Fprint(w, `{"code":"Ok","routes":[
			{"distance":900,"geometry":"_p~iF~ps|U_ulLnnqC"},
			{"distance":700,"geometry":"_p~iF~ps|U_ulLnnqC_mqNvxq`+"`"+`@"}
		]}`)
	}))
	defer srv.Close()

	c, err := NewOSRMRouteClient(httpclient.New(httpclient.Options{}), srv.URL, GeometryPolyline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	route, err := c.FetchRoute(context.Background(), paris, berlin, domain.RouteOptions{Preference: domain.PreferenceShortest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.DistanceMeters != 700 {
		t.Fatalf("distance = %v, want shortest alternative 700", route.DistanceMeters)
	}
	if len(route.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(route.Points))
	}
	if math.Abs(route.Points[2].Lat-43.252) > 1e-9 {
		t.Fatalf("last point = %+v", route.Points[2])
	}
}

func TestOSRMFetchRouteNoRoute(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"ok with no routes", http.StatusOK, `{"code":"Ok","routes":[]}`},
		{"NoRoute code", http.StatusOK, `{"code":"NoRoute","message":"Impossible route between points"}`},
		{"NoRoute 400", http.StatusBadRequest, `{"code":"NoRoute","message":"Impossible route between points"}`},
		{"NoSegment 400", http.StatusBadRequest, `{"code":"NoSegment","message":"Could not find a matching segment"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c, _ := NewOSRMRouteClient(httpclient.New(httpclient.Options{}), srv.URL, "")

			_, err := c.FetchRoute(context.Background(), paris, berlin, domain.RouteOptions{})
			if !errors.Is(err, domain.ErrRouteNotFound) {
				t.Fatalf("expected route not found, got %v", err)
			}
			var rnf *domain.RouteNotFoundError
			if !errors.As(err, &rnf) || rnf.Provider != "osrm" {
				t.Fatalf("expected RouteNotFoundError from osrm, got %v", err)
			}
		})
	}
}

func TestOSRMFetchRouteFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `boom`},
		{"invalid query", http.StatusBadRequest, `{"code":"InvalidQuery","message":"bad"}`},
		{"malformed body", http.StatusOK, `not json`},
		{"unexpected geometry", http.StatusOK, `{"code":"Ok","routes":[{"distance":1,"geometry":{"type":"Point","coordinates":[1,2]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c, _ := NewOSRMRouteClient(httpclient.New(httpclient.Options{}), srv.URL, GeometryGeoJSON)

			_, err := c.FetchRoute(context.Background(), paris, berlin, domain.RouteOptions{})
			var ne *domain.NetworkError
			if !errors.As(err, &ne) {
				t.Fatalf("expected NetworkError, got %v", err)
			}
		})
	}
}

func TestOSRMFetchRouteBadPolyline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"Ok","routes":[{"distance":1,"geometry":"_p~iF~ps|U_"}]}`)
	}))
	defer srv.Close()

	c, _ := NewOSRMRouteClient(httpclient.New(httpclient.Options{}), srv.URL, GeometryPolyline)

	_, err := c.FetchRoute(context.Background(), paris, berlin, domain.RouteOptions{})
	var de *domain.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestOSRMRejectsUnsupportedMode(t *testing.T) {
	c, _ := NewOSRMRouteClient(httpclient.New(httpclient.Options{}), "http://127.0.0.1:1", "")

	_, err := c.FetchRoute(context.Background(), paris, berlin, domain.RouteOptions{Mode: "walking"})
	if err == nil || !strings.Contains(err.Error(), "walking") {
		t.Fatalf("expected unsupported mode error, got %v", err)
	}
}

func TestNewOSRMRouteClientRejectsGeometry(t *testing.T) {
	if _, err := NewOSRMRouteClient(httpclient.New(httpclient.Options{}), "", "wkt"); err == nil {
		t.Fatal("expected error for unknown geometry")
	}
}

func TestOSRMSinglePointGeometryIsPadded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"Ok","routes":[{"distance":0,"geometry":{"type":"LineString","coordinates":[[2.3522,48.8566]]}}]}`)
	}))
	defer srv.Close()

	c, _ := NewOSRMRouteClient(httpclient.New(httpclient.Options{}), srv.URL, GeometryGeoJSON)

	route, err := c.FetchRoute(context.Background(), paris, paris, domain.RouteOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(route.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(route.Points))
	}
}
