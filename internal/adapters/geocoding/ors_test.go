package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/platform/httpclient"
	"testing"
)

func TestORSResolveSwapsAxisOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geocode/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("size"); got != "1" {
			t.Errorf("size = %q, want 1", got)
		}
		fmt.Fprint(w, `{"type":"FeatureCollection","features":[
			{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.4194,37.7749]},"properties":{"label":"San Francisco"}}
		]}`)
	}))
	defer srv.Close()

	client := httpclient.New(httpclient.Options{Header: http.Header{"Authorization": []string{"test-key"}}})
	g := NewORSGeocoder(client, srv.URL)

	c, err := g.Resolve(context.Background(), "San Francisco")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lat != 37.7749 || c.Lon != -122.4194 {
		t.Fatalf("got %+v, want lat 37.7749 lon -122.4194", c)
	}
}

func TestORSResolveNoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer srv.Close()

	g := NewORSGeocoder(httpclient.New(httpclient.Options{}), srv.URL)

	_, err := g.Resolve(context.Background(), "nowhere")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestORSResolveMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>oops</html>`)
	}))
	defer srv.Close()

	g := NewORSGeocoder(httpclient.New(httpclient.Options{}), srv.URL)

	_, err := g.Resolve(context.Background(), "Paris")
	var ne *domain.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}
