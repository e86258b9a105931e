package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"route-finder-service/internal/domain"
	"route-finder-service/internal/platform/httpclient"
	"route-finder-service/internal/platform/obs"
	"strconv"
	"strings"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder resolves places with the OpenStreetMap Nominatim API.
// Nominatim requires an identifying User-Agent, which the shared client sets.
//
// The geocoder is safe for concurrent use.
type NominatimGeocoder struct {
	client  *httpclient.Client
	baseURL string
}

func NewNominatimGeocoder(client *httpclient.Client, baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &NominatimGeocoder{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Nominatim serializes coordinates as JSON strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse coordinate %s: %w", b, err)
	}
	*f = flexFloat(v)
	return nil
}

type nominatimPlace struct {
	Lat         flexFloat `json:"lat"`
	Lon         flexFloat `json:"lon"`
	DisplayName string    `json:"display_name"`
}

func (g *NominatimGeocoder) Resolve(ctx context.Context, query string) (_ domain.Coordinates, err error) {
	ctx, done := obs.Start(ctx, "nominatim.Resolve")
	defer done(&err)

	norm := normalize(query)
	if norm == "" {
		return domain.Coordinates{}, &domain.NotFoundError{Query: query}
	}

	q := url.Values{}
	q.Set("q", norm)
	q.Set("format", "json")
	q.Set("limit", "1")

	var places []nominatimPlace
	if err := g.client.FetchJSON(ctx, "nominatim search", http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil, &places); err != nil {
		return domain.Coordinates{}, err
	}
	if len(places) == 0 {
		return domain.Coordinates{}, &domain.NotFoundError{Query: query}
	}

	c := domain.Coordinates{Lat: float64(places[0].Lat), Lon: float64(places[0].Lon)}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, &domain.NetworkError{Op: "nominatim search", Err: err}
	}
	return c, nil
}

type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Reverse returns the display name of the place nearest to c.
func (g *NominatimGeocoder) Reverse(ctx context.Context, c domain.Coordinates) (_ string, err error) {
	ctx, done := obs.Start(ctx, "nominatim.Reverse")
	defer done(&err)

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	q.Set("format", "json")

	b, err := g.client.Fetch(ctx, "nominatim reverse", http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	var decoded nominatimReverse
	if err := json.Unmarshal(b, &decoded); err != nil {
		return "", &domain.NetworkError{Op: "nominatim reverse", Err: fmt.Errorf("decode response: %w", err)}
	}
	if decoded.Error != "" || decoded.DisplayName == "" {
		return "", &domain.NotFoundError{Query: c.String()}
	}
	return decoded.DisplayName, nil
}

// normalize collapses whitespace so equal queries hit providers identically.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
