// Package gmaps holds the Google Maps client setup and status classification
// shared by the Google geocoding and directions adapters.
package gmaps

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"googlemaps.github.io/maps"
)

// Maps API statuses the adapters map onto domain errors.
const (
	StatusZeroResults = "ZERO_RESULTS"
	StatusNotFound    = "NOT_FOUND"
)

// statusPrefix is how the maps client formats non-OK statuses: "maps: STATUS - message".
const statusPrefix = "maps: "

// NewClient builds a Maps client on top of hc. baseURL and hc may be empty.
func NewClient(apiKey, baseURL string, hc *http.Client) (*maps.Client, error) {
	if apiKey == "" {
		return nil, errors.New("google api key is empty")
	}

	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if hc != nil {
		opts = append(opts, maps.WithHTTPClient(hc))
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}

	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return c, nil
}

// Status extracts the API status from an error returned by the maps client.
// It returns "" for transport errors and anything else without a status.
func Status(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	i := strings.Index(msg, statusPrefix)
	if i < 0 {
		return ""
	}
	status, _, _ := strings.Cut(msg[i+len(statusPrefix):], " ")
	return status
}

// IsStatus reports whether err carries one of statuses.
func IsStatus(err error, statuses ...string) bool {
	s := Status(err)
	if s == "" {
		return false
	}
	for _, want := range statuses {
		if s == want {
			return true
		}
	}
	return false
}

// IsEmptyResult reports whether err means the query matched nothing.
func IsEmptyResult(err error) bool {
	return IsStatus(err, StatusZeroResults, StatusNotFound)
}
