package geocoding

import (
	"context"
	"route-finder-service/internal/domain"
	"strings"
	"sync/atomic"
)

// MockGeocoder is an in-memory Geocoder keyed by case-insensitive query.
type MockGeocoder struct {
	m     map[string]domain.Coordinates
	names map[domain.Coordinates]string
	calls atomic.Int64
}

func NewMockGeocoder(places map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(places))
	names := make(map[domain.Coordinates]string, len(places))
	for q, c := range places {
		m[strings.ToLower(normalize(q))] = c
		names[c] = q
	}
	return &MockGeocoder{m: m, names: names}
}

func (g *MockGeocoder) Resolve(ctx context.Context, query string) (domain.Coordinates, error) {
	g.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}

	c, ok := g.m[strings.ToLower(normalize(query))]
	if !ok {
		return domain.Coordinates{}, &domain.NotFoundError{Query: query}
	}
	return c, nil
}

func (g *MockGeocoder) Reverse(ctx context.Context, c domain.Coordinates) (string, error) {
	name, ok := g.names[c]
	if !ok {
		return "", &domain.NotFoundError{Query: c.String()}
	}
	return name, nil
}

// Calls returns how many Resolve calls were made.
func (g *MockGeocoder) Calls() int64 { return g.calls.Load() }
