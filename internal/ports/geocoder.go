package ports

import (
	"context"
	"route-finder-service/internal/domain"
)

// Contract for resolving a free-text place name to coordinates.
type Geocoder interface {
	// Return the coordinates of the highest-ranked candidate for query.
	// Fails with *domain.NotFoundError when there are no candidates.
	Resolve(ctx context.Context, query string) (domain.Coordinates, error)
}

// Optional extension of Geocoder that can name a raw position.
type ReverseGeocoder interface {
	Geocoder
	// Return a display name for the place at c.
	Reverse(ctx context.Context, c domain.Coordinates) (string, error)
}
