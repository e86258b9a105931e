// Package geo holds the pure geometry used by the route pipeline: great-circle
// distance, encoded polyline decoding and viewport fitting.
package geo

import (
	"math"
	"route-finder-service/internal/domain"
)

const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance between a and b in kilometers.
func DistanceKm(a, b domain.Coordinates) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// PathLengthKm sums the great-circle length of consecutive segments.
func PathLengthKm(points []domain.Coordinates) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += DistanceKm(points[i-1], points[i])
	}
	return total
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
