package geo

import (
	"fmt"
	"math"
	"route-finder-service/internal/domain"
	"strings"
)

const polylinePrecision = 1e5

// DecodePolyline decodes an encoded polyline (1e5 precision) into ordered coordinates.
// An empty string decodes to an empty path. Truncated input or characters outside
// the encoding alphabet fail with *domain.DecodeError.
func DecodePolyline(encoded string) ([]domain.Coordinates, error) {
	points := make([]domain.Coordinates, 0, len(encoded)/4)

	var lat, lon int64
	for i := 0; i < len(encoded); {
		dLat, next, err := decodeValue(encoded, i)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, &domain.DecodeError{Offset: next, Reason: "latitude without longitude"}
		}

		dLon, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}

		lat += dLat
		lon += dLon
		points = append(points, domain.Coordinates{
			Lat: float64(lat) / polylinePrecision,
			Lon: float64(lon) / polylinePrecision,
		})
		i = next
	}

	return points, nil
}

// decodeValue reads one varint-encoded delta starting at index i.
func decodeValue(encoded string, i int) (int64, int, error) {
	start := i
	var result int64
	var shift uint

	for {
		if i >= len(encoded) {
			return 0, i, &domain.DecodeError{Offset: start, Reason: "truncated value"}
		}

		c := encoded[i]
		if c < 63 || c > 126 {
			return 0, i, &domain.DecodeError{Offset: i, Reason: fmt.Sprintf("invalid character %q", c)}
		}
		if shift >= 60 {
			return 0, i, &domain.DecodeError{Offset: start, Reason: "value overflows 64 bits"}
		}

		b := int64(c) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	// Low bit is the sign flag; negatives are stored inverted.
	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

// EncodePolyline is the inverse of DecodePolyline.
func EncodePolyline(points []domain.Coordinates) string {
	var sb strings.Builder
	sb.Grow(len(points) * 8)

	var prevLat, prevLon int64
	for _, p := range points {
		lat := int64(math.Round(p.Lat * polylinePrecision))
		lon := int64(math.Round(p.Lon * polylinePrecision))

		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lon-prevLon)

		prevLat, prevLon = lat, lon
	}

	return sb.String()
}

func encodeValue(sb *strings.Builder, v int64) {
	if v < 0 {
		v = ^(v << 1)
	} else {
		v <<= 1
	}

	for v >= 0x20 {
		sb.WriteByte(byte((v&0x1f)|0x20) + 63)
		v >>= 5
	}
	sb.WriteByte(byte(v) + 63)
}
