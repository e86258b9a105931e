package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Immutable geographic coordinates in (latitude, longitude) order.
// Adapters normalize provider axis order into this type before returning.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Validate reports whether the coordinates fall inside the WGS84 ranges.
// NaN and infinities are rejected.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// ParseLiteral interprets a "lat, lon" place query.
// ok is false when the text is not a pair of numbers; err is set when it is a
// pair but the values are out of range.
func ParseLiteral(query string) (c Coordinates, ok bool, err error) {
	parts := strings.Split(query, ",")
	if len(parts) != 2 {
		return Coordinates{}, false, nil
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return Coordinates{}, false, nil
	}

	c = Coordinates{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return Coordinates{}, true, fmt.Errorf("parse coordinate literal %q: %w", query, err)
	}
	return c, true, nil
}
