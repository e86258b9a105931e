package domain

// Travel profile requested from a routing service.
type TravelMode string

const TravelModeDriving TravelMode = "driving"

// Route preference. The empty value leaves the choice to the provider.
type Preference string

const (
	PreferenceDefault  Preference = ""
	PreferenceFastest  Preference = "fastest"
	PreferenceShortest Preference = "shortest"
)

// Options passed to a RouteClient alongside the two endpoints.
type RouteOptions struct {
	Mode       TravelMode
	Preference Preference
}

// Represents a routed path between two points.
// Points are ordered from origin to destination and always hold at least two entries.
type Route struct {
	Points         []Coordinates
	DistanceMeters float64
}

// Minimal axis-aligned rectangle in lat/lon space enclosing a set of points.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether c lies inside the box (edges included).
func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// Viewport directive for a map consumer: where to center and how far to zoom.
type Viewport struct {
	Center    Coordinates
	Zoom      int
	PaddingPx int
}
