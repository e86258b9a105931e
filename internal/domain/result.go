package domain

// How the reported distance was obtained.
type DistanceSource string

const (
	DistanceSourceRouted      DistanceSource = "routed"
	DistanceSourceGreatCircle DistanceSource = "great_circle"
)

// A place query together with the coordinates it resolved to.
type ResolvedPlace struct {
	Query       string
	Coordinates Coordinates
}

// PipelineResult is the immutable outcome of one route request.
// It is produced once per request and handed to the rendering layer as-is.
type PipelineResult struct {
	Generation     uint64
	Origin         ResolvedPlace
	Destination    ResolvedPlace
	Route          Route
	DistanceKm     float64
	DistanceSource DistanceSource
	Bounds         BoundingBox
	Viewport       Viewport
	Geocoder       string
	Router         string
}
