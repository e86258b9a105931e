package dto

import (
	"route-finder-service/internal/domain"
	"route-finder-service/internal/geo"
)

type RouteRequest struct {
	From         string `json:"from" validate:"required,max=256"`
	To           string `json:"to" validate:"required,max=256"`
	Mode         string `json:"mode" validate:"omitempty,oneof=driving"`
	Preference   string `json:"preference" validate:"omitempty,oneof=fastest shortest"`
	StraightLine bool   `json:"straight_line"`
	Padding      *int   `json:"padding" validate:"omitempty,min=0,max=500"`
	// Swap exchanges from and to before the request runs.
	Swap bool `json:"swap"`
}

type PlaceResponse struct {
	Query string  `json:"query"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

type BoundsResponse struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

type ViewportResponse struct {
	CenterLat float64 `json:"center_lat"`
	CenterLon float64 `json:"center_lon"`
	Zoom      int     `json:"zoom"`
	PaddingPx int     `json:"padding_px"`
}

type RouteResponse struct {
	Generation     uint64           `json:"generation"`
	Origin         PlaceResponse    `json:"origin"`
	Destination    PlaceResponse    `json:"destination"`
	DistanceKm     float64          `json:"distance_km"`
	DistanceMeters float64          `json:"distance_meters"`
	DistanceSource string           `json:"distance_source"`
	Points         [][2]float64     `json:"points"`
	Polyline       string           `json:"polyline"`
	Bounds         BoundsResponse   `json:"bounds"`
	Viewport       ViewportResponse `json:"viewport"`
	Geocoder       string           `json:"geocoder,omitempty"`
	Router         string           `json:"router,omitempty"`
}

type GeocodeResponse struct {
	Query string  `json:"query"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

type ReverseResponse struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

func place(p domain.ResolvedPlace) PlaceResponse {
	return PlaceResponse{Query: p.Query, Lat: p.Coordinates.Lat, Lon: p.Coordinates.Lon}
}

// NewRouteResponse renders a pipeline result. Points are [lat, lon] pairs.
func NewRouteResponse(res *domain.PipelineResult) RouteResponse {
	points := make([][2]float64, 0, len(res.Route.Points))
	for _, p := range res.Route.Points {
		points = append(points, [2]float64{p.Lat, p.Lon})
	}

	return RouteResponse{
		Generation:     res.Generation,
		Origin:         place(res.Origin),
		Destination:    place(res.Destination),
		DistanceKm:     res.DistanceKm,
		DistanceMeters: res.Route.DistanceMeters,
		DistanceSource: string(res.DistanceSource),
		Points:         points,
		Polyline:       geo.EncodePolyline(res.Route.Points),
		Bounds: BoundsResponse{
			MinLat: res.Bounds.MinLat,
			MaxLat: res.Bounds.MaxLat,
			MinLon: res.Bounds.MinLon,
			MaxLon: res.Bounds.MaxLon,
		},
		Viewport: ViewportResponse{
			CenterLat: res.Viewport.Center.Lat,
			CenterLon: res.Viewport.Center.Lon,
			Zoom:      res.Viewport.Zoom,
			PaddingPx: res.Viewport.PaddingPx,
		},
		Geocoder: res.Geocoder,
		Router:   res.Router,
	}
}
