package geo

import (
	"errors"
	"math"
	"route-finder-service/internal/domain"

	"github.com/paulmach/orb"
)

const (
	tileSizePx = 256.0
	// Web Mercator is undefined at the poles; clamp like slippy-map tiles do.
	maxMercatorLat = 85.05112878
)

// Fitter sizes a viewport so a set of points fits a map of WidthPx x HeightPx.
type Fitter struct {
	WidthPx  int
	HeightPx int
	MaxZoom  int
}

var DefaultFitter = Fitter{WidthPx: 800, HeightPx: 600, MaxZoom: 18}

// Fit returns the minimal bounding box around points and a viewport directive
// that keeps every point visible with paddingPx on each side.
//
// A single point (or identical points) gives a zero-extent box and MaxZoom;
// any minimum-zoom floor is left to the consumer.
func (f Fitter) Fit(points []domain.Coordinates, paddingPx int) (domain.BoundingBox, domain.Viewport, error) {
	if len(points) == 0 {
		return domain.BoundingBox{}, domain.Viewport{}, errors.New("fit bounds: no points")
	}
	if paddingPx < 0 {
		paddingPx = 0
	}

	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, orb.Point{p.Lon, p.Lat})
	}
	b := mp.Bound()

	box := domain.BoundingBox{
		MinLat: b.Min.Lat(),
		MaxLat: b.Max.Lat(),
		MinLon: b.Min.Lon(),
		MaxLon: b.Max.Lon(),
	}
	center := b.Center()

	return box, domain.Viewport{
		Center:    domain.Coordinates{Lat: center.Lat(), Lon: center.Lon()},
		Zoom:      f.zoomFor(box, paddingPx),
		PaddingPx: paddingPx,
	}, nil
}

func (f Fitter) zoomFor(box domain.BoundingBox, paddingPx int) int {
	w := float64(f.WidthPx - 2*paddingPx)
	h := float64(f.HeightPx - 2*paddingPx)
	if w <= 0 || h <= 0 {
		return 0
	}

	zoom := float64(f.MaxZoom)

	lonFrac := (box.MaxLon - box.MinLon) / 360
	if lonFrac > 0 {
		zoom = math.Min(zoom, math.Log2(w/(tileSizePx*lonFrac)))
	}

	latFrac := (mercatorY(box.MaxLat) - mercatorY(box.MinLat)) / (2 * math.Pi)
	if latFrac > 0 {
		zoom = math.Min(zoom, math.Log2(h/(tileSizePx*latFrac)))
	}

	z := int(math.Floor(zoom))
	if z < 0 {
		return 0
	}
	if z > f.MaxZoom {
		return f.MaxZoom
	}
	return z
}

func mercatorY(lat float64) float64 {
	lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
	rad := toRad(lat)
	return math.Log(math.Tan(math.Pi/4 + rad/2))
}
