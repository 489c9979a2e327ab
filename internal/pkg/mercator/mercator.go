// Package mercator converts between WGS84 degrees, Web-Mercator meters,
// slippy-map tile indices and raster pixels.
package mercator

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

// MaxLatitude is the Web-Mercator latitude limit in degrees, the north
// edge of tile (0,0,0).
var MaxLatitude = math.Atan(math.Sinh(math.Pi)) * 180 / math.Pi

const (
	// TilePixels is the pixel edge of one tile in the absolute pixel space.
	TilePixels = 256

	snapEpsilon = 1e-6
)

// ErrInvalidBounds is returned for zero-area rectangles.
var ErrInvalidBounds = domain.ErrInvalidBounds

// DegreesToTileIndex returns the tile containing (lat, lng) at zoom.
// Out-of-range results are clamped into [0, 2^zoom-1] on both axes.
func DegreesToTileIndex(lat, lng float64, zoom int) domain.TileCoord {
	n := math.Exp2(float64(zoom))
	x := math.Floor((lng + 180) / 360 * n)
	y := math.Floor(MercatorY(lat) * n)

	return domain.TileCoord{
		X: clampIndex(x, n),
		Y: clampIndex(y, n),
		Z: zoom,
	}
}

// TileIndexToBounds returns the geographic extent of tile (x, y, zoom).
// Adjacent tiles share identical edge values.
func TileIndexToBounds(x, y, zoom int) domain.GeoBounds {
	n := math.Exp2(float64(zoom))
	return domain.GeoBounds{
		MinLat: tileEdgeLat(y+1, n),
		MaxLat: tileEdgeLat(y, n),
		MinLng: tileEdgeLng(x, n),
		MaxLng: tileEdgeLng(x+1, n),
	}
}

// MercatorY returns the normalized Web-Mercator Y in [0,1] for lat,
// 0 at the north edge.
func MercatorY(lat float64) float64 {
	rad := lat * math.Pi / 180
	return (1 - math.Asinh(math.Tan(rad))/math.Pi) / 2
}

// MercatorX returns the normalized Web-Mercator X in [0,1] for lng.
func MercatorX(lng float64) float64 {
	return (lng + 180) / 360
}

// ProjectToPixel maps point into a w×h raster whose edges correspond to
// reference. Both are taken into absolute Mercator pixels at zoom first.
func ProjectToPixel(point domain.GeoPoint, reference domain.GeoBounds, w, h, zoom int) domain.PixelPoint {
	px, py := absolutePixel(point.Lat, point.Lng, zoom)
	left, top := absolutePixel(reference.MaxLat, reference.MinLng, zoom)
	right, bottom := absolutePixel(reference.MinLat, reference.MaxLng, zoom)

	return domain.PixelPoint{
		X: (px - left) / (right - left) * float64(w),
		Y: (py - top) / (bottom - top) * float64(h),
	}
}

// GeoBoundsToPixelBounds maps target into the w×h raster spanned by
// reference. Min edges are floored and max edges ceiled after snapping
// values that are within 1e-6 of an integer.
func GeoBoundsToPixelBounds(target, reference domain.GeoBounds, w, h, zoom int) (domain.PixelBounds, error) {
	if !target.HasArea() {
		return domain.PixelBounds{}, fmt.Errorf("target %+v: %w", target, ErrInvalidBounds)
	}
	if !reference.HasArea() {
		return domain.PixelBounds{}, fmt.Errorf("reference %+v: %w", reference, ErrInvalidBounds)
	}

	tl := ProjectToPixel(domain.GeoPoint{Lat: target.MaxLat, Lng: target.MinLng}, reference, w, h, zoom)
	br := ProjectToPixel(domain.GeoPoint{Lat: target.MinLat, Lng: target.MaxLng}, reference, w, h, zoom)

	return domain.PixelBounds{
		MinX: int(math.Floor(snap(tl.X))),
		MinY: int(math.Floor(snap(tl.Y))),
		MaxX: int(math.Ceil(snap(br.X))),
		MaxY: int(math.Ceil(snap(br.Y))),
	}, nil
}

// ToMeters converts a point to Web-Mercator meters.
func ToMeters(p domain.GeoPoint) (x, y float64) {
	m := project.WGS84.ToMercator(orb.Point{p.Lng, p.Lat})
	return m[0], m[1]
}

// FromMeters converts Web-Mercator meters back to degrees.
func FromMeters(x, y float64) domain.GeoPoint {
	g := project.Mercator.ToWGS84(orb.Point{x, y})
	return domain.GeoPoint{Lat: g[1], Lng: g[0]}
}

// MeterRatio returns width/height of b measured in Web-Mercator meters.
func MeterRatio(b domain.GeoBounds) (float64, error) {
	x0, y0 := ToMeters(domain.GeoPoint{Lat: b.MinLat, Lng: b.MinLng})
	x1, y1 := ToMeters(domain.GeoPoint{Lat: b.MaxLat, Lng: b.MaxLng})
	height := y1 - y0
	if height <= 0 {
		return 0, errors.New("mercator: zero height")
	}
	return (x1 - x0) / height, nil
}

func absolutePixel(lat, lng float64, zoom int) (float64, float64) {
	size := TilePixels * math.Exp2(float64(zoom))
	return MercatorX(lng) * size, MercatorY(lat) * size
}

func tileEdgeLng(x int, n float64) float64 {
	return float64(x)/n*360 - 180
}

func tileEdgeLat(y int, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*float64(y)/n))) * 180 / math.Pi
}

func clampIndex(v, n float64) int {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > n-1 {
		return int(n - 1)
	}
	return int(v)
}

func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < snapEpsilon {
		return r
	}
	return v
}
