package render

import (
	"fmt"
	"math"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/mercator"
)

// bufferFraction is the bound1 margin as a share of the mean degree span.
const bufferFraction = 0.1

// ComputeBounds runs the four boundary derivations in order.
func ComputeBounds(points []domain.GeoPoint, region domain.TrackRegion, exp domain.ExpansionRegion) (domain.BoundsStages, error) {
	var stages domain.BoundsStages

	b0, err := TightBounds(points)
	if err != nil {
		return stages, err
	}
	stages.Bound0 = b0

	b1, err := BufferBounds(b0)
	if err != nil {
		return stages, fmt.Errorf("bound1: %w", err)
	}
	stages.Bound1 = b1

	b2, err := FitAspect(b1, region)
	if err != nil {
		return stages, fmt.Errorf("bound2: %w", err)
	}
	stages.Bound2 = b2

	b3, err := Expand(b2, exp)
	if err != nil {
		return stages, fmt.Errorf("bound3: %w", err)
	}
	stages.Bound3 = b3

	return stages, nil
}

// TightBounds returns the min/max box over points. A straight north-south
// or east-west track yields a box with zero extent on one axis.
func TightBounds(points []domain.GeoPoint) (domain.GeoBounds, error) {
	if len(points) == 0 {
		return domain.GeoBounds{}, domain.ErrEmptyTrajectory
	}
	b := domain.GeoBounds{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLng: points[0].Lng, MaxLng: points[0].Lng,
	}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b, nil
}

// BufferBounds pads b by a tenth of its mean degree span on every side,
// clamped to the Web-Mercator domain.
func BufferBounds(b domain.GeoBounds) (domain.GeoBounds, error) {
	pad := (b.LatRange() + b.LngRange()) / 2 * bufferFraction
	out := domain.GeoBounds{
		MinLat: math.Max(b.MinLat-pad, -mercator.MaxLatitude),
		MaxLat: math.Min(b.MaxLat+pad, mercator.MaxLatitude),
		MinLng: math.Max(b.MinLng-pad, -180),
		MaxLng: math.Min(b.MaxLng+pad, 180),
	}
	if !out.HasArea() {
		return out, fmt.Errorf("%+v: %w", out, domain.ErrInvalidBounds)
	}
	return out, nil
}

// FitAspect grows the deficient axis of b about its Web-Mercator center
// until the meter-space width/height equals the region's aspect. The other
// axis is left untouched.
func FitAspect(b domain.GeoBounds, region domain.TrackRegion) (domain.GeoBounds, error) {
	if !b.HasArea() {
		return b, fmt.Errorf("%+v: %w", b, domain.ErrInvalidBounds)
	}
	target := region.Aspect()

	x0, y0 := mercator.ToMeters(domain.GeoPoint{Lat: b.MinLat, Lng: b.MinLng})
	x1, y1 := mercator.ToMeters(domain.GeoPoint{Lat: b.MaxLat, Lng: b.MaxLng})
	w, h := x1-x0, y1-y0
	cx, cy := (x0+x1)/2, (y0+y1)/2

	out := b
	switch ratio := w / h; {
	case ratio < target:
		half := h * target / 2
		sw := mercator.FromMeters(cx-half, cy)
		ne := mercator.FromMeters(cx+half, cy)
		out.MinLng, out.MaxLng = sw.Lng, ne.Lng
	case ratio > target:
		half := w / target / 2
		sw := mercator.FromMeters(cx, cy-half)
		ne := mercator.FromMeters(cx, cy+half)
		out.MinLat, out.MaxLat = sw.Lat, ne.Lat
	}

	return clampDomain(out)
}

// Expand grows b by the given fraction of its own spans. Directions add up.
func Expand(b domain.GeoBounds, e domain.ExpansionRegion) (domain.GeoBounds, error) {
	latR, lngR := b.LatRange(), b.LngRange()
	out := domain.GeoBounds{
		MinLat: b.MinLat - latR*e.Down,
		MaxLat: b.MaxLat + latR*e.Up,
		MinLng: b.MinLng - lngR*e.Left,
		MaxLng: b.MaxLng + lngR*e.Right,
	}
	return clampDomain(out)
}

// clampDomain rejects bounds outside the Web-Mercator domain and pulls
// values within float noise of an edge back onto it.
func clampDomain(b domain.GeoBounds) (domain.GeoBounds, error) {
	const eps = 1e-9
	if b.MinLat < -mercator.MaxLatitude-eps || b.MaxLat > mercator.MaxLatitude+eps ||
		b.MinLng < -180-eps || b.MaxLng > 180+eps {
		return b, fmt.Errorf("%+v outside web mercator domain: %w", b, domain.ErrGeometry)
	}
	b.MinLat = math.Max(b.MinLat, -mercator.MaxLatitude)
	b.MaxLat = math.Min(b.MaxLat, mercator.MaxLatitude)
	b.MinLng = math.Max(b.MinLng, -180)
	b.MaxLng = math.Min(b.MaxLng, 180)
	if !b.HasArea() {
		return b, fmt.Errorf("%+v: %w", b, domain.ErrInvalidBounds)
	}
	return b, nil
}
