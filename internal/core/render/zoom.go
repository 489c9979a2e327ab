package render

import (
	"fmt"
	"math"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/mercator"
)

// Zoom limits.
const (
	MinZoom = 1
	MaxZoom = 18
)

// Viewport is the reference pixel area final bounds must fit at the
// chosen zoom.
type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport is used when none is configured.
var DefaultViewport = Viewport{Width: 1024, Height: 768}

// SelectZoom returns the largest integral zoom at which b fits vp,
// clamped to [MinZoom, MaxZoom].
func SelectZoom(b domain.GeoBounds, vp Viewport) (int, error) {
	lngSpan := b.LngRange()
	mercSpan := mercator.MercatorY(b.MinLat) - mercator.MercatorY(b.MaxLat)

	zx := math.Log2(float64(vp.Width) * 360 / (lngSpan * mercator.TilePixels))
	zy := math.Log2(float64(vp.Height) / (mercSpan * mercator.TilePixels))
	z := math.Min(zx, zy)
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, fmt.Errorf("zoom candidates %v/%v for %+v: %w", zx, zy, b, domain.ErrGeometry)
	}

	zoom := int(math.Floor(z))
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	return zoom, nil
}
