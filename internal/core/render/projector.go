package render

import (
	"image/color"
	"log/slog"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/canvas"
	"github.com/samirrijal/trackmap/internal/pkg/mercator"
)

// MarkerSize is the edge of start/end glyphs in pixels.
const MarkerSize = 12

// Default trajectory style.
var (
	DefaultLineColor   = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	DefaultStartColor  = color.RGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff}
	DefaultEndColor    = color.RGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}
	DefaultLineWidth   = 4.0
	retinaWidthFactor  = 2.0
	defaultMarkerShape = domain.MarkerCircle
)

// Style is a resolved drawing style.
type Style struct {
	LineColor color.Color
	LineWidth float64
	Marker    *MarkerStyle
}

// MarkerStyle is a resolved start/end glyph style.
type MarkerStyle struct {
	Shape      domain.MarkerShape
	StartColor color.Color
	EndColor   color.Color
}

// Project maps points into the stitched raster's own frame and draws
// the trajectory on a copy of it. Points are used in input order.
func Project(stitch domain.StitchResult, points []domain.GeoPoint, style Style, logger *slog.Logger) domain.ProjectionResult {
	if logger == nil {
		logger = slog.Default()
	}
	src := stitch.Raster
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	surface := canvas.FromRGBA(canvas.Crop(src, src.Bounds()))

	pixels := make([]domain.PixelPoint, len(points))
	offscreen := 0
	for i, p := range points {
		px := mercator.ProjectToPixel(p, stitch.Bounds, w, h, stitch.Zoom)
		if px.X < 0 || px.X > float64(w) || px.Y < 0 || px.Y > float64(h) {
			offscreen++
		}
		pixels[i] = px
	}
	if offscreen > 0 {
		logger.Warn("trajectory points outside raster", "offscreen", offscreen, "total", len(points))
	}

	surface.StrokePath(pixels, style.LineColor, style.LineWidth)
	if m := style.Marker; m != nil && len(pixels) > 0 {
		surface.DrawMarker(m.Shape, pixels[0], MarkerSize, m.StartColor)
		surface.DrawMarker(m.Shape, pixels[len(pixels)-1], MarkerSize, m.EndColor)
	}

	return domain.ProjectionResult{
		Raster:      surface.RGBA(),
		Points:      points,
		Bounds:      stitch.Bounds,
		PixelBounds: stitch.PixelBounds,
		PixelPoints: pixels,
		Offscreen:   offscreen,
	}
}
