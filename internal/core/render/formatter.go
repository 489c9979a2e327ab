package render

import (
	"math"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/canvas"
)

// FinalSize returns the output dimensions for region grown by exp.
func FinalSize(region domain.TrackRegion, exp domain.ExpansionRegion) (int, int) {
	w := int(math.Round(float64(region.Width) * (1 + exp.Left + exp.Right)))
	h := int(math.Round(float64(region.Height) * (1 + exp.Up + exp.Down)))
	return w, h
}

// Format resamples the drawn raster to the final size, encodes it and
// rescales the projected points by the same factors.
func Format(proj domain.ProjectionResult, region domain.TrackRegion, exp domain.ExpansionRegion) (*domain.RenderResult, error) {
	finalW, finalH := FinalSize(region, exp)
	cropW := proj.Raster.Bounds().Dx()
	cropH := proj.Raster.Bounds().Dy()

	img := canvas.Resize(proj.Raster, finalW, finalH)
	b, err := canvas.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	sx := float64(finalW) / float64(cropW)
	sy := float64(finalH) / float64(cropH)
	pts := make([]domain.PixelPoint, len(proj.PixelPoints))
	for i, p := range proj.PixelPoints {
		pts[i] = domain.PixelPoint{X: p.X * sx, Y: p.Y * sy}
	}

	return &domain.RenderResult{
		Image:  b,
		Points: pts,
		Width:  finalW,
		Height: finalH,
	}, nil
}
