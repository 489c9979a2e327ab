package render

import (
	"fmt"
	"math"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/canvas"
)

// Validate checks a request before any geometry or fetch work.
func Validate(req domain.RenderRequest, maxDimension int) error {
	if len(req.Points) == 0 {
		return domain.ErrEmptyTrajectory
	}
	for i, p := range req.Points {
		if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return fmt.Errorf("point %d (%v, %v) out of range: %w", i, p.Lat, p.Lng, domain.ErrInput)
		}
	}

	r := req.TrackRegion
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%dx%d: %w", r.Width, r.Height, domain.ErrInvalidTrackRegion)
	}

	e := req.Expansion
	for _, f := range []struct {
		name string
		v    float64
	}{{"up", e.Up}, {"down", e.Down}, {"left", e.Left}, {"right", e.Right}} {
		if math.IsNaN(f.v) || f.v < 0 || f.v > 1 {
			return fmt.Errorf("%s=%v: %w", f.name, f.v, domain.ErrInvalidExpansion)
		}
	}
	if maxDimension > 0 {
		if w, h := FinalSize(r, e); w > maxDimension || h > maxDimension {
			return fmt.Errorf("output %dx%d exceeds %d: %w", w, h, maxDimension, domain.ErrInvalidTrackRegion)
		}
	}

	if math.IsNaN(req.LineWidth) || req.LineWidth < 0 {
		return fmt.Errorf("line width %v: %w", req.LineWidth, domain.ErrInvalidStyle)
	}
	return nil
}

// ResolveStyle fills request style fields from defaults and parses colors.
func ResolveStyle(req domain.RenderRequest, defaults Style) (Style, error) {
	style := Style{LineColor: defaults.LineColor, LineWidth: defaults.LineWidth}
	if style.LineColor == nil {
		style.LineColor = DefaultLineColor
	}
	if style.LineWidth == 0 {
		style.LineWidth = DefaultLineWidth
	}

	if req.LineColor != "" {
		c, err := canvas.ParseColor(req.LineColor)
		if err != nil {
			return style, err
		}
		style.LineColor = c
	}
	if req.LineWidth > 0 {
		style.LineWidth = req.LineWidth
	}
	if req.Retina {
		style.LineWidth *= retinaWidthFactor
	}

	if m := req.Marker; m != nil {
		ms := &MarkerStyle{Shape: m.Shape, StartColor: DefaultStartColor, EndColor: DefaultEndColor}
		switch m.Shape {
		case "":
			ms.Shape = defaultMarkerShape
		case domain.MarkerCircle, domain.MarkerSquare, domain.MarkerTriangle:
		default:
			return style, fmt.Errorf("marker shape %q: %w", m.Shape, domain.ErrInvalidStyle)
		}
		if m.StartColor != "" {
			c, err := canvas.ParseColor(m.StartColor)
			if err != nil {
				return style, err
			}
			ms.StartColor = c
		}
		if m.EndColor != "" {
			c, err := canvas.ParseColor(m.EndColor)
			if err != nil {
				return style, err
			}
			ms.EndColor = c
		}
		style.Marker = ms
	}
	return style, nil
}
