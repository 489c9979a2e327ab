// Package canvas is the raster drawing surface used by the renderer.
package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

// Surface wraps an RGBA buffer with a vector drawing context on top.
type Surface struct {
	img *image.RGBA
	dc  *gg.Context
}

// New allocates a w×h transparent surface.
func New(w, h int) *Surface {
	return FromRGBA(image.NewRGBA(image.Rect(0, 0, w, h)))
}

// FromRGBA draws directly into img. img must have its origin at (0,0).
func FromRGBA(img *image.RGBA) *Surface {
	return &Surface{img: img, dc: gg.NewContextForRGBA(img)}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Bounds().Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

// RGBA returns the backing buffer.
func (s *Surface) RGBA() *image.RGBA { return s.img }

// Fill paints the whole surface with c.
func (s *Surface) Fill(c color.Color) {
	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
}

// DrawImage places src into the slot r. A source whose size differs
// from the slot is resampled to fit.
func (s *Surface) DrawImage(src image.Image, r image.Rectangle) {
	if src.Bounds().Size() == r.Size() {
		xdraw.Draw(s.img, r, src, src.Bounds().Min, xdraw.Src)
		return
	}
	xdraw.BiLinear.Scale(s.img, r, src, src.Bounds(), xdraw.Src, nil)
}

// StrokePath draws one connected polyline through pts with round caps
// and joins. Fewer than two points draw a dot of the line width.
func (s *Surface) StrokePath(pts []domain.PixelPoint, c color.Color, width float64) {
	if len(pts) == 0 {
		return
	}
	s.dc.Push()
	defer s.dc.Pop()

	s.dc.SetColor(c)
	if len(pts) == 1 {
		s.dc.DrawCircle(pts[0].X, pts[0].Y, width/2)
		s.dc.Fill()
		return
	}

	s.dc.SetLineWidth(width)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	s.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	s.dc.Stroke()
}

// DrawMarker draws a filled glyph of the given edge size centred on p.
func (s *Surface) DrawMarker(shape domain.MarkerShape, p domain.PixelPoint, size float64, c color.Color) {
	s.dc.Push()
	defer s.dc.Pop()

	half := size / 2
	s.dc.SetColor(c)
	switch shape {
	case domain.MarkerSquare:
		s.dc.DrawRectangle(p.X-half, p.Y-half, size, size)
	case domain.MarkerTriangle:
		h := size * math.Sqrt(3) / 2
		s.dc.MoveTo(p.X, p.Y-h*2/3)
		s.dc.LineTo(p.X+half, p.Y+h/3)
		s.dc.LineTo(p.X-half, p.Y+h/3)
		s.dc.ClosePath()
	default:
		s.dc.DrawCircle(p.X, p.Y, half)
	}
	s.dc.Fill()
}

// Crop copies r out of src into a fresh raster with origin (0,0).
func Crop(src *image.RGBA, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, r.Min, xdraw.Src)
	return dst
}

// Resize resamples src to w×h with bilinear filtering.
func Resize(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Decode decodes PNG, JPEG or WebP tile bytes.
func Decode(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
