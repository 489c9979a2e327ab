package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/canvas"
	"github.com/samirrijal/trackmap/internal/pkg/mercator"
)

// DefaultPlaceholder fills tiles that could not be fetched or decoded.
var DefaultPlaceholder = color.RGBA{R: 0xe5, G: 0xe5, B: 0xe5, A: 0xff}

// Compositor stitches a grid's tiles and crops the result to the target.
type Compositor struct {
	Placeholder color.Color
	Logger      *slog.Logger
}

// Composite draws tiles onto a cols·tileSize × rows·tileSize canvas and
// returns the crop covering grid.TargetBounds.
func (c Compositor) Composite(grid domain.TileGrid, tiles []domain.TileImage, tileSize int) (domain.StitchResult, error) {
	fullW, fullH := grid.Cols*tileSize, grid.Rows*tileSize
	surface := canvas.New(fullW, fullH)

	fill := c.Placeholder
	if fill == nil {
		fill = DefaultPlaceholder
	}
	// Slots left undrawn keep the placeholder color.
	surface.Fill(fill)

	for _, t := range tiles {
		if t.Placeholder {
			continue
		}
		img, err := canvas.Decode(t.Bytes)
		if err != nil {
			c.logger().Warn("tile decode failed, using placeholder",
				"x", t.Coord.X, "y", t.Coord.Y, "z", t.Coord.Z, "error", err)
			continue
		}
		x := (t.Coord.X - grid.MinX) * tileSize
		y := (t.Coord.Y - grid.MinY) * tileSize
		surface.DrawImage(img, image.Rect(x, y, x+tileSize, y+tileSize))
	}

	pb, err := mercator.GeoBoundsToPixelBounds(grid.TargetBounds, grid.TileBounds, fullW, fullH, grid.Zoom)
	if err != nil {
		return domain.StitchResult{}, err
	}
	if err := ValidateCrop(pb, fullW, fullH); err != nil {
		return domain.StitchResult{}, err
	}

	return domain.StitchResult{
		Raster:      canvas.Crop(surface.RGBA(), image.Rect(pb.MinX, pb.MinY, pb.MaxX, pb.MaxY)),
		Bounds:      grid.TargetBounds,
		PixelBounds: pb,
		FullWidth:   fullW,
		FullHeight:  fullH,
		Zoom:        grid.Zoom,
	}, nil
}

// ValidateCrop checks 0 <= min < max <= full on both axes.
func ValidateCrop(pb domain.PixelBounds, fullW, fullH int) error {
	if pb.MinX < 0 || pb.Width() <= 0 || pb.MaxX > fullW ||
		pb.MinY < 0 || pb.Height() <= 0 || pb.MaxY > fullH {
		return fmt.Errorf("crop %+v in %dx%d canvas: %w", pb, fullW, fullH, domain.ErrCropOutOfRange)
	}
	return nil
}

func (c Compositor) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
