package render

import (
	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/mercator"
)

// BuildGrid enumerates the tiles covering target at zoom in row-major
// order. TileBounds is the union of the corner tiles' extents.
func BuildGrid(target domain.GeoBounds, zoom int) domain.TileGrid {
	tl := mercator.DegreesToTileIndex(target.MaxLat, target.MinLng, zoom)
	br := mercator.DegreesToTileIndex(target.MinLat, target.MaxLng, zoom)

	cols := br.X - tl.X + 1
	rows := br.Y - tl.Y + 1
	tiles := make([]domain.TileCoord, 0, cols*rows)
	for y := tl.Y; y <= br.Y; y++ {
		for x := tl.X; x <= br.X; x++ {
			tiles = append(tiles, domain.TileCoord{X: x, Y: y, Z: zoom})
		}
	}

	nw := mercator.TileIndexToBounds(tl.X, tl.Y, zoom)
	se := mercator.TileIndexToBounds(br.X, br.Y, zoom)

	return domain.TileGrid{
		Tiles:        tiles,
		TargetBounds: target,
		TileBounds: domain.GeoBounds{
			MinLat: se.MinLat,
			MaxLat: nw.MaxLat,
			MinLng: nw.MinLng,
			MaxLng: se.MaxLng,
		},
		Zoom: zoom,
		MinX: tl.X,
		MinY: tl.Y,
		Cols: cols,
		Rows: rows,
	}
}
