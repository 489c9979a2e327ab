package render_test

import (
	"errors"
	"image/color"
	"testing"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/render"
	"github.com/samirrijal/trackmap/internal/pkg/mercator"
)

// fullGrid covers tiles x0..x0+1, y0..y0+1 with a target equal to the grid extent.
func fullGrid(x0, y0, z int) domain.TileGrid {
	var tiles []domain.TileCoord
	for y := y0; y <= y0+1; y++ {
		for x := x0; x <= x0+1; x++ {
			tiles = append(tiles, domain.TileCoord{X: x, Y: y, Z: z})
		}
	}
	nw := mercator.TileIndexToBounds(x0, y0, z)
	se := mercator.TileIndexToBounds(x0+1, y0+1, z)
	tb := domain.GeoBounds{MinLat: se.MinLat, MaxLat: nw.MaxLat, MinLng: nw.MinLng, MaxLng: se.MaxLng}
	return domain.TileGrid{Tiles: tiles, TargetBounds: tb, TileBounds: tb, Zoom: z, MinX: x0, MinY: y0, Cols: 2, Rows: 2}
}

func TestComposite_PlacesTilesInSlots(t *testing.T) {
	g := fullGrid(10, 20, 6)
	var tiles []domain.TileImage
	for _, tc := range g.Tiles {
		tiles = append(tiles, domain.TileImage{Coord: tc, Bytes: solidPNG(t, 256, coordColor(tc))})
	}

	res, err := render.Compositor{Logger: quietLogger()}.Composite(g, tiles, 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FullWidth != 512 || res.FullHeight != 512 {
		t.Fatalf("unexpected canvas %dx%d", res.FullWidth, res.FullHeight)
	}
	if res.PixelBounds != (domain.PixelBounds{MinX: 0, MaxX: 512, MinY: 0, MaxY: 512}) {
		t.Fatalf("unexpected crop %+v", res.PixelBounds)
	}
	checks := []struct {
		x, y int
		tile domain.TileCoord
	}{
		{10, 10, domain.TileCoord{X: 10, Y: 20, Z: 6}},
		{300, 10, domain.TileCoord{X: 11, Y: 20, Z: 6}},
		{10, 300, domain.TileCoord{X: 10, Y: 21, Z: 6}},
		{500, 500, domain.TileCoord{X: 11, Y: 21, Z: 6}},
	}
	for _, c := range checks {
		if got := res.Raster.RGBAAt(c.x, c.y); got != coordColor(c.tile) {
			t.Errorf("pixel (%d,%d): got %v, want %v", c.x, c.y, got, coordColor(c.tile))
		}
	}
	if res.Bounds != g.TargetBounds {
		t.Errorf("stitch bounds must equal target bounds")
	}
}

func TestComposite_AllPlaceholdersAreUniform(t *testing.T) {
	g := fullGrid(3, 4, 4)
	fill := color.RGBA{R: 200, G: 10, B: 10, A: 255}
	var tiles []domain.TileImage
	for _, tc := range g.Tiles {
		tiles = append(tiles, domain.TileImage{Coord: tc, Placeholder: true})
	}

	res, err := render.Compositor{Placeholder: fill}.Composite(g, tiles, 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := res.Raster.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 17 {
		for x := b.Min.X; x < b.Max.X; x += 17 {
			if got := res.Raster.RGBAAt(x, y); got != fill {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, fill)
			}
		}
	}
}

func TestComposite_UndecodableTileFallsBack(t *testing.T) {
	g := fullGrid(0, 0, 1)
	var tiles []domain.TileImage
	for _, tc := range g.Tiles {
		tiles = append(tiles, domain.TileImage{Coord: tc, Bytes: []byte("<html>rate limited</html>")})
	}
	res, err := render.Compositor{Logger: quietLogger()}.Composite(g, tiles, 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Raster.RGBAAt(100, 100); got != render.DefaultPlaceholder {
		t.Errorf("got %v, want default placeholder", got)
	}
}

func TestComposite_MissingSlotKeepsPlaceholder(t *testing.T) {
	g := fullGrid(4, 4, 5)
	fill := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	// Only the first tile arrives.
	tiles := []domain.TileImage{{Coord: g.Tiles[0], Bytes: solidPNG(t, 256, coordColor(g.Tiles[0]))}}

	res, err := render.Compositor{Placeholder: fill}.Composite(g, tiles, 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Raster.RGBAAt(10, 10); got != coordColor(g.Tiles[0]) {
		t.Errorf("drawn slot: got %v, want %v", got, coordColor(g.Tiles[0]))
	}
	if got := res.Raster.RGBAAt(400, 400); got != fill {
		t.Errorf("missing slot: got %v, want %v", got, fill)
	}
}

func TestComposite_ResamplesOversizedTiles(t *testing.T) {
	g := fullGrid(2, 2, 3)
	var tiles []domain.TileImage
	for _, tc := range g.Tiles {
		tiles = append(tiles, domain.TileImage{Coord: tc, Bytes: solidPNG(t, 512, coordColor(tc))})
	}
	res, err := render.Compositor{}.Composite(g, tiles, 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FullWidth != 512 {
		t.Fatalf("canvas must follow tile size, got %d", res.FullWidth)
	}
	if got := res.Raster.RGBAAt(128, 128); got != coordColor(g.Tiles[0]) {
		t.Errorf("got %v, want %v", got, coordColor(g.Tiles[0]))
	}
}

func TestComposite_CropsToTarget(t *testing.T) {
	target := domain.GeoBounds{MinLat: 43.25, MaxLat: 43.28, MinLng: -2.96, MaxLng: -2.91}
	g := render.BuildGrid(target, 14)
	var tiles []domain.TileImage
	for _, tc := range g.Tiles {
		tiles = append(tiles, domain.TileImage{Coord: tc, Placeholder: true})
	}
	res, err := render.Compositor{}.Composite(g, tiles, 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pb := res.PixelBounds
	if pb.MinX < 0 || pb.MinY < 0 || pb.MaxX > res.FullWidth || pb.MaxY > res.FullHeight {
		t.Fatalf("crop %+v outside %dx%d", pb, res.FullWidth, res.FullHeight)
	}
	if res.Raster.Bounds().Dx() != pb.Width() || res.Raster.Bounds().Dy() != pb.Height() {
		t.Errorf("raster %v does not match crop %+v", res.Raster.Bounds(), pb)
	}
	if res.Raster.Bounds().Min.X != 0 || res.Raster.Bounds().Min.Y != 0 {
		t.Errorf("cropped raster must start at origin, got %v", res.Raster.Bounds().Min)
	}
}

func TestComposite_CropOutOfRange(t *testing.T) {
	g := fullGrid(10, 10, 5)
	g.TargetBounds.MaxLng += 5
	_, err := render.Compositor{}.Composite(g, nil, 256)
	if !errors.Is(err, domain.ErrCropOutOfRange) {
		t.Fatalf("expected ErrCropOutOfRange, got %v", err)
	}
}

func TestValidateCrop(t *testing.T) {
	tests := []struct {
		name string
		pb   domain.PixelBounds
		ok   bool
	}{
		{"inside", domain.PixelBounds{MinX: 1, MaxX: 10, MinY: 2, MaxY: 9}, true},
		{"full canvas", domain.PixelBounds{MinX: 0, MaxX: 20, MinY: 0, MaxY: 20}, true},
		{"negative min", domain.PixelBounds{MinX: -1, MaxX: 10, MinY: 0, MaxY: 9}, false},
		{"past edge", domain.PixelBounds{MinX: 0, MaxX: 21, MinY: 0, MaxY: 9}, false},
		{"empty", domain.PixelBounds{MinX: 5, MaxX: 5, MinY: 0, MaxY: 9}, false},
		{"inverted height", domain.PixelBounds{MinX: 0, MaxX: 10, MinY: 9, MaxY: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := render.ValidateCrop(tt.pb, 20, 20)
			if (err == nil) != tt.ok {
				t.Errorf("ValidateCrop(%+v) = %v, want ok=%v", tt.pb, err, tt.ok)
			}
		})
	}
}

func TestCropStaysInsideCanvas_Randomized(t *testing.T) {
	// End-to-end geometry without images: bounds, zoom, grid, crop.
	pts := [][]domain.GeoPoint{
		{{Lat: 43.2627, Lng: -2.9253}, {Lat: 43.2712, Lng: -2.9401}},
		{{Lat: -33.87, Lng: 151.2}, {Lat: -33.85, Lng: 151.25}, {Lat: -33.9, Lng: 151.22}},
		{{Lat: 64.1, Lng: -21.9}, {Lat: 64.15, Lng: -21.8}},
		{{Lat: 0, Lng: 0}, {Lat: 0.5, Lng: 0.5}},
		{{Lat: 35.0, Lng: 139.0}, {Lat: 35.0, Lng: 140.0}},
	}
	regions := []domain.TrackRegion{{Width: 100, Height: 100}, {Width: 1280, Height: 720}, {Width: 300, Height: 800}}
	for _, p := range pts {
		for _, r := range regions {
			st, err := render.ComputeBounds(p, r, domain.ExpansionRegion{Up: 0.1, Left: 0.2})
			if err != nil {
				t.Fatalf("bounds: %v", err)
			}
			z, err := render.SelectZoom(st.Final(), render.DefaultViewport)
			if err != nil {
				t.Fatalf("zoom: %v", err)
			}
			g := render.BuildGrid(st.Final(), z)
			for _, ts := range []int{256, 512} {
				fullW, fullH := g.Cols*ts, g.Rows*ts
				pb, err := mercator.GeoBoundsToPixelBounds(g.TargetBounds, g.TileBounds, fullW, fullH, z)
				if err != nil {
					t.Fatalf("pixel bounds: %v", err)
				}
				if err := render.ValidateCrop(pb, fullW, fullH); err != nil {
					t.Errorf("%v %+v ts=%d: %v", p, r, ts, err)
				}
			}
		}
	}
}
