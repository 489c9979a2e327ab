package render_test

import (
	"math/rand"
	"testing"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/render"
	"github.com/samirrijal/trackmap/internal/pkg/mercator"
)

func TestBuildGrid_RowMajorRectangle(t *testing.T) {
	target := domain.GeoBounds{MinLat: 43.2, MaxLat: 43.3, MinLng: -3.0, MaxLng: -2.8}
	g := render.BuildGrid(target, 12)

	if len(g.Tiles) != g.Cols*g.Rows {
		t.Fatalf("expected %d tiles, got %d", g.Cols*g.Rows, len(g.Tiles))
	}
	for i, tc := range g.Tiles {
		wantX := g.MinX + i%g.Cols
		wantY := g.MinY + i/g.Cols
		if tc.X != wantX || tc.Y != wantY || tc.Z != 12 {
			t.Errorf("tile %d: got %+v, want (%d,%d,12)", i, tc, wantX, wantY)
		}
	}
	if g.TargetBounds != target {
		t.Errorf("target bounds changed: %+v", g.TargetBounds)
	}
}

func TestBuildGrid_TileBoundsContainTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		lat := rng.Float64()*150 - 75
		lng := rng.Float64()*340 - 170
		span := rng.Float64()*2 + 1e-4
		target := domain.GeoBounds{MinLat: lat, MaxLat: lat + span*rng.Float64() + 1e-5, MinLng: lng, MaxLng: lng + span}
		zoom, err := render.SelectZoom(target, render.DefaultViewport)
		if err != nil {
			t.Fatalf("select zoom: %v", err)
		}
		g := render.BuildGrid(target, zoom)
		if !containsWithin(g.TileBounds, target, 1e-9) {
			t.Fatalf("tile bounds %+v do not contain target %+v at z%d", g.TileBounds, target, zoom)
		}
	}
}

func TestBuildGrid_PointsLandInGridTiles(t *testing.T) {
	target := domain.GeoBounds{MinLat: 51.45, MaxLat: 51.55, MinLng: -0.2, MaxLng: 0.05}
	zoom, err := render.SelectZoom(target, render.DefaultViewport)
	if err != nil {
		t.Fatalf("select zoom: %v", err)
	}
	g := render.BuildGrid(target, zoom)
	inGrid := map[domain.TileCoord]bool{}
	for _, tc := range g.Tiles {
		inGrid[tc] = true
	}

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		p := domain.GeoPoint{
			Lat: target.MinLat + rng.Float64()*target.LatRange(),
			Lng: target.MinLng + rng.Float64()*target.LngRange(),
		}
		tc := mercator.DegreesToTileIndex(p.Lat, p.Lng, zoom)
		if !inGrid[tc] {
			t.Fatalf("point %+v maps to %+v outside grid", p, tc)
		}
		if !mercator.TileIndexToBounds(tc.X, tc.Y, tc.Z).Contains(p) {
			t.Fatalf("tile %+v does not contain %+v", tc, p)
		}
	}
}

func containsWithin(outer, inner domain.GeoBounds, eps float64) bool {
	return inner.MinLat >= outer.MinLat-eps && inner.MaxLat <= outer.MaxLat+eps &&
		inner.MinLng >= outer.MinLng-eps && inner.MaxLng <= outer.MaxLng+eps
}
