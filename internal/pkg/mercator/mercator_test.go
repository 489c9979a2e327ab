package mercator_test

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/mercator"
)

const tolerance = 1e-6

func TestDegreesToTileIndex(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		zoom     int
		want     domain.TileCoord
	}{
		{"origin z0", 0, 0, 0, domain.TileCoord{X: 0, Y: 0, Z: 0}},
		{"origin z1", 0.0001, 0.0001, 1, domain.TileCoord{X: 1, Y: 0, Z: 1}},
		{"south-west z1", -10, -10, 1, domain.TileCoord{X: 0, Y: 1, Z: 1}},
		{"east edge clamps", 10, 180, 3, domain.TileCoord{X: 7, Y: 3, Z: 3}},
		{"north pole clamps", 89.9, 0, 4, domain.TileCoord{X: 8, Y: 0, Z: 4}},
		{"south pole clamps", -89.9, 0, 4, domain.TileCoord{X: 8, Y: 15, Z: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mercator.DegreesToTileIndex(tt.lat, tt.lng, tt.zoom)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDegreesToTileIndex_MatchesMaptile(t *testing.T) {
	points := []domain.GeoPoint{
		{Lat: 43.263, Lng: -2.935},
		{Lat: 51.5074, Lng: -0.1278},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 35.6762, Lng: 139.6503},
		{Lat: -54.8019, Lng: -68.303},
	}
	for _, p := range points {
		for z := 1; z <= 18; z++ {
			got := mercator.DegreesToTileIndex(p.Lat, p.Lng, z)
			ref := maptile.At(orb.Point{p.Lng, p.Lat}, maptile.Zoom(z))
			if got.X != int(ref.X) || got.Y != int(ref.Y) {
				t.Errorf("%+v z%d: got (%d,%d), maptile (%d,%d)", p, z, got.X, got.Y, ref.X, ref.Y)
			}
		}
	}
}

func TestTileIndexToBounds_MatchesMaptile(t *testing.T) {
	for _, tc := range []domain.TileCoord{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 4012, Y: 3054, Z: 13}, {X: 130000, Y: 90000, Z: 18}} {
		got := mercator.TileIndexToBounds(tc.X, tc.Y, tc.Z)
		ref := maptile.New(uint32(tc.X), uint32(tc.Y), maptile.Zoom(tc.Z)).Bound()
		if math.Abs(got.MinLng-ref.Min[0]) > tolerance || math.Abs(got.MaxLng-ref.Max[0]) > tolerance ||
			math.Abs(got.MinLat-ref.Min[1]) > tolerance || math.Abs(got.MaxLat-ref.Max[1]) > tolerance {
			t.Errorf("%+v: got %+v, maptile %v", tc, got, ref)
		}
	}
}

func TestTileIndexToBounds_SharedEdges(t *testing.T) {
	z := 12
	a := mercator.TileIndexToBounds(100, 200, z)
	right := mercator.TileIndexToBounds(101, 200, z)
	below := mercator.TileIndexToBounds(100, 201, z)

	if a.MaxLng != right.MinLng {
		t.Errorf("horizontal edge mismatch: %v vs %v", a.MaxLng, right.MinLng)
	}
	if a.MinLat != below.MaxLat {
		t.Errorf("vertical edge mismatch: %v vs %v", a.MinLat, below.MaxLat)
	}
}

func TestTileContainsPoint(t *testing.T) {
	// For any interior point, the tile it maps to must contain it.
	for lat := -80.0; lat <= 80; lat += 7.3 {
		for lng := -179.0; lng <= 179; lng += 11.1 {
			for _, z := range []int{1, 5, 10, 15, 18} {
				tc := mercator.DegreesToTileIndex(lat, lng, z)
				b := mercator.TileIndexToBounds(tc.X, tc.Y, tc.Z)
				if !b.Contains(domain.GeoPoint{Lat: lat, Lng: lng}) {
					t.Fatalf("(%v,%v) z%d: tile %+v bounds %+v do not contain point", lat, lng, z, tc, b)
				}
			}
		}
	}
}

func TestMercatorY(t *testing.T) {
	if got := mercator.MercatorY(0); math.Abs(got-0.5) > tolerance {
		t.Errorf("equator: got %v, want 0.5", got)
	}
	if got := mercator.MercatorY(mercator.MaxLatitude); math.Abs(got) > 1e-8 {
		t.Errorf("north limit: got %v, want 0", got)
	}
	if got := mercator.MercatorY(-mercator.MaxLatitude); math.Abs(got-1) > 1e-8 {
		t.Errorf("south limit: got %v, want 1", got)
	}
}

func TestProjectToPixel_Corners(t *testing.T) {
	ref := domain.GeoBounds{MinLat: 43.2, MaxLat: 43.3, MinLng: -3.0, MaxLng: -2.9}
	w, h, z := 800, 600, 14

	tl := mercator.ProjectToPixel(domain.GeoPoint{Lat: ref.MaxLat, Lng: ref.MinLng}, ref, w, h, z)
	br := mercator.ProjectToPixel(domain.GeoPoint{Lat: ref.MinLat, Lng: ref.MaxLng}, ref, w, h, z)

	if math.Abs(tl.X) > tolerance || math.Abs(tl.Y) > tolerance {
		t.Errorf("top-left: got %+v, want (0,0)", tl)
	}
	if math.Abs(br.X-float64(w)) > tolerance || math.Abs(br.Y-float64(h)) > tolerance {
		t.Errorf("bottom-right: got %+v, want (%d,%d)", br, w, h)
	}
}

func TestProjectToPixel_ZoomIndependent(t *testing.T) {
	ref := domain.GeoBounds{MinLat: 10, MaxLat: 20, MinLng: 30, MaxLng: 40}
	p := domain.GeoPoint{Lat: 13.3, Lng: 37.7}

	a := mercator.ProjectToPixel(p, ref, 500, 500, 3)
	b := mercator.ProjectToPixel(p, ref, 500, 500, 17)
	if math.Abs(a.X-b.X) > 1e-6 || math.Abs(a.Y-b.Y) > 1e-6 {
		t.Errorf("relative projection depends on zoom: %+v vs %+v", a, b)
	}
}

func TestGeoBoundsToPixelBounds(t *testing.T) {
	ref := mercator.TileIndexToBounds(10, 20, 6)
	ref2 := mercator.TileIndexToBounds(11, 21, 6)
	ref.MaxLng = ref2.MaxLng
	ref.MinLat = ref2.MinLat

	t.Run("reference maps to full raster", func(t *testing.T) {
		got, err := mercator.GeoBoundsToPixelBounds(ref, ref, 512, 512, 6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := domain.PixelBounds{MinX: 0, MaxX: 512, MinY: 0, MaxY: 512}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("inner tile maps to its slot", func(t *testing.T) {
		inner := mercator.TileIndexToBounds(11, 21, 6)
		got, err := mercator.GeoBoundsToPixelBounds(inner, ref, 512, 512, 6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := domain.PixelBounds{MinX: 256, MaxX: 512, MinY: 256, MaxY: 512}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("zero area target", func(t *testing.T) {
		flat := domain.GeoBounds{MinLat: 1, MaxLat: 1, MinLng: 0, MaxLng: 2}
		_, err := mercator.GeoBoundsToPixelBounds(flat, ref, 512, 512, 6)
		if !errors.Is(err, domain.ErrInvalidBounds) {
			t.Errorf("expected ErrInvalidBounds, got %v", err)
		}
	})

	t.Run("zero area reference", func(t *testing.T) {
		flat := domain.GeoBounds{MinLat: 1, MaxLat: 2, MinLng: 3, MaxLng: 3}
		_, err := mercator.GeoBoundsToPixelBounds(ref, flat, 512, 512, 6)
		if !errors.Is(err, domain.ErrGeometry) {
			t.Errorf("expected geometry error, got %v", err)
		}
	})
}

func TestMeters_RoundTrip(t *testing.T) {
	p := domain.GeoPoint{Lat: 43.263, Lng: -2.935}
	x, y := mercator.ToMeters(p)
	back := mercator.FromMeters(x, y)
	if math.Abs(back.Lat-p.Lat) > 1e-9 || math.Abs(back.Lng-p.Lng) > 1e-9 {
		t.Errorf("got %+v, want %+v", back, p)
	}
}

func TestMeterRatio(t *testing.T) {
	b := domain.GeoBounds{MinLat: -1, MaxLat: 1, MinLng: -1, MaxLng: 1}
	r, err := mercator.MeterRatio(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Near the equator a degree box is almost square in meters.
	if math.Abs(r-1) > 1e-3 {
		t.Errorf("got %v, want ~1", r)
	}

	if _, err := mercator.MeterRatio(domain.GeoBounds{MinLat: 5, MaxLat: 5, MinLng: 0, MaxLng: 1}); err == nil {
		t.Error("expected error for zero height")
	}
}
