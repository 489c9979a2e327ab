package render_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

// --- Mock TileFetcher ---

type mockFetcher struct {
	mu      sync.Mutex
	calls   int
	fetchFn func(ctx context.Context, coord domain.TileCoord, retina bool) ([]byte, error)
}

func (m *mockFetcher) FetchTile(ctx context.Context, coord domain.TileCoord, retina bool) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, coord, retina)
	}
	return nil, nil
}

func (m *mockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// coordColor gives every tile a distinct, reproducible color.
func coordColor(c domain.TileCoord) color.RGBA {
	return color.RGBA{R: uint8(c.X * 37), G: uint8(c.Y * 53), B: uint8(c.Z * 11), A: 0xff}
}

func solidPNG(t testing.TB, size int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// solidFetcher serves one uniformly colored tile per coordinate.
func solidFetcher(t testing.TB) *mockFetcher {
	return &mockFetcher{
		fetchFn: func(_ context.Context, coord domain.TileCoord, retina bool) ([]byte, error) {
			size := 256
			if retina {
				size = 512
			}
			return solidPNG(t, size, coordColor(coord)), nil
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
