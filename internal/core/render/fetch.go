package render

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/ports"
	"github.com/samirrijal/trackmap/internal/pkg/mercator"
	"github.com/samirrijal/trackmap/internal/pkg/metrics"
)

var errEmptyTile = errors.New("empty tile body")

// FetchTiles requests every tile of grid concurrently and waits for all of
// them. A failed tile is logged and returned as a placeholder; it never
// affects its siblings. The result is in grid order.
func FetchTiles(ctx context.Context, f ports.TileFetcher, grid domain.TileGrid, retina bool, logger *slog.Logger) []domain.TileImage {
	out := make([]domain.TileImage, len(grid.Tiles))

	var wg sync.WaitGroup
	for i, coord := range grid.Tiles {
		wg.Add(1)
		go func(i int, coord domain.TileCoord) {
			defer wg.Done()
			out[i] = fetchOne(ctx, f, coord, retina, logger)
		}(i, coord)
	}
	wg.Wait()

	return out
}

func fetchOne(ctx context.Context, f ports.TileFetcher, coord domain.TileCoord, retina bool, logger *slog.Logger) (tile domain.TileImage) {
	tile = domain.TileImage{
		Coord:  coord,
		Bounds: mercator.TileIndexToBounds(coord.X, coord.Y, coord.Z),
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("tile fetch panicked", "x", coord.X, "y", coord.Y, "z", coord.Z, "panic", r)
			tile.Bytes = nil
			tile.Placeholder = true
			metrics.TilesFetched.WithLabelValues("placeholder").Inc()
		}
	}()

	b, err := f.FetchTile(ctx, coord, retina)
	metrics.TileFetchDuration.Observe(time.Since(start).Seconds())
	if err == nil && len(b) == 0 {
		err = errEmptyTile
	}
	if err != nil {
		fe := &domain.FetchError{Coord: coord, Err: err}
		logger.Warn("tile fetch failed, using placeholder", "x", coord.X, "y", coord.Y, "z", coord.Z, "error", fe)
		tile.Placeholder = true
		metrics.TilesFetched.WithLabelValues("placeholder").Inc()
		return tile
	}

	tile.Bytes = b
	metrics.TilesFetched.WithLabelValues("ok").Inc()
	return tile
}

// CountPlaceholders returns how many tiles were substituted.
func CountPlaceholders(tiles []domain.TileImage) int {
	n := 0
	for _, t := range tiles {
		if t.Placeholder {
			n++
		}
	}
	return n
}
