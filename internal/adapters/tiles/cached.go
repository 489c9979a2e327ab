package tiles

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/ports"
)

// CachedFetcher serves tiles from a cache and fills it from next on a miss.
// Cache failures degrade to a direct fetch.
type CachedFetcher struct {
	next       ports.TileFetcher
	cache      ports.CacheService
	ttlSeconds int
	namespace  string
}

// NewCachedFetcher wraps next with cache. source identifies the tile
// provider (its URL template); keys are scoped to it so switching
// providers never serves the old provider's tiles.
func NewCachedFetcher(next ports.TileFetcher, cache ports.CacheService, ttlSeconds int, source string) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache, ttlSeconds: ttlSeconds, namespace: SourceNamespace(source)}
}

// SourceNamespace returns the key prefix for tiles of one provider.
func SourceNamespace(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "tile:" + hex.EncodeToString(sum[:6]) + ":"
}

// FetchTile implements ports.TileFetcher.
func (c *CachedFetcher) FetchTile(ctx context.Context, coord domain.TileCoord, retina bool) ([]byte, error) {
	key := c.namespace + cacheKey(coord, retina)

	b, err := c.cache.Get(ctx, key)
	if err == nil && len(b) > 0 {
		return b, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("tile cache get failed", "key", key, "error", err)
	}

	b, err = c.next.FetchTile(ctx, coord, retina)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, b, c.ttlSeconds); err != nil {
		slog.Warn("tile cache set failed", "key", key, "error", err)
	}
	return b, nil
}

func cacheKey(coord domain.TileCoord, retina bool) string {
	if retina {
		return fmt.Sprintf("%d/%d/%d@2x", coord.Z, coord.X, coord.Y)
	}
	return fmt.Sprintf("%d/%d/%d", coord.Z, coord.X, coord.Y)
}
