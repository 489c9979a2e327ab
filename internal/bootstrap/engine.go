// Package bootstrap wires configuration into the render engine and its
// tile source. Every command builds its pipeline through here.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/samirrijal/trackmap/internal/adapters/tiles"
	"github.com/samirrijal/trackmap/internal/core/ports"
	"github.com/samirrijal/trackmap/internal/core/render"
	"github.com/samirrijal/trackmap/internal/pkg/canvas"
	"github.com/samirrijal/trackmap/internal/pkg/config"
)

// TileSource builds the HTTP tile fetcher, wrapped in the tile cache
// when one is given.
func TileSource(cfg config.TilesConfig, cache ports.CacheService) ports.TileFetcher {
	fetcher := tiles.NewFetcher(tiles.Config{
		URLTemplate:     cfg.URLTemplate,
		Subdomains:      cfg.Subdomains,
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.Timeout(),
		MaxConnsPerHost: cfg.MaxConnsPerHost,
	}, tiles.NewRandomChooser(cfg.Seed))

	if cache == nil || cfg.CacheTTLSeconds <= 0 {
		return fetcher
	}
	return tiles.NewCachedFetcher(fetcher, cache, cfg.CacheTTLSeconds, cfg.URLTemplate)
}

// RenderOptions converts render configuration into engine options.
func RenderOptions(cfg config.RenderConfig) (render.Options, error) {
	opts := render.Options{
		Viewport:     render.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		LineWidth:    cfg.DefaultLineWidth,
		MaxDimension: cfg.MaxDimension,
	}
	if cfg.PlaceholderColor != "" {
		c, err := canvas.ParseColor(cfg.PlaceholderColor)
		if err != nil {
			return opts, fmt.Errorf("render.placeholder_color: %w", err)
		}
		opts.Placeholder = c
	}
	if cfg.DefaultLineColor != "" {
		c, err := canvas.ParseColor(cfg.DefaultLineColor)
		if err != nil {
			return opts, fmt.Errorf("render.default_line_color: %w", err)
		}
		opts.LineColor = c
	}
	return opts, nil
}

// Engine builds the render pipeline from configuration.
func Engine(cfg *config.Config, cache ports.CacheService, logger *slog.Logger) (*render.Renderer, error) {
	opts, err := RenderOptions(cfg.Render)
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(TileSource(cfg.Tiles, cache), opts, logger), nil
}
