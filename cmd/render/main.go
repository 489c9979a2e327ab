// Command render draws one encoded polyline onto a map and writes the PNG.
//
//	render [flags] <polyline>
//	render [flags] -file track.txt
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/samirrijal/trackmap/internal/bootstrap"
	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/config"
	"github.com/samirrijal/trackmap/internal/pkg/logging"
	"github.com/samirrijal/trackmap/internal/pkg/polyline"
)

func main() {
	var (
		file    = flag.String("file", "", "read the encoded polyline from a file")
		out     = flag.String("out", "track.png", "output PNG path")
		width   = flag.Int("width", 600, "track region width in pixels")
		height  = flag.Int("height", 400, "track region height in pixels")
		up      = flag.Float64("up", 0, "expansion above the track, as a fraction of the latitude range")
		down    = flag.Float64("down", 0, "expansion below the track")
		left    = flag.Float64("left", 0, "expansion left of the track, as a fraction of the longitude range")
		right   = flag.Float64("right", 0, "expansion right of the track")
		retina  = flag.Bool("retina", false, "use 512px tiles")
		color   = flag.String("color", "", "line color, #rrggbb")
		line    = flag.Float64("line-width", 0, "line width in pixels")
		marker  = flag.String("marker", "", "start/end marker shape: circle, square or triangle")
		timeout = flag.Duration("timeout", time.Minute, "overall render timeout")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: render [flags] <polyline>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load("trackmap-render")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// stdout carries the pixel points.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	encoded, err := readPolyline(*file, flag.Args())
	if err != nil {
		flag.Usage()
		log.Fatal(err)
	}
	points, err := polyline.Decode(encoded)
	if err != nil {
		log.Fatalf("polyline: %v", err)
	}

	req := domain.RenderRequest{
		Points:      points,
		TrackRegion: domain.TrackRegion{Width: *width, Height: *height},
		Expansion:   domain.ExpansionRegion{Up: *up, Down: *down, Left: *left, Right: *right},
		LineColor:   *color,
		LineWidth:   *line,
		Retina:      *retina,
	}
	if *marker != "" {
		req.Marker = &domain.MarkerOptions{Shape: domain.MarkerShape(*marker)}
	}

	// No cache: one-shot renders fetch every tile.
	engine, err := bootstrap.Engine(cfg, nil, slog.Default())
	if err != nil {
		log.Fatalf("render engine: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := engine.Render(ctx, req)
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	if err := os.WriteFile(*out, result.Image, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}

	slog.Info("render written",
		"path", *out,
		"width", result.Width,
		"height", result.Height,
		"zoom", result.Zoom,
		"tiles", result.TileCount,
		"placeholders", result.Placeholders,
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Points); err != nil {
		log.Fatalf("print points: %v", err)
	}
}

func readPolyline(file string, args []string) (string, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	if len(args) != 1 {
		return "", fmt.Errorf("expected one polyline argument, got %d", len(args))
	}
	return args[0], nil
}
