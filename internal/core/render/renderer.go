// Package render implements the trajectory-to-raster pipeline:
// bounds, zoom, tile grid, fetch, composite, project and format.
package render

import (
	"context"
	"image/color"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/ports"
	"github.com/samirrijal/trackmap/internal/pkg/metrics"
	"github.com/samirrijal/trackmap/internal/pkg/telemetry"
)

// Pipeline stage names, used in errors, spans and metrics.
const (
	StageValidate  = "validate"
	StageBounds    = "bounds"
	StageZoom      = "zoom"
	StageGrid      = "grid"
	StageFetch     = "fetch"
	StageComposite = "composite"
	StageProject   = "project"
	StageFormat    = "format"
)

// Options configures a Renderer. Zero values fall back to defaults.
type Options struct {
	Viewport     Viewport
	Placeholder  color.Color
	LineColor    color.Color
	LineWidth    float64
	MaxDimension int
}

// Renderer runs the full pipeline against a tile source.
type Renderer struct {
	fetcher ports.TileFetcher
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRenderer creates a Renderer.
func NewRenderer(fetcher ports.TileFetcher, opts Options, logger *slog.Logger) *Renderer {
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = DefaultViewport
	}
	if opts.Placeholder == nil {
		opts.Placeholder = DefaultPlaceholder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger,
		tracer:  telemetry.Tracer("trackmap/render"),
	}
}

// Plan computes bounds, zoom and tile grid without fetching anything.
func (r *Renderer) Plan(ctx context.Context, req domain.RenderRequest) (*domain.RenderPlan, error) {
	_, span := r.tracer.Start(ctx, telemetry.SpanPlan)
	defer span.End()

	if err := Validate(req, r.opts.MaxDimension); err != nil {
		return nil, fail(span, StageValidate, err)
	}

	start := time.Now()
	stages, err := ComputeBounds(req.Points, req.TrackRegion, req.Expansion)
	metrics.ObserveStage(StageBounds, start)
	if err != nil {
		return nil, fail(span, StageBounds, err)
	}

	start = time.Now()
	zoom, err := SelectZoom(stages.Final(), r.opts.Viewport)
	metrics.ObserveStage(StageZoom, start)
	if err != nil {
		return nil, fail(span, StageZoom, err)
	}

	start = time.Now()
	grid := BuildGrid(stages.Final(), zoom)
	metrics.ObserveStage(StageGrid, start)

	span.SetAttributes(
		attribute.Int(telemetry.AttrZoom, zoom),
		attribute.Int(telemetry.AttrTiles, len(grid.Tiles)),
		attribute.Int(telemetry.AttrPoints, len(req.Points)),
	)

	return &domain.RenderPlan{
		Stages:   stages,
		Zoom:     zoom,
		Grid:     grid,
		TileSize: req.TileSize(),
	}, nil
}

// Render runs the whole pipeline. Any fatal failure is returned as a
// *domain.RenderError and no partial result.
func (r *Renderer) Render(ctx context.Context, req domain.RenderRequest) (*domain.RenderResult, error) {
	ctx, span := r.tracer.Start(ctx, telemetry.SpanRender)
	defer span.End()
	began := time.Now()

	style, err := ResolveStyle(req, Style{LineColor: r.opts.LineColor, LineWidth: r.opts.LineWidth})
	if err != nil {
		return nil, fail(span, StageValidate, err)
	}

	plan, err := r.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	fctx, fspan := r.tracer.Start(ctx, telemetry.SpanFetch)
	tiles := FetchTiles(fctx, r.fetcher, plan.Grid, req.Retina, r.logger)
	placeholders := CountPlaceholders(tiles)
	fspan.SetAttributes(attribute.Int(telemetry.AttrPlaceholders, placeholders))
	fspan.End()
	metrics.ObserveStage(StageFetch, start)

	start = time.Now()
	_, cspan := r.tracer.Start(ctx, telemetry.SpanComposite)
	comp := Compositor{Placeholder: r.opts.Placeholder, Logger: r.logger}
	stitch, err := comp.Composite(plan.Grid, tiles, plan.TileSize)
	cspan.End()
	metrics.ObserveStage(StageComposite, start)
	if err != nil {
		return nil, fail(span, StageComposite, err)
	}

	start = time.Now()
	_, pspan := r.tracer.Start(ctx, telemetry.SpanProject)
	proj := Project(stitch, req.Points, style, r.logger)
	pspan.End()
	metrics.ObserveStage(StageProject, start)

	start = time.Now()
	_, ospan := r.tracer.Start(ctx, telemetry.SpanFormat)
	res, err := Format(proj, req.TrackRegion, req.Expansion)
	ospan.End()
	metrics.ObserveStage(StageFormat, start)
	if err != nil {
		return nil, fail(span, StageFormat, err)
	}

	res.Zoom = plan.Zoom
	res.Stages = plan.Stages
	res.TileCount = len(tiles)
	res.Placeholders = placeholders

	r.logger.Info("render complete",
		"zoom", plan.Zoom,
		"tiles", len(tiles),
		"placeholders", placeholders,
		"offscreen", proj.Offscreen,
		"width", res.Width,
		"height", res.Height,
		"duration_ms", time.Since(began).Milliseconds(),
	)
	return res, nil
}

func fail(span trace.Span, stage string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	return &domain.RenderError{Stage: stage, Err: err}
}
