package telemetry

// Span and attribute names shared by the render pipeline.
const (
	SpanRender    = "render"
	SpanPlan      = "render.plan"
	SpanFetch     = "render.fetch"
	SpanComposite = "render.composite"
	SpanProject   = "render.project"
	SpanFormat    = "render.format"

	AttrZoom         = "render.zoom"
	AttrTiles        = "render.tiles"
	AttrPlaceholders = "render.placeholders"
	AttrPoints       = "render.points"
)
