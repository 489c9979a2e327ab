package domain

import "image"

// Tile edge lengths in pixels for the two resolution modes.
const (
	TileSizeStandard = 256
	TileSizeRetina   = 512
)

// MarkerShape selects the start/end glyph.
type MarkerShape string

const (
	MarkerCircle   MarkerShape = "circle"
	MarkerSquare   MarkerShape = "square"
	MarkerTriangle MarkerShape = "triangle"
)

// MarkerOptions enables start/end glyphs. Empty colors fall back to
// green (start) and red (end).
type MarkerOptions struct {
	Shape      MarkerShape `json:"shape"`
	StartColor string      `json:"start_color,omitempty"`
	EndColor   string      `json:"end_color,omitempty"`
}

// RenderRequest is one render call. Points are never mutated.
type RenderRequest struct {
	Points      []GeoPoint
	TrackRegion TrackRegion
	Expansion   ExpansionRegion
	LineColor   string
	LineWidth   float64
	Retina      bool
	Marker      *MarkerOptions
}

// TileSize returns the tile edge for the request's resolution mode.
func (r RenderRequest) TileSize() int {
	if r.Retina {
		return TileSizeRetina
	}
	return TileSizeStandard
}

// BoundsStages keeps every boundary derivation for diagnostics.
// Bound3 is the final target.
type BoundsStages struct {
	Bound0 GeoBounds `json:"bound0"`
	Bound1 GeoBounds `json:"bound1"`
	Bound2 GeoBounds `json:"bound2"`
	Bound3 GeoBounds `json:"bound3"`
}

// Final returns the bounds the rest of the pipeline works against.
func (s BoundsStages) Final() GeoBounds { return s.Bound3 }

// TileGrid is the rectangular tile set covering TargetBounds at Zoom.
// TileBounds is the grid's own extent and always contains TargetBounds.
type TileGrid struct {
	Tiles        []TileCoord `json:"tiles"`
	TargetBounds GeoBounds   `json:"target_bounds"`
	TileBounds   GeoBounds   `json:"tile_bounds"`
	Zoom         int         `json:"zoom"`
	MinX         int         `json:"min_x"`
	MinY         int         `json:"min_y"`
	Cols         int         `json:"cols"`
	Rows         int         `json:"rows"`
}

// TileImage is one fetched tile. Placeholder is set when the fetch
// failed and the compositor must substitute a uniform fill.
type TileImage struct {
	Coord       TileCoord
	Bytes       []byte
	Bounds      GeoBounds
	Placeholder bool
}

// StitchResult is the cropped composite. Bounds equals the grid's
// TargetBounds; PixelBounds is the crop inside the full canvas.
type StitchResult struct {
	Raster      *image.RGBA
	Bounds      GeoBounds
	PixelBounds PixelBounds
	FullWidth   int
	FullHeight  int
	Zoom        int
}

// ProjectionResult is the cropped raster with the trajectory drawn.
type ProjectionResult struct {
	Raster      *image.RGBA
	Points      []GeoPoint
	Bounds      GeoBounds
	PixelBounds PixelBounds
	PixelPoints []PixelPoint
	Offscreen   int
}

// RenderPlan is everything computed before any tile is fetched.
type RenderPlan struct {
	Stages   BoundsStages `json:"stages"`
	Zoom     int          `json:"zoom"`
	Grid     TileGrid     `json:"grid"`
	TileSize int          `json:"tile_size"`
}

// RenderResult is the final artifact of one render call.
type RenderResult struct {
	Image        []byte       `json:"-"`
	Points       []PixelPoint `json:"points"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Zoom         int          `json:"zoom"`
	Stages       BoundsStages `json:"stages"`
	TileCount    int          `json:"tile_count"`
	Placeholders int          `json:"placeholders"`
}
