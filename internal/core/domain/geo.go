package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeoBounds represents a geographic bounding box. No antimeridian wrap.
type GeoBounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// LatRange returns the latitude span in degrees.
func (b GeoBounds) LatRange() float64 { return b.MaxLat - b.MinLat }

// LngRange returns the longitude span in degrees.
func (b GeoBounds) LngRange() float64 { return b.MaxLng - b.MinLng }

// HasArea reports whether the box is non-degenerate on both axes.
func (b GeoBounds) HasArea() bool {
	return b.MaxLat > b.MinLat && b.MaxLng > b.MinLng
}

// Contains reports whether p lies inside b (edges included).
func (b GeoBounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// ContainsBounds reports whether o lies entirely inside b.
func (b GeoBounds) ContainsBounds(o GeoBounds) bool {
	return o.MinLat >= b.MinLat && o.MaxLat <= b.MaxLat &&
		o.MinLng >= b.MinLng && o.MaxLng <= b.MaxLng
}

// Center returns the midpoint in degree space.
func (b GeoBounds) Center() GeoPoint {
	return GeoPoint{Lat: (b.MinLat + b.MaxLat) / 2, Lng: (b.MinLng + b.MaxLng) / 2}
}

// TrackRegion is the caller's requested drawing area in pixels.
type TrackRegion struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Aspect returns Width/Height.
func (r TrackRegion) Aspect() float64 {
	return float64(r.Width) / float64(r.Height)
}

// ExpansionRegion grows the final bounds per direction, as a fraction
// of the corresponding range. All four directions may be combined.
type ExpansionRegion struct {
	Up    float64 `json:"up,omitempty"`
	Down  float64 `json:"down,omitempty"`
	Left  float64 `json:"left,omitempty"`
	Right float64 `json:"right,omitempty"`
}

// TileCoord addresses one tile of the pyramid.
type TileCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// PixelBounds is a rectangle in one specific raster frame.
type PixelBounds struct {
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// Width returns MaxX-MinX.
func (p PixelBounds) Width() int { return p.MaxX - p.MinX }

// Height returns MaxY-MinY.
func (p PixelBounds) Height() int { return p.MaxY - p.MinY }

// PixelPoint is a position in raster space. Fractional values are kept
// so later rescaling does not accumulate rounding.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
