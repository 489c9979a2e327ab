package domain

import (
	"time"
)

// RenderRecord is the persisted summary of a completed render.
type RenderRecord struct {
	ID           string    `json:"id"`
	JobID        string    `json:"job_id,omitempty"`
	Polyline     string    `json:"polyline"`
	PointCount   int       `json:"point_count"`
	LengthMeters float64   `json:"length_meters"`
	TrackWidth   int       `json:"track_width"`
	TrackHeight  int       `json:"track_height"`
	FinalWidth   int       `json:"final_width"`
	FinalHeight  int       `json:"final_height"`
	Zoom         int       `json:"zoom"`
	Retina       bool      `json:"retina"`
	TileCount    int       `json:"tile_count"`
	Placeholders int       `json:"placeholders"`
	Bounds       GeoBounds `json:"bounds"`
	ImageBytes   int       `json:"image_bytes"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// RenderJob is the wire form of a render request, used for queued and
// workflow-driven renders.
type RenderJob struct {
	ID          string          `json:"id"`
	Polyline    string          `json:"polyline"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Expansion   ExpansionRegion `json:"expansion"`
	LineColor   string          `json:"line_color,omitempty"`
	LineWidth   float64         `json:"line_width,omitempty"`
	Retina      bool            `json:"retina"`
	Marker      *MarkerOptions  `json:"marker,omitempty"`
	RequestedAt time.Time       `json:"requested_at"`
}

// Render event types published on the broker.
const (
	RenderEventQueued    = "queued"
	RenderEventCompleted = "completed"
	RenderEventFailed    = "failed"
)

// RenderEvent notifies subscribers about a render's lifecycle.
type RenderEvent struct {
	Type       string    `json:"type"`
	JobID      string    `json:"job_id,omitempty"`
	RenderID   string    `json:"render_id,omitempty"`
	Zoom       int       `json:"zoom,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}
