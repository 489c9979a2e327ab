package domain

import (
	"errors"
	"fmt"
)

// Error classes. Callers test with errors.Is against these.
var (
	ErrInput          = errors.New("invalid input")
	ErrGeometry       = errors.New("invalid geometry")
	ErrCropOutOfRange = errors.New("crop rectangle out of range")
	ErrNotFound       = errors.New("not found")
)

// Specific input and geometry failures.
var (
	ErrEmptyTrajectory    = fmt.Errorf("%w: empty trajectory", ErrInput)
	ErrInvalidTrackRegion = fmt.Errorf("%w: track region must be positive", ErrInput)
	ErrInvalidExpansion   = fmt.Errorf("%w: expansion must be within [0,1]", ErrInput)
	ErrInvalidStyle       = fmt.Errorf("%w: invalid style", ErrInput)
	ErrInvalidBounds      = fmt.Errorf("%w: zero-area bounds", ErrGeometry)
)

// FetchError records one tile that could not be fetched. It is recovered
// locally by placeholder substitution and never fails a render.
type FetchError struct {
	Coord TileCoord
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch tile %d/%d/%d: %v", e.Coord.Z, e.Coord.X, e.Coord.Y, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RenderError is the single fatal outcome of a render call.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
