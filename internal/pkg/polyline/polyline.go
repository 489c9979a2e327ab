// Package polyline implements the encoded polyline algorithm format
// (1e-5 precision, latitude before longitude).
package polyline

import (
	"errors"
	"fmt"

	gpolyline "github.com/twpayne/go-polyline"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

var (
	ErrTruncated   = errors.New("polyline: truncated chunk")
	ErrInvalidChar = errors.New("polyline: invalid character")
	ErrOddCount    = errors.New("polyline: odd coordinate count")
	ErrOverflow    = errors.New("polyline: value overflow")
)

var codec = gpolyline.Codec{Dim: 2, Scale: 1e5}

// Decode parses an encoded polyline into points.
func Decode(s string) ([]domain.GeoPoint, error) {
	if s == "" {
		return nil, nil
	}
	coords, _, err := codec.DecodeCoords([]byte(s))
	if err != nil {
		return nil, mapError(s, err)
	}
	points := make([]domain.GeoPoint, len(coords))
	for i, c := range coords {
		points[i] = domain.GeoPoint{Lat: c[0], Lng: c[1]}
	}
	return points, nil
}

// Encode serializes points. Coordinates are rounded to 1e-5 degrees.
func Encode(points []domain.GeoPoint) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(codec.EncodeCoords(nil, coords))
}

// mapError translates decoder errors into this package's sentinels. An
// unterminated sequence on input whose last byte closes a value means
// the final coordinate is missing its longitude.
func mapError(s string, err error) error {
	switch {
	case errors.Is(err, gpolyline.ErrInvalidByte):
		return fmt.Errorf("%w: %v", ErrInvalidChar, err)
	case errors.Is(err, gpolyline.ErrOverflow):
		return fmt.Errorf("%w: %v", ErrOverflow, err)
	case errors.Is(err, gpolyline.ErrUnterminatedSequence), errors.Is(err, gpolyline.ErrEmpty):
		if last := s[len(s)-1]; last >= 63 && last < 95 {
			return fmt.Errorf("%w: %v", ErrOddCount, err)
		}
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return fmt.Errorf("polyline: %w", err)
}
