package polyline_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/polyline"
)

// Reference string from the format's published example.
const sample = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

var samplePoints = []domain.GeoPoint{
	{Lat: 38.5, Lng: -120.2},
	{Lat: 40.7, Lng: -120.95},
	{Lat: 43.252, Lng: -126.453},
}

func TestDecode_Sample(t *testing.T) {
	got, err := polyline.Decode(sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(samplePoints) {
		t.Fatalf("expected %d points, got %d", len(samplePoints), len(got))
	}
	for i := range got {
		if math.Abs(got[i].Lat-samplePoints[i].Lat) > 1e-9 || math.Abs(got[i].Lng-samplePoints[i].Lng) > 1e-9 {
			t.Errorf("point %d: got %+v, want %+v", i, got[i], samplePoints[i])
		}
	}
}

func TestEncode_Sample(t *testing.T) {
	if got := polyline.Encode(samplePoints); got != sample {
		t.Errorf("got %q, want %q", got, sample)
	}
}

func TestRoundTrip(t *testing.T) {
	pts := []domain.GeoPoint{
		{Lat: 43.26271, Lng: -2.93528},
		{Lat: 43.26271, Lng: -2.93528},
		{Lat: -33.868823, Lng: 151.209296},
		{Lat: 0, Lng: 0},
		{Lat: 85.05112, Lng: 179.99999},
		{Lat: -85.05112, Lng: -180},
	}
	got, err := polyline.Decode(polyline.Encode(pts))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(pts) {
		t.Fatalf("expected %d points, got %d", len(pts), len(got))
	}
	for i := range pts {
		if math.Abs(got[i].Lat-pts[i].Lat) > 1e-5 || math.Abs(got[i].Lng-pts[i].Lng) > 1e-5 {
			t.Errorf("point %d: got %+v, want %+v", i, got[i], pts[i])
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	got, err := polyline.Decode("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no points, got %d", len(got))
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"truncated chunk", "_p~iF~ps|", polyline.ErrTruncated},
		{"odd count", "_p~iF", polyline.ErrOddCount},
		{"char below range", "_p~iF~ps|U ", polyline.ErrInvalidChar},
		{"char above range", "_p~iF\x7f", polyline.ErrInvalidChar},
		{"value too long", strings.Repeat("~", 16) + "???", polyline.ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := polyline.Decode(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
