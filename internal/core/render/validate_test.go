package render_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/render"
)

func TestValidate_ExpansionReportsFirstBadField(t *testing.T) {
	req := domain.RenderRequest{
		Points:      []domain.GeoPoint{{Lat: 43.26, Lng: -2.93}, {Lat: 43.27, Lng: -2.94}},
		TrackRegion: domain.TrackRegion{Width: 100, Height: 100},
		Expansion:   domain.ExpansionRegion{Up: 0.1, Down: 2, Left: -1, Right: 3},
	}
	// Repeat so an unordered check would surface another field.
	for i := 0; i < 50; i++ {
		err := render.Validate(req, 0)
		if !errors.Is(err, domain.ErrInvalidExpansion) {
			t.Fatalf("expected ErrInvalidExpansion, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "down=") {
			t.Fatalf("expected the down field to be reported, got %q", err)
		}
	}
}

func TestValidate_MaxDimension(t *testing.T) {
	req := domain.RenderRequest{
		Points:      []domain.GeoPoint{{Lat: 43.26, Lng: -2.93}},
		TrackRegion: domain.TrackRegion{Width: 1000, Height: 500},
		Expansion:   domain.ExpansionRegion{Left: 0.5},
	}
	if err := render.Validate(req, 1500); err != nil {
		t.Fatalf("unexpected error at the limit: %v", err)
	}
	req.Expansion.Right = 0.1
	if err := render.Validate(req, 1500); !errors.Is(err, domain.ErrInvalidTrackRegion) {
		t.Errorf("expected ErrInvalidTrackRegion, got %v", err)
	}
}
