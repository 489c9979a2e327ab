package natsadapter_test

import (
	"strings"
	"testing"

	natsadapter "github.com/samirrijal/trackmap/internal/adapters/nats"
	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/core/ports"
)

func TestEventSubject(t *testing.T) {
	tests := []struct {
		eventType string
		want      string
	}{
		{domain.RenderEventQueued, "trackmap.events.queued"},
		{domain.RenderEventCompleted, "trackmap.events.completed"},
		{domain.RenderEventFailed, "trackmap.events.failed"},
		{"", "trackmap.events.unknown"},
	}
	for _, tt := range tests {
		if got := natsadapter.EventSubject(tt.eventType); got != tt.want {
			t.Errorf("EventSubject(%q) = %q, want %q", tt.eventType, got, tt.want)
		}
	}
}

func TestJobSubjectOutsideEventWildcard(t *testing.T) {
	// Streams may not share subjects.
	if strings.HasPrefix(natsadapter.JobsSubject, "trackmap.events.") {
		t.Fatalf("jobs subject %q overlaps the event subjects", natsadapter.JobsSubject)
	}
}

var (
	_ ports.EventPublisher  = (*natsadapter.Publisher)(nil)
	_ ports.EventSubscriber = (*natsadapter.Subscriber)(nil)
)
