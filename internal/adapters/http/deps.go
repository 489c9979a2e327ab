package http

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/trackmap/internal/core/usecases"
)

// Pinger is a dependency that can report its own connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Renders *usecases.RenderService
	NATS    *nats.Conn
	DB      Pinger
	Cache   Pinger

	// RenderTimeout bounds one render request; zero means 30s.
	RenderTimeout time.Duration
	Version       string
}

func (d *Dependencies) renderTimeout() time.Duration {
	if d.RenderTimeout > 0 {
		return d.RenderTimeout
	}
	return 30 * time.Second
}

func (d *Dependencies) version() string {
	if d.Version != "" {
		return d.Version
	}
	return "dev"
}
