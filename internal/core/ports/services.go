package ports

import (
	"context"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

// TileFetcher retrieves a single map tile image. Implementations own
// timeouts and caching; every call must eventually return.
type TileFetcher interface {
	FetchTile(ctx context.Context, coord domain.TileCoord, retina bool) ([]byte, error)
}

// EventPublisher publishes render jobs and lifecycle events to a message broker.
type EventPublisher interface {
	PublishRenderJob(ctx context.Context, job *domain.RenderJob) error
	PublishRenderEvent(ctx context.Context, event *domain.RenderEvent) error
}

// EventSubscriber subscribes to render jobs and events from a message broker.
type EventSubscriber interface {
	SubscribeRenderJobs(ctx context.Context, handler func(ctx context.Context, job *domain.RenderJob) error) error
	SubscribeRenderEvents(ctx context.Context, handler func(ctx context.Context, event *domain.RenderEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
