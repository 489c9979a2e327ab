package ports

import (
	"context"

	"github.com/samirrijal/trackmap/internal/core/domain"
)

// RenderRepository persists render records.
type RenderRepository interface {
	Create(ctx context.Context, rec *domain.RenderRecord) error
	GetByID(ctx context.Context, id string) (*domain.RenderRecord, error)
	List(ctx context.Context, limit, offset int) ([]domain.RenderRecord, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}
