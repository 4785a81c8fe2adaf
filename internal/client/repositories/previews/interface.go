package previews

import (
	"context"

	"github.com/dmitrijs2005/impify/internal/client/models"
)

// Repository persists file previews across sessions. Get returns
// (nil, nil) when no preview is cached for fileID.
type Repository interface {
	Get(ctx context.Context, fileID string) (*models.Preview, error)
	Put(ctx context.Context, p *models.Preview) error
	Delete(ctx context.Context, fileID string) error
}
