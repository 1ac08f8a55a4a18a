package links

import (
	"context"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, l *models.Link) (*models.Link, error)
	GetByID(ctx context.Context, id string) (*models.Link, error)
	ListByContext(ctx context.Context, ref models.ContextRef) ([]*models.Link, error)
	Delete(ctx context.Context, id string) error
}
