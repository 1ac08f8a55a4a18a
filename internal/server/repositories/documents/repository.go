package documents

import (
	"context"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, d *models.Document) (*models.Document, error)
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByContext(ctx context.Context, ref models.ContextRef) ([]*models.Document, error)
	Delete(ctx context.Context, id string) error
}
