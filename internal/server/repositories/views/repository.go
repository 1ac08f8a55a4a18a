package views

import (
	"context"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, v *models.View) (*models.View, error)
	GetByID(ctx context.Context, id string) (*models.View, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.View, error)
	Delete(ctx context.Context, id string) error
}
