package projects

import (
	"context"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Project, error)
	Update(ctx context.Context, id, name, description string) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}
