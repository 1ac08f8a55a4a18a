package collaborators

import (
	"context"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, c *models.ProjectCollaborator) error
	Get(ctx context.Context, projectID, userID string) (*models.ProjectCollaborator, error)
	List(ctx context.Context, projectID string) ([]*models.ProjectCollaborator, error)
	Remove(ctx context.Context, projectID, userID string) error
}
