package issues

import (
	"context"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, issue *models.Issue) (*models.Issue, error)
	GetByID(ctx context.Context, id string) (*models.Issue, error)
	List(ctx context.Context, filter models.IssueFilter) ([]*models.Issue, error)
	Update(ctx context.Context, id string, patch models.IssuePatch) (*models.Issue, error)
	Delete(ctx context.Context, id string) error
}
