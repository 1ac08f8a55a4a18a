package comments

import (
	"context"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	ListByIssue(ctx context.Context, issueID string) ([]*models.Comment, error)
}
