package invitations

import (
	"context"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, inv *models.Invitation) (*models.Invitation, error)
	GetByID(ctx context.Context, id string) (*models.Invitation, error)
	GetWithProject(ctx context.Context, id string) (*models.InvitationWithProject, error)
	FindPending(ctx context.Context, projectID, email string) (*models.Invitation, error)
	ListPendingByEmail(ctx context.Context, email string) ([]*models.Invitation, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Invitation, error)
	MarkExpired(ctx context.Context, id string) error
	MarkAccepted(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
