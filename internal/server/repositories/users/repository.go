package users

import (
	"context"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetEncryptedAPIKey(ctx context.Context, id string, token *string) error
}
