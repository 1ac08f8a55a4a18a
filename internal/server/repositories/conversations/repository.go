package conversations

import (
	"context"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type Repository interface {
	GetOrCreate(ctx context.Context, conv *models.AIConversation) (*models.AIConversation, error)
	Find(ctx context.Context, ref models.ContextRef, userID string) (*models.AIConversation, error)
	AppendMessage(ctx context.Context, m *models.AIMessage) error
	ListMessages(ctx context.Context, conversationID string) ([]*models.AIMessage, error)
	ClearMessages(ctx context.Context, conversationID string) error
}
