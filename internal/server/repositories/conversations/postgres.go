// Package conversations stores AI assistant transcripts, one conversation per
// (context, user).
package conversations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/dbx"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate inserts conv unless a conversation already exists for its
// (context, user), and returns the stored row either way.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, conv *models.AIConversation) (*models.AIConversation, error) {
	query :=
		`INSERT INTO ai_conversations (id, context_type, context_id, user_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (context_type, context_id, user_id)
		 DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id, created_at`

	out := &models.AIConversation{Context: conv.Context, UserID: conv.UserID}
	err := r.db.QueryRowContext(ctx, query, conv.ID, string(conv.Context.Type), conv.Context.ID, conv.UserID).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Find(ctx context.Context, ref models.ContextRef, userID string) (*models.AIConversation, error) {
	query :=
		`SELECT id, created_at FROM ai_conversations
		 WHERE context_type = $1 AND context_id = $2 AND user_id = $3`

	out := &models.AIConversation{Context: ref, UserID: userID}
	err := r.db.QueryRowContext(ctx, query, string(ref.Type), ref.ID, userID).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) AppendMessage(ctx context.Context, m *models.AIMessage) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ai_messages (id, conversation_id, role, content) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		m.ID, m.ConversationID, string(m.Role), m.Content).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, conversationID string) ([]*models.AIMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at FROM ai_messages
		 WHERE conversation_id = $1
		 ORDER BY created_at, id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AIMessage
	for rows.Next() {
		m := &models.AIMessage{}
		var role string
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = models.MessageRole(role)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ClearMessages(ctx context.Context, conversationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ai_messages WHERE conversation_id = $1`, conversationID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
