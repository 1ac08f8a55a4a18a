package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/rbac"
	"github.com/dmitrijs2005/slothapp/internal/server/completion"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/repomanager"
)

// APIKeyProvider yields a user's decrypted completion key.
type APIKeyProvider interface {
	GetDecryptedAPIKey(ctx context.Context, userID string) (string, bool)
}

// ClientSource hands out a completion client for a project and key.
type ClientSource interface {
	Get(projectID, apiKey string) completion.Client
}

// ChatResult is the conversation a reply was stored in, and the reply.
type ChatResult struct {
	ConversationID string
	Reply          *models.AIMessage
}

// AIService keeps one assistant conversation per context and user, and
// answers prompts with the user's own completion API key.
type AIService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	access       Authorizer
	keys         APIKeyProvider
	clients      ClientSource
	defaultModel string
	log          logging.Logger
}

// NewAIService constructs an AIService. defaultModel is used when a request names none.
func NewAIService(db *sql.DB, m repomanager.RepositoryManager, access Authorizer, keys APIKeyProvider,
	clients ClientSource, defaultModel string, log logging.Logger) *AIService {
	return &AIService{
		db:           db,
		repomanager:  m,
		access:       access,
		keys:         keys,
		clients:      clients,
		defaultModel: defaultModel,
		log:          log.With("module", "ai"),
	}
}

func systemPrompt(ref models.ContextRef) string {
	return fmt.Sprintf("You are a project management assistant. The user is working on %s %s.", ref.Type, ref.ID)
}

// Chat sends content, preceded by the stored transcript, to the completion API
// using the caller's own key. Both turns are persisted only after a reply
// arrives.
func (s *AIService) Chat(ctx context.Context, userID string, ref models.ContextRef, content, model string) (*ChatResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.Invalid("Message cannot be empty")
	}
	if model == "" {
		model = s.defaultModel
	}

	projectID, err := s.access.AuthorizeContext(ctx, ref, userID, rbac.ActionRead)
	if err != nil {
		return nil, err
	}

	apiKey, ok := s.keys.GetDecryptedAPIKey(ctx, userID)
	if !ok {
		return nil, common.ErrAPIKeyMissing
	}

	convs := s.repomanager.Conversations(s.db)
	conv, err := convs.GetOrCreate(ctx, &models.AIConversation{ID: newID(), Context: ref, UserID: userID})
	if err != nil {
		return nil, unknown(ctx, s.log, "open conversation", err)
	}
	history, err := convs.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, unknown(ctx, s.log, "load transcript", err)
	}

	msgs := make([]completion.Message, 0, len(history)+2)
	msgs = append(msgs, completion.Message{Role: string(models.MessageSystem), Content: systemPrompt(ref)})
	for _, m := range history {
		if m.Role == models.MessageSystem {
			continue
		}
		msgs = append(msgs, completion.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, completion.Message{Role: string(models.MessageUser), Content: content})

	resp, err := s.clients.Get(projectID, apiKey).Complete(ctx, completion.Request{Model: model, Messages: msgs})
	if err != nil {
		return nil, unknown(ctx, s.log, "completion", err)
	}

	userMsg := &models.AIMessage{ID: newID(), ConversationID: conv.ID, Role: models.MessageUser, Content: content}
	if err := convs.AppendMessage(ctx, userMsg); err != nil {
		return nil, unknown(ctx, s.log, "save prompt", err)
	}
	reply := &models.AIMessage{ID: newID(), ConversationID: conv.ID, Role: models.MessageAssistant, Content: resp.Content}
	if err := convs.AppendMessage(ctx, reply); err != nil {
		return nil, unknown(ctx, s.log, "save reply", err)
	}

	return &ChatResult{ConversationID: conv.ID, Reply: reply}, nil
}

// GetConversation returns the caller's transcript for ref, oldest first.
// A context without a conversation yields an empty transcript.
func (s *AIService) GetConversation(ctx context.Context, userID string, ref models.ContextRef) ([]*models.AIMessage, error) {
	if _, err := s.access.AuthorizeContext(ctx, ref, userID, rbac.ActionRead); err != nil {
		return nil, err
	}
	convs := s.repomanager.Conversations(s.db)
	conv, err := convs.Find(ctx, ref, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return []*models.AIMessage{}, nil
		}
		return nil, unknown(ctx, s.log, "find conversation", err)
	}
	list, err := convs.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, unknown(ctx, s.log, "load transcript", err)
	}
	return list, nil
}

// ClearConversation deletes the caller's transcript for ref.
func (s *AIService) ClearConversation(ctx context.Context, userID string, ref models.ContextRef) error {
	if _, err := s.access.AuthorizeContext(ctx, ref, userID, rbac.ActionRead); err != nil {
		return err
	}
	convs := s.repomanager.Conversations(s.db)
	conv, err := convs.Find(ctx, ref, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return unknown(ctx, s.log, "find conversation", err)
	}
	if err := convs.ClearMessages(ctx, conv.ID); err != nil {
		return unknown(ctx, s.log, "clear transcript", err)
	}
	return nil
}
