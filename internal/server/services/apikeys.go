package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/repomanager"
)

// Cipher seals secrets at rest. *cryptox.SecretBox satisfies it.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

// APIKeyStatus reports whether a key is stored, never the key itself.
type APIKeyStatus struct {
	HasAPIKey bool `json:"hasApiKey"`
}

// APIKeyService stores each user's third-party completion key encrypted.
// The plaintext never leaves this service except through GetDecryptedAPIKey.
type APIKeyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      Cipher
	log         logging.Logger
}

// NewAPIKeyService constructs an APIKeyService that seals keys with cipher.
func NewAPIKeyService(db *sql.DB, m repomanager.RepositoryManager, cipher Cipher, log logging.Logger) *APIKeyService {
	return &APIKeyService{db: db, repomanager: m, cipher: cipher, log: log.With("module", "apikeys")}
}

// SaveUserAPIKey encrypts and stores apiKey for userID, replacing any previous
// key. Keys shorter than common.MinAPIKeyLength after trimming are rejected.
func (s *APIKeyService) SaveUserAPIKey(ctx context.Context, userID, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if len(apiKey) < common.MinAPIKeyLength {
		return common.ErrInvalidAPIKey
	}

	token, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return unknown(ctx, s.log, "encrypt api key", err)
	}

	if err := s.repomanager.Users(s.db).SetEncryptedAPIKey(ctx, userID, &token); err != nil {
		return notFoundOr(ctx, s.log, "save api key", err, common.ErrUserNotFound)
	}
	return nil
}

// GetUserAPIKeyStatus never fails; lookup problems read as "no key".
func (s *APIKeyService) GetUserAPIKeyStatus(ctx context.Context, userID string) APIKeyStatus {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "api key status lookup failed", "user_id", userID, "error", err)
		return APIKeyStatus{}
	}
	return APIKeyStatus{HasAPIKey: user.HasAPIKey()}
}

// GetDecryptedAPIKey returns the plaintext key, or false when it is absent
// or cannot be decrypted.
func (s *APIKeyService) GetDecryptedAPIKey(ctx context.Context, userID string) (string, bool) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "api key lookup failed", "user_id", userID, "error", err)
		}
		return "", false
	}
	if !user.HasAPIKey() {
		return "", false
	}

	key, err := s.cipher.Decrypt(*user.EncryptedAPIKey)
	if err != nil {
		s.log.Warn(ctx, "api key decrypt failed", "user_id", userID, "error", err)
		return "", false
	}
	return key, true
}

// RemoveUserAPIKey clears the stored key.
func (s *APIKeyService) RemoveUserAPIKey(ctx context.Context, userID string) error {
	if err := s.repomanager.Users(s.db).SetEncryptedAPIKey(ctx, userID, nil); err != nil {
		return notFoundOr(ctx, s.log, "remove api key", err, common.ErrUserNotFound)
	}
	return nil
}
