// Package session holds sign-in state: auth sessions keyed by id, and the
// single-use nonces handed out for wallet signatures.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Save(ctx context.Context, s *models.AuthSession) error
	Get(ctx context.Context, id string) (*models.AuthSession, error)
	Delete(ctx context.Context, id string) error
}

// NonceStore records issued nonces until they are consumed or expire.
type NonceStore interface {
	Put(ctx context.Context, nonce string, ttl time.Duration) error
	// Consume removes nonce and reports whether it was present and unexpired.
	Consume(ctx context.Context, nonce string) (bool, error)
}
