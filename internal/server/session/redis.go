package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store and NonceStore on Redis. Session keys expire
// with the session; nonces are removed atomically with GETDEL.
type RedisStore struct {
	client        *redis.Client
	sessionPrefix string
	noncePrefix   string
}

func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:        client,
		sessionPrefix: "session:",
		noncePrefix:   "nonce:",
	}
}

func (s *RedisStore) Save(ctx context.Context, sess *models.AuthSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// an already-expired session is still stored briefly so the caller's
	// next lookup sees it and clears it
	ttl := time.Until(sess.ExpiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}

	if err := s.client.Set(ctx, s.sessionPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.AuthSession, error) {
	data, err := s.client.Get(ctx, s.sessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess models.AuthSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) Put(ctx context.Context, nonce string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.noncePrefix+nonce, 1, ttl).Err(); err != nil {
		return fmt.Errorf("save nonce: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, nonce string) (bool, error) {
	err := s.client.GetDel(ctx, s.noncePrefix+nonce).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume nonce: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
