// Package sessions keeps authentication sessions in Redis. A session is an
// opaque token mapped to a user id under "auth_<token>" with a fixed TTL;
// reads never extend it.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStore returns a Store over client. A non-positive ttl falls back to
// common.SessionTTL.
func NewStore(client redis.UniversalClient, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = common.SessionTTL
	}
	return &Store{client: client, ttl: ttl}
}

func key(token string) string {
	return common.SessionKeyPrefix + token
}

// Create opens a session for userID and returns its token.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, key(token), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	return token, nil
}

// Resolve returns the user id bound to token, or common.ErrorNotFound when
// the session is unknown or expired.
func (s *Store) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorNotFound
	}
	userID, err := s.client.Get(ctx, key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("session resolve: %w", err)
	}
	return userID, nil
}

// Destroy removes the session. Removing an absent session is not an error.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
