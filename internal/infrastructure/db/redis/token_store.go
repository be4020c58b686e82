package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore records issued token ids so logout can revoke them before
// they expire. Key format: token:<jti>, value: username, TTL: token lifetime.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Activate marks tokenID as live for ttl.
func (s *TokenStore) Activate(ctx context.Context, tokenID, username string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(tokenID), username, ttl).Err(); err != nil {
		return fmt.Errorf("activate token: %w", err)
	}
	return nil
}

// IsActive reports whether tokenID was issued and not yet revoked or expired.
func (s *TokenStore) IsActive(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("token check: %w", err)
	}
	return n > 0, nil
}

// Revoke forgets tokenID. Unknown ids are ignored.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string) error {
	if err := s.client.Del(ctx, s.key(tokenID)).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) key(tokenID string) string {
	return "token:" + tokenID
}
