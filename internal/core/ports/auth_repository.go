package ports

import (
	"context"
	"time"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// TokenStore tracks issued token ids so they can be revoked before they expire.
type TokenStore interface {
	Activate(ctx context.Context, tokenID, username string, ttl time.Duration) error
	IsActive(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
}
