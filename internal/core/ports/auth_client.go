package ports

import (
	"context"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
)

// Credentials is the login request body.
type Credentials struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role,omitempty"`
}

// Registration is the register request body.
type Registration struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	Name     string      `json:"name,omitempty"`
	Email    string      `json:"email,omitempty"`
}

// LoginResult is the successful login response. Token is filled from
// access_token, falling back to token.
type LoginResult struct {
	Token     string
	TokenType string
	ID        int64
	Username  string
	Role      domain.Role
}

// RegisterResult is the successful register response. Both fields are optional.
type RegisterResult struct {
	Token string
	ID    int64
}

// RemoteAuthClient talks to the auth backend. Failures are either
// *domain.NetworkError or *domain.AuthRejectedError.
type RemoteAuthClient interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Register(ctx context.Context, reg Registration) (*RegisterResult, error)
	Me(ctx context.Context, token string) (*domain.Profile, error)
	Logout(ctx context.Context, token string) error
}
