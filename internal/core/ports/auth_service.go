package ports

import (
	"context"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
)

// RegisterInput carries a new account's details.
type RegisterInput struct {
	Username string
	Password string
	Role     domain.Role
	Name     string
	Email    string
}

// IssuedToken is returned by register and login.
type IssuedToken struct {
	AccessToken string
	TokenType   string
	User        *domain.User
}

// AuthService is the backend account and token service.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*IssuedToken, error)
	// Login authenticates username/password. A non-empty role must match the stored role.
	Login(ctx context.Context, username, password string, role domain.Role) (*IssuedToken, error)
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}
