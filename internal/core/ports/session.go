package ports

import (
	"context"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
)

// SessionReader is the read side of the session, used by the route guard
// and UI regions.
type SessionReader interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *domain.Profile
	HasRole(ctx context.Context, role domain.Role) bool
}

// SessionManager owns the client session and broadcasts its changes.
type SessionManager interface {
	SessionReader
	Login(ctx context.Context, profile domain.Profile, token string) error
	Logout(ctx context.Context) error
	Token(ctx context.Context) (string, bool)
	State(ctx context.Context) domain.AuthState
	Subscribe(handler func()) (unsubscribe func())
}

// ChangeAnnouncer tells other processes that this one changed the session.
// It is called only for local writes, never for replayed changes.
type ChangeAnnouncer interface {
	Announce(ctx context.Context)
}
