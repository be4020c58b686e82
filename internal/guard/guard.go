// Package guard decides whether a role-restricted view may render.
package guard

import (
	"context"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
)

// Decision is the outcome of a guard check: either render the protected
// view, or redirect to Redirect.
type Decision struct {
	Allow    bool
	Redirect string
}

// Decide is a pure function of the current auth state.
//
//	not authenticated                    → /login
//	wrong role, actual farmer            → /farmer
//	wrong role, actual consumer          → /consumer
//	wrong role, role unknown or missing  → /unauthorized
//	right role                           → allow
func Decide(state domain.AuthState, required domain.Role) Decision {
	if !state.Authenticated {
		return Decision{Redirect: domain.PathLogin}
	}

	// A missing profile never satisfies a role, not even the empty one.
	if state.User != nil && state.User.Role == required {
		return Decision{Allow: true}
	}

	actual := state.Role()

	if path := domain.DashboardPath(actual); path != "" {
		return Decision{Redirect: path}
	}
	return Decision{Redirect: domain.PathUnauthorized}
}

// StateReader is the session view a Guard needs.
type StateReader interface {
	State(ctx context.Context) domain.AuthState
}

// Guard evaluates Decide against the live session. It has no side effects
// and makes no network calls.
type Guard struct {
	sessions StateReader
}

// New returns a Guard reading from sessions.
func New(sessions StateReader) *Guard {
	return &Guard{sessions: sessions}
}

// Evaluate reads the current state and decides.
func (g *Guard) Evaluate(ctx context.Context, required domain.Role) Decision {
	return Decide(g.sessions.State(ctx), required)
}
