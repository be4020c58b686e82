package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/core/events"
	"github.com/kisaanconnect/marketplace/internal/core/ports"
	"github.com/kisaanconnect/marketplace/internal/core/session"
)

// SessionService is the client-side auth façade: it persists the session
// through the session store and announces every change on the bus. Reads
// are never cached.
type SessionService struct {
	store    *session.Store
	bus      *events.Bus
	announce ports.ChangeAnnouncer
	log      zerolog.Logger
}

// NewSessionService wires a store and a bus together.
func NewSessionService(store *session.Store, bus *events.Bus, log zerolog.Logger) *SessionService {
	return &SessionService{store: store, bus: bus, log: log}
}

// AnnounceWith makes Login and Logout also announce to a.
func (s *SessionService) AnnounceWith(a ports.ChangeAnnouncer) {
	s.announce = a
}

// Login stores the session and notifies subscribers. The token shape is not checked.
func (s *SessionService) Login(ctx context.Context, profile domain.Profile, token string) error {
	if err := s.store.SetSession(ctx, profile, token); err != nil {
		return err
	}
	s.log.Info().Str("username", profile.Username).Str("role", string(profile.Role)).Msg("session started")
	s.changed(ctx)
	return nil
}

// Logout clears the session and notifies subscribers. Logging out twice is fine.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.store.ClearSession(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("session cleared")
	s.changed(ctx)
	return nil
}

func (s *SessionService) changed(ctx context.Context) {
	s.bus.Notify()
	if s.announce != nil {
		s.announce.Announce(ctx)
	}
}

func (s *SessionService) IsAuthenticated(ctx context.Context) bool {
	return s.store.IsAuthenticated(ctx)
}

// CurrentUser returns the stored profile, or nil.
func (s *SessionService) CurrentUser(ctx context.Context) *domain.Profile {
	p, _ := s.store.Profile(ctx)
	return p
}

func (s *SessionService) HasRole(ctx context.Context, role domain.Role) bool {
	return s.store.HasRole(ctx, role)
}

func (s *SessionService) Token(ctx context.Context) (string, bool) {
	return s.store.Token(ctx)
}

// State derives the current auth state from storage.
func (s *SessionService) State(ctx context.Context) domain.AuthState {
	if !s.store.IsAuthenticated(ctx) {
		return domain.AuthState{}
	}
	p, _ := s.store.Profile(ctx)
	return domain.AuthState{Authenticated: true, User: p}
}

// Subscribe registers a listener for session changes.
func (s *SessionService) Subscribe(handler func()) (unsubscribe func()) {
	return s.bus.Subscribe(handler)
}
