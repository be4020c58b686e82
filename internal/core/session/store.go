// Package session keeps the client session (token + profile) in a
// persistent key-value store.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/core/ports"
)

// Storage keys. They match the layout the web client always used so a
// session file can be inspected by hand.
const (
	TokenKey   = "auth_token"
	ProfileKey = "user_info"
)

// Store reads and writes the session pair. Token presence alone is the
// authentication signal; a corrupt profile does not log the user out.
type Store struct {
	kv  ports.KeyValueStore
	log zerolog.Logger
}

// NewStore wraps kv.
func NewStore(kv ports.KeyValueStore, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// SetSession writes the token and the serialized profile in one Set call.
func (s *Store) SetSession(ctx context.Context, profile domain.Profile, token string) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.kv.Set(ctx, map[string]string{
		TokenKey:   token,
		ProfileKey: string(raw),
	}); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// ClearSession removes both entries. Missing entries are not an error.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey, ProfileKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the stored token. Storage failures are logged and read as "no token".
func (s *Store) Token(ctx context.Context) (string, bool) {
	token, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		s.log.Error().Err(err).Msg("read session token")
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Profile returns the stored profile. It fails soft: unreadable,
// unparseable or empty entries are logged and reported as absent.
func (s *Store) Profile(ctx context.Context) (*domain.Profile, bool) {
	raw, ok, err := s.kv.Get(ctx, ProfileKey)
	if err != nil {
		s.log.Error().Err(err).Msg("read session profile")
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}

	var p domain.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.log.Warn().
			Err(fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)).
			Str("key", ProfileKey).
			Msg("ignoring stored profile")
		return nil, false
	}
	// "null" and "{}" decode cleanly but carry no identity.
	if p == (domain.Profile{}) {
		s.log.Warn().
			Err(fmt.Errorf("%w: empty profile", domain.ErrStorageCorrupt)).
			Str("key", ProfileKey).
			Msg("ignoring stored profile")
		return nil, false
	}
	return &p, true
}

// IsAuthenticated reports whether a token is stored.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

// HasRole reports whether a profile is stored and its role equals role exactly.
func (s *Store) HasRole(ctx context.Context, role domain.Role) bool {
	p, ok := s.Profile(ctx)
	return ok && p.Role == role
}
