package ui

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/core/events"
	"github.com/kisaanconnect/marketplace/internal/core/service"
	"github.com/kisaanconnect/marketplace/internal/core/session"
	"github.com/kisaanconnect/marketplace/internal/infrastructure/storage"
)

func newSessions() (*service.SessionService, *events.Bus) {
	bus := events.NewBus(zerolog.Nop())
	store := session.NewStore(storage.NewMemoryStore(), zerolog.Nop())
	return service.NewSessionService(store, bus, zerolog.Nop()), bus
}

func TestNavBar_FollowsSession(t *testing.T) {
	ctx := context.Background()
	sessions, bus := newSessions()
	nav := NewNavBar(sessions)

	var renders []NavView
	nav.OnChange(func(v NavView) { renders = append(renders, v) })
	nav.Mount(ctx)
	nav.Mount(ctx)
	require.Equal(t, 1, bus.Len())

	assert.False(t, nav.View().Authenticated)
	assert.Contains(t, nav.Render(), "[login] [register]")

	require.NoError(t, sessions.Login(ctx, domain.Profile{Username: "ravi", Role: domain.RoleFarmer, ID: 1}, "tok"))
	assert.Equal(t, NavView{Authenticated: true, Username: "ravi"}, nav.View())
	assert.Contains(t, nav.Render(), "Welcome, ravi!")
	assert.Contains(t, nav.Render(), "NGO Support (/ngo)")

	require.NoError(t, sessions.Logout(ctx))
	assert.Equal(t, NavView{}, nav.View())

	assert.Equal(t, []NavView{{}, {Authenticated: true, Username: "ravi"}, {}}, renders)

	nav.Unmount()
	nav.Unmount()
	assert.Equal(t, 0, bus.Len())

	require.NoError(t, sessions.Login(ctx, domain.Profile{Username: "asha", Role: domain.RoleConsumer, ID: 2}, "tok"))
	assert.False(t, nav.View().Authenticated, "unmounted bar must not update")
}

func TestNavBar_TwoRegionsStayInSync(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newSessions()
	a, b := NewNavBar(sessions), NewNavBar(sessions)
	a.Mount(ctx)
	b.Mount(ctx)
	defer a.Unmount()
	defer b.Unmount()

	require.NoError(t, sessions.Login(ctx, domain.Profile{Username: "ravi", Role: domain.RoleFarmer, ID: 1}, "tok"))
	assert.Equal(t, a.View(), b.View())
	assert.True(t, b.View().Authenticated)
}

func TestRouter_Open(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newSessions()
	r := NewRouter(sessions, DefaultRoutes(), zerolog.Nop())

	v, trail, err := r.Open(ctx, "/farmer")
	require.NoError(t, err)
	assert.Equal(t, domain.PathLogin, v.Path)
	assert.Equal(t, []string{"/farmer", "/login"}, trail)

	require.NoError(t, sessions.Login(ctx, domain.Profile{Username: "asha", Role: domain.RoleConsumer, ID: 9}, "tok"))

	v, trail, err = r.Open(ctx, "/farmer")
	require.NoError(t, err)
	assert.Equal(t, domain.PathConsumer, v.Path)
	assert.Equal(t, []string{"/farmer", "/consumer"}, trail)
	assert.Contains(t, v.Body, "Signed in as asha (id 9)")

	v, _, err = r.Open(ctx, "/consumer")
	require.NoError(t, err)
	assert.Equal(t, "Consumer Dashboard", v.Title)
}

func TestRouter_UnknownPathGoesHome(t *testing.T) {
	sessions, _ := newSessions()
	r := NewRouter(sessions, DefaultRoutes(), zerolog.Nop())

	v, trail, err := r.Open(context.Background(), "/nope")
	require.NoError(t, err)
	assert.Equal(t, domain.PathHome, v.Path)
	assert.Equal(t, []string{"/nope", "/"}, trail)

	v, _, err = r.Open(context.Background(), "/adopt-farm/3")
	require.NoError(t, err)
	assert.Equal(t, domain.PathAdoptFarm, v.Path)
}

func TestRouter_RedirectLoop(t *testing.T) {
	sessions, _ := newSessions()
	// A login page that is itself guarded can never render for a guest.
	routes := []Route{{Path: domain.PathLogin, Title: "Login", Required: domain.RoleFarmer, Render: static("")}}
	r := NewRouter(sessions, routes, zerolog.Nop())

	_, _, err := r.Open(context.Background(), domain.PathLogin)
	assert.Error(t, err)
}
