package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisaanconnect/marketplace/internal/api"
	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/core/service"
	"github.com/kisaanconnect/marketplace/internal/infrastructure/config"
)

type memUsers struct {
	mu     sync.Mutex
	byName map[string]*domain.User
	next   int64
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[user.Username]; ok {
		return nil, domain.ErrUserExists
	}
	m.next++
	stored := *user
	stored.ID = m.next
	m.byName[stored.Username] = &stored
	clone := stored
	return &clone, nil
}

type memTokens struct {
	mu     sync.Mutex
	active map[string]bool
}

func (m *memTokens) Activate(_ context.Context, id, _ string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[id] = true
	return nil
}

func (m *memTokens) IsActive(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[id], nil
}

func (m *memTokens) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, id)
	return nil
}

// syncBuffer is written by the watch goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	auth *service.AuthService
	dir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth := service.NewAuthService(
		&memUsers{byName: map[string]*domain.User{}},
		&memTokens{active: map[string]bool{}},
		"test-secret", time.Hour,
	)
	srv := httptest.NewServer(api.NewRouter(api.Deps{Auth: auth, Log: zerolog.Nop()}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("KISAAN_API_URL", srv.URL+"/auth")
	t.Setenv("KISAAN_STORAGE", "file")
	t.Setenv("KISAAN_SESSION_FILE", filepath.Join(dir, "session.json"))
	t.Setenv("KISAAN_WATCH", "true")
	t.Setenv("LOG_LEVEL", "off")
	return &fixture{auth: auth, dir: dir}
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, c := newCLI()
	defer c.close()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(bytes.NewReader(nil))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_RegisterLoginLogout(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")

	out, err = f.run(t, "register", "-u", "ravi", "-p", "password1", "--confirm", "password1", "-r", "farmer")
	require.NoError(t, err)
	assert.Contains(t, out, "== Farmer Dashboard ==")
	assert.Contains(t, out, "Signed in as ravi (id 1)")

	out, err = f.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ravi (farmer, id 1)")

	out, err = f.run(t, "open", "/consumer")
	require.NoError(t, err)
	assert.Contains(t, out, "/consumer → /farmer")

	out, err = f.run(t, "nav")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, ravi!")

	out, err = f.run(t, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Session is valid.")

	out, err = f.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	out, err = f.run(t, "open", "/farmer")
	require.NoError(t, err)
	assert.Contains(t, out, "/farmer → /login")

	_, err = f.run(t, "login", "-u", "ravi", "-p", "wrong-pass", "-r", "farmer")
	require.Error(t, err)
	assert.Equal(t, "Incorrect username or password", err.Error())

	_, err = f.run(t, "login", "-u", "ravi", "-p", "password1", "-r", "consumer")
	require.Error(t, err)
	assert.Equal(t, "Incorrect username or password", err.Error())

	out, err = f.run(t, "login", "-u", "ravi", "-p", "password1", "-r", "farmer")
	require.NoError(t, err)
	assert.Contains(t, out, "== Farmer Dashboard ==")
}

func TestCLI_FormValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "register", "-u", "ravi", "-p", "password1", "--confirm", "password2", "-r", "farmer")
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match", err.Error())

	_, err = f.run(t, "login", "-u", "ravi", "-p", "x")
	require.Error(t, err)
	assert.Equal(t, "All fields are required", err.Error())
}

func TestCLI_VerifyLogsOutRevokedToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "register", "-u", "asha", "-p", "password1", "--confirm", "password1", "-r", "consumer")
	require.NoError(t, err)

	// Revoke server-side, as another device logging out would.
	a := openApp(t)
	token, ok := a.sessions.Token(context.Background())
	require.True(t, ok)
	require.NoError(t, f.auth.Logout(context.Background(), token))
	a.Close()

	out, err := f.run(t, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Your session has expired")

	out, err = f.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestWatch_FollowsOtherProcess(t *testing.T) {
	newFixture(t)
	watcher := openApp(t)
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, watcher, &out) }()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("[login] [register]"))
	}, 2*time.Second, 20*time.Millisecond)

	other := openApp(t)
	defer other.Close()
	profile := domain.Profile{Username: "meena", Role: domain.RoleFarmer, ID: 3}

	// The watcher may still be starting; keep writing until it notices.
	require.Eventually(t, func() bool {
		require.NoError(t, other.sessions.Login(context.Background(), profile, "tok"))
		return bytes.Contains([]byte(out.String()), []byte("Welcome, meena!"))
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestFollow_MemoryStorageHasNothingToFollow(t *testing.T) {
	newFixture(t)
	t.Setenv("KISAAN_STORAGE", "memory")
	a := openApp(t)
	defer a.Close()

	assert.Error(t, a.Follow(context.Background()))
}

func openApp(t *testing.T) *app {
	t.Helper()
	cfg, err := config.LoadClient(context.Background())
	require.NoError(t, err)
	a, err := newApp(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	return a
}
