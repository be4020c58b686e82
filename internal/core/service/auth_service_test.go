package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.Username] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

type stubTokenStore struct {
	active map[string]string
	ttl    time.Duration
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{active: make(map[string]string)}
}

func (s *stubTokenStore) Activate(_ context.Context, id, username string, ttl time.Duration) error {
	s.active[id] = username
	s.ttl = ttl
	return nil
}

func (s *stubTokenStore) IsActive(_ context.Context, id string) (bool, error) {
	_, ok := s.active[id]
	return ok, nil
}

func (s *stubTokenStore) Revoke(_ context.Context, id string) error {
	delete(s.active, id)
	return nil
}

func newTestAuthService() (*AuthService, *stubUserRepo, *stubTokenStore) {
	repo := newStubUserRepo()
	tokens := newStubTokenStore()
	return NewAuthService(repo, tokens, "secret", time.Hour), repo, tokens
}

func register(t *testing.T, svc *AuthService, username, password string, role domain.Role) *ports.IssuedToken {
	t.Helper()
	issued, err := svc.Register(context.Background(), ports.RegisterInput{Username: username, Password: password, Role: role})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return issued
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, tokens := newTestAuthService()

	issued := register(t, svc, "alice", "pass1234", domain.RoleFarmer)
	if issued.AccessToken == "" || issued.TokenType != "bearer" {
		t.Fatalf("unexpected token: %+v", issued)
	}
	if issued.User.ID != 1 {
		t.Fatalf("expected id 1, got %d", issued.User.ID)
	}

	stored := repo.users["alice"]
	if stored.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(tokens.active) != 1 || tokens.ttl != time.Hour {
		t.Fatalf("expected one active token with the service TTL, got %v / %v", tokens.active, tokens.ttl)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Password: "pass1234", Role: domain.RoleFarmer}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "bob", Password: "pass1234", Role: "admin"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad role, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newTestAuthService()

	register(t, svc, "bob", "pass1234", domain.RoleConsumer)
	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "other123", Role: domain.RoleConsumer})
	if err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, _ := newTestAuthService()
	register(t, svc, "carol", "s3cretpw", domain.RoleConsumer)

	issued, err := svc.Login(context.Background(), "carol", "s3cretpw", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(issued.AccessToken, claims, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != "carol" || claims.Role != domain.RoleConsumer || claims.UID != 1 || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_Rejections(t *testing.T) {
	svc, _, _ := newTestAuthService()
	register(t, svc, "dave", "goodpass", domain.RoleFarmer)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		role     domain.Role
	}{
		{"wrong password", "dave", "badpass1", ""},
		{"unknown user", "ghost", "goodpass", ""},
		{"role mismatch", "dave", "goodpass", domain.RoleConsumer},
		{"empty password", "dave", "", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Login(ctx, tc.username, tc.password, tc.role); err != domain.ErrInvalidCredentials {
			t.Errorf("%s: expected ErrInvalidCredentials, got %v", tc.name, err)
		}
	}

	if _, err := svc.Login(ctx, "dave", "goodpass", domain.RoleFarmer); err != nil {
		t.Fatalf("matching role must be accepted: %v", err)
	}
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	issued := register(t, svc, "erin", "pass1234", domain.RoleFarmer)

	user, err := svc.Authenticate(ctx, issued.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Username != "erin" || user.Role != domain.RoleFarmer {
		t.Fatalf("unexpected user %+v", user)
	}

	if err := svc.Logout(ctx, issued.AccessToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, issued.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("revoked token must be rejected, got %v", err)
	}
	if err := svc.Logout(ctx, issued.AccessToken); err != nil {
		t.Fatalf("second logout must succeed, got %v", err)
	}
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	issued := register(t, svc, "fay", "pass1234", domain.RoleConsumer)

	other := NewAuthService(newStubUserRepo(), newStubTokenStore(), "other-secret", time.Hour)
	if _, err := other.Authenticate(ctx, issued.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("foreign signature must be rejected, got %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Authenticate(ctx, issued.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expired token must be rejected, got %v", err)
	}

	for _, token := range []string{"", "   ", "not-a-jwt"} {
		if _, err := svc.Authenticate(ctx, token); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("token %q: expected ErrTokenInvalid, got %v", token, err)
		}
	}
}
