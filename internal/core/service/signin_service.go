package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/core/ports"
)

// ErrFormClosed is returned when a form was closed while its request was in
// flight. The response is discarded and the session is left untouched.
var ErrFormClosed = errors.New("form closed before the request completed")

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// LoginInput is what the login form collects.
type LoginInput struct {
	Username string      `validate:"required"`
	Password string      `validate:"required"`
	Role     domain.Role `validate:"required,oneof=farmer consumer"`
}

// SignUpInput is what the registration form collects.
type SignUpInput struct {
	Username        string      `validate:"required,username,min=3,max=50"`
	Password        string      `validate:"required,min=8"`
	ConfirmPassword string      `validate:"required,eqfield=Password"`
	Role            domain.Role `validate:"required,oneof=farmer consumer"`
}

// Checked in this order; the first failure is the one shown.
var formRules = []struct {
	key string
	msg string
}{
	{"Username.username", "Username must contain only letters, numbers, and underscores"},
	{"Username.min", "Username must be at least 3 characters"},
	{"Username.max", "Username must be at most 50 characters"},
	{"ConfirmPassword.eqfield", "Passwords do not match"},
	{"Password.min", "Password must be at least 8 characters"},
	{"Role.oneof", "Please select either farmer or consumer"},
}

// Authenticator runs the sign-in and sign-up flows: client-side checks,
// the remote call, then the local session.
type Authenticator struct {
	remote   ports.RemoteAuthClient
	sessions ports.SessionManager
	validate *validator.Validate
	log      zerolog.Logger
}

// NewAuthenticator wires the remote client and the session façade.
func NewAuthenticator(remote ports.RemoteAuthClient, sessions ports.SessionManager, log zerolog.Logger) *Authenticator {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &Authenticator{remote: remote, sessions: sessions, validate: v, log: log}
}

// SignIn validates in, logs in remotely and starts the session. It returns
// the dashboard path for the role.
func (a *Authenticator) SignIn(ctx context.Context, in LoginInput) (string, error) {
	return a.signIn(ctx, in, never)
}

// SignUp registers, then logs in with the same credentials, then starts the session.
func (a *Authenticator) SignUp(ctx context.Context, in SignUpInput) (string, error) {
	return a.signUp(ctx, in, never)
}

// SignOut revokes the token server-side when possible and always clears
// the local session.
func (a *Authenticator) SignOut(ctx context.Context) error {
	if token, ok := a.sessions.Token(ctx); ok {
		if err := a.remote.Logout(ctx, token); err != nil {
			a.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
		}
	}
	return a.sessions.Logout(ctx)
}

// Revalidate checks the stored token against the server and logs out when
// the server rejects it. A network failure leaves the session in place.
func (a *Authenticator) Revalidate(ctx context.Context) (bool, error) {
	token, ok := a.sessions.Token(ctx)
	if !ok {
		return false, nil
	}

	if _, err := a.remote.Me(ctx, token); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			a.log.Info().Msg("stored token rejected by server, logging out")
			return false, a.sessions.Logout(ctx)
		}
		return true, err
	}
	return true, nil
}

func (a *Authenticator) signIn(ctx context.Context, in LoginInput, closed func() bool) (string, error) {
	if err := a.check(in); err != nil {
		return "", err
	}

	res, err := a.remote.Login(ctx, ports.Credentials{Username: in.Username, Password: in.Password, Role: in.Role})
	if err != nil {
		return "", err
	}
	if closed() {
		return "", ErrFormClosed
	}
	if res.Token == "" {
		return "", errors.New("login response did not include a token")
	}

	profile := domain.Profile{Username: in.Username, Role: in.Role, ID: firstID(res.ID)}
	if err := a.sessions.Login(ctx, profile, res.Token); err != nil {
		return "", err
	}
	return domain.DashboardPath(in.Role), nil
}

func (a *Authenticator) signUp(ctx context.Context, in SignUpInput, closed func() bool) (string, error) {
	if err := a.check(in); err != nil {
		return "", err
	}

	reg, err := a.remote.Register(ctx, ports.Registration{Username: in.Username, Password: in.Password, Role: in.Role})
	if err != nil {
		return "", err
	}
	login, err := a.remote.Login(ctx, ports.Credentials{Username: in.Username, Password: in.Password, Role: in.Role})
	if err != nil {
		return "", err
	}
	if closed() {
		return "", ErrFormClosed
	}

	token := login.Token
	if token == "" {
		token = reg.Token
	}
	if token == "" {
		return "", errors.New("registration response did not include a token")
	}

	profile := domain.Profile{Username: in.Username, Role: in.Role, ID: firstID(login.ID, reg.ID)}
	if err := a.sessions.Login(ctx, profile, token); err != nil {
		return "", err
	}
	return domain.DashboardPath(in.Role), nil
}

// check maps validator output onto the single inline message the form shows.
func (a *Authenticator) check(in any) error {
	err := a.validate.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failed := make(map[string]string, len(ve))
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return domain.NewValidationError(strings.ToLower(fe.Field()), "All fields are required")
		}
		failed[fe.Field()+"."+fe.Tag()] = fe.Field()
	}
	for _, rule := range formRules {
		if field, ok := failed[rule.key]; ok {
			return domain.NewValidationError(strings.ToLower(field), rule.msg)
		}
	}
	fe := ve[0]
	return domain.NewValidationError(strings.ToLower(fe.Field()), fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
}

// FormMessage renders err as the inline text a form shows. Messages that
// still look like JSON are reduced to something a person can read.
func FormMessage(err error) string {
	msg := domain.Message(err)
	if !strings.HasPrefix(msg, "{") && !strings.HasPrefix(msg, "[") {
		return msg
	}

	var parsed any
	if err := json.Unmarshal([]byte(msg), &parsed); err != nil {
		return msg
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return "Validation error occurred"
	}
	if m, ok := obj["msg"].(string); ok && m != "" {
		return m
	}
	loc, locOK := obj["loc"].([]any)
	typ, typOK := obj["type"].(string)
	if locOK && typOK {
		parts := make([]string, len(loc))
		for i, p := range loc {
			parts[i] = fmt.Sprint(p)
		}
		return fmt.Sprintf("%s error for %s", typ, strings.Join(parts, "."))
	}
	return "Validation error occurred"
}

func firstID(ids ...int64) int64 {
	for _, id := range ids {
		if id != 0 {
			return id
		}
	}
	return 1
}

func never() bool { return false }

// formState is the submit-button state of one form: one request at a
// time, and a closed form drops late responses.
type formState struct {
	busy   atomic.Bool
	closed atomic.Bool
}

func (s *formState) begin() bool {
	return s.busy.CompareAndSwap(false, true)
}

func (s *formState) end() {
	s.busy.Store(false)
}

// LoginForm is one mounted login form.
type LoginForm struct {
	auth  *Authenticator
	state formState
}

// NewLoginForm returns a login form bound to a.
func (a *Authenticator) NewLoginForm() *LoginForm {
	return &LoginForm{auth: a}
}

// Submit runs SignIn unless this form already has a request in flight.
func (f *LoginForm) Submit(ctx context.Context, in LoginInput) (string, error) {
	if !f.state.begin() {
		return "", domain.ErrSubmitInProgress
	}
	defer f.state.end()
	return f.auth.signIn(ctx, in, f.state.closed.Load)
}

// Busy reports whether a submission is in flight.
func (f *LoginForm) Busy() bool { return f.state.busy.Load() }

// Close discards the result of any in-flight request. The request itself is not aborted.
func (f *LoginForm) Close() { f.state.closed.Store(true) }

// SignUpForm is one mounted registration form.
type SignUpForm struct {
	auth  *Authenticator
	state formState
}

// NewSignUpForm returns a registration form bound to a.
func (a *Authenticator) NewSignUpForm() *SignUpForm {
	return &SignUpForm{auth: a}
}

// Submit runs SignUp unless this form already has a request in flight.
func (f *SignUpForm) Submit(ctx context.Context, in SignUpInput) (string, error) {
	if !f.state.begin() {
		return "", domain.ErrSubmitInProgress
	}
	defer f.state.end()
	return f.auth.signUp(ctx, in, f.state.closed.Load)
}

// Busy reports whether a submission is in flight.
func (f *SignUpForm) Busy() bool { return f.state.busy.Load() }

// Close discards the result of any in-flight request.
func (f *SignUpForm) Close() { f.state.closed.Store(true) }
