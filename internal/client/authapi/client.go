// Package authapi is the HTTP client for the auth backend.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/core/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client calls /register, /login, /me and /logout under a base URL such as
// http://localhost:8000/auth. It never retries; the user resubmits.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient builds a Client. A nil httpClient gets a default with a 15s timeout.
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

var _ ports.RemoteAuthClient = (*Client)(nil)

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	Token       string      `json:"token"`
	TokenType   string      `json:"token_type"`
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
}

func (t tokenResponse) token() string {
	if t.AccessToken != "" {
		return t.AccessToken
	}
	return t.Token
}

// Login posts credentials to /login.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
	c.log.Debug().
		Str("username", creds.Username).
		Str("password", "***HIDDEN***").
		Str("role", string(creds.Role)).
		Msg("logging in")

	var resp tokenResponse
	if err := c.postJSON(ctx, "Login", "/login", creds, &resp); err != nil {
		return nil, err
	}
	return &ports.LoginResult{
		Token:     resp.token(),
		TokenType: resp.TokenType,
		ID:        resp.ID,
		Username:  resp.Username,
		Role:      resp.Role,
	}, nil
}

// Register posts a new account to /register.
func (c *Client) Register(ctx context.Context, reg ports.Registration) (*ports.RegisterResult, error) {
	c.log.Debug().
		Str("username", reg.Username).
		Str("role", string(reg.Role)).
		Msg("registering user")

	var resp tokenResponse
	if err := c.postJSON(ctx, "Registration", "/register", reg, &resp); err != nil {
		return nil, err
	}
	return &ports.RegisterResult{Token: resp.token(), ID: resp.ID}, nil
}

// Me resolves token to the profile the server holds for it. Any
// non-success status, or an empty token, is domain.ErrTokenInvalid.
func (c *Client) Me(ctx context.Context, token string) (*domain.Profile, error) {
	if token == "" {
		return nil, fmt.Errorf("verify token: %w: no token found", domain.ErrTokenInvalid)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "verify token", Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.NetworkError{Op: "verify token", Err: err}
	}
	if !success(res.StatusCode) {
		c.log.Debug().Int("status", res.StatusCode).Msg("token verification failed")
		return nil, fmt.Errorf("verify token: %w: status %d", domain.ErrTokenInvalid, res.StatusCode)
	}

	var p domain.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// Logout asks the server to revoke token.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("logout: %w: no token found", domain.ErrTokenInvalid)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req, "Logout", nil)
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", strings.ToLower(op), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, op, out)
}

// do runs req. A transport failure becomes *domain.NetworkError, a
// non-success status *domain.AuthRejectedError with a normalized message.
func (c *Client) do(req *http.Request, op string, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("auth request failed")
		return &domain.NetworkError{Op: strings.ToLower(op), Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return &domain.NetworkError{Op: strings.ToLower(op), Err: err}
	}

	if !success(res.StatusCode) {
		msg := NormalizeErrorBody(op, res.StatusCode, body)
		c.log.Warn().
			Str("op", op).
			Int("status", res.StatusCode).
			Str("raw", string(body)).
			Str("message", msg).
			Msg("auth request rejected")
		return &domain.AuthRejectedError{Status: res.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", strings.ToLower(op), err)
	}
	return nil
}

func success(code int) bool {
	return code >= 200 && code < 300
}
