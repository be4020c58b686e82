package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kisaanconnect/marketplace/internal/api/metrics"
	"github.com/kisaanconnect/marketplace/internal/core/domain"
)

// Authenticator resolves a bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// errNotAuthenticated matches the message OAuth2 bearer clients expect.
var errNotAuthenticated = echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")

// Bearer requires an "Authorization: Bearer <token>" header and stores the
// token under "token". It does not check the token.
func Bearer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				return errNotAuthenticated
			}
			c.Set("token", token)
			return next(c)
		}
	}
}

// Auth validates the bearer token against auth and injects the account
// into context: "user", "username", "role", "uid" and "token".
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				metrics.TokenChecksTotal.WithLabelValues("missing").Inc()
				return errNotAuthenticated
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				metrics.TokenChecksTotal.WithLabelValues("invalid").Inc()
				return err
			}

			metrics.TokenChecksTotal.WithLabelValues("valid").Inc()
			setUser(c, user, token)
			return next(c)
		}
	}
}

// Identify is the lenient form of Auth: requests without a usable token
// continue as guests so a later RouteGuard can decide what to do with them.
func Identify(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				metrics.TokenChecksTotal.WithLabelValues("missing").Inc()
				return next(c)
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				metrics.TokenChecksTotal.WithLabelValues("invalid").Inc()
				c.Logger().Debugf("identify: treating request as guest: %v", err)
				return next(c)
			}

			metrics.TokenChecksTotal.WithLabelValues("valid").Inc()
			setUser(c, user, token)
			return next(c)
		}
	}
}

func setUser(c echo.Context, user *domain.User, token string) {
	c.Set("user", user)
	c.Set("username", user.Username)
	c.Set("role", user.Role)
	c.Set("uid", user.ID)
	c.Set("token", token)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
