package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kisaanconnect/marketplace/internal/api/metrics"
	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/guard"
)

type guardResponse struct {
	Detail   string `json:"detail"`
	Redirect string `json:"redirect"`
}

// RouteGuard restricts a route to one role using the same decision table as
// the client. Place it after Identify. Denied guests get 401, everyone else
// 403; both carry the path the client should move to.
func RouteGuard(required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := guard.Decide(stateFrom(c), required)
			if decision.Allow {
				metrics.GuardDecisionsTotal.WithLabelValues(string(required), "allow").Inc()
				return next(c)
			}

			metrics.GuardDecisionsTotal.WithLabelValues(string(required), decision.Redirect).Inc()
			if decision.Redirect == domain.PathLogin {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return c.JSON(http.StatusUnauthorized, guardResponse{Detail: "Not authenticated", Redirect: decision.Redirect})
			}
			return c.JSON(http.StatusForbidden, guardResponse{Detail: "Access forbidden", Redirect: decision.Redirect})
		}
	}
}

func stateFrom(c echo.Context) domain.AuthState {
	user, ok := c.Get("user").(*domain.User)
	if !ok || user == nil {
		return domain.AuthState{}
	}
	p := user.Profile()
	return domain.AuthState{Authenticated: true, User: &p}
}
