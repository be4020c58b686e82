package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/kisaanconnect/marketplace/internal/api/handler"
	"github.com/kisaanconnect/marketplace/internal/api/metrics"
	"github.com/kisaanconnect/marketplace/internal/api/middleware"
	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/core/ports"

	_ "github.com/kisaanconnect/marketplace/docs"
)

// Deps are the services the router wires into handlers.
type Deps struct {
	Auth   ports.AuthService
	Checks []handler.Check
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORS())

	authHandler := handler.NewAuthHandler(deps.Auth)
	dashboardHandler := handler.NewDashboardHandler()
	healthHandler := handler.NewHealthHandler(deps.Checks...)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/login/user", authHandler.Login)
	auth.GET("/me", authHandler.Me, middleware.Auth(deps.Auth))
	auth.POST("/logout", authHandler.Logout, middleware.Bearer())

	// --- Role dashboards ---
	dash := e.Group("/dashboard", middleware.Identify(deps.Auth))
	dash.GET("/farmer", dashboardHandler.Farmer, middleware.RouteGuard(domain.RoleFarmer))
	dash.GET("/consumer", dashboardHandler.Consumer, middleware.RouteGuard(domain.RoleConsumer))

	// --- Health checks (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
