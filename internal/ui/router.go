package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/guard"
)

const maxRedirects = 5

// View is a rendered page.
type View struct {
	Path  string
	Title string
	Body  string
}

// Route binds a path to a page. A non-empty Required role puts the page
// behind the route guard.
type Route struct {
	Path     string
	Title    string
	Required domain.Role
	Render   func(state domain.AuthState) string
}

// Router resolves paths, consulting the guard before any protected page renders.
type Router struct {
	routes   map[string]Route
	sessions guard.StateReader
	guard    *guard.Guard
	log      zerolog.Logger
}

// NewRouter builds a router over routes.
func NewRouter(sessions guard.StateReader, routes []Route, log zerolog.Logger) *Router {
	r := &Router{
		routes:   make(map[string]Route, len(routes)),
		sessions: sessions,
		guard:    guard.New(sessions),
		log:      log,
	}
	for _, rt := range routes {
		r.routes[rt.Path] = rt
	}
	return r
}

// Open renders path, following guard redirects. Unknown paths go home.
// Trail lists every path visited, starting with the requested one.
func (r *Router) Open(ctx context.Context, path string) (View, []string, error) {
	trail := []string{path}
	current := path

	for hop := 0; hop <= maxRedirects; hop++ {
		rt, ok := r.match(current)
		if !ok {
			current = domain.PathHome
			trail = append(trail, current)
			continue
		}

		if rt.Required != "" {
			d := r.guard.Evaluate(ctx, rt.Required)
			if !d.Allow {
				r.log.Debug().Str("from", current).Str("to", d.Redirect).Msg("route guard redirect")
				current = d.Redirect
				trail = append(trail, current)
				continue
			}
		}

		state := r.sessions.State(ctx)
		return View{Path: rt.Path, Title: rt.Title, Body: rt.Render(state)}, trail, nil
	}
	return View{}, trail, fmt.Errorf("too many redirects opening %s: %s", path, strings.Join(trail, " -> "))
}

func (r *Router) match(path string) (Route, bool) {
	if rt, ok := r.routes[path]; ok {
		return rt, true
	}
	// /adopt-farm/:id renders the adopt-farm page.
	if strings.HasPrefix(path, domain.PathAdoptFarm+"/") {
		rt, ok := r.routes[domain.PathAdoptFarm]
		return rt, ok
	}
	return Route{}, false
}

func static(text string) func(domain.AuthState) string {
	return func(domain.AuthState) string { return text }
}

func dashboard(title string) func(domain.AuthState) string {
	return func(s domain.AuthState) string {
		return fmt.Sprintf("%s\nSigned in as %s (id %d)", title, s.User.Username, s.User.ID)
	}
}

// DefaultRoutes is the app's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: domain.PathHome, Title: "Home", Render: static("Fresh produce straight from the farm.")},
		{Path: domain.PathLogin, Title: "Login", Render: static("Run `kisaan login` to sign in.")},
		{Path: domain.PathRegister, Title: "Register", Render: static("Run `kisaan register` to create an account.")},
		{Path: domain.PathNGO, Title: "NGO Support", Render: static("Partner NGOs supporting farmers.")},
		{Path: domain.PathAdoptFarm, Title: "Adopt a Farm", Render: static("Support a farm directly.")},
		{Path: domain.PathUnauthorized, Title: "Unauthorized", Render: static("Your account cannot open this page.")},
		{Path: domain.PathFarmer, Title: "Farmer Dashboard", Required: domain.RoleFarmer, Render: dashboard("Farmer Dashboard")},
		{Path: domain.PathConsumer, Title: "Consumer Dashboard", Required: domain.RoleConsumer, Render: dashboard("Consumer Dashboard")},
	}
}
