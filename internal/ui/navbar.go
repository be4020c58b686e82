// Package ui holds the terminal renditions of the app's navigation bar and
// route table.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
)

// SessionSource is what UI regions need from the auth façade.
type SessionSource interface {
	State(ctx context.Context) domain.AuthState
	Subscribe(handler func()) (unsubscribe func())
}

// Link is one navigation entry.
type Link struct {
	Label string
	Path  string
}

// NavLinks are shown to everyone regardless of session state.
var NavLinks = []Link{
	{Label: "Farmer Dashboard", Path: domain.PathFarmer},
	{Label: "Consumer Dashboard", Path: domain.PathConsumer},
	{Label: "Adopt a Farm", Path: domain.PathAdoptFarm},
	{Label: "NGO Support", Path: domain.PathNGO},
}

// NavView is the rendered state of the bar.
type NavView struct {
	Authenticated bool
	Username      string
}

// NavBar mirrors the session without being handed it: it re-reads the
// session every time the auth bus fires.
type NavBar struct {
	sessions SessionSource

	mu          sync.Mutex
	view        NavView
	unsubscribe func()
	onChange    func(NavView)
}

// NewNavBar returns an unmounted bar.
func NewNavBar(sessions SessionSource) *NavBar {
	return &NavBar{sessions: sessions}
}

// OnChange registers fn to be called with the new view after each refresh.
func (n *NavBar) OnChange(fn func(NavView)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Mount reads the current session and starts listening for changes.
// Mounting twice is a no-op.
func (n *NavBar) Mount(ctx context.Context) {
	n.mu.Lock()
	if n.unsubscribe != nil {
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()

	n.refresh(ctx)
	unsub := n.sessions.Subscribe(func() { n.refresh(ctx) })

	n.mu.Lock()
	n.unsubscribe = unsub
	n.mu.Unlock()
}

// Unmount stops listening.
func (n *NavBar) Unmount() {
	n.mu.Lock()
	unsub := n.unsubscribe
	n.unsubscribe = nil
	n.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// View returns the last rendered state.
func (n *NavBar) View() NavView {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view
}

// Render draws the bar as one line.
func (n *NavBar) Render() string {
	v := n.View()

	var b strings.Builder
	b.WriteString("KisaanConnect |")
	for _, l := range NavLinks {
		fmt.Fprintf(&b, " %s (%s) |", l.Label, l.Path)
	}
	if v.Authenticated {
		fmt.Fprintf(&b, " Welcome, %s! [logout]", v.Username)
	} else {
		b.WriteString(" [login] [register]")
	}
	return b.String()
}

func (n *NavBar) refresh(ctx context.Context) {
	state := n.sessions.State(ctx)
	view := NavView{Authenticated: state.Authenticated}
	if state.Authenticated && state.User != nil {
		view.Username = state.User.Username
	}

	n.mu.Lock()
	n.view = view
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(view)
	}
}
