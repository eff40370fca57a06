// Package guard decides whether a navigation is allowed for the current
// session and where to send the user when it is not.
package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
)

// DefaultTimeout bounds the freshness check before a decision. The guard
// never blocks navigation forever on a slow backend; past the deadline the
// check fails and the decision falls out closed.
const DefaultTimeout = 5 * time.Second

// LoginPath is where unauthenticated users are sent.
const LoginPath = "/login"

// Route describes a navigable destination and its access requirements.
type Route struct {
	Path string
	Name string

	// RequiresAuth routes need a session; RequiresGuest routes (login,
	// register) bounce signed-in users to their dashboard.
	RequiresAuth  bool
	RequiresGuest bool

	// Roles restricts the route to specific roles. Empty means any
	// authenticated role (when RequiresAuth is set).
	Roles []coinsdk.Role
}

// Decision is the outcome of a guard check. When Allow is false, RedirectTo
// names where to go instead.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision               { return Decision{Allow: true} }
func redirect(path string) Decision { return Decision{RedirectTo: path} }

// Sessions is the slice of the session manager the guard needs.
type Sessions interface {
	EnsureFresh(ctx context.Context) error
	IsAuthenticated() bool
	Role() coinsdk.Role
}

// Guard evaluates route access against the session.
type Guard struct {
	sessions Sessions
	timeout  time.Duration
}

// New creates a guard with the default freshness-check timeout.
func New(sessions Sessions) *Guard {
	return &Guard{sessions: sessions, timeout: DefaultTimeout}
}

// SetTimeout overrides the freshness-check deadline.
func (g *Guard) SetTimeout(d time.Duration) { g.timeout = d }

// Check decides whether the session may enter the route. The bounded
// freshness check runs first, then the rules in order: guest-only bounce,
// authentication, role restriction. A redirect always lands somewhere legal
// for the session, so chained checks terminate.
func (g *Guard) Check(ctx context.Context, route Route) Decision {
	switch {
	case route.RequiresAuth:
		if err := g.ensureFresh(ctx); err != nil {
			// fail closed: an unconfirmable session does not enter
			// protected routes
			slog.Info("session freshness check failed, denying route",
				slog.String("route", route.Path),
				slog.Any("error", err),
			)
			return redirect(LoginPath)
		}
	case route.RequiresGuest && g.sessions.IsAuthenticated():
		if err := g.ensureFresh(ctx); err != nil {
			// an unconfirmable session earns no bounce either: a dead
			// token has just been torn down by the 401 handler, and any
			// other failure must still leave the login page reachable
			slog.Info("session freshness check failed before guest route",
				slog.String("route", route.Path),
				slog.Any("error", err),
			)
			return allow()
		}
	}

	authenticated := g.sessions.IsAuthenticated()
	role := g.sessions.Role()

	if route.RequiresGuest && authenticated {
		return redirect(LandingPath(role))
	}

	if route.RequiresAuth && !authenticated {
		return redirect(LoginPath)
	}

	if route.RequiresAuth && len(route.Roles) > 0 && !roleAllowed(role, route.Roles) {
		return redirect(LandingPath(role))
	}

	return allow()
}

func (g *Guard) ensureFresh(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.sessions.EnsureFresh(checkCtx)
}

func roleAllowed(role coinsdk.Role, allowed []coinsdk.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// LandingPath maps a role to its home dashboard. Unknown roles land on the
// public root rather than a dashboard they cannot use.
func LandingPath(role coinsdk.Role) string {
	switch role {
	case coinsdk.RoleParent:
		return "/parent/dashboard"
	case coinsdk.RoleTeacher:
		return "/teacher/dashboard"
	case coinsdk.RoleYoungerChild:
		return "/child/dashboard"
	case coinsdk.RoleOlderChild:
		return "/teen/dashboard"
	default:
		return "/"
	}
}
