package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
)

type fakeSessions struct {
	authenticated bool
	role          coinsdk.Role
	freshErr      error
	freshDelay    time.Duration
	freshCalls    int

	// freshSignsOut mimics the unauthorized teardown: a failed check
	// leaves the manager signed out
	freshSignsOut bool
}

func (f *fakeSessions) EnsureFresh(ctx context.Context) error {
	f.freshCalls++
	if f.freshDelay > 0 {
		select {
		case <-time.After(f.freshDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.freshErr != nil && f.freshSignsOut {
		f.authenticated = false
	}
	return f.freshErr
}

func (f *fakeSessions) IsAuthenticated() bool { return f.authenticated }
func (f *fakeSessions) Role() coinsdk.Role    { return f.role }

var (
	loginRoute = Route{Path: "/login", Name: "login", RequiresGuest: true}
	childRoute = Route{
		Path:         "/child/dashboard",
		Name:         "child-dashboard",
		RequiresAuth: true,
		Roles:        []coinsdk.Role{coinsdk.RoleYoungerChild},
	}
	teenRoute = Route{
		Path:         "/teen/dashboard",
		Name:         "teen-dashboard",
		RequiresAuth: true,
		Roles:        []coinsdk.Role{coinsdk.RoleOlderChild},
	}
	parentRoute = Route{
		Path:         "/parent/dashboard",
		Name:         "parent-dashboard",
		RequiresAuth: true,
		Roles:        []coinsdk.Role{coinsdk.RoleParent},
	}
	anyAuthRoute = Route{Path: "/settings", Name: "settings", RequiresAuth: true}
	publicRoute  = Route{Path: "/", Name: "home"}
)

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("public route needs nothing", func(t *testing.T) {
		g := New(&fakeSessions{})
		d := g.Check(context.Background(), publicRoute)
		require.True(t, d.Allow)
		// no freshness check was spent on a public route
	})

	t.Run("unauthenticated protected route redirects to login", func(t *testing.T) {
		g := New(&fakeSessions{freshErr: errors.New("session: not authenticated")})
		d := g.Check(context.Background(), anyAuthRoute)
		require.False(t, d.Allow)
		require.Equal(t, LoginPath, d.RedirectTo)
	})

	t.Run("authenticated guest route bounces to the role dashboard", func(t *testing.T) {
		g := New(&fakeSessions{authenticated: true, role: coinsdk.RoleOlderChild})
		d := g.Check(context.Background(), loginRoute)
		require.False(t, d.Allow)
		require.Equal(t, "/teen/dashboard", d.RedirectTo)
	})

	t.Run("wrong role redirects to own dashboard", func(t *testing.T) {
		g := New(&fakeSessions{authenticated: true, role: coinsdk.RoleOlderChild})
		d := g.Check(context.Background(), parentRoute)
		require.False(t, d.Allow)
		require.Equal(t, "/teen/dashboard", d.RedirectTo)

		d = g.Check(context.Background(), teenRoute)
		require.True(t, d.Allow)
	})

	t.Run("younger child cannot enter the teen dashboard", func(t *testing.T) {
		g := New(&fakeSessions{authenticated: true, role: coinsdk.RoleYoungerChild})
		d := g.Check(context.Background(), teenRoute)
		require.False(t, d.Allow)
		require.Equal(t, "/child/dashboard", d.RedirectTo)

		d = g.Check(context.Background(), childRoute)
		require.True(t, d.Allow)
	})

	t.Run("role-unrestricted auth route admits every role", func(t *testing.T) {
		for _, role := range []coinsdk.Role{
			coinsdk.RoleParent, coinsdk.RoleTeacher,
			coinsdk.RoleYoungerChild, coinsdk.RoleOlderChild,
		} {
			g := New(&fakeSessions{authenticated: true, role: role})
			d := g.Check(context.Background(), anyAuthRoute)
			require.True(t, d.Allow, "role %s", role)
		}
	})

	t.Run("failed freshness check fails closed", func(t *testing.T) {
		g := New(&fakeSessions{
			authenticated: true,
			role:          coinsdk.RoleParent,
			freshErr:      errors.New("backend unreachable"),
		})
		d := g.Check(context.Background(), parentRoute)
		require.False(t, d.Allow)
		require.Equal(t, LoginPath, d.RedirectTo)
	})

	t.Run("slow freshness check is cut off by the deadline", func(t *testing.T) {
		fs := &fakeSessions{
			authenticated: true,
			role:          coinsdk.RoleParent,
			freshDelay:    time.Minute,
		}
		g := New(fs)
		g.SetTimeout(50 * time.Millisecond)

		start := time.Now()
		d := g.Check(context.Background(), parentRoute)
		require.Less(t, time.Since(start), 5*time.Second)
		require.False(t, d.Allow)
		require.Equal(t, LoginPath, d.RedirectTo)
	})

	t.Run("guest route skips the check for signed-out visitors", func(t *testing.T) {
		fs := &fakeSessions{}
		g := New(fs)
		d := g.Check(context.Background(), loginRoute)
		require.True(t, d.Allow)
		require.Zero(t, fs.freshCalls)
	})

	t.Run("guest route revalidates a signed-in session before bouncing", func(t *testing.T) {
		fs := &fakeSessions{authenticated: true, role: coinsdk.RoleOlderChild}
		g := New(fs)
		d := g.Check(context.Background(), loginRoute)
		require.False(t, d.Allow)
		require.Equal(t, "/teen/dashboard", d.RedirectTo)
		require.Equal(t, 1, fs.freshCalls)
	})

	t.Run("dead session reaches the login page instead of bouncing", func(t *testing.T) {
		fs := &fakeSessions{
			authenticated: true,
			role:          coinsdk.RoleParent,
			freshErr:      errors.New("token rejected by verification"),
			freshSignsOut: true,
		}
		g := New(fs)
		d := g.Check(context.Background(), loginRoute)
		require.True(t, d.Allow)
	})

	t.Run("unconfirmable session is not bounced off guest routes", func(t *testing.T) {
		fs := &fakeSessions{
			authenticated: true,
			role:          coinsdk.RoleParent,
			freshErr:      errors.New("backend unreachable"),
		}
		g := New(fs)
		d := g.Check(context.Background(), loginRoute)
		require.True(t, d.Allow)
	})
}

func TestLandingPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/parent/dashboard", LandingPath(coinsdk.RoleParent))
	require.Equal(t, "/teacher/dashboard", LandingPath(coinsdk.RoleTeacher))
	require.Equal(t, "/child/dashboard", LandingPath(coinsdk.RoleYoungerChild))
	require.Equal(t, "/teen/dashboard", LandingPath(coinsdk.RoleOlderChild))
	require.Equal(t, "/", LandingPath(coinsdk.Role("")))
	require.Equal(t, "/", LandingPath(coinsdk.Role("superuser")))
}
