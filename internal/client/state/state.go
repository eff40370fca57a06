// Package state holds the client-side domain stores. Each store owns one
// slice of remote data, loads it through the cache coordinator, applies
// optimistic mutations, and resets to zero on session teardown.
package state

import (
	"context"
	"errors"
	"log/slog"

	"github.com/coincraftapp/coincraft-go/internal/client/cache"
	"github.com/coincraftapp/coincraft-go/internal/client/store"
	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
)

// SessionInfo is the slice of the session manager the stores need: who is
// signed in right now.
type SessionInfo interface {
	User() (coinsdk.User, bool)
	Role() coinsdk.Role
}

// Deps carries the shared collaborators every store is built from.
type Deps struct {
	Client    *coinsdk.Client
	Cache     *cache.Coordinator
	Sessions  SessionInfo
	Snapshots store.Snapshots
}

// ErrNoUser is returned when a store operation needs a signed-in user and
// there is none. The guard normally prevents this; stores still refuse.
var ErrNoUser = errors.New("state: no authenticated user")

func currentUserID(s SessionInfo) (string, error) {
	user, ok := s.User()
	if !ok {
		return "", ErrNoUser
	}
	return user.ID, nil
}

// saveSnapshot persists a named blob for warm starts, best effort.
func saveSnapshot(ctx context.Context, snapshots store.Snapshots, name string, data []byte) {
	if snapshots == nil {
		return
	}
	if err := snapshots.Put(ctx, name, data); err != nil {
		slog.Warn("failed to persist snapshot",
			slog.String("snapshot", name),
			slog.Any("error", err),
		)
	}
}
