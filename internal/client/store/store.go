package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root persistence interface for the client. Concrete drivers
// (sqlite today) implement it. Sub-repositories keep concerns tidy: the
// identity slot, cached snapshots, and sealed child credentials have very
// different lifetimes even though they share a database file.
type Store interface {
	Identity() Identity
	Snapshots() Snapshots
	ChildCredentials() ChildCredentials

	ApplyMigrations() error

	// Clear wipes every table. Used by full session teardown.
	Clear(ctx context.Context) error

	// Close releases the underlying database handle.
	Close() error

	// Ping verifies the database file is still usable.
	Ping(ctx context.Context) error
}

// IdentityRecord is the single persisted session: the bearer token and the
// user it belongs to, stored together so a restart restores both or neither.
type IdentityRecord struct {
	Token     string
	UserID    string
	UserJSON  []byte
	SavedAt   time.Time
	UpdatedAt time.Time
}

// Identity is the single-slot persisted session. There is at most one
// record; Save overwrites, Load returns ErrNotFound when signed out.
type Identity interface {
	Save(ctx context.Context, rec IdentityRecord) error
	Load(ctx context.Context) (IdentityRecord, error)
	Clear(ctx context.Context) error
}

// Snapshot is a named JSON blob cached across restarts (profile, recent
// transactions). Snapshots are a warm-start convenience, never a source of
// truth; the cache coordinator still refetches on expiry.
type Snapshot struct {
	Name      string
	Data      []byte
	SavedAt   time.Time
	UpdatedAt time.Time
}

type Snapshots interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) (Snapshot, error)
	Delete(ctx context.Context, name string) error

	// DeleteAll removes every snapshot. Used on logout.
	DeleteAll(ctx context.Context) error
}

// ChildCredential is a sealed (AES-GCM) copy of a child account's generated
// password, kept so a parent can look it up again on this device. The blob is
// opaque to the store; sealing happens above it.
type ChildCredential struct {
	ChildID   string
	ChildName string
	Sealed    []byte
	CreatedAt time.Time
}

type ChildCredentials interface {
	Put(ctx context.Context, cred ChildCredential) error
	Get(ctx context.Context, childID string) (ChildCredential, error)
	List(ctx context.Context) ([]ChildCredential, error)

	// Clear removes all sealed credentials. Used on logout.
	Clear(ctx context.Context) error
}
