// Package app wires the client layers together: SDK, persistence, cache,
// session, guard, and the domain stores.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coincraftapp/coincraft-go/internal/client/cache"
	"github.com/coincraftapp/coincraft-go/internal/client/guard"
	"github.com/coincraftapp/coincraft-go/internal/client/reset"
	"github.com/coincraftapp/coincraft-go/internal/client/session"
	"github.com/coincraftapp/coincraft-go/internal/client/state"
	"github.com/coincraftapp/coincraft-go/internal/client/store"
	"github.com/coincraftapp/coincraft-go/internal/client/store/drivers/sqlite"
	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
	"github.com/coincraftapp/coincraft-go/pkg/cryptox"
	"github.com/coincraftapp/coincraft-go/pkg/idx"
	"github.com/coincraftapp/coincraft-go/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Client is the assembled CoinCraft client. Everything hangs off the
// session manager and the shared cache coordinator; the reset registry ties
// teardown across all of it.
type Client struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	api      *coinsdk.Client
	cache    *cache.Coordinator
	registry *reset.Registry

	Sessions  *session.Manager
	Guard     *guard.Guard
	User      *state.UserStore
	Child     *state.ChildStore
	Parent    *state.ParentStore
	Teacher   *state.TeacherStore
	Dashboard *state.DashboardStore
}

// New builds the full client from config.
func New(cfg Config) (*Client, error) {
	c := &Client{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "coincraft-client",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	db, err := sqlite.NewStore(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("opening client database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating client database: %w", err)
	}
	c.db = db

	deviceID, err := loadDeviceID(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("loading device id: %w", err)
	}
	c.logger = c.logger.With(slog.String("device_id", deviceID))

	c.api = coinsdk.New(cfg.APIURL)
	if cfg.HTTPTimeout > 0 {
		c.api.HTTPClient.Timeout = cfg.HTTPTimeout
	}

	c.cache = cache.New()
	if cfg.CacheTTL > 0 {
		c.cache.SetTTL(cfg.CacheTTL)
	}

	c.registry = reset.NewRegistry()

	c.Sessions = session.NewManager(c.api, c.db, c.registry,
		session.WithValidateInterval(cfg.ValidateInterval),
	)

	c.Guard = guard.New(c.Sessions)
	if cfg.GuardTimeout > 0 {
		c.Guard.SetTimeout(cfg.GuardTimeout)
	}

	sealer, err := cryptox.NewSealer([]byte(cfg.CredentialKey))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing credential sealer: %w", err)
	}

	deps := state.Deps{
		Client:    c.api,
		Cache:     c.cache,
		Sessions:  c.Sessions,
		Snapshots: c.db.Snapshots(),
	}
	c.User = state.NewUserStore(deps)
	c.Child = state.NewChildStore(deps)
	c.Parent = state.NewParentStore(deps, sealer, c.db.ChildCredentials())
	c.Teacher = state.NewTeacherStore(deps)
	c.Dashboard = state.NewDashboardStore(deps)

	// teardown order: caches first, then domain state
	c.registry.Register("cache", c.cache)
	c.registry.Register("user-store", c.User)
	c.registry.Register("child-store", c.Child)
	c.registry.Register("parent-store", c.Parent)
	c.registry.Register("teacher-store", c.Teacher)
	c.registry.Register("dashboard-store", c.Dashboard)

	return c, nil
}

// deviceIDSnapshot names the slot holding this install's identifier.
const deviceIDSnapshot = "device_id"

// loadDeviceID returns the persisted install identifier, minting a ULID on
// first run. A full sign-out wipes the slot with the rest of local state, so
// the id distinguishes installs between sign-outs, not forever.
func loadDeviceID(ctx context.Context, db store.Store) (string, error) {
	snap, err := db.Snapshots().Get(ctx, deviceIDSnapshot)
	if err == nil {
		if id, parseErr := idx.Parse(string(snap.Data)); parseErr == nil {
			return id.String(), nil
		}
		// corrupt slot, mint a fresh one
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	id := idx.New()
	if err := db.Snapshots().Put(ctx, deviceIDSnapshot, []byte(id.String())); err != nil {
		return "", err
	}
	return id.String(), nil
}

// Logger returns the client's structured logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Close releases the underlying database.
func (c *Client) Close() error {
	return c.db.Close()
}
