// Package session owns the authenticated session: the bearer token, the
// current user, persistence across restarts, and teardown.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"github.com/coincraftapp/coincraft-go/internal/client/reset"
	"github.com/coincraftapp/coincraft-go/internal/client/store"
	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
)

// ErrNoSession reports that there is nothing to restore or refresh: the user
// is signed out.
var ErrNoSession = errors.New("session: not authenticated")

// DefaultValidateInterval is how often EnsureFresh revalidates the token
// against the backend.
const DefaultValidateInterval = 30 * time.Second

// Session is an immutable view of the authenticated state, handed out to
// callers so they never share the manager's mutable fields.
type Session struct {
	Token       string
	User        coinsdk.User
	ValidatedAt time.Time
}

// Validated reports whether the backend has confirmed the token since the
// session was established or restored.
func (s Session) Validated() bool { return !s.ValidatedAt.IsZero() }

// Manager owns the session lifecycle. It is the client's single writer of
// the token: the SDK pulls the token through a TokenSource closure, and a
// 401 anywhere flows back in through the unauthorized handler.
type Manager struct {
	client   *coinsdk.Client
	store    store.Store
	registry *reset.Registry

	mu              sync.RWMutex
	token           string
	user            *coinsdk.User
	validatedAt     time.Time
	lastValidateErr error

	validateInterval time.Duration
	validateLimiter  *rate.Limiter
}

// Option configures a Manager.
type Option func(*Manager)

// WithValidateInterval overrides how often EnsureFresh revalidates.
func WithValidateInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.validateInterval = d
		m.validateLimiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewManager wires the manager into the SDK client: the client pulls its
// token from here, and 401 responses tear the session down locally.
func NewManager(client *coinsdk.Client, st store.Store, registry *reset.Registry, opts ...Option) *Manager {
	m := &Manager{
		client:           client,
		store:            st,
		registry:         registry,
		validateInterval: DefaultValidateInterval,
		validateLimiter:  rate.NewLimiter(rate.Every(DefaultValidateInterval), 1),
	}
	for _, opt := range opts {
		opt(m)
	}

	client.SetTokenSource(m.currentToken)
	client.SetUnauthorizedHandler(m.invalidateLocal)

	return m
}

// ============================================================================
// Establishing a Session
// ============================================================================

// Login authenticates with credentials. Two round trips: the token exchange,
// then the user fetch with that token. Failure at either step leaves whatever
// was installed before - signed out or a prior session - untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	tokenResp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	return m.adopt(ctx, tokenResp.AccessToken)
}

// Register creates a parent or teacher account and signs in with the
// returned token in one step.
func (m *Manager) Register(ctx context.Context, req coinsdk.RegisterRequest) (Session, error) {
	regResp, err := m.client.Register(ctx, req)
	if err != nil {
		return Session{}, err
	}

	if err := regResp.User.Validate(); err != nil {
		return Session{}, err
	}

	now := time.Now()
	m.setState(regResp.AccessToken, &regResp.User, now)
	if err := m.persist(ctx, regResp.AccessToken, regResp.User); err != nil {
		slog.Warn("failed to persist session", slog.Any("error", err))
	}

	return m.Current()
}

// adopt vets a candidate token by fetching the user it belongs to, then
// installs and persists the pair. The fetch carries the candidate token
// explicitly, so until it succeeds the installed session stays untouched
// and a rejected candidate cannot trip the unauthorized teardown.
func (m *Manager) adopt(ctx context.Context, token string) (Session, error) {
	user, err := m.client.UserForToken(ctx, token)
	if err != nil {
		return Session{}, fmt.Errorf("fetching user for new session: %w", err)
	}

	now := time.Now()
	m.setState(token, user, now)
	if err := m.persist(ctx, token, *user); err != nil {
		slog.Warn("failed to persist session", slog.Any("error", err))
	}

	return m.Current()
}

// ============================================================================
// Restore & Validation
// ============================================================================

// Restore rebuilds the session from the persisted identity slot. An expired
// token is discarded without a network call; an unexpired one is installed
// and then validated against the backend. Validation failure on network
// grounds keeps the restored session but leaves it unvalidated, so the
// authorization guard stays fail-closed until the backend answers.
func (m *Manager) Restore(ctx context.Context) (Session, error) {
	rec, err := m.store.Identity().Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("loading persisted identity: %w", err)
	}

	if tokenExpired(rec.Token) {
		slog.Info("persisted token expired, discarding")
		if err := m.store.Identity().Clear(ctx); err != nil {
			slog.Warn("failed to clear expired identity", slog.Any("error", err))
		}
		return Session{}, ErrNoSession
	}

	var user coinsdk.User
	if err := json.Unmarshal(rec.UserJSON, &user); err != nil || user.Validate() != nil {
		// persisted user is garbage; the slot is useless without it
		if clearErr := m.store.Identity().Clear(ctx); clearErr != nil {
			slog.Warn("failed to clear corrupt identity", slog.Any("error", clearErr))
		}
		return Session{}, ErrNoSession
	}

	m.setState(rec.Token, &user, time.Time{})

	if err := m.Validate(ctx); err != nil {
		if coinsdk.IsUnauthorized(err) {
			return Session{}, ErrNoSession
		}
		// offline: keep the session, leave it unvalidated
		slog.Warn("could not validate restored session", slog.Any("error", err))
	}

	return m.Current()
}

// Validate confirms the token with the backend and refreshes the user
// record. A 401 tears the session down; any other failure leaves the state
// untouched.
func (m *Manager) Validate(ctx context.Context) error {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()
	if token == "" {
		return ErrNoSession
	}

	verifyResp, err := m.client.Verify(ctx)
	if err != nil {
		// a 401 already tore state down via the unauthorized handler
		m.setValidateErr(err)
		return err
	}
	if !verifyResp.Valid {
		m.invalidateLocal()
		err := &coinsdk.APIError{
			StatusCode: 401,
			Code:       coinsdk.ErrorCodeUnauthorized,
			Message:    "token rejected by verification",
		}
		m.setValidateErr(err)
		return err
	}

	if err := verifyResp.User.Validate(); err != nil {
		m.setValidateErr(err)
		return err
	}

	now := time.Now()
	m.mu.Lock()
	m.user = &verifyResp.User
	m.validatedAt = now
	m.lastValidateErr = nil
	token = m.token
	m.mu.Unlock()

	if err := m.persist(ctx, token, verifyResp.User); err != nil {
		slog.Warn("failed to persist validated session", slog.Any("error", err))
	}
	return nil
}

// EnsureFresh revalidates the session if the last confirmation is older than
// the validate interval. Calls inside the window are free; the limiter also
// collapses bursts of stale checks into one backend hit.
func (m *Manager) EnsureFresh(ctx context.Context) error {
	m.mu.RLock()
	token := m.token
	validatedAt := m.validatedAt
	m.mu.RUnlock()

	if token == "" {
		return ErrNoSession
	}
	if !validatedAt.IsZero() && time.Since(validatedAt) < m.validateInterval {
		return nil
	}
	if !m.validateLimiter.Allow() {
		if !validatedAt.IsZero() {
			// another caller just validated or is about to; don't stampede
			return nil
		}
		// the backend has never confirmed this session; without a check it
		// cannot pass for fresh
		m.mu.RLock()
		lastErr := m.lastValidateErr
		m.mu.RUnlock()
		if lastErr != nil {
			return lastErr
		}
		return ErrNoSession
	}

	return m.Validate(ctx)
}

// Refresh refetches the user record (balance, level) and persists it.
func (m *Manager) Refresh(ctx context.Context) (Session, error) {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()
	if token == "" {
		return Session{}, ErrNoSession
	}

	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		return Session{}, err
	}

	now := time.Now()
	m.setState(token, user, now)
	if err := m.persist(ctx, token, *user); err != nil {
		slog.Warn("failed to persist refreshed session", slog.Any("error", err))
	}

	return m.Current()
}

// ============================================================================
// Teardown
// ============================================================================

// Logout tears the session down. The remote logout is best effort; local
// teardown proceeds regardless, wiping persistence and resetting every
// registered component.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()

	if token != "" {
		if err := m.client.Logout(ctx); err != nil {
			slog.Warn("remote logout failed, continuing local teardown", slog.Any("error", err))
		}
	}

	m.setState("", nil, time.Time{})

	if err := m.store.Clear(ctx); err != nil {
		slog.Error("failed to clear persisted state", slog.Any("error", err))
	}

	if m.registry != nil {
		if err := m.registry.ResetAll(); err != nil {
			slog.Error("component reset incomplete", slog.Any("error", err))
		}
	}

	return nil
}

// invalidateLocal is the unauthorized handler: the backend said the token is
// dead, so tear down locally without calling the backend again.
func (m *Manager) invalidateLocal() {
	m.mu.Lock()
	hadSession := m.token != ""
	m.token = ""
	m.user = nil
	m.validatedAt = time.Time{}
	m.mu.Unlock()

	if !hadSession {
		return
	}

	slog.Info("session invalidated by backend")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.Clear(ctx); err != nil {
		slog.Error("failed to clear persisted state", slog.Any("error", err))
	}
	if m.registry != nil {
		if err := m.registry.ResetAll(); err != nil {
			slog.Error("component reset incomplete", slog.Any("error", err))
		}
	}
}

// ============================================================================
// Accessors
// ============================================================================

// Current returns a snapshot of the session, or ErrNoSession.
func (m *Manager) Current() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == "" || m.user == nil {
		return Session{}, ErrNoSession
	}
	return Session{
		Token:       m.token,
		User:        *m.user,
		ValidatedAt: m.validatedAt,
	}, nil
}

// IsAuthenticated reports whether a session is installed, validated or not.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

// User returns the current user, if signed in.
func (m *Manager) User() (coinsdk.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return coinsdk.User{}, false
	}
	return *m.user, true
}

// Role returns the current user's role, or "" when signed out.
func (m *Manager) Role() coinsdk.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.Role
}

func (m *Manager) currentToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) setValidateErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastValidateErr = err
}

func (m *Manager) setState(token string, user *coinsdk.User, validatedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.user = user
	m.validatedAt = validatedAt
	m.lastValidateErr = nil
}

func (m *Manager) persist(ctx context.Context, token string, user coinsdk.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return m.store.Identity().Save(ctx, store.IdentityRecord{
		Token:    token,
		UserID:   user.ID,
		UserJSON: userJSON,
	})
}

// tokenExpired checks the token's exp claim without verifying the signature;
// the client has no key and the backend re-verifies every request anyway.
// Tokens that don't parse or carry no exp are passed through to the backend
// to judge.
func tokenExpired(tokenStr string) bool {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
