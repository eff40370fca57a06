// Package cache tracks freshness of remote data so stores can skip refetches
// while their last fetch is still recent.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched value counts as fresh.
const DefaultTTL = 5 * time.Minute

// Kind names a category of cached data. Invalidation is scoped per kind so
// a mutation on transactions does not dump the unrelated class roster.
type Kind string

const (
	KindProfile      Kind = "profile"
	KindGoals        Kind = "goals"
	KindTransactions Kind = "transactions"
	KindTasks        Kind = "tasks"
	KindClasses      Kind = "classes"
	KindStudents     Kind = "students"
	KindShop         Kind = "shop"
	KindRedemptions  Kind = "redemptions"
	KindChildren     Kind = "children"
	KindDashboard    Kind = "dashboard"
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Coordinator tracks per-kind, per-scope fetch timestamps and the values
// fetched. Scope distinguishes instances within a kind (a user id, a class
// id); kinds with one instance use an empty scope.
type Coordinator struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	group singleflight.Group

	// now is swappable for tests
	now func() time.Time
}

// New creates a coordinator with the default 5 minute TTL.
func New() *Coordinator {
	return &Coordinator{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
}

// SetTTL overrides the freshness window. Zero or negative disables caching
// entirely: nothing is ever considered fresh.
func (c *Coordinator) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// SetClock swaps the time source. Tests use it to cross the TTL boundary
// without sleeping.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func key(kind Kind, scope string) string {
	return string(kind) + "\x00" + scope
}

// IsValid reports whether the kind+scope was fetched within the TTL.
func (c *Coordinator) IsValid(kind Kind, scope string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key(kind, scope)]
	if !ok || c.ttl <= 0 {
		return false
	}
	return c.now().Sub(e.fetchedAt) < c.ttl
}

// Get returns the cached value if it is still fresh.
func (c *Coordinator) Get(kind Kind, scope string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key(kind, scope)]
	if !ok || c.ttl <= 0 || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// Put records a freshly fetched value, restarting its TTL window.
func (c *Coordinator) Put(kind Kind, scope string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(kind, scope)] = entry{value: value, fetchedAt: c.now()}
}

// Invalidate drops entries for a kind. With no scopes it drops every scope
// of that kind; with scopes it drops only those.
func (c *Coordinator) Invalidate(kind Kind, scopes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(scopes) == 0 {
		prefix := string(kind) + "\x00"
		for k := range c.entries {
			if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
				delete(c.entries, k)
			}
		}
		return
	}

	for _, scope := range scopes {
		delete(c.entries, key(kind, scope))
	}
}

// Reset drops every entry. Satisfies the session teardown contract.
func (c *Coordinator) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	return nil
}

// Load returns the cached value for kind+scope, or fetches it. Concurrent
// loads of the same key share one in-flight fetch. force bypasses the
// freshness check but still dedupes.
//
// A failed fetch never clobbers the cache: the previous value stays and the
// error is returned to the caller.
func Load[T any](ctx context.Context, c *Coordinator, kind Kind, scope string, force bool, fetch func(context.Context) (T, error)) (T, error) {
	if !force {
		if v, ok := c.Get(kind, scope); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
	}

	v, err, _ := c.group.Do(key(kind, scope), func() (any, error) {
		fetched, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(kind, scope, fetched)
		return fetched, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
