// Package reset coordinates session teardown across every stateful component.
package reset

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Resettable is anything holding per-session state: domain stores, the cache
// coordinator, the persisted snapshots. Reset returns the component to its
// signed-out zero state.
type Resettable interface {
	Reset() error
}

// Func adapts a plain function to Resettable.
type Func func() error

func (f Func) Reset() error { return f() }

// Registry holds every component that must be wiped on logout or forced
// de-authentication. Components register once at wiring time.
type Registry struct {
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	name   string
	target Resettable
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a component under a name used only for logging.
func (r *Registry) Register(name string, target Resettable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{name: name, target: target})
}

// ResetAll resets every registered component in registration order. A
// failing or panicking component never stops the sweep: the rest still
// reset, and the errors come back joined. Teardown must always leave as
// little stale state behind as possible.
func (r *Registry) ResetAll() error {
	r.mu.Lock()
	entries := make([]entry, len(r.entries))
	copy(entries, r.entries)
	r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := resetOne(e); err != nil {
			slog.Error("component reset failed",
				slog.String("component", e.name),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errors.Join(errs...)
}

func resetOne(e entry) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during reset: %v", rec)
		}
	}()
	return e.target.Reset()
}
