// Package optimistic runs local-first mutations that reconcile against the
// backend's authoritative response.
package optimistic

import (
	"context"
	"log/slog"
)

// Mutation is a single optimistic write. Set applies a value to local state;
// Call performs the remote operation and returns the authoritative value.
//
// The lifecycle is strict: Applied goes in immediately, Previous comes back
// on any error, and a successful Call's result overwrites the optimistic
// guess even when they already agree.
type Mutation[T any] struct {
	// Name appears in logs only
	Name string

	// Previous is the local value before the mutation, kept for rollback
	Previous T

	// Applied is the optimistic prediction shown while the call is in flight
	Applied T

	// Set writes a value into local state
	Set func(T)

	// Call performs the remote mutation and returns the authoritative value.
	// A nil result with a nil error means "keep the optimistic value".
	Call func(ctx context.Context) (*T, error)
}

// Run executes the mutation: optimistic apply, remote call, then rollback or
// authoritative overwrite. The returned error is the remote call's error,
// after local state has already been restored.
func Run[T any](ctx context.Context, m Mutation[T]) error {
	m.Set(m.Applied)

	authoritative, err := m.Call(ctx)
	if err != nil {
		slog.Debug("optimistic mutation rolled back",
			slog.String("mutation", m.Name),
			slog.Any("error", err),
		)
		m.Set(m.Previous)
		return err
	}

	if authoritative != nil {
		m.Set(*authoritative)
	}
	return nil
}
