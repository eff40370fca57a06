package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coincraftapp/coincraft-go/internal/client/cache"
	"github.com/coincraftapp/coincraft-go/internal/client/store"
	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
	"github.com/coincraftapp/coincraft-go/pkg/cryptox"
)

// ParentStore owns the parent's view: children, assigned tasks, and the
// approval queue. Child passwords returned at creation are sealed and kept
// locally so the parent can look them up again on this device.
type ParentStore struct {
	deps        Deps
	sealer      *cryptox.Sealer
	credentials store.ChildCredentials

	mu       sync.RWMutex
	children []coinsdk.Child
}

func NewParentStore(deps Deps, sealer *cryptox.Sealer, credentials store.ChildCredentials) *ParentStore {
	return &ParentStore{deps: deps, sealer: sealer, credentials: credentials}
}

// Reset returns the store to its signed-out zero state. Sealed credentials
// live in the database and are wiped by the store-level Clear.
func (s *ParentStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = nil
	return nil
}

// ============================================================================
// Children
// ============================================================================

// Children lists the parent's children from the dashboard view, cached.
func (s *ParentStore) Children(ctx context.Context, force bool) ([]coinsdk.Child, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	children, err := cache.Load(ctx, s.deps.Cache, cache.KindChildren, userID, force,
		func(ctx context.Context) ([]coinsdk.Child, error) {
			dash, err := s.deps.Client.ParentDashboard(ctx)
			if err != nil {
				return nil, err
			}
			return dash.Children, nil
		})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.children = children
	s.mu.Unlock()
	return children, nil
}

// AddChild creates a child account. The generated password comes back
// exactly once; it is sealed and stored locally before the response is
// handed to the caller.
func (s *ParentStore) AddChild(ctx context.Context, req coinsdk.AddChildRequest) (*coinsdk.AddChildResponse, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	resp, err := s.deps.Client.AddChild(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.Password != "" && s.sealer != nil && s.credentials != nil {
		sealed, sealErr := s.sealer.Seal([]byte(resp.Password))
		if sealErr != nil {
			slog.Warn("failed to seal child credential", slog.Any("error", sealErr))
		} else if putErr := s.credentials.Put(ctx, store.ChildCredential{
			ChildID:   resp.Child.ID,
			ChildName: resp.Child.Name,
			Sealed:    sealed,
		}); putErr != nil {
			slog.Warn("failed to store child credential", slog.Any("error", putErr))
		}
	}

	s.deps.Cache.Invalidate(cache.KindChildren, userID)
	s.deps.Cache.Invalidate(cache.KindDashboard)
	return resp, nil
}

// ChildPassword opens the sealed credential stored when the child account
// was created on this device.
func (s *ParentStore) ChildPassword(ctx context.Context, childID string) (string, error) {
	if s.sealer == nil || s.credentials == nil {
		return "", store.ErrNotFound
	}

	cred, err := s.credentials.Get(ctx, childID)
	if err != nil {
		return "", err
	}

	plain, err := s.sealer.Open(cred.Sealed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// ============================================================================
// Tasks
// ============================================================================

// Tasks lists the tasks the parent has assigned, cached.
func (s *ParentStore) Tasks(ctx context.Context, force bool) ([]coinsdk.Task, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	return cache.Load(ctx, s.deps.Cache, cache.KindTasks, userID, force,
		func(ctx context.Context) ([]coinsdk.Task, error) {
			return s.deps.Client.ParentTasks(ctx)
		})
}

// AssignTask creates a task for a child and drops the cached list.
func (s *ParentStore) AssignTask(ctx context.Context, req coinsdk.CreateTaskRequest) (*coinsdk.Task, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	task, err := s.deps.Client.CreateTask(ctx, req)
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Invalidate(cache.KindTasks, userID)
	return task, nil
}

// ApproveTask approves a completed task, releasing the reward. The child's
// balance is backend-settled, so the relevant caches are dropped rather than
// predicted.
func (s *ParentStore) ApproveTask(ctx context.Context, taskID string) (*coinsdk.Task, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	task, err := s.deps.Client.ApproveTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Invalidate(cache.KindTasks, userID)
	s.deps.Cache.Invalidate(cache.KindChildren, userID)
	s.deps.Cache.Invalidate(cache.KindDashboard)
	return task, nil
}

// ============================================================================
// Approval Queue
// ============================================================================

// PendingRedemptions lists the requests waiting on the parent, cached.
func (s *ParentStore) PendingRedemptions(ctx context.Context, force bool) ([]coinsdk.RedemptionRequest, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	return cache.Load(ctx, s.deps.Cache, cache.KindRedemptions, userID, force,
		func(ctx context.Context) ([]coinsdk.RedemptionRequest, error) {
			return s.deps.Client.PendingRedemptions(ctx)
		})
}

// ResolveRedemption approves or rejects a pending request. Approval is the
// moment coins actually move, so every cache that could show the old balance
// is dropped.
func (s *ParentStore) ResolveRedemption(ctx context.Context, requestID string, approve bool) (*coinsdk.RedemptionRequest, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	var resolved *coinsdk.RedemptionRequest
	if approve {
		resolved, err = s.deps.Client.ApproveRedemption(ctx, requestID)
	} else {
		resolved, err = s.deps.Client.RejectRedemption(ctx, requestID)
	}
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Invalidate(cache.KindRedemptions)
	if approve {
		s.deps.Cache.Invalidate(cache.KindChildren, userID)
		s.deps.Cache.Invalidate(cache.KindDashboard)
		s.deps.Cache.Invalidate(cache.KindTransactions)
	}
	return resolved, nil
}
