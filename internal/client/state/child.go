package state

import (
	"context"
	"sync"

	"github.com/coincraftapp/coincraft-go/internal/client/cache"
	"github.com/coincraftapp/coincraft-go/internal/client/optimistic"
	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
)

// ChildStore owns what a child sees: their tasks, the shop, and their
// pending requests. Purchases and conversions never apply optimistically;
// they sit in the parent's queue and only an observed approval moves coins.
type ChildStore struct {
	deps Deps

	mu    sync.RWMutex
	tasks []coinsdk.Task
}

func NewChildStore(deps Deps) *ChildStore {
	return &ChildStore{deps: deps}
}

// Reset returns the store to its signed-out zero state.
func (s *ChildStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	return nil
}

// ============================================================================
// Tasks
// ============================================================================

// Tasks lists the child's assigned tasks from their dashboard view, cached.
func (s *ChildStore) Tasks(ctx context.Context, force bool) ([]coinsdk.Task, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	tasks, err := cache.Load(ctx, s.deps.Cache, cache.KindTasks, userID, force,
		func(ctx context.Context) ([]coinsdk.Task, error) {
			dash, err := s.deps.Client.RoleDashboard(ctx, s.deps.Sessions.Role())
			if err != nil {
				return nil, err
			}
			return dash.PendingTasks, nil
		})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return tasks, nil
}

// CompleteTask marks a task done optimistically. The status flips to
// completed immediately, rolls back on rejection, and settles to whatever
// status the backend assigns (approved directly when no approval is
// required).
func (s *ChildStore) CompleteTask(ctx context.Context, taskID string) error {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return err
	}

	s.mu.RLock()
	var prev coinsdk.Task
	found := false
	for _, task := range s.tasks {
		if task.ID == taskID {
			prev = task
			found = true
			break
		}
	}
	s.mu.RUnlock()

	if !found {
		if _, err := s.deps.Client.CompleteTask(ctx, taskID); err != nil {
			return err
		}
		s.deps.Cache.Invalidate(cache.KindTasks, userID)
		return nil
	}

	applied := prev
	applied.Status = coinsdk.TaskCompleted

	err = optimistic.Run(ctx, optimistic.Mutation[coinsdk.Task]{
		Name:     "complete-task",
		Previous: prev,
		Applied:  applied,
		Set:      s.applyTask,
		Call: func(ctx context.Context) (*coinsdk.Task, error) {
			return s.deps.Client.CompleteTask(ctx, taskID)
		},
	})
	if err != nil {
		return err
	}

	s.deps.Cache.Invalidate(cache.KindTasks, userID)
	return nil
}

func (s *ChildStore) applyTask(task coinsdk.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == task.ID {
			s.tasks[i] = task
			return
		}
	}
}

// ============================================================================
// Shop & Requests
// ============================================================================

// ShopItems lists the shop catalogue, cached globally (it is not
// per-user data).
func (s *ChildStore) ShopItems(ctx context.Context, force bool) ([]coinsdk.ShopItem, error) {
	return cache.Load(ctx, s.deps.Cache, cache.KindShop, "", force,
		func(ctx context.Context) ([]coinsdk.ShopItem, error) {
			return s.deps.Client.ShopItems(ctx)
		})
}

// Purchase files a purchase request. Deliberately not optimistic: the coins
// stay where they are until a parent approves, so the only local effect is
// dropping the cached request list.
func (s *ChildStore) Purchase(ctx context.Context, itemID string) (*coinsdk.PurchaseResponse, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	resp, err := s.deps.Client.Purchase(ctx, itemID)
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Invalidate(cache.KindRedemptions, userID)
	return resp, nil
}

// ConversionRequests lists the child's coin-to-money requests, cached.
func (s *ChildStore) ConversionRequests(ctx context.Context, force bool) ([]coinsdk.RedemptionRequest, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	return cache.Load(ctx, s.deps.Cache, cache.KindRedemptions, userID, force,
		func(ctx context.Context) ([]coinsdk.RedemptionRequest, error) {
			return s.deps.Client.ConversionRequests(ctx, userID)
		})
}

// RequestConversion asks to turn coins into money. Same pending discipline
// as purchases: no local balance movement.
func (s *ChildStore) RequestConversion(ctx context.Context, req coinsdk.CreateConversionRequest) (*coinsdk.RedemptionRequest, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	created, err := s.deps.Client.CreateConversionRequest(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Invalidate(cache.KindRedemptions, userID)
	return created, nil
}
