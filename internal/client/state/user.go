package state

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coincraftapp/coincraft-go/internal/client/cache"
	"github.com/coincraftapp/coincraft-go/internal/client/optimistic"
	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
)

// Snapshot names persisted by the user store.
const (
	snapshotProfile            = "profile"
	snapshotRecentTransactions = "recent_transactions"
)

// recentTransactionsLimit bounds the persisted warm-start slice.
const recentTransactionsLimit = 20

// UserStore owns the signed-in user's own data: balance, goals, transaction
// history. Goal contributions and transactions apply optimistically and
// reconcile against the backend's settled values.
type UserStore struct {
	deps Deps

	mu           sync.RWMutex
	balance      int
	balanceKnown bool
	goals        []coinsdk.Goal
	transactions []coinsdk.Transaction
}

func NewUserStore(deps Deps) *UserStore {
	return &UserStore{deps: deps}
}

// Reset returns the store to its signed-out zero state.
func (s *UserStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = 0
	s.balanceKnown = false
	s.goals = nil
	s.transactions = nil
	return nil
}

// ============================================================================
// Balance
// ============================================================================

// Balance returns the locally tracked coin balance. Seeded from the profile
// fetch; optimistic mutations move it before the backend settles.
func (s *UserStore) Balance() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance, s.balanceKnown
}

func (s *UserStore) setBalance(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = v
	s.balanceKnown = true
}

// Profile fetches the user's own record, refreshing the tracked balance.
func (s *UserStore) Profile(ctx context.Context, force bool) (coinsdk.User, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return coinsdk.User{}, err
	}

	user, err := cache.Load(ctx, s.deps.Cache, cache.KindProfile, userID, force,
		func(ctx context.Context) (coinsdk.User, error) {
			fetched, err := s.deps.Client.CurrentUser(ctx)
			if err != nil {
				return coinsdk.User{}, err
			}
			return *fetched, nil
		})
	if err != nil {
		return coinsdk.User{}, err
	}

	s.setBalance(user.Coins)
	if raw, err := json.Marshal(user); err == nil {
		saveSnapshot(ctx, s.deps.Snapshots, snapshotProfile, raw)
	}
	return user, nil
}

// ============================================================================
// Goals
// ============================================================================

// Goals lists the user's savings goals, cached.
func (s *UserStore) Goals(ctx context.Context, force bool) ([]coinsdk.Goal, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	goals, err := cache.Load(ctx, s.deps.Cache, cache.KindGoals, userID, force,
		func(ctx context.Context) ([]coinsdk.Goal, error) {
			return s.deps.Client.Goals(ctx, userID)
		})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.goals = goals
	s.mu.Unlock()
	return goals, nil
}

// CreateGoal creates a goal and invalidates the goal cache so the next read
// refetches the authoritative list.
func (s *UserStore) CreateGoal(ctx context.Context, req coinsdk.CreateGoalRequest) (*coinsdk.Goal, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	goal, err := s.deps.Client.CreateGoal(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Invalidate(cache.KindGoals, userID)
	return goal, nil
}

// DeleteGoal removes a goal and invalidates the cached list.
func (s *UserStore) DeleteGoal(ctx context.Context, goalID string) error {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return err
	}

	if err := s.deps.Client.DeleteGoal(ctx, userID, goalID); err != nil {
		return err
	}

	s.deps.Cache.Invalidate(cache.KindGoals, userID)
	return nil
}

// goalFunds pairs the values a contribution moves together: the balance and
// one goal's progress.
type goalFunds struct {
	Balance int
	Goal    coinsdk.Goal
}

// ContributeToGoal moves coins into a goal optimistically: balance and goal
// progress update immediately, roll back if the backend rejects, and settle
// to the backend's figures on success.
func (s *UserStore) ContributeToGoal(ctx context.Context, goalID string, amount int) error {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return err
	}

	s.mu.RLock()
	prev := goalFunds{Balance: s.balance}
	found := false
	for _, g := range s.goals {
		if g.ID == goalID {
			prev.Goal = g
			found = true
			break
		}
	}
	s.mu.RUnlock()

	if !found {
		// nothing local to predict against; fall through to a plain call
		resp, err := s.deps.Client.Contribute(ctx, userID, goalID, amount)
		if err != nil {
			return err
		}
		s.setBalance(resp.RemainingCoins)
		s.invalidateAfterContribute(userID)
		return nil
	}

	applied := prev
	applied.Balance -= amount
	applied.Goal.CurrentAmount += amount

	err = optimistic.Run(ctx, optimistic.Mutation[goalFunds]{
		Name:     "contribute-to-goal",
		Previous: prev,
		Applied:  applied,
		Set:      s.applyGoalFunds,
		Call: func(ctx context.Context) (*goalFunds, error) {
			resp, err := s.deps.Client.Contribute(ctx, userID, goalID, amount)
			if err != nil {
				return nil, err
			}
			return &goalFunds{Balance: resp.RemainingCoins, Goal: resp.Goal}, nil
		},
	})
	if err != nil {
		return err
	}

	s.invalidateAfterContribute(userID)
	return nil
}

// invalidateAfterContribute drops the cached reads a settled contribution
// has made stale: the profile (balance), the goal list, and the history.
func (s *UserStore) invalidateAfterContribute(userID string) {
	s.deps.Cache.Invalidate(cache.KindProfile, userID)
	s.deps.Cache.Invalidate(cache.KindGoals, userID)
	s.deps.Cache.Invalidate(cache.KindTransactions, userID)
}

func (s *UserStore) applyGoalFunds(v goalFunds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = v.Balance
	s.balanceKnown = true
	for i, g := range s.goals {
		if g.ID == v.Goal.ID {
			s.goals[i] = v.Goal
			break
		}
	}
}

// ============================================================================
// Transactions
// ============================================================================

// Transactions lists the user's history, cached, and persists a short
// warm-start snapshot.
func (s *UserStore) Transactions(ctx context.Context, force bool) ([]coinsdk.Transaction, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	txns, err := cache.Load(ctx, s.deps.Cache, cache.KindTransactions, userID, force,
		func(ctx context.Context) ([]coinsdk.Transaction, error) {
			return s.deps.Client.Transactions(ctx, userID, coinsdk.TransactionFilter{})
		})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.transactions = txns
	s.mu.Unlock()

	recent := txns
	if len(recent) > recentTransactionsLimit {
		recent = recent[:recentTransactionsLimit]
	}
	if raw, err := json.Marshal(recent); err == nil {
		saveSnapshot(ctx, s.deps.Snapshots, snapshotRecentTransactions, raw)
	}
	return txns, nil
}

// RecordTransaction applies an earn or spend optimistically against the
// balance, settling to the backend's confirmed figure.
func (s *UserStore) RecordTransaction(ctx context.Context, req coinsdk.CreateTransactionRequest) error {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return err
	}

	s.mu.RLock()
	prev := s.balance
	known := s.balanceKnown
	s.mu.RUnlock()

	applied := prev
	switch req.Type {
	case coinsdk.TransactionEarn:
		applied += req.Amount
	case coinsdk.TransactionSpend, coinsdk.TransactionSave:
		applied -= req.Amount
	}

	call := func(ctx context.Context) (*int, error) {
		resp, err := s.deps.Client.CreateTransaction(ctx, userID, req)
		if err != nil {
			return nil, err
		}
		return &resp.Balance, nil
	}

	if !known {
		// no local balance to predict against
		resp, err := s.deps.Client.CreateTransaction(ctx, userID, req)
		if err != nil {
			return err
		}
		s.setBalance(resp.Balance)
	} else {
		err = optimistic.Run(ctx, optimistic.Mutation[int]{
			Name:     "record-transaction",
			Previous: prev,
			Applied:  applied,
			Set:      s.setBalance,
			Call:     call,
		})
		if err != nil {
			return err
		}
	}

	s.deps.Cache.Invalidate(cache.KindProfile, userID)
	s.deps.Cache.Invalidate(cache.KindTransactions, userID)
	return nil
}
