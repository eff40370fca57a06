package state

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coincraftapp/coincraft-go/internal/client/cache"
	"github.com/coincraftapp/coincraft-go/internal/client/reset"
	"github.com/coincraftapp/coincraft-go/internal/client/store"
	"github.com/coincraftapp/coincraft-go/internal/client/store/drivers/sqlite"
	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
	"github.com/coincraftapp/coincraft-go/pkg/cryptox"
)

// handle registers h for a "METHOD /path" pattern, checking the method
// per-request so registration works on toolchains whose ServeMux lacks
// method-qualified patterns.
func handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}

type fakeSessions struct {
	user coinsdk.User
	ok   bool
}

func (f *fakeSessions) User() (coinsdk.User, bool) { return f.user, f.ok }
func (f *fakeSessions) Role() coinsdk.Role         { return f.user.Role }

func childSessions() *fakeSessions {
	return &fakeSessions{
		user: coinsdk.User{ID: "user-1", Email: "kid@example.com", Role: coinsdk.RoleYoungerChild, Coins: 100},
		ok:   true,
	}
}

func newDeps(t *testing.T, handler http.Handler, sessions SessionInfo) Deps {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return Deps{
		Client:   coinsdk.New(server.URL),
		Cache:    cache.New(),
		Sessions: sessions,
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "coincraft.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestContributeToGoal(t *testing.T) {
	t.Parallel()

	t.Run("rejection rolls balance and goal back", func(t *testing.T) {
		mux := http.NewServeMux()
		handle(mux, "GET /api/users/user-1/goals", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]coinsdk.Goal{
				{ID: "goal-1", Title: "Bike", TargetAmount: 200, CurrentAmount: 50},
			})
		})
		handle(mux, "POST /api/users/user-1/goals/goal-1/contribute", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(coinsdk.ErrorResponse{Detail: "Insufficient coins"})
		})

		s := NewUserStore(newDeps(t, mux, childSessions()))
		s.setBalance(100)

		_, err := s.Goals(context.Background(), false)
		require.NoError(t, err)

		err = s.ContributeToGoal(context.Background(), "goal-1", 30)
		require.Error(t, err)
		require.True(t, coinsdk.IsBusinessRejection(err))

		balance, known := s.Balance()
		require.True(t, known)
		require.Equal(t, 100, balance)

		s.mu.RLock()
		require.Equal(t, 50, s.goals[0].CurrentAmount)
		s.mu.RUnlock()
	})

	t.Run("success settles to the backend's figures", func(t *testing.T) {
		mux := http.NewServeMux()
		handle(mux, "GET /api/users/user-1/goals", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]coinsdk.Goal{
				{ID: "goal-1", Title: "Bike", TargetAmount: 200, CurrentAmount: 50},
			})
		})
		handle(mux, "POST /api/users/user-1/goals/goal-1/contribute", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(coinsdk.ContributeResponse{
				Success:        true,
				Goal:           coinsdk.Goal{ID: "goal-1", Title: "Bike", TargetAmount: 200, CurrentAmount: 80},
				RemainingCoins: 70,
			})
		})

		s := NewUserStore(newDeps(t, mux, childSessions()))
		s.setBalance(100)

		_, err := s.Goals(context.Background(), false)
		require.NoError(t, err)

		require.NoError(t, s.ContributeToGoal(context.Background(), "goal-1", 30))

		balance, _ := s.Balance()
		require.Equal(t, 70, balance)

		s.mu.RLock()
		require.Equal(t, 80, s.goals[0].CurrentAmount)
		s.mu.RUnlock()
	})
}

func TestGoalsUseCache(t *testing.T) {
	t.Parallel()

	fetches := 0
	mux := http.NewServeMux()
	handle(mux, "GET /api/users/user-1/goals", func(w http.ResponseWriter, r *http.Request) {
		fetches++
		json.NewEncoder(w).Encode([]coinsdk.Goal{{ID: "goal-1"}})
	})

	s := NewUserStore(newDeps(t, mux, childSessions()))

	_, err := s.Goals(context.Background(), false)
	require.NoError(t, err)
	_, err = s.Goals(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, fetches)

	// force bypasses the fresh entry
	_, err = s.Goals(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 2, fetches)
}

func TestRecordTransaction(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	handle(mux, "POST /api/users/user-1/transactions", func(w http.ResponseWriter, r *http.Request) {
		var req coinsdk.CreateTransactionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(coinsdk.TransactionResponse{
			Transaction: coinsdk.Transaction{ID: "txn-1", Type: req.Type, Amount: req.Amount},
			Balance:     115, // backend added a streak bonus
		})
	})

	s := NewUserStore(newDeps(t, mux, childSessions()))
	s.setBalance(100)

	require.NoError(t, s.RecordTransaction(context.Background(), coinsdk.CreateTransactionRequest{
		Type:        coinsdk.TransactionEarn,
		Amount:      10,
		Description: "chores",
	}))

	balance, _ := s.Balance()
	require.Equal(t, 115, balance)
}

func TestSettledMutationDropsCachedReads(t *testing.T) {
	t.Parallel()

	t.Run("transaction settle drops the cached profile", func(t *testing.T) {
		balance := 100
		mux := http.NewServeMux()
		handle(mux, "GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(coinsdk.User{
				ID: "user-1", Email: "kid@example.com", Role: coinsdk.RoleYoungerChild, Coins: balance,
			})
		})
		handle(mux, "POST /api/users/user-1/transactions", func(w http.ResponseWriter, r *http.Request) {
			balance = 115
			json.NewEncoder(w).Encode(coinsdk.TransactionResponse{
				Transaction: coinsdk.Transaction{ID: "txn-1", Type: coinsdk.TransactionEarn, Amount: 10},
				Balance:     balance,
			})
		})

		s := NewUserStore(newDeps(t, mux, childSessions()))

		user, err := s.Profile(context.Background(), false)
		require.NoError(t, err)
		require.Equal(t, 100, user.Coins)

		require.NoError(t, s.RecordTransaction(context.Background(), coinsdk.CreateTransactionRequest{
			Type:        coinsdk.TransactionEarn,
			Amount:      10,
			Description: "chores",
		}))

		// the pre-mutation profile no longer comes out of the cache
		user, err = s.Profile(context.Background(), false)
		require.NoError(t, err)
		require.Equal(t, 115, user.Coins)

		got, _ := s.Balance()
		require.Equal(t, 115, got)
	})

	t.Run("contribution settle drops the cached goal list", func(t *testing.T) {
		goal := coinsdk.Goal{ID: "goal-1", Title: "Bike", TargetAmount: 200, CurrentAmount: 50}
		mux := http.NewServeMux()
		handle(mux, "GET /api/users/user-1/goals", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]coinsdk.Goal{goal})
		})
		handle(mux, "POST /api/users/user-1/goals/goal-1/contribute", func(w http.ResponseWriter, r *http.Request) {
			goal.CurrentAmount = 80
			json.NewEncoder(w).Encode(coinsdk.ContributeResponse{
				Success:        true,
				Goal:           goal,
				RemainingCoins: 70,
			})
		})

		s := NewUserStore(newDeps(t, mux, childSessions()))
		s.setBalance(100)

		_, err := s.Goals(context.Background(), false)
		require.NoError(t, err)

		require.NoError(t, s.ContributeToGoal(context.Background(), "goal-1", 30))

		goals, err := s.Goals(context.Background(), false)
		require.NoError(t, err)
		require.Equal(t, 80, goals[0].CurrentAmount)
	})
}

func TestPurchaseIsNotOptimistic(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	handle(mux, "POST /api/shop/purchase", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(coinsdk.PurchaseResponse{
			Success: true,
			Message: "Purchase request sent for approval",
		})
	})

	sessions := childSessions()
	deps := newDeps(t, mux, sessions)
	child := NewChildStore(deps)
	user := NewUserStore(deps)
	user.setBalance(100)

	resp, err := child.Purchase(context.Background(), "item-1")
	require.NoError(t, err)
	require.True(t, resp.Success)

	// the request is pending; no coins moved locally
	balance, _ := user.Balance()
	require.Equal(t, 100, balance)
}

func TestCompleteTaskRollsBack(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	handle(mux, "GET /api/dashboard/younger_child", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(coinsdk.Dashboard{
			PendingTasks: []coinsdk.Task{
				{ID: "task-1", Title: "Dishes", Status: coinsdk.TaskPending},
			},
		})
	})
	handle(mux, "PUT /api/tasks/task-1/complete", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(coinsdk.ErrorResponse{Detail: "task already resolved"})
	})

	s := NewChildStore(newDeps(t, mux, childSessions()))

	_, err := s.Tasks(context.Background(), false)
	require.NoError(t, err)

	err = s.CompleteTask(context.Background(), "task-1")
	require.Error(t, err)

	s.mu.RLock()
	require.Equal(t, coinsdk.TaskPending, s.tasks[0].Status)
	s.mu.RUnlock()
}

func TestAddChildSealsCredential(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	handle(mux, "POST /api/parents/children", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(coinsdk.AddChildResponse{
			Success:  true,
			Child:    coinsdk.User{ID: "child-1", Name: "Alex", Email: "alex@example.com", Role: coinsdk.RoleYoungerChild},
			Password: "generated-pw-123",
		})
	})

	sessions := &fakeSessions{
		user: coinsdk.User{ID: "parent-1", Email: "p@example.com", Role: coinsdk.RoleParent},
		ok:   true,
	}

	st := newTestStore(t)
	sealer, err := cryptox.NewSealer([]byte("parent-1:p@example.com"))
	require.NoError(t, err)

	s := NewParentStore(newDeps(t, mux, sessions), sealer, st.ChildCredentials())

	resp, err := s.AddChild(context.Background(), coinsdk.AddChildRequest{Name: "Alex", Age: 8})
	require.NoError(t, err)
	require.Equal(t, "generated-pw-123", resp.Password)

	// the password survives locally, sealed
	pw, err := s.ChildPassword(context.Background(), "child-1")
	require.NoError(t, err)
	require.Equal(t, "generated-pw-123", pw)

	// and the stored blob is not plaintext
	cred, err := st.ChildCredentials().Get(context.Background(), "child-1")
	require.NoError(t, err)
	require.NotContains(t, string(cred.Sealed), "generated-pw-123")
}

func TestDashboardPerRole(t *testing.T) {
	t.Parallel()

	parentFetches := 0
	mux := http.NewServeMux()
	handle(mux, "GET /api/parents/dashboard", func(w http.ResponseWriter, r *http.Request) {
		parentFetches++
		json.NewEncoder(w).Encode(coinsdk.Dashboard{
			Stats: coinsdk.DashboardStats{TotalCoins: 340},
		})
	})

	sessions := &fakeSessions{
		user: coinsdk.User{ID: "parent-1", Email: "p@example.com", Role: coinsdk.RoleParent},
		ok:   true,
	}

	s := NewDashboardStore(newDeps(t, mux, sessions))

	dash, err := s.Load(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 340, dash.Stats.TotalCoins)

	_, err = s.Load(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, parentFetches)
}

func TestResetRestoresPostConstructionState(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	handle(mux, "GET /api/users/user-1/goals", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]coinsdk.Goal{{ID: "goal-1", Title: "Bike"}})
	})
	handle(mux, "GET /api/dashboard/younger_child", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(coinsdk.Dashboard{
			PendingTasks: []coinsdk.Task{{ID: "task-1", Title: "Dishes", Status: coinsdk.TaskPending}},
		})
	})
	handle(mux, "GET /api/teachers/user-1/classes", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]coinsdk.Classroom{{ID: "class-1", Name: "3B"}})
	})

	deps := newDeps(t, mux, childSessions())
	registry := reset.NewRegistry()

	user := NewUserStore(deps)
	child := NewChildStore(deps)
	teacher := NewTeacherStore(deps)
	registry.Register("cache", deps.Cache)
	registry.Register("user-store", user)
	registry.Register("child-store", child)
	registry.Register("teacher-store", teacher)

	user.setBalance(100)
	_, err := user.Goals(context.Background(), false)
	require.NoError(t, err)
	_, err = child.Tasks(context.Background(), false)
	require.NoError(t, err)
	_, err = teacher.Classes(context.Background(), false)
	require.NoError(t, err)
	require.True(t, deps.Cache.IsValid(cache.KindGoals, "user-1"))

	require.NoError(t, registry.ResetAll())

	// every store reads like it was just constructed
	balance, known := user.Balance()
	require.Zero(t, balance)
	require.False(t, known)

	user.mu.RLock()
	require.Empty(t, user.goals)
	require.Empty(t, user.transactions)
	user.mu.RUnlock()

	child.mu.RLock()
	require.Empty(t, child.tasks)
	child.mu.RUnlock()

	teacher.mu.RLock()
	require.Empty(t, teacher.classes)
	teacher.mu.RUnlock()

	require.False(t, deps.Cache.IsValid(cache.KindGoals, "user-1"))
	require.False(t, deps.Cache.IsValid(cache.KindTasks, "user-1"))
	require.False(t, deps.Cache.IsValid(cache.KindClasses, "user-1"))
}

func TestSignedOutStoresRefuse(t *testing.T) {
	t.Parallel()

	deps := newDeps(t, http.NewServeMux(), &fakeSessions{})

	_, err := NewUserStore(deps).Goals(context.Background(), false)
	require.ErrorIs(t, err, ErrNoUser)

	_, err = NewChildStore(deps).Tasks(context.Background(), false)
	require.ErrorIs(t, err, ErrNoUser)

	_, err = NewTeacherStore(deps).Classes(context.Background(), false)
	require.ErrorIs(t, err, ErrNoUser)

	_, err = NewDashboardStore(deps).Load(context.Background(), false)
	require.ErrorIs(t, err, ErrNoUser)
}
