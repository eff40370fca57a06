package state

import (
	"context"

	"github.com/coincraftapp/coincraft-go/internal/client/cache"
	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
)

// DashboardStore loads the role-appropriate dashboard aggregate, cached per
// role so a parent and a teacher sharing a device never see each other's
// view after a user switch (teardown also wipes it).
type DashboardStore struct {
	deps Deps
}

func NewDashboardStore(deps Deps) *DashboardStore {
	return &DashboardStore{deps: deps}
}

// Reset satisfies the teardown contract. The dashboard holds nothing
// outside the cache coordinator, which resets separately.
func (s *DashboardStore) Reset() error { return nil }

// Load fetches the dashboard for the signed-in user's role.
func (s *DashboardStore) Load(ctx context.Context, force bool) (*coinsdk.Dashboard, error) {
	user, ok := s.deps.Sessions.User()
	if !ok {
		return nil, ErrNoUser
	}

	dash, err := cache.Load(ctx, s.deps.Cache, cache.KindDashboard, string(user.Role), force,
		func(ctx context.Context) (coinsdk.Dashboard, error) {
			var (
				fetched *coinsdk.Dashboard
				err     error
			)
			switch user.Role {
			case coinsdk.RoleParent:
				fetched, err = s.deps.Client.ParentDashboard(ctx)
			case coinsdk.RoleTeacher:
				fetched, err = s.deps.Client.TeacherDashboard(ctx)
			default:
				fetched, err = s.deps.Client.RoleDashboard(ctx, user.Role)
			}
			if err != nil {
				return coinsdk.Dashboard{}, err
			}
			return *fetched, nil
		})
	if err != nil {
		return nil, err
	}
	return &dash, nil
}
