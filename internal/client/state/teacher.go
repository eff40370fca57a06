package state

import (
	"context"
	"sync"

	"github.com/coincraftapp/coincraft-go/internal/client/cache"
	"github.com/coincraftapp/coincraft-go/pkg/coinsdk"
)

// TeacherStore owns the teacher's view: classes and their rosters.
type TeacherStore struct {
	deps Deps

	mu      sync.RWMutex
	classes []coinsdk.Classroom
}

func NewTeacherStore(deps Deps) *TeacherStore {
	return &TeacherStore{deps: deps}
}

// Reset returns the store to its signed-out zero state.
func (s *TeacherStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes = nil
	return nil
}

// Classes lists the teacher's classrooms, cached.
func (s *TeacherStore) Classes(ctx context.Context, force bool) ([]coinsdk.Classroom, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	classes, err := cache.Load(ctx, s.deps.Cache, cache.KindClasses, userID, force,
		func(ctx context.Context) ([]coinsdk.Classroom, error) {
			return s.deps.Client.Classes(ctx, userID)
		})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.classes = classes
	s.mu.Unlock()
	return classes, nil
}

// CreateClass creates a classroom and drops the cached list.
func (s *TeacherStore) CreateClass(ctx context.Context, req coinsdk.CreateClassRequest) (*coinsdk.Classroom, error) {
	userID, err := currentUserID(s.deps.Sessions)
	if err != nil {
		return nil, err
	}

	class, err := s.deps.Client.CreateClass(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	s.deps.Cache.Invalidate(cache.KindClasses, userID)
	s.deps.Cache.Invalidate(cache.KindDashboard)
	return class, nil
}

// Students lists a classroom's roster, cached per class.
func (s *TeacherStore) Students(ctx context.Context, classID string, force bool) ([]coinsdk.Student, error) {
	if _, err := currentUserID(s.deps.Sessions); err != nil {
		return nil, err
	}

	return cache.Load(ctx, s.deps.Cache, cache.KindStudents, classID, force,
		func(ctx context.Context) ([]coinsdk.Student, error) {
			return s.deps.Client.ClassStudents(ctx, classID)
		})
}
