package mocks

import (
	"context"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
)

// MockTaskService implements service.TaskService for handler tests.
type MockTaskService struct {
	ListFn     func(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	OverviewFn func(ctx context.Context, filter domain.TaskFilter) (*service.TaskOverview, error)
	GetFn      func(ctx context.Context, id int64) (*domain.Task, error)
	CreateFn   func(ctx context.Context, actorID int64, in service.TaskInput) (*domain.Task, error)
	UpdateFn   func(ctx context.Context, actorID, id int64, patch service.TaskPatch) (*domain.Task, error)
	DeleteFn   func(ctx context.Context, actorID, id int64) error
}

var _ service.TaskService = (*MockTaskService)(nil)

// List implements service.TaskService.
func (m *MockTaskService) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return []domain.Task{}, nil
}

// Overview implements service.TaskService.
func (m *MockTaskService) Overview(ctx context.Context, filter domain.TaskFilter) (*service.TaskOverview, error) {
	if m.OverviewFn != nil {
		return m.OverviewFn(ctx, filter)
	}
	return &service.TaskOverview{Filter: filter}, nil
}

// Get implements service.TaskService.
func (m *MockTaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return &domain.Task{ID: id, Labels: []domain.Label{}}, nil
}

// Create implements service.TaskService.
func (m *MockTaskService) Create(ctx context.Context, actorID int64, in service.TaskInput) (*domain.Task, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, actorID, in)
	}
	return &domain.Task{ID: 1, Name: in.Name, CreatorID: actorID, Labels: []domain.Label{}}, nil
}

// Update implements service.TaskService.
func (m *MockTaskService) Update(
	ctx context.Context,
	actorID, id int64,
	patch service.TaskPatch,
) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, actorID, id, patch)
	}
	return &domain.Task{ID: id, CreatorID: actorID, Labels: []domain.Label{}}, nil
}

// Delete implements service.TaskService.
func (m *MockTaskService) Delete(ctx context.Context, actorID, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, actorID, id)
	}
	return nil
}

// MockUserService implements service.UserService for handler tests.
type MockUserService struct {
	RegisterFn     func(ctx context.Context, in service.UserInput) (*domain.User, error)
	GetFn          func(ctx context.Context, id int64) (*domain.User, error)
	ListFn         func(ctx context.Context) ([]domain.User, error)
	UpdateFn       func(ctx context.Context, actorID, id int64, patch service.UserPatch) (*domain.User, error)
	DeleteFn       func(ctx context.Context, actorID, id int64) error
	AuthenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
}

var _ service.UserService = (*MockUserService)(nil)

// Register implements service.UserService.
func (m *MockUserService) Register(ctx context.Context, in service.UserInput) (*domain.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, in)
	}
	return &domain.User{ID: 1, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email}, nil
}

// Get implements service.UserService.
func (m *MockUserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return &domain.User{ID: id}, nil
}

// List implements service.UserService.
func (m *MockUserService) List(ctx context.Context) ([]domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return []domain.User{}, nil
}

// Update implements service.UserService.
func (m *MockUserService) Update(
	ctx context.Context,
	actorID, id int64,
	patch service.UserPatch,
) (*domain.User, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, actorID, id, patch)
	}
	return &domain.User{ID: id}, nil
}

// Delete implements service.UserService.
func (m *MockUserService) Delete(ctx context.Context, actorID, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, actorID, id)
	}
	return nil
}

// Authenticate implements service.UserService.
func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, email, password)
	}
	return &domain.User{ID: 1, Email: email}, nil
}

// MockTaxonomyService implements the status and label service methods used
// by the taxonomy handlers.
type MockTaxonomyService[T any] struct {
	ListFn   func(ctx context.Context) ([]T, error)
	GetFn    func(ctx context.Context, id int64) (*T, error)
	CreateFn func(ctx context.Context, name string) (*T, error)
	UpdateFn func(ctx context.Context, id int64, name string) (*T, error)
	DeleteFn func(ctx context.Context, id int64) error
}

// List returns ListFn's result or an empty list.
func (m *MockTaxonomyService[T]) List(ctx context.Context) ([]T, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return []T{}, nil
}

// Get returns GetFn's result or a zero item.
func (m *MockTaxonomyService[T]) Get(ctx context.Context, id int64) (*T, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return new(T), nil
}

// Create returns CreateFn's result or a zero item.
func (m *MockTaxonomyService[T]) Create(ctx context.Context, name string) (*T, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, name)
	}
	return new(T), nil
}

// Update returns UpdateFn's result or a zero item.
func (m *MockTaxonomyService[T]) Update(ctx context.Context, id int64, name string) (*T, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, name)
	}
	return new(T), nil
}

// Delete returns DeleteFn's result.
func (m *MockTaxonomyService[T]) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
