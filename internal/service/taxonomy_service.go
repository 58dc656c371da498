package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// namedStore is the part of StatusStore and LabelStore the taxonomy service needs.
type namedStore[T any] interface {
	Create(ctx context.Context, item *T) error
	GetByID(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context) ([]T, error)
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id int64) error
}

// TaxonomyService manages one kind of shared named entity: task statuses or labels.
type TaxonomyService[T any] struct {
	kind     string
	store    namedStore[T]
	build    func(name string) (*T, error)
	rename   func(item *T, name string) error
	notFound error
	logger   *slog.Logger
}

// StatusService manages task statuses.
type StatusService = TaxonomyService[domain.TaskStatus]

// LabelService manages labels.
type LabelService = TaxonomyService[domain.Label]

// NewStatusService creates a StatusService.
func NewStatusService(statuses store.StatusStore, logger *slog.Logger) *StatusService {
	return newTaxonomyService[domain.TaskStatus](
		"status",
		statuses,
		domain.NewTaskStatus,
		func(s *domain.TaskStatus, name string) error {
			s.Name = strings.TrimSpace(name)
			s.UpdatedAt = time.Now().UTC()
			return s.Validate()
		},
		store.ErrStatusNotFound,
		logger,
	)
}

// NewLabelService creates a LabelService.
func NewLabelService(labels store.LabelStore, logger *slog.Logger) *LabelService {
	return newTaxonomyService[domain.Label](
		"label",
		labels,
		domain.NewLabel,
		func(l *domain.Label, name string) error {
			l.Name = strings.TrimSpace(name)
			l.UpdatedAt = time.Now().UTC()
			return l.Validate()
		},
		store.ErrLabelNotFound,
		logger,
	)
}

func newTaxonomyService[T any](
	kind string,
	s namedStore[T],
	build func(string) (*T, error),
	rename func(*T, string) error,
	notFound error,
	logger *slog.Logger,
) *TaxonomyService[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaxonomyService[T]{
		kind:     kind,
		store:    s,
		build:    build,
		rename:   rename,
		notFound: notFound,
		logger:   logger.With(slog.String("component", kind+"_service")),
	}
}

// List returns every item ordered by ID.
func (s *TaxonomyService[T]) List(ctx context.Context) ([]T, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, s.failure(ctx, "list", err)
	}
	return items, nil
}

// Get returns one item.
func (s *TaxonomyService[T]) Get(ctx context.Context, id int64) (*T, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.failure(ctx, "get", err)
	}
	return item, nil
}

// Create validates and stores a new item.
func (s *TaxonomyService[T]) Create(ctx context.Context, name string) (*T, error) {
	item, err := s.build(name)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, item); err != nil {
		return nil, s.failure(ctx, "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info(s.kind + " created")
	return item, nil
}

// Update renames an item.
func (s *TaxonomyService[T]) Update(ctx context.Context, id int64, name string) (*T, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.failure(ctx, "update", err)
	}
	if err := s.rename(item, name); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, item); err != nil {
		return nil, s.failure(ctx, "update", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info(s.kind+" updated", slog.Int64("id", id))
	return item, nil
}

// Delete removes an item. Items still referenced by a task are kept and
// store.ErrInUse is returned.
func (s *TaxonomyService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.failure(ctx, "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info(s.kind+" deleted", slog.Int64("id", id))
	return nil
}

func (s *TaxonomyService[T]) failure(ctx context.Context, op string, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch {
	case store.IsNotFoundError(err):
		return s.notFound
	case errors.Is(err, store.ErrInUse), store.IsDuplicateError(err):
		log.Debug(s.kind+" operation rejected",
			slog.String("operation", op),
			slog.String("reason", err.Error()))
		return err
	default:
		log.Error(s.kind+" operation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return NewServiceError(s.kind, op, err)
	}
}
