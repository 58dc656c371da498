package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// UserInput carries a registration.
type UserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserPatch carries a partial profile update. Nil pointers leave the field
// unchanged; an empty Password keeps the current one.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

// UserService provides registration, profile management and authentication.
type UserService interface {
	// Register creates a user with a hashed password.
	Register(ctx context.Context, in UserInput) (*domain.User, error)

	// Get retrieves a user by ID.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// List returns all users.
	List(ctx context.Context) ([]domain.User, error)

	// Update changes the profile of id. Users may only update themselves.
	Update(ctx context.Context, actorID, id int64, patch UserPatch) (*domain.User, error)

	// Delete removes id. Users may only delete themselves, and not while
	// they are the creator of any task.
	Delete(ctx context.Context, actorID, id int64) error

	// Authenticate returns the user with the given credentials or
	// auth.ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "user_service")),
	}
}

var _ UserService = (*UserServiceImpl)(nil)

// Register creates a new user.
func (s *UserServiceImpl) Register(ctx context.Context, in UserInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(in.FirstName, in.LastName, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	if err := s.setPassword(user); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with taken email rejected")
			return nil, err
		}
		log.Error("failed to create user",
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// Get retrieves a user by their ID
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return nil, NewServiceError("user", "get", err)
	}
	return user, nil
}

// List returns all users.
func (s *UserServiceImpl) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list users",
			slog.String("error", err.Error()))
		return nil, NewServiceError("user", "list", err)
	}
	return users, nil
}

// Update follows the pattern of loading the full user, applying the changed
// fields and writing the complete user back.
func (s *UserServiceImpl) Update(
	ctx context.Context,
	actorID, id int64,
	patch UserPatch,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.authorizeSelf(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.Password != nil && *patch.Password != "" {
		user.Password = *patch.Password
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if user.Password != "" {
		if err := s.setPassword(user); err != nil {
			return nil, err
		}
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) || store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to update user",
			slog.String("error", redact.Error(err)),
			slog.Int64("user_id", id))
		return nil, NewServiceError("user", "update", err)
	}

	log.Info("user updated", slog.Int64("user_id", id))
	return user, nil
}

// Delete removes the actor's own account.
func (s *UserServiceImpl) Delete(ctx context.Context, actorID, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.authorizeSelf(ctx, actorID, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrInUse) || store.IsNotFoundError(err) {
			log.Debug("user deletion rejected",
				slog.Int64("user_id", id),
				slog.String("reason", err.Error()))
			return err
		}
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return NewServiceError("user", "delete", err)
	}

	log.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// produce the same error.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown email")
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to load user for login",
			slog.String("error", redact.Error(err)))
		return nil, NewServiceError("user", "authenticate", err)
	}

	if err := s.verifier.Compare(user.PasswordDigest, password); err != nil {
		log.Debug("login with wrong password", slog.Int64("user_id", user.ID))
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// authorizeSelf loads id and checks that the actor is that user.
func (s *UserServiceImpl) authorizeSelf(ctx context.Context, actorID, id int64) (*domain.User, error) {
	if actorID <= 0 {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ID != actorID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("user tried to change another account",
			slog.Int64("actor_id", actorID),
			slog.Int64("user_id", id))
		return nil, ErrNotOwned
	}
	return user, nil
}

// setPassword replaces the plaintext password with its digest.
func (s *UserServiceImpl) setPassword(user *domain.User) error {
	digest, err := s.hasher.Hash(user.Password)
	if err != nil {
		return NewServiceError("user", "hash_password", err)
	}
	user.PasswordDigest = digest
	user.Password = ""
	return nil
}
