package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/phrazzld/task-manager-api/internal/platform/reporting"
	"github.com/phrazzld/task-manager-api/internal/platform/sessions"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	reporter reporting.Reporter

	jwtService auth.JWTService
	revoker    auth.Revoker

	userService   service.UserService
	taskService   service.TaskService
	statusService *service.StatusService
	labelService  *service.LabelService
}

// newApplication wires stores, services and auth on top of an open database.
// Session revocation is backed by Redis when redis.url is configured and
// errors go to Rollbar when reporting.rollbar_token is.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	statusStore := postgres.NewPostgresStatusStore(db, logger)
	labelStore := postgres.NewPostgresLabelStore(db, logger)

	app.userService = service.NewUserService(userStore, hasher, hasher, logger)
	app.statusService = service.NewStatusService(statusStore, logger)
	app.labelService = service.NewLabelService(labelStore, logger)
	app.taskService, err = service.NewTaskService(
		taskStore,
		statusStore,
		labelStore,
		userStore,
		store.NewTxRunner(db),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.revoker, err = app.setupRevoker(ctx)
	if err != nil {
		return nil, err
	}
	app.reporter = reporting.New(cfg.Reporting, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

func (app *application) setupRevoker(ctx context.Context) (auth.Revoker, error) {
	if app.config.Redis.URL == "" {
		app.logger.Warn("redis not configured, logout will not revoke tokens server-side")
		return auth.NoopRevoker{}, nil
	}

	client, err := sessions.Connect(ctx, app.config.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %s", redact.Error(err))
	}
	app.redis = client
	app.logger.Info("session revocation store connected")
	return sessions.NewRedisRevoker(client, app.logger), nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup flushes pending error reports and releases external connections.
func (app *application) cleanup() {
	if app.reporter != nil {
		if err := app.reporter.Close(); err != nil {
			app.logger.Error("error flushing error reports", slog.String("error", err.Error()))
		}
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", slog.String("error", redact.Error(err)))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
		}
	}

	app.logger.Info("application shutdown completed")
}
