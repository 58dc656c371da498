package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/task-manager-api/internal/api"
	apiMiddleware "github.com/phrazzld/task-manager-api/internal/api/middleware"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// routes bundles the handlers and middleware the router mounts.
type routes struct {
	sessions *api.SessionHandler
	users    *api.UserHandler
	tasks    *api.TaskHandler
	statuses *api.TaxonomyHandler[domain.TaskStatus]
	labels   *api.TaxonomyHandler[domain.Label]

	auth      *apiMiddleware.AuthMiddleware
	limiter   *apiMiddleware.RateLimiter
	trace     func(http.Handler) http.Handler
	reporting func(http.Handler) http.Handler
}

// setupRouter creates the handlers from the application services and mounts them.
func (app *application) setupRouter() http.Handler {
	cookie := api.CookieConfig{
		Name:   app.config.Auth.CookieName,
		Secure: app.config.Auth.CookieSecure,
	}

	return newRouter(routes{
		sessions: api.NewSessionHandler(app.userService, app.jwtService, app.revoker, cookie, app.logger),
		users:    api.NewUserHandler(app.userService, app.logger),
		tasks:    api.NewTaskHandler(app.taskService, app.logger),
		statuses: api.NewStatusHandler(app.statusService, app.logger),
		labels:   api.NewLabelHandler(app.labelService, app.logger),
		auth:     apiMiddleware.NewAuthMiddleware(app.jwtService, app.revoker, cookie.Name, app.logger),
		limiter: apiMiddleware.NewRateLimiter(
			app.config.RateLimit.RequestsPerSecond,
			app.config.RateLimit.Burst,
		),
		trace:     apiMiddleware.NewTraceMiddleware(app.logger),
		reporting: apiMiddleware.NewErrorReporting(app.reporter),
	})
}

func newRouter(h routes) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.trace)
	r.Use(h.reporting)

	r.Route("/api", func(r chi.Router) {
		r.With(h.limiter.Limit).Post("/session", h.sessions.Login)
		r.With(h.auth.Optional).Delete("/session", h.sessions.Logout)

		r.Route("/users", func(r chi.Router) {
			r.With(h.limiter.Limit).Post("/", h.users.Register)
			r.Get("/", h.users.List)
			r.Get("/{id}", h.users.Get)

			r.Group(func(r chi.Router) {
				r.Use(h.auth.Authenticate)
				r.Patch("/{id}", h.users.Update)
				r.Delete("/{id}", h.users.Delete)
			})
		})

		r.Route("/statuses", taxonomyRoutes(h.statuses, h.auth))
		r.Route("/labels", taxonomyRoutes(h.labels, h.auth))

		r.Route("/tasks", func(r chi.Router) {
			r.Use(h.auth.Authenticate)
			r.Get("/", h.tasks.List)
			r.Post("/", h.tasks.Create)
			r.Get("/{id}", h.tasks.Get)
			r.Patch("/{id}", h.tasks.Update)
			r.Delete("/{id}", h.tasks.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}

// taxonomyRoutes mounts public reads and authenticated writes.
func taxonomyRoutes[T any](h *api.TaxonomyHandler[T], auth *apiMiddleware.AuthMiddleware) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	}
}
