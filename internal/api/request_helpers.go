package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
)

// getPathID extracts a positive integer id from the URL path parameters.
// A value that cannot be an id cannot name an existing row either, so it is
// reported as notFound.
func getPathID(r *http.Request, paramName string, notFound error) (int64, error) {
	id, ok := domain.ParseID(chi.URLParam(r, paramName))
	if !ok {
		return 0, notFound
	}
	return id, nil
}

// handleActorAndPathID extracts both the authenticated user ID and an id
// from the path. It writes an error response if either extraction fails.
func handleActorAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	notFound error,
	log *slog.Logger,
) (int64, int64, bool) {
	if log == nil {
		log = logger.FromContext(r.Context())
	}

	actorID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return 0, 0, false
	}

	id, err := getPathID(r, paramName, notFound)
	if err != nil {
		log.Debug("invalid path id",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}

	return actorID, id, true
}

// handlePathID extracts an id from the path for public routes.
func handlePathID(w http.ResponseWriter, r *http.Request, paramName string, notFound error) (int64, bool) {
	id, err := getPathID(r, paramName, notFound)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, false
	}
	return id, true
}

