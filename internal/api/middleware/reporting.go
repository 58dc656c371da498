package middleware

import (
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/reporting"
)

// NewErrorReporting makes rep available to error responses further down the
// chain and reports panics before re-raising them for the recoverer.
// It must be mounted inside chi's Recoverer.
func NewErrorReporting(rep reporting.Reporter) func(http.Handler) http.Handler {
	if rep == nil {
		rep = reporting.NoopReporter{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(reporting.WithContext(r.Context(), rep))

			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p != http.ErrAbortHandler {
					err, ok := p.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", p)
					}
					rep.ReportRequest(r, reporting.LevelCritical, err, map[string]any{
						"trace_id":   shared.GetTraceID(r.Context()),
						"request_id": chimw.GetReqID(r.Context()),
					})
				}
				panic(p)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
