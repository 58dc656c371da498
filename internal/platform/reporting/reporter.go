package reporting

import (
	"context"
	"net/http"

	"github.com/rollbar/rollbar-go"
)

// Level is the severity an error is reported with.
type Level string

const (
	LevelError    Level = rollbar.ERR
	LevelCritical Level = rollbar.CRIT
)

// Reporter sends errors to an error tracking service.
type Reporter interface {
	// ReportRequest sends err together with the request that produced it.
	ReportRequest(r *http.Request, level Level, err error, extras map[string]any)

	// Report sends an error raised outside of any request.
	Report(level Level, err error, extras map[string]any)

	// Close flushes pending reports.
	Close() error
}

// NoopReporter drops every report. It is used when no Rollbar token is configured.
type NoopReporter struct{}

// ReportRequest implements Reporter.
func (NoopReporter) ReportRequest(*http.Request, Level, error, map[string]any) {}

// Report implements Reporter.
func (NoopReporter) Report(Level, error, map[string]any) {}

// Close implements Reporter.
func (NoopReporter) Close() error { return nil }

type contextKey struct{}

// WithContext returns a copy of ctx carrying rep.
func WithContext(ctx context.Context, rep Reporter) context.Context {
	return context.WithValue(ctx, contextKey{}, rep)
}

// FromContext returns the Reporter stored in ctx, or a NoopReporter.
func FromContext(ctx context.Context) Reporter {
	if ctx != nil {
		if rep, ok := ctx.Value(contextKey{}).(Reporter); ok && rep != nil {
			return rep
		}
	}
	return NoopReporter{}
}
