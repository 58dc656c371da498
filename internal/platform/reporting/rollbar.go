package reporting

import (
	"log/slog"
	"net/http"
	"os"
	"regexp"

	"github.com/rollbar/rollbar-go"

	"github.com/phrazzld/task-manager-api/internal/config"
)

// scrubbedHeaders never leave the process. The session token travels in
// both of them.
var scrubbedHeaders = regexp.MustCompile(`(?i)^(authorization|cookie|set-cookie)$`)

// RollbarReporter reports errors to Rollbar.
type RollbarReporter struct {
	client *rollbar.Client
}

// New returns a Rollbar-backed Reporter when a token is configured and a
// NoopReporter otherwise.
func New(cfg config.ReportingConfig, logger *slog.Logger) Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RollbarToken == "" {
		logger.Info("error reporting disabled, no rollbar token configured")
		return NoopReporter{}
	}

	host, _ := os.Hostname()
	client := rollbar.New(cfg.RollbarToken, cfg.Environment, "", host, "")
	logger.Info("error reporting enabled", slog.String("environment", cfg.Environment))
	return NewRollbarReporter(client)
}

// NewRollbarReporter wraps an existing client, scrubbing credential headers
// from every request it reports.
func NewRollbarReporter(client *rollbar.Client) *RollbarReporter {
	client.SetScrubHeaders(scrubbedHeaders)
	return &RollbarReporter{client: client}
}

// ReportRequest implements Reporter.
func (r *RollbarReporter) ReportRequest(req *http.Request, level Level, err error, extras map[string]any) {
	if err == nil {
		return
	}
	r.client.RequestErrorWithExtras(string(level), req, err, extras)
}

// Report implements Reporter.
func (r *RollbarReporter) Report(level Level, err error, extras map[string]any) {
	if err == nil {
		return
	}
	r.client.ErrorWithExtras(string(level), err, extras)
}

// Close implements Reporter. It waits for queued reports to be sent.
func (r *RollbarReporter) Close() error {
	return r.client.Close()
}
