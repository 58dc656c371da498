package mocks

import (
	"net/http"
	"sync"

	"github.com/phrazzld/task-manager-api/internal/platform/reporting"
)

// Report is one error received by a MockReporter. Path is empty for errors
// reported outside a request.
type Report struct {
	Level  reporting.Level
	Err    error
	Path   string
	Extras map[string]any
}

// MockReporter implements reporting.Reporter in memory.
type MockReporter struct {
	mu      sync.Mutex
	Reports []Report
	Closed  bool
}

var _ reporting.Reporter = (*MockReporter)(nil)

// ReportRequest implements reporting.Reporter.
func (m *MockReporter) ReportRequest(r *http.Request, level reporting.Level, err error, extras map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, Report{Level: level, Err: err, Path: r.URL.Path, Extras: extras})
}

// Report implements reporting.Reporter.
func (m *MockReporter) Report(level reporting.Level, err error, extras map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, Report{Level: level, Err: err, Extras: extras})
}

// Close implements reporting.Reporter.
func (m *MockReporter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
