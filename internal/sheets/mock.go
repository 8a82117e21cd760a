package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/payrank/internal/service"
)

// MockWriter records published reports instead of calling the Sheets API.
// Set Err to make every Write fail.
type MockWriter struct {
	Err     error
	reports []*service.RunReport
	mu      sync.Mutex
}

// NewMockWriter creates a mock writer with nothing recorded.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records report and returns Err.
func (m *MockWriter) Write(_ context.Context, report *service.RunReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = append(m.reports, report)
	return m.Err
}

// Reports returns every report written so far, oldest first.
func (m *MockWriter) Reports() []*service.RunReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*service.RunReport(nil), m.reports...)
}

// Last returns the most recent report, or nil.
func (m *MockWriter) Last() *service.RunReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == 0 {
		return nil
	}
	return m.reports[len(m.reports)-1]
}

var (
	_ service.ReportWriter = (*MockWriter)(nil)
	_ service.ReportWriter = (*Writer)(nil)
)
