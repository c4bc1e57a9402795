// Package contract provides interfaces and shared utilities for perfpipe's internal architecture.
package contract

import (
	"io"
	"time"

	"github.com/huangsam/perfpipe/schema"
)

// StoreManager defines the interface for managing the persistent stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetCacheStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking pipeline runs and their rows.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, mode schema.RunMode, configParams map[string]any) (int64, error)

	// RecordRows stores the projected rows of a run
	RecordRows(runID int64, rows []schema.FlatRow) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, state schema.PipelineState, totalFiles, totalResults int) error

	// GetRuns returns the most recent runs, newest first
	GetRuns(limit int) ([]schema.RunRecord, error)

	// GetRows returns every stored row ordered by run and position
	GetRows() ([]schema.RowRecord, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}

// ReportWriter writes the textual artifacts of the analysis phase.
type ReportWriter interface {
	WriteOverview(w io.Writer, ov schema.Overview) error
	WriteTextReport(path string, report schema.Report) error
	WriteSummaryCSV(path string, rows []schema.VersionSummary) error
}

// ChartRenderer renders chart artifacts from projected rows.
// Implementations return an error wrapping ErrSkipped when a chart has nothing to draw.
type ChartRenderer interface {
	Trends(rows []schema.FlatRow, path string) error
	VersionComparison(rows []schema.FlatRow, path string) error
	TestTypeAnalysis(rows []schema.FlatRow, path string) error
	Dashboard(rows []schema.FlatRow, path string) error
}
