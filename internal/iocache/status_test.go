package iocache

import (
	"bytes"
	"testing"
	"time"

	"github.com/huangsam/perfpipe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalEntries:    3,
		LastEntryTime:   time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
		OldestEntryTime: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		TableSizeBytes:  4096,
	})
	out := buf.String()
	assert.Contains(t, out, "Total Entries: 3\n")
	assert.Contains(t, out, "Last Entry: 2025-02-01 09:00:00\n")
	assert.Contains(t, out, "Oldest Entry: 2025-01-01 09:00:00\n")
	assert.Contains(t, out, "Table Size: 4096 bytes\n")
}

func TestPrintHistoryStatus(t *testing.T) {
	started := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	status := schema.HistoryStatus{
		Backend:       "sqlite",
		Connected:     true,
		TotalRuns:     2,
		LastRunID:     2,
		LastRunTime:   started,
		OldestRunTime: started.Add(-time.Hour),
		TotalRows:     10,
		TableSizes:    map[string]int64{rowsTable: 10, runsTable: 2},
	}
	recent := []schema.RunRecord{
		{RunID: 2, StartTime: started, Mode: "full", State: ptr("completed"), DurationMs: ptr(int32(1200)), TotalFiles: 4, TotalResults: 10},
		{RunID: 1, StartTime: started.Add(-time.Hour), Mode: "collect-only"},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintHistoryStatus(&buf, status, recent))
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2\n")
	assert.Contains(t, out, "Last Run ID: 2\n")
	assert.Contains(t, out, "Total Rows: 10\n")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(rowsTable)), bytes.Index(buf.Bytes(), []byte(runsTable)))
	assert.Contains(t, out, "1200ms")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "collect-only")

	buf.Reset()
	require.NoError(t, PrintHistoryStatus(&buf, schema.HistoryStatus{Backend: "none"}, nil))
	assert.NotContains(t, buf.String(), "Table Sizes")
}
