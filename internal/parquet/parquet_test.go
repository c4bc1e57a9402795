package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/perfpipe/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[T](file)
	defer reader.Close()

	out := make([]T, reader.NumRows())
	n, err := reader.Read(out)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return out[:n]
}

func TestRowSchemaHasEveryColumn(t *testing.T) {
	s := parquet.SchemaOf(new(Row))
	require.NotNil(t, s)
	for _, col := range schema.AllColumns {
		_, ok := s.Lookup(string(col))
		assert.True(t, ok, "column %s should exist in schema", col)
	}
}

func TestRunSchemaColumns(t *testing.T) {
	s := parquet.SchemaOf(new(Run))
	for _, name := range []string{"run_id", "run_uuid", "start_time", "end_time", "duration_ms", "mode", "state", "total_files", "total_results", "config_params"} {
		_, ok := s.Lookup(name)
		assert.True(t, ok, "column %s should exist in schema", name)
	}
}

func TestWriteRowsParquet(t *testing.T) {
	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	rows := []schema.FlatRow{
		{
			AppVersion: "1.0", Timestamp: ts, TestGroup: "Move Generation", TestName: "Perft",
			DurationMicroseconds: ptr(int64(1500000)), DurationSeconds: ptr(1.5),
			MovesGenerated: ptr(int64(197281)), MovesPerSecond: ptr(131520.6),
			BoardConfiguration: ptr("Starting Position"),
		},
		{
			AppVersion: "1.1", Timestamp: ts, TestGroup: "Evaluation", TestName: "Eval",
			EvaluationsPerSecond: ptr(900.0), MinScore: ptr(-30.0),
		},
	}
	path := filepath.Join(t.TempDir(), "rows.parquet")
	require.NoError(t, WriteRowsParquet(rows, path))

	got := readAll[Row](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "Perft", got[0].TestName)
	assert.True(t, ts.Equal(got[0].Timestamp))
	require.NotNil(t, got[0].MovesPerSecond)
	assert.InDelta(t, 131520.6, *got[0].MovesPerSecond, 1e-9)
	assert.Equal(t, "Starting Position", *got[0].BoardConfiguration)
	assert.Nil(t, got[0].EvaluationsPerSecond)

	assert.Nil(t, got[1].MovesPerSecond)
	require.NotNil(t, got[1].MinScore)
	assert.Equal(t, -30.0, *got[1].MinScore)
}

func TestWriteRunsParquet(t *testing.T) {
	end := time.Date(2025, 2, 3, 4, 6, 0, 0, time.UTC)
	runs := FromRunRecords([]schema.RunRecord{
		{RunID: 1, RunUUID: "a", StartTime: end.Add(-time.Minute), EndTime: &end, DurationMs: ptr(int32(60000)), Mode: "full", State: ptr("completed"), TotalFiles: 3, TotalResults: 12},
		{RunID: 2, RunUUID: "b", StartTime: end, Mode: "collect-only"},
	})
	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteRunsParquet(runs, path))

	got := readAll[Run](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].RunID)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Nanosecond)
	assert.Equal(t, int32(12), got[0].TotalResults)
	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].State)
	assert.Equal(t, "collect-only", got[1].Mode)
}

func TestWriteRunRowsParquetEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunRowsParquet(FromRowRecords(nil), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Empty(t, readAll[RunRow](t, path))
}

func TestWriteParquetBadPath(t *testing.T) {
	err := WriteRowsParquet(nil, filepath.Join(t.TempDir(), "missing", "rows.parquet"))
	assert.ErrorContains(t, err, "failed to create output file")
}
