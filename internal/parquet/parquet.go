// Package parquet exports projected benchmark rows and run history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/perfpipe/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents one pipeline run.
// This struct maps to the perfpipe_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique identifier for this run
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is the duration of the run in milliseconds (nullable)
	DurationMs *int32 `parquet:"duration_ms,optional,snappy"`

	// Mode is the run mode (full, collect-only, analyze-only)
	Mode string `parquet:"mode,snappy"`

	// State is the terminal pipeline state (nullable while running)
	State *string `parquet:"state,optional,snappy"`

	TotalFiles   int32 `parquet:"total_files,snappy"`
	TotalResults int32 `parquet:"total_results,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunRow represents one stored row of a run.
// This struct maps to the perfpipe_rows database table.
type RunRow struct {
	RunID                int64     `parquet:"run_id,snappy"`
	AppVersion           string    `parquet:"app_version,snappy"`
	Timestamp            time.Time `parquet:"timestamp,snappy"`
	TestGroup            string    `parquet:"test_group,snappy"`
	TestName             string    `parquet:"test_name,snappy"`
	DurationSeconds      *float64  `parquet:"duration_seconds,optional,snappy"`
	MovesPerSecond       *float64  `parquet:"moves_per_second,optional,snappy"`
	EvaluationsPerSecond *float64  `parquet:"evaluations_per_second,optional,snappy"`
	OperationsPerSecond  *float64  `parquet:"operations_per_second,optional,snappy"`
	BoardConfiguration   *string   `parquet:"board_configuration,optional,snappy"`
}

// Row is the full projected table row. Every FlatRow column has a field.
type Row struct {
	AppVersion string    `parquet:"app_version,snappy"`
	Timestamp  time.Time `parquet:"timestamp,snappy"`
	TestGroup  string    `parquet:"test_group,snappy"`
	TestFile   string    `parquet:"test_file,snappy"`
	FilePath   string    `parquet:"file_path,snappy"`
	TestName   string    `parquet:"test_name,snappy"`

	DurationMicroseconds *int64   `parquet:"duration_microseconds,optional,snappy"`
	DurationSeconds      *float64 `parquet:"duration_seconds,optional,snappy"`

	MovesGenerated     *int64   `parquet:"moves_generated,optional,snappy"`
	MovesPerSecond     *float64 `parquet:"moves_per_second,optional,snappy"`
	PositionsEvaluated *int64   `parquet:"positions_evaluated,optional,snappy"`

	EvaluationsPerformed  *int64   `parquet:"evaluations_performed,optional,snappy"`
	EvaluationsPerSecond  *float64 `parquet:"evaluations_per_second,optional,snappy"`
	AverageEvaluationTime *float64 `parquet:"average_evaluation_time,optional,snappy"`

	OperationsPerformed  *int64   `parquet:"operations_performed,optional,snappy"`
	OperationsPerSecond  *float64 `parquet:"operations_per_second,optional,snappy"`
	AverageOperationTime *float64 `parquet:"average_operation_time,optional,snappy"`

	BoardConfiguration *string `parquet:"board_configuration,optional,snappy"`
	Operation          *string `parquet:"operation,optional,snappy"`
	EvaluationType     *string `parquet:"evaluation_type,optional,snappy"`

	MinScore     *float64 `parquet:"min_score,optional,snappy"`
	MaxScore     *float64 `parquet:"max_score,optional,snappy"`
	AverageScore *float64 `parquet:"average_score,optional,snappy"`
}

// FromFlatRows converts projected rows to their Parquet form.
func FromFlatRows(rows []schema.FlatRow) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{
			AppVersion:            r.AppVersion,
			Timestamp:             r.Timestamp,
			TestGroup:             r.TestGroup,
			TestFile:              r.TestFile,
			FilePath:              r.FilePath,
			TestName:              r.TestName,
			DurationMicroseconds:  r.DurationMicroseconds,
			DurationSeconds:       r.DurationSeconds,
			MovesGenerated:        r.MovesGenerated,
			MovesPerSecond:        r.MovesPerSecond,
			PositionsEvaluated:    r.PositionsEvaluated,
			EvaluationsPerformed:  r.EvaluationsPerformed,
			EvaluationsPerSecond:  r.EvaluationsPerSecond,
			AverageEvaluationTime: r.AverageEvaluationTime,
			OperationsPerformed:   r.OperationsPerformed,
			OperationsPerSecond:   r.OperationsPerSecond,
			AverageOperationTime:  r.AverageOperationTime,
			BoardConfiguration:    r.BoardConfiguration,
			Operation:             r.Operation,
			EvaluationType:        r.EvaluationType,
			MinScore:              r.MinScore,
			MaxScore:              r.MaxScore,
			AverageScore:          r.AverageScore,
		}
	}
	return out
}

// FromRunRecords converts history runs to their Parquet form.
func FromRunRecords(records []schema.RunRecord) []Run {
	out := make([]Run, len(records))
	for i, r := range records {
		out[i] = Run{
			RunID:        r.RunID,
			RunUUID:      r.RunUUID,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			DurationMs:   r.DurationMs,
			Mode:         r.Mode,
			State:        r.State,
			TotalFiles:   r.TotalFiles,
			TotalResults: r.TotalResults,
			ConfigParams: r.ConfigParams,
		}
	}
	return out
}

// FromRowRecords converts stored history rows to their Parquet form.
func FromRowRecords(records []schema.RowRecord) []RunRow {
	out := make([]RunRow, len(records))
	for i, r := range records {
		out[i] = RunRow{
			RunID:                r.RunID,
			AppVersion:           r.AppVersion,
			Timestamp:            r.Timestamp,
			TestGroup:            r.TestGroup,
			TestName:             r.TestName,
			DurationSeconds:      r.DurationSeconds,
			MovesPerSecond:       r.MovesPerSecond,
			EvaluationsPerSecond: r.EvaluationsPerSecond,
			OperationsPerSecond:  r.OperationsPerSecond,
			BoardConfiguration:   r.BoardConfiguration,
		}
	}
	return out
}

// WriteRowsParquet writes projected rows to a Parquet file.
func WriteRowsParquet(rows []schema.FlatRow, outputPath string) error {
	return writeParquet(FromFlatRows(rows), outputPath)
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunRowsParquet writes a slice of RunRow structs to a Parquet file.
func WriteRunRowsParquet(data []RunRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
