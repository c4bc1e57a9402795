package schema

import "time"

// RunRecord represents a row from the perfpipe_runs table.
type RunRecord struct {
	RunID        int64
	RunUUID      string
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int32
	Mode         string
	State        *string
	TotalFiles   int32
	TotalResults int32
	ConfigParams *string
}

// RowRecord represents a row from the perfpipe_rows table.
type RowRecord struct {
	RunID                int64
	AppVersion           string
	Timestamp            time.Time
	TestGroup            string
	TestName             string
	DurationSeconds      *float64
	MovesPerSecond       *float64
	EvaluationsPerSecond *float64
	OperationsPerSecond  *float64
	BoardConfiguration   *string
}

// NewRowRecord keeps the columns the history store tracks from a flat row.
func NewRowRecord(runID int64, r FlatRow) RowRecord {
	return RowRecord{
		RunID:                runID,
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
