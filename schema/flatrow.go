package schema

import "time"

// Column names a FlatRow column. Names match the CSV, JSON and Parquet headers.
type Column string

// All FlatRow columns.
const (
	ColAppVersion            Column = "app_version"
	ColTimestamp             Column = "timestamp"
	ColTestGroup             Column = "test_group"
	ColTestFile              Column = "test_file"
	ColFilePath              Column = "file_path"
	ColTestName              Column = "test_name"
	ColDurationMicroseconds  Column = "duration_microseconds"
	ColDurationSeconds       Column = "duration_seconds"
	ColMovesGenerated        Column = "moves_generated"
	ColMovesPerSecond        Column = "moves_per_second"
	ColPositionsEvaluated    Column = "positions_evaluated"
	ColEvaluationsPerformed  Column = "evaluations_performed"
	ColEvaluationsPerSecond  Column = "evaluations_per_second"
	ColAverageEvaluationTime Column = "average_evaluation_time"
	ColOperationsPerformed   Column = "operations_performed"
	ColOperationsPerSecond   Column = "operations_per_second"
	ColAverageOperationTime  Column = "average_operation_time"
	ColBoardConfiguration    Column = "board_configuration"
	ColOperation             Column = "operation"
	ColEvaluationType        Column = "evaluation_type"
	ColMinScore              Column = "min_score"
	ColMaxScore              Column = "max_score"
	ColAverageScore          Column = "average_score"
)

// DefaultTestName is used for results without a test name.
const DefaultTestName = "Unknown"

// AllColumns lists every column in output order.
var AllColumns = []Column{
	ColAppVersion, ColTimestamp, ColTestGroup, ColTestFile, ColFilePath, ColTestName,
	ColDurationMicroseconds, ColDurationSeconds,
	ColMovesGenerated, ColMovesPerSecond, ColPositionsEvaluated,
	ColEvaluationsPerformed, ColEvaluationsPerSecond, ColAverageEvaluationTime,
	ColOperationsPerformed, ColOperationsPerSecond, ColAverageOperationTime,
	ColBoardConfiguration, ColOperation, ColEvaluationType,
	ColMinScore, ColMaxScore, ColAverageScore,
}

// NumericColumns lists the numeric columns in output order.
var NumericColumns = []Column{
	ColDurationMicroseconds, ColDurationSeconds,
	ColMovesGenerated, ColMovesPerSecond, ColPositionsEvaluated,
	ColEvaluationsPerformed, ColEvaluationsPerSecond, ColAverageEvaluationTime,
	ColOperationsPerformed, ColOperationsPerSecond, ColAverageOperationTime,
	ColMinScore, ColMaxScore, ColAverageScore,
}

// FlatRow is one denormalized row per test result.
// Pointer fields are nil when the source result did not carry them.
type FlatRow struct {
	AppVersion string    `json:"app_version"`
	Timestamp  time.Time `json:"timestamp"`
	TestGroup  string    `json:"test_group"`
	TestFile   string    `json:"test_file"`
	FilePath   string    `json:"file_path"`
	TestName   string    `json:"test_name"`

	DurationMicroseconds *int64   `json:"duration_microseconds,omitempty"`
	DurationSeconds      *float64 `json:"duration_seconds,omitempty"`

	MovesGenerated     *int64   `json:"moves_generated,omitempty"`
	MovesPerSecond     *float64 `json:"moves_per_second,omitempty"`
	PositionsEvaluated *int64   `json:"positions_evaluated,omitempty"`

	EvaluationsPerformed  *int64   `json:"evaluations_performed,omitempty"`
	EvaluationsPerSecond  *float64 `json:"evaluations_per_second,omitempty"`
	AverageEvaluationTime *float64 `json:"average_evaluation_time,omitempty"`

	OperationsPerformed  *int64   `json:"operations_performed,omitempty"`
	OperationsPerSecond  *float64 `json:"operations_per_second,omitempty"`
	AverageOperationTime *float64 `json:"average_operation_time,omitempty"`

	BoardConfiguration *string `json:"board_configuration,omitempty"`
	Operation          *string `json:"operation,omitempty"`
	EvaluationType     *string `json:"evaluation_type,omitempty"`

	MinScore     *float64 `json:"min_score,omitempty"`
	MaxScore     *float64 `json:"max_score,omitempty"`
	AverageScore *float64 `json:"average_score,omitempty"`
}

// Numeric returns the value of a numeric column and whether it is present.
func (r FlatRow) Numeric(col Column) (float64, bool) {
	switch col {
	case ColDurationMicroseconds:
		return intValue(r.DurationMicroseconds)
	case ColDurationSeconds:
		return floatValue(r.DurationSeconds)
	case ColMovesGenerated:
		return intValue(r.MovesGenerated)
	case ColMovesPerSecond:
		return floatValue(r.MovesPerSecond)
	case ColPositionsEvaluated:
		return intValue(r.PositionsEvaluated)
	case ColEvaluationsPerformed:
		return intValue(r.EvaluationsPerformed)
	case ColEvaluationsPerSecond:
		return floatValue(r.EvaluationsPerSecond)
	case ColAverageEvaluationTime:
		return floatValue(r.AverageEvaluationTime)
	case ColOperationsPerformed:
		return intValue(r.OperationsPerformed)
	case ColOperationsPerSecond:
		return floatValue(r.OperationsPerSecond)
	case ColAverageOperationTime:
		return floatValue(r.AverageOperationTime)
	case ColMinScore:
		return floatValue(r.MinScore)
	case ColMaxScore:
		return floatValue(r.MaxScore)
	case ColAverageScore:
		return floatValue(r.AverageScore)
	}
	return 0, false
}

// Tag returns the value of a categorical column and whether it is present.
func (r FlatRow) Tag(col Column) (string, bool) {
	switch col {
	case ColAppVersion:
		return r.AppVersion, true
	case ColTestGroup:
		return r.TestGroup, true
	case ColTestFile:
		return r.TestFile, true
	case ColFilePath:
		return r.FilePath, true
	case ColTestName:
		return r.TestName, true
	case ColBoardConfiguration:
		return stringValue(r.BoardConfiguration)
	case ColOperation:
		return stringValue(r.Operation)
	case ColEvaluationType:
		return stringValue(r.EvaluationType)
	}
	return "", false
}

func intValue(v *int64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}

func floatValue(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

func stringValue(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	return *v, true
}
