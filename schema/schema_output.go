package schema

import "time"

// DateRange is the span of non-zero timestamps in a data set.
type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// CollectionStats summarizes what the collector found.
type CollectionStats struct {
	TotalFiles       int            `json:"total_files"`
	TotalTestResults int            `json:"total_test_results"`
	Versions         []string       `json:"versions"`
	VersionCounts    map[string]int `json:"version_counts"`
	DateRange        DateRange      `json:"date_range"`
	TestGroups       []string       `json:"test_groups"`
}

// ValueCount is one bucket of a value distribution.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NumericSummary describes one numeric column.
// Std is nil when fewer than two values are present.
type NumericSummary struct {
	Column Column   `json:"column"`
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	Std    *float64 `json:"std"`
	Min    float64  `json:"min"`
	Q25    float64  `json:"q25"`
	Median float64  `json:"median"`
	Q75    float64  `json:"q75"`
	Max    float64  `json:"max"`
}

// Overview is the console overview of a flat table.
type Overview struct {
	DateRange    DateRange        `json:"date_range"`
	TotalResults int              `json:"total_results"`
	Versions     []string         `json:"versions"`
	ByTestGroup  []ValueCount     `json:"by_test_group"`
	ByTestName   []ValueCount     `json:"by_test_name"`
	Numeric      []NumericSummary `json:"numeric"`
}

// VersionReport is the per-version section of the text report.
type VersionReport struct {
	Version      string   `json:"version"`
	Count        int      `json:"count"`
	MovesMean    *float64 `json:"moves_mean"`
	MovesStd     *float64 `json:"moves_std"`
	DurationMean *float64 `json:"duration_mean"`
	DurationStd  *float64 `json:"duration_std"`
}

// TestTypeReport is the per-test-name section of the text report.
type TestTypeReport struct {
	Name         string   `json:"name"`
	Count        int      `json:"count"`
	MovesMean    *float64 `json:"moves_mean"`
	DurationMean *float64 `json:"duration_mean"`
}

// BestPerformance is the single row with the highest moves per second.
type BestPerformance struct {
	MovesPerSecond float64 `json:"moves_per_second"`
	TestName       string  `json:"test_name"`
	Version        string  `json:"version"`
	Configuration  string  `json:"configuration"`
}

// VersionChange compares the mean moves per second of the two last versions.
// Percent is nil when it cannot be computed.
type VersionChange struct {
	Previous string   `json:"previous"`
	Latest   string   `json:"latest"`
	Percent  *float64 `json:"percent"`
}

// Report is the model behind the text report.
type Report struct {
	GeneratedAt  time.Time        `json:"generated_at"`
	DateRange    DateRange        `json:"date_range"`
	TotalResults int              `json:"total_results"`
	Versions     []VersionReport  `json:"versions"`
	TestTypes    []TestTypeReport `json:"test_types"`
	Best         *BestPerformance `json:"best,omitempty"`
	Change       *VersionChange   `json:"change,omitempty"`
}

// VersionSummary is one row of the summary CSV.
type VersionSummary struct {
	Version                 string    `json:"version"`
	TotalTests              int       `json:"total_tests"`
	AvgDuration             *float64  `json:"avg_duration"`
	AvgMovesPerSecond       *float64  `json:"avg_moves_per_second"`
	AvgEvaluationsPerSecond *float64  `json:"avg_evaluations_per_second"`
	FirstTestDate           time.Time `json:"first_test_date"`
	LastTestDate            time.Time `json:"last_test_date"`
}

// Artifact records the outcome of one report step.
type Artifact struct {
	Name   string         `json:"name"`
	Path   string         `json:"path"`
	Status ArtifactStatus `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// PipelineResult is the outcome of a pipeline run.
type PipelineResult struct {
	Mode       RunMode          `json:"mode"`
	State      PipelineState    `json:"state"`
	Collection PhaseStatus      `json:"collection"`
	Analysis   PhaseStatus      `json:"analysis"`
	OutputDir  string           `json:"output_dir"`
	DataFile   string           `json:"data_file"`
	Stats      *CollectionStats `json:"stats,omitempty"`
	Artifacts  []Artifact       `json:"artifacts,omitempty"`
	Err        error            `json:"-"`
}

// OK reports whether the run completed.
func (r PipelineResult) OK() bool {
	return r.State == StateCompleted
}

// CollectionOK reports whether the collection phase did not fail.
func (r PipelineResult) CollectionOK() bool {
	return r.Collection != PhaseFailed
}

// AnalysisOK reports whether the analysis phase did not fail.
func (r PipelineResult) AnalysisOK() bool {
	return r.Analysis != PhaseFailed
}
