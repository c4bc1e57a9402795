package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for history and caching.
	DatabaseBackend string

	// PhaseStatus represents the outcome of one pipeline phase.
	PhaseStatus string

	// PipelineState represents the terminal state of a pipeline run.
	PipelineState string

	// ArtifactStatus represents the outcome of one report step.
	ArtifactStatus string

	// RunMode selects which phases the pipeline runs.
	RunMode string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Phase outcomes.
const (
	PhaseSucceeded PhaseStatus = "succeeded"
	PhaseFailed    PhaseStatus = "failed"
	PhaseSkipped   PhaseStatus = "skipped"
)

// Terminal pipeline states.
const (
	StateCompleted          PipelineState = "completed"
	StateFailedAtCollection PipelineState = "failed_at_collection"
	StateFailedAtAnalysis   PipelineState = "failed_at_analysis"
)

// Report step outcomes.
const (
	ArtifactGenerated ArtifactStatus = "generated"
	ArtifactSkipped   ArtifactStatus = "skipped"
	ArtifactFailed    ArtifactStatus = "failed"
)

// Run modes.
const (
	FullRun     RunMode = "full" // default
	CollectOnly RunMode = "collect-only"
	AnalyzeOnly RunMode = "analyze-only"
)

// Well-known file names inside the output directory.
const (
	DataFileName         = "chess_engine_performance_data.json"
	ReportFileName       = "performance_report.txt"
	SummaryFileName      = "performance_summary.csv"
	TrendsFileName       = "performance_trends.html"
	VersionFileName      = "version_comparison.html"
	DashboardFileName    = "performance_dashboard.html"
	TestTypeFileName     = "test_type_analysis.png"
	ResultsDirectoryName = "Performance_Results"
)

// DefaultSearchPaths are walked when no data directory is given.
var DefaultSearchPaths = []string{
	ResultsDirectoryName,
	"build/" + ResultsDirectoryName,
	"x64/Release/" + ResultsDirectoryName,
	"x64/Debug/" + ResultsDirectoryName,
	"out/" + ResultsDirectoryName,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
