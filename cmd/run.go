package cmd

import (
	"github.com/huangsam/perfpipe/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd runs the full collection and analysis pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect result files and produce the analysis reports.",
	Long: `Run the complete pipeline: discover benchmark result files, export the aggregated
JSON document, then analyze it into reports and charts.

Phases:
  1. Data collection - walk the data directory (or the standard search paths),
     parse every result file and write chess_engine_performance_data.json
  2. Data analysis   - flatten the document into rows and write the text report,
     summary CSV and charts into the output directory

Examples:
  # Analyze results under ./build/Performance_Results
  perfpipe run

  # Use an explicit data directory and output directory
  perfpipe run --data-dir ./results --output-dir ./report

  # Skip the HTML charts
  perfpipe run --no-html

  # Only re-analyze an earlier export
  perfpipe run --analyze-only --output-dir ./report`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecutePipeline(rootCtx, cfg, storeManager)
	},
}

// collectCmd is shorthand for run --collect-only.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect result files into the aggregated JSON document.",
	Long: `Run only the data collection phase.

Examples:
  perfpipe collect --data-dir ./results --output-dir ./report`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		viper.Set("collect-only", true)
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecutePipeline(rootCtx, cfg, storeManager)
	},
}

// analyzeCmd is shorthand for run --analyze-only.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an existing aggregated JSON document.",
	Long: `Run only the data analysis phase against a previously exported data file.

Examples:
  perfpipe analyze --output-dir ./report
  perfpipe analyze --data-file ./old/chess_engine_performance_data.json --output-dir ./report`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		viper.Set("analyze-only", true)
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecutePipeline(rootCtx, cfg, storeManager)
	},
}

// statsCmd prints collection statistics without exporting anything.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics for the discovered result files.",
	Long: `Discover and parse result files, then print the collection statistics.
Nothing is written to the output directory.

Examples:
  perfpipe stats --data-dir ./results
  perfpipe stats --output json --output-file stats.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteStats(rootCtx, cfg, storeManager)
	},
}

// rowsCmd prints the projected table of an aggregated document.
var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Print the flattened result table of an aggregated data file.",
	Long: `Load the aggregated JSON document and print one row per test result.

Examples:
  perfpipe rows --data-file ./report/chess_engine_performance_data.json
  perfpipe rows --data-file data.json --output parquet --output-file rows.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteRows(rootCtx, cfg, storeManager)
	},
}
