package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/internal/iocache"
	"github.com/huangsam/perfpipe/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyConfig reads and validates the history backend settings.
// An empty backend is treated as NoneBackend.
func historyConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if backendStr := viper.GetString("history-backend"); backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	connStr := viper.GetString("history-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no parse cache for history commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetupWrapper loads configuration for migrations.
// It does NOT initialize stores, allowing migrations to run on a fresh database.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on run history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by the pipeline commands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage pipeline run history and exports",
	Long: `Manage the history of pipeline runs.

When --history-backend is set, every pipeline run is recorded with:
- Run metadata (mode, final state, timestamps, duration, configuration)
- Every flattened result row the run produced

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics and recent runs
  export  - Export runs and rows to Parquet
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  PERFPIPE_HISTORY_BACKEND=sqlite perfpipe history status
  perfpipe history export --history-backend sqlite --output-file history`,
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded pipeline runs",
	Long: `Delete all stored runs and their rows.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  perfpipe history export --output-file backup
  perfpipe history clear`,
	PreRunE: historySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		// The SQLite file must be released before it is removed
		iocache.CloseStores()
		dbPath := cfg.HistoryDBConnect
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		if err := iocache.ClearHistory(cfg.HistoryBackend, dbPath, cfg.HistoryDBConnect); err != nil {
			return fmt.Errorf("failed to clear run history: %w", err)
		}
		fmt.Println("Run history cleared successfully.")
		return nil
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and recent runs",
	Long: `Show the backend, connection state, run and row counts, table sizes
and the most recent runs.

Examples:
  perfpipe history status --recent 10`,
	PreRunE: historySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store := storeManager.GetHistoryStore()
		if store == nil {
			return fmt.Errorf("history store is not initialized")
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get history status: %w", err)
		}
		var recent []schema.RunRecord
		if n := viper.GetInt("recent"); n > 0 {
			if recent, err = store.GetRuns(n); err != nil {
				return fmt.Errorf("failed to get recent runs: %w", err)
			}
		}
		return iocache.PrintHistoryStatus(os.Stdout, status, recent)
	},
}

// historyExportCmd exports the run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and rows to Parquet.

Writes <output-file>.runs.parquet and <output-file>.rows.parquet.

Requires: --output-file parameter

Examples:
  perfpipe history export --output-file perf-history
  duckdb -c "SELECT * FROM read_parquet('perf-history.rows.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		err := iocache.ExportHistory(storeManager.GetHistoryStore(), cfg.OutputFile, os.Stdout)
		if errors.Is(err, iocache.ErrNoHistory) {
			fmt.Println("No run history found to export.")
			return nil
		}
		return err
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  perfpipe history migrate --history-backend sqlite
  perfpipe history migrate --history-backend sqlite --target-version 1
  perfpipe history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	},
}
