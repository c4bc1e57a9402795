package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/internal/parquet"
)

// ErrNoHistory is returned when an export finds no recorded runs.
var ErrNoHistory = errors.New("no run history found to export")

// ExportHistory writes the runs and rows of the history store to two Parquet files
// named after outputFile.
func ExportHistory(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return ErrNoHistory
	}
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.GetRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	rows, err := store.GetRows()
	if err != nil {
		return fmt.Errorf("failed to retrieve rows: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.FromRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	rowsFile := outputFile + ".rows.parquet"
	if err := parquet.WriteRunRowsParquet(parquet.FromRowRecords(rows), rowsFile); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d rows to: %s\n", len(rows), rowsFile)
	return nil
}
