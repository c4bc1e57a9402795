package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/internal/parquet"
	"github.com/huangsam/perfpipe/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ErrParquetNeedsFile is returned when Parquet output is requested without an output file.
var ErrParquetNeedsFile = errors.New("parquet output requires --output-file")

// writeRowResults outputs the projected rows, dispatching based on the output format configured.
func writeRowResults(rows []schema.FlatRow, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONRows(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRows(w, rows)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return ErrParquetNeedsFile
		}
		if err := parquet.WriteRowsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRowsTable(w, rows, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// writeRowsTable generates the human-readable table of key columns.
func writeRowsTable(w io.Writer, rows []schema.FlatRow, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Version", "Timestamp", "Group", "Test", "Duration (s)", "Moves/s", "Evals/s", "Ops/s"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	cell := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmtFloat(*v)
	}

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.AppVersion,
			formatTime(r.Timestamp, "-"),
			r.TestGroup,
			contract.TruncatePath(r.TestName, nameWidth),
			cell(r.DurationSeconds),
			cell(r.MovesPerSecond),
			cell(r.EvaluationsPerSecond),
			cell(r.OperationsPerSecond),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d rows across %d versions\n", len(rows), len(schema.GroupBy(rows, schema.ColAppVersion)))
	return err
}

// writeCSVRows writes every column; absent values are empty cells.
func writeCSVRows(w io.Writer, rows []schema.FlatRow) error {
	header := make([]string, len(schema.AllColumns))
	for i, col := range schema.AllColumns {
		header[i] = string(col)
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write(rowRecord(r)); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// rowRecord renders one row in schema.AllColumns order.
func rowRecord(r schema.FlatRow) []string {
	rec := make([]string, 0, len(schema.AllColumns))
	for _, col := range schema.AllColumns {
		switch col {
		case schema.ColTimestamp:
			if r.Timestamp.IsZero() {
				rec = append(rec, "")
			} else {
				rec = append(rec, r.Timestamp.UTC().Format(contract.DateTimeFormat))
			}
			continue
		case schema.ColDurationMicroseconds, schema.ColMovesGenerated, schema.ColPositionsEvaluated,
			schema.ColEvaluationsPerformed, schema.ColOperationsPerformed:
			if v, ok := r.Numeric(col); ok {
				rec = append(rec, strconv.FormatInt(int64(v), 10))
			} else {
				rec = append(rec, "")
			}
			continue
		}
		if v, ok := r.Numeric(col); ok {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
			continue
		}
		v, _ := r.Tag(col)
		rec = append(rec, v)
	}
	return rec
}

// writeJSONRows writes the rows as a JSON array.
func writeJSONRows(w io.Writer, rows []schema.FlatRow) error {
	if rows == nil {
		rows = []schema.FlatRow{}
	}
	return writeJSON(w, rows)
}
