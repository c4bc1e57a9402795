package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeCollectionStats outputs collector statistics, dispatching based on the output format configured.
func writeCollectionStats(stats schema.CollectionStats, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsCSV(w, stats)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("statistics do not support %s output", cfg.Output)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := PrintCollectionStats(w, stats); err != nil {
				return err
			}
			return writeVersionCountTable(w, stats)
		}, "Wrote table")
	}
}

// PrintCollectionStats prints the statistics block shown after collection.
func PrintCollectionStats(w io.Writer, stats schema.CollectionStats) error {
	counts := make([]string, 0, len(stats.Versions))
	for _, v := range stats.Versions {
		counts = append(counts, fmt.Sprintf("%s: %d", v, stats.VersionCounts[v]))
	}
	_, err := fmt.Fprintf(w, "\n=== Collection Statistics ===\n"+
		" Total files processed: %d\n"+
		" Total test results: %d\n"+
		" App versions found: %s\n"+
		" Version distribution: %s\n"+
		" Date range: %s to %s\n"+
		" Test groups: %s\n",
		stats.TotalFiles,
		stats.TotalTestResults,
		strings.Join(stats.Versions, ", "),
		strings.Join(counts, ", "),
		formatTime(stats.DateRange.Earliest, NotAvailable),
		formatTime(stats.DateRange.Latest, NotAvailable),
		strings.Join(stats.TestGroups, ", "),
	)
	return err
}

func writeVersionCountTable(w io.Writer, stats schema.CollectionStats) error {
	if len(stats.Versions) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Version", "Entries"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := make([][]string, 0, len(stats.Versions))
	for _, v := range stats.Versions {
		data = append(data, []string{v, strconv.Itoa(stats.VersionCounts[v])})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeStatsCSV writes one row per version with the collection totals repeated.
func writeStatsCSV(w io.Writer, stats schema.CollectionStats) error {
	header := []string{"version", "entries", "total_files", "total_test_results", "earliest", "latest"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, v := range stats.Versions {
			rec := []string{
				v,
				strconv.Itoa(stats.VersionCounts[v]),
				strconv.Itoa(stats.TotalFiles),
				strconv.Itoa(stats.TotalTestResults),
				formatTime(stats.DateRange.Earliest, ""),
				formatTime(stats.DateRange.Latest, ""),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
