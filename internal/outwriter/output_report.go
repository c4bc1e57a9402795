package outwriter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/perfpipe/schema"
)

// SummaryHeader is the column order of the summary CSV.
var SummaryHeader = []string{
	"version",
	"total_tests",
	"avg_duration",
	"avg_moves_per_second",
	"avg_evaluations_per_second",
	"first_test_date",
	"last_test_date",
}

// writeTextReport renders the fixed-layout performance report.
func writeTextReport(out io.Writer, r schema.Report) error {
	w := bufio.NewWriter(out)
	p := func(format string, args ...any) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	p("CHESS ENGINE PERFORMANCE ANALYSIS REPORT\n")
	p("%s\n\n", strings.Repeat("=", 50))
	p("Report Generated: %s\n", r.GeneratedAt.Format(ReportTimeFormat))
	p("Data Period: %s to %s\n", formatTime(r.DateRange.Earliest, NotAvailable), formatTime(r.DateRange.Latest, NotAvailable))
	p("Total Test Results Analyzed: %d\n\n", r.TotalResults)

	p("VERSION ANALYSIS:\n")
	p("%s\n", strings.Repeat("-", 20))
	for _, v := range r.Versions {
		p("Version %s: %d tests\n", v.Version, v.Count)
		p("  Moves/sec - Mean: %s, Std: %s\n",
			formatOptional("%.2f", v.MovesMean, NotAvailable), formatOptional("%.2f", v.MovesStd, NotAvailable))
		p("  Duration - Mean: %s, Std: %s\n",
			formatOptional("%.4fs", v.DurationMean, NotAvailable), formatOptional("%.4fs", v.DurationStd, NotAvailable))
	}
	p("\n")

	if len(r.TestTypes) > 0 {
		p("TEST TYPE ANALYSIS:\n")
		p("%s\n", strings.Repeat("-", 20))
		for _, t := range r.TestTypes {
			p("%s: %d tests\n", t.Name, t.Count)
			p("  Average Moves/sec: %s\n", formatOptional("%.2f", t.MovesMean, NotAvailable))
			p("  Average Duration: %s\n", formatOptional("%.4fs", t.DurationMean, NotAvailable))
		}
		p("\n")
	}

	p("PERFORMANCE INSIGHTS & RECOMMENDATIONS:\n")
	p("%s\n", strings.Repeat("-", 40))
	if b := r.Best; b != nil {
		p("Best performance: %.2f moves/sec\n", b.MovesPerSecond)
		p("  Test: %s\n", b.TestName)
		p("  Version: %s\n", b.Version)
		p("  Configuration: %s\n\n", b.Configuration)
	}

	if c := r.Change; c != nil {
		p("VERSION COMPARISON:\n")
		p("Performance change from v%s to v%s: %s\n", c.Previous, c.Latest, formatOptional("%+.2f%%", c.Percent, NotAvailable))
	}

	return w.Flush()
}

// writeSummaryCSV writes one row per version. Missing means and dates are empty cells.
func writeSummaryCSV(w io.Writer, rows []schema.VersionSummary) error {
	return writeCSVWithHeader(w, SummaryHeader, func(cw *csv.Writer) error {
		for _, s := range rows {
			rec := []string{
				s.Version,
				strconv.Itoa(s.TotalTests),
				csvFloat(s.AvgDuration),
				csvFloat(s.AvgMovesPerSecond),
				csvFloat(s.AvgEvaluationsPerSecond),
				formatTime(s.FirstTestDate, ""),
				formatTime(s.LastTestDate, ""),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
