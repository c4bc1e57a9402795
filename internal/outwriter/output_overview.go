package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/perfpipe/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeOverview prints the overview banner, distributions and numeric summary.
func writeOverview(w io.Writer, ov schema.Overview, precision int) error {
	fmtFloat, _ := createFormatters(precision)
	rule := strings.Repeat("=", 60)
	section := strings.Repeat("-", 40)

	period := fmt.Sprintf("%s - %s", formatTime(ov.DateRange.Earliest, NotAvailable), formatTime(ov.DateRange.Latest, NotAvailable))
	if _, err := fmt.Fprintf(w, "%s\nCHESS ENGINE PERFORMANCE ANALYSIS OVERVIEW\n%s\n", rule, rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis period: %s\nTotal test results: %d\nApp versions: %s\n",
		period, ov.TotalResults, strings.Join(ov.Versions, ", ")); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\n%s\nTEST DISTRIBUTION BY GROUP:\n", section); err != nil {
		return err
	}
	if err := writeDistributionTable(w, "Test Group", ov.ByTestGroup); err != nil {
		return err
	}

	if len(ov.ByTestName) > 0 {
		if _, err := fmt.Fprintf(w, "\n%s\nTEST DISTRIBUTION BY TYPE:\n", section); err != nil {
			return err
		}
		if err := writeDistributionTable(w, "Test Name", ov.ByTestName); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n%s\nPERFORMANCE METRICS SUMMARY:\n", section); err != nil {
		return err
	}
	if len(ov.Numeric) == 0 {
		_, err := fmt.Fprintln(w, "No numeric columns present")
		return err
	}
	return writeNumericTable(w, ov.Numeric, fmtFloat)
}

func writeDistributionTable(w io.Writer, label string, counts []schema.ValueCount) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{label, "Count"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(counts))
	for _, c := range counts {
		data = append(data, []string{c.Value, strconv.Itoa(c.Count)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeNumericTable(w io.Writer, summaries []schema.NumericSummary, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		std := NotAvailable
		if s.Std != nil {
			std = fmtFloat(*s.Std)
		}
		data = append(data, []string{
			string(s.Column),
			strconv.Itoa(s.Count),
			fmtFloat(s.Mean),
			std,
			fmtFloat(s.Min),
			fmtFloat(s.Q25),
			fmtFloat(s.Median),
			fmtFloat(s.Q75),
			fmtFloat(s.Max),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
