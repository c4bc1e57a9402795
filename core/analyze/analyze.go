// Package analyze turns projected rows into overview, report and summary models.
package analyze

import (
	"cmp"
	"slices"
	"time"

	"github.com/huangsam/perfpipe/schema"
)

// Analyzer computes read-only models over a flat table.
type Analyzer struct {
	rows []schema.FlatRow
}

// New creates an Analyzer over rows. The rows are not modified.
func New(rows []schema.FlatRow) *Analyzer {
	return &Analyzer{rows: rows}
}

// Rows returns the analyzed rows.
func (a *Analyzer) Rows() []schema.FlatRow {
	return a.rows
}

// Versions returns the distinct versions in lexicographic order.
func (a *Analyzer) Versions() []string {
	return schema.SortedKeys(schema.GroupBy(a.rows, schema.ColAppVersion))
}

// Overview builds the aggregate counts, distributions and numeric summary.
func (a *Analyzer) Overview() schema.Overview {
	earliest, latest := schema.TimeRange(a.rows)
	ov := schema.Overview{
		DateRange:    schema.DateRange{Earliest: earliest, Latest: latest},
		TotalResults: len(a.rows),
		Versions:     a.Versions(),
		ByTestGroup:  distribution(a.rows, schema.ColTestGroup),
		ByTestName:   distribution(a.rows, schema.ColTestName),
	}
	for _, col := range schema.PresentNumericColumns(a.rows) {
		values := schema.ColumnValues(a.rows, col)
		minV, q25, median, q75, maxV := quantiles(values)
		ov.Numeric = append(ov.Numeric, schema.NumericSummary{
			Column: col,
			Count:  len(values),
			Mean:   *Mean(values),
			Std:    StdDev(values),
			Min:    minV,
			Q25:    q25,
			Median: median,
			Q75:    q75,
			Max:    maxV,
		})
	}
	return ov
}

// Report builds the text report model.
func (a *Analyzer) Report(generatedAt time.Time) schema.Report {
	earliest, latest := schema.TimeRange(a.rows)
	report := schema.Report{
		GeneratedAt:  generatedAt,
		DateRange:    schema.DateRange{Earliest: earliest, Latest: latest},
		TotalResults: len(a.rows),
	}

	byVersion := schema.GroupBy(a.rows, schema.ColAppVersion)
	versions := schema.SortedKeys(byVersion)
	for _, v := range versions {
		group := byVersion[v]
		moves := schema.ColumnValues(group, schema.ColMovesPerSecond)
		durations := schema.ColumnValues(group, schema.ColDurationSeconds)
		report.Versions = append(report.Versions, schema.VersionReport{
			Version:      v,
			Count:        len(group),
			MovesMean:    Mean(moves),
			MovesStd:     StdDev(moves),
			DurationMean: Mean(durations),
			DurationStd:  StdDev(durations),
		})
	}

	if hasNamedTests(a.rows) {
		byName := schema.GroupBy(a.rows, schema.ColTestName)
		for _, name := range schema.SortedKeys(byName) {
			group := byName[name]
			report.TestTypes = append(report.TestTypes, schema.TestTypeReport{
				Name:         name,
				Count:        len(group),
				MovesMean:    Mean(schema.ColumnValues(group, schema.ColMovesPerSecond)),
				DurationMean: Mean(schema.ColumnValues(group, schema.ColDurationSeconds)),
			})
		}
	}

	report.Best = a.BestPerformance()

	if len(versions) > 1 {
		prev, last := versions[len(versions)-2], versions[len(versions)-1]
		prevMean := Mean(schema.ColumnValues(byVersion[prev], schema.ColMovesPerSecond))
		lastMean := Mean(schema.ColumnValues(byVersion[last], schema.ColMovesPerSecond))
		report.Change = &schema.VersionChange{
			Previous: prev,
			Latest:   last,
			Percent:  PercentChange(prevMean, lastMean),
		}
	}
	return report
}

// BestPerformance returns the first row with the highest moves per second, or nil.
func (a *Analyzer) BestPerformance() *schema.BestPerformance {
	var best *schema.FlatRow
	for i := range a.rows {
		r := &a.rows[i]
		if r.MovesPerSecond == nil {
			continue
		}
		if best == nil || *r.MovesPerSecond > *best.MovesPerSecond {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	config := schema.DefaultTestName
	if best.BoardConfiguration != nil && *best.BoardConfiguration != "" {
		config = *best.BoardConfiguration
	}
	return &schema.BestPerformance{
		MovesPerSecond: *best.MovesPerSecond,
		TestName:       best.TestName,
		Version:        best.AppVersion,
		Configuration:  config,
	}
}

// Summary returns one row per version in lexicographic version order.
func (a *Analyzer) Summary() []schema.VersionSummary {
	byVersion := schema.GroupBy(a.rows, schema.ColAppVersion)
	out := make([]schema.VersionSummary, 0, len(byVersion))
	for _, v := range schema.SortedKeys(byVersion) {
		group := byVersion[v]
		first, last := schema.TimeRange(group)
		out = append(out, schema.VersionSummary{
			Version:                 v,
			TotalTests:              len(group),
			AvgDuration:             Mean(schema.ColumnValues(group, schema.ColDurationSeconds)),
			AvgMovesPerSecond:       Mean(schema.ColumnValues(group, schema.ColMovesPerSecond)),
			AvgEvaluationsPerSecond: Mean(schema.ColumnValues(group, schema.ColEvaluationsPerSecond)),
			FirstTestDate:           first,
			LastTestDate:            last,
		})
	}
	return out
}

// distribution counts rows per value, largest first and ties by value.
func distribution(rows []schema.FlatRow, col schema.Column) []schema.ValueCount {
	groups := schema.GroupBy(rows, col)
	out := make([]schema.ValueCount, 0, len(groups))
	for value, group := range groups {
		out = append(out, schema.ValueCount{Value: value, Count: len(group)})
	}
	slices.SortFunc(out, func(x, y schema.ValueCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Value, y.Value)
	})
	return out
}

func hasNamedTests(rows []schema.FlatRow) bool {
	for _, r := range rows {
		if r.TestName != "" && r.TestName != schema.DefaultTestName {
			return true
		}
	}
	return false
}
