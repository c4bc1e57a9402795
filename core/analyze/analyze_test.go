package analyze

import (
	"testing"
	"time"

	"github.com/huangsam/perfpipe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func day(d int) time.Time {
	return time.Date(2025, 1, d, 12, 0, 0, 0, time.UTC)
}

func moveRow(version, name string, ts time.Time, mps, seconds float64) schema.FlatRow {
	return schema.FlatRow{
		AppVersion:      version,
		Timestamp:       ts,
		TestGroup:       "Move Generation",
		TestName:        name,
		MovesPerSecond:  ptr(mps),
		DurationSeconds: ptr(seconds),
	}
}

func TestPercentChangeDoubling(t *testing.T) {
	rows := []schema.FlatRow{
		moveRow("1.0", "Perft", day(1), 100, 1),
		moveRow("1.0", "Perft", day(2), 100, 1),
		moveRow("2.0", "Perft", day(3), 150, 1),
		moveRow("2.0", "Perft", day(4), 250, 1),
	}
	report := New(rows).Report(day(10))
	require.NotNil(t, report.Change)
	assert.Equal(t, "1.0", report.Change.Previous)
	assert.Equal(t, "2.0", report.Change.Latest)
	require.NotNil(t, report.Change.Percent)
	assert.Equal(t, 100.0, *report.Change.Percent)
}

func TestPercentChangeGuards(t *testing.T) {
	zero := 0.0
	one := 1.0
	assert.Nil(t, PercentChange(nil, &one))
	assert.Nil(t, PercentChange(&one, nil))
	assert.Nil(t, PercentChange(&zero, &one))
	assert.Equal(t, -50.0, *PercentChange(ptr(2.0), &one))
}

func TestReportVersionsLexicographic(t *testing.T) {
	rows := []schema.FlatRow{
		moveRow("1.10", "Perft", day(1), 300, 1),
		moveRow("1.9", "Perft", day(2), 100, 1),
	}
	report := New(rows).Report(day(10))
	require.Len(t, report.Versions, 2)
	assert.Equal(t, "1.10", report.Versions[0].Version)
	assert.Equal(t, "1.9", report.Versions[1].Version)
	// Lexicographic order puts 1.9 last, so the change is measured from 1.10.
	assert.Equal(t, "1.9", report.Change.Latest)
	assert.InDelta(t, -66.666, *report.Change.Percent, 0.001)
}

func TestReportVersionStats(t *testing.T) {
	rows := []schema.FlatRow{
		moveRow("1.0", "Perft", day(1), 100, 1),
		moveRow("1.0", "Perft", day(2), 200, 3),
		{AppVersion: "1.1", TestName: "MakeMove", OperationsPerSecond: ptr(5.0)},
	}
	report := New(rows).Report(day(10))

	v10 := report.Versions[0]
	assert.Equal(t, 2, v10.Count)
	assert.Equal(t, 150.0, *v10.MovesMean)
	assert.InDelta(t, 70.7107, *v10.MovesStd, 0.0001)
	assert.Equal(t, 2.0, *v10.DurationMean)

	v11 := report.Versions[1]
	assert.Equal(t, 1, v11.Count)
	assert.Nil(t, v11.MovesMean)
	assert.Nil(t, v11.MovesStd)
	assert.Nil(t, v11.DurationMean)

	// Latest version has no moves data, so the change is not computable.
	require.NotNil(t, report.Change)
	assert.Nil(t, report.Change.Percent)
}

func TestReportSingleVersionAndSingleSample(t *testing.T) {
	rows := []schema.FlatRow{moveRow("1.0", "Perft", day(1), 100, 1)}
	report := New(rows).Report(day(10))
	assert.Nil(t, report.Change)
	assert.Nil(t, report.Versions[0].MovesStd)
	assert.Equal(t, 1, report.TotalResults)
	assert.Equal(t, day(1), report.DateRange.Earliest)
}

func TestReportTestTypesOmittedWithoutNames(t *testing.T) {
	rows := []schema.FlatRow{{AppVersion: "1.0", TestName: schema.DefaultTestName}}
	report := New(rows).Report(day(10))
	assert.Empty(t, report.TestTypes)
	assert.Nil(t, report.Best)

	named := New([]schema.FlatRow{
		moveRow("1.0", "Perft", day(1), 100, 1),
		moveRow("1.0", "Divide", day(1), 50, 2),
	}).Report(day(10))
	require.Len(t, named.TestTypes, 2)
	assert.Equal(t, "Divide", named.TestTypes[0].Name)
	assert.Equal(t, 50.0, *named.TestTypes[0].MovesMean)
}

func TestBestPerformance(t *testing.T) {
	rows := []schema.FlatRow{
		moveRow("1.0", "Perft", day(1), 100, 1),
		moveRow("1.1", "Divide", day(2), 300, 1),
		moveRow("1.2", "Late", day(3), 300, 1),
	}
	rows[1].BoardConfiguration = ptr("Kiwipete")

	best := New(rows).BestPerformance()
	require.NotNil(t, best)
	assert.Equal(t, 300.0, best.MovesPerSecond)
	assert.Equal(t, "Divide", best.TestName)
	assert.Equal(t, "1.1", best.Version)
	assert.Equal(t, "Kiwipete", best.Configuration)

	rows[1].BoardConfiguration = nil
	assert.Equal(t, schema.DefaultTestName, New(rows).BestPerformance().Configuration)
}

func TestSummary(t *testing.T) {
	rows := []schema.FlatRow{
		moveRow("2.0", "Perft", day(5), 200, 2),
		moveRow("1.0", "Perft", day(1), 100, 1),
		moveRow("1.0", "Perft", day(3), 300, 3),
		{AppVersion: "1.0", Timestamp: day(2), TestName: "Eval", EvaluationsPerSecond: ptr(10.0)},
	}
	summary := New(rows).Summary()
	require.Len(t, summary, 2)

	assert.Equal(t, "1.0", summary[0].Version)
	assert.Equal(t, 3, summary[0].TotalTests)
	assert.Equal(t, 2.0, *summary[0].AvgDuration)
	assert.Equal(t, 200.0, *summary[0].AvgMovesPerSecond)
	assert.Equal(t, 10.0, *summary[0].AvgEvaluationsPerSecond)
	assert.Equal(t, day(1), summary[0].FirstTestDate)
	assert.Equal(t, day(3), summary[0].LastTestDate)

	assert.Equal(t, "2.0", summary[1].Version)
	assert.Nil(t, summary[1].AvgEvaluationsPerSecond)
}

func TestOverview(t *testing.T) {
	rows := []schema.FlatRow{
		moveRow("1.0", "Perft", day(1), 100, 1),
		moveRow("1.0", "Perft", day(2), 300, 3),
		{AppVersion: "1.1", Timestamp: day(3), TestGroup: "Board", TestName: "MakeMove", OperationsPerSecond: ptr(7.0)},
	}
	ov := New(rows).Overview()

	assert.Equal(t, 3, ov.TotalResults)
	assert.Equal(t, []string{"1.0", "1.1"}, ov.Versions)
	assert.Equal(t, []schema.ValueCount{{Value: "Move Generation", Count: 2}, {Value: "Board", Count: 1}}, ov.ByTestGroup)
	assert.Equal(t, []schema.ValueCount{{Value: "Perft", Count: 2}, {Value: "MakeMove", Count: 1}}, ov.ByTestName)
	assert.Equal(t, day(1), ov.DateRange.Earliest)
	assert.Equal(t, day(3), ov.DateRange.Latest)

	require.Len(t, ov.Numeric, 3)
	assert.Equal(t, schema.ColDurationSeconds, ov.Numeric[0].Column)
	moves := ov.Numeric[1]
	assert.Equal(t, schema.ColMovesPerSecond, moves.Column)
	assert.Equal(t, 2, moves.Count)
	assert.Equal(t, 200.0, moves.Mean)
	assert.Equal(t, 100.0, moves.Min)
	assert.Equal(t, 300.0, moves.Max)
	ops := ov.Numeric[2]
	assert.Nil(t, ops.Std)
	assert.Equal(t, 7.0, ops.Median)
}

func TestOverviewEmpty(t *testing.T) {
	ov := New(nil).Overview()
	assert.Zero(t, ov.TotalResults)
	assert.Empty(t, ov.Numeric)
	assert.Empty(t, ov.ByTestGroup)
}

func TestStatHelpers(t *testing.T) {
	assert.Nil(t, Mean(nil))
	assert.Nil(t, StdDev([]float64{1}))
	assert.Nil(t, CoefficientOfVariation([]float64{0, 0}))
	assert.InDelta(t, 0.5, *CoefficientOfVariation([]float64{1, 2, 3}), 1e-9)

	assert.Nil(t, Correlation([]float64{1, 2}, []float64{1}))
	assert.Nil(t, Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}))
	assert.InDelta(t, 1.0, *Correlation([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, -1.0, *Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-9)
}

func TestQuantilesInterpolate(t *testing.T) {
	minV, q25, median, q75, maxV := quantiles([]float64{4, 2, 1, 3})
	assert.Equal(t, 1.0, minV)
	assert.InDelta(t, 1.75, q25, 1e-9)
	assert.InDelta(t, 2.5, median, 1e-9)
	assert.InDelta(t, 3.25, q75, 1e-9)
	assert.Equal(t, 4.0, maxV)

	minV, q25, median, q75, maxV = quantiles([]float64{5})
	assert.Equal(t, []float64{5, 5, 5, 5, 5}, []float64{minV, q25, median, q75, maxV})
}
