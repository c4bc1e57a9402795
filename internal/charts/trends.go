package charts

import (
	"math"

	"github.com/huangsam/perfpipe/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Trends writes the performance trends page: throughput and duration over time.
func (r *Renderer) Trends(rows []schema.FlatRow, path string) error {
	moves, err := seriesPlot("Move Generation Performance", "Moves per Second",
		filterGroup(rows, "Move Generation"), schema.ColAppVersion, schema.ColMovesPerSecond)
	if err != nil {
		return err
	}
	evals, err := seriesPlot("Evaluation Performance", "Evaluations per Second",
		filterGroup(rows, "Evaluation"), schema.ColAppVersion, schema.ColEvaluationsPerSecond)
	if err != nil {
		return err
	}
	durations, err := seriesPlot("Test Duration Trends", "Duration (seconds)",
		rows, schema.ColTestGroup, schema.ColDurationSeconds)
	if err != nil {
		return err
	}
	ops, err := seriesPlot("Board Operations Performance", "Operations per Second",
		filterGroup(rows, "Board"), schema.ColAppVersion, schema.ColOperationsPerSecond)
	if err != nil {
		return err
	}

	return r.writeHTML(path, "Chess Engine Performance Trends", []panel{
		{title: "Move Generation Performance", plot: moves},
		{title: "Evaluation Performance", plot: evals},
		{title: "Test Duration Trends", plot: durations},
		{title: "Board Operations Performance", plot: ops},
	})
}

// VersionComparison writes per-version distributions. It needs at least two versions.
func (r *Renderer) VersionComparison(rows []schema.FlatRow, path string) error {
	byVersion := schema.GroupBy(rows, schema.ColAppVersion)
	if len(byVersion) < 2 {
		return ErrNotEnoughVersions
	}
	versions := schema.SortedKeys(byVersion)

	moves, err := versionBoxPlot("Moves per Second by Version", "Moves per Second", versions, byVersion, schema.ColMovesPerSecond)
	if err != nil {
		return err
	}
	durations, err := versionBoxPlot("Test Duration by Version", "Duration (seconds)", versions, byVersion, schema.ColDurationSeconds)
	if err != nil {
		return err
	}
	evals, err := versionBoxPlot("Evaluations per Second by Version", "Evaluations per Second", versions, byVersion, schema.ColEvaluationsPerSecond)
	if err != nil {
		return err
	}
	spread, err := versionScatter(versions, byVersion)
	if err != nil {
		return err
	}

	return r.writeHTML(path, "Version Performance Comparison", []panel{
		{title: "Moves per Second by Version", plot: moves},
		{title: "Test Duration by Version", plot: durations},
		{title: "Evaluations per Second by Version", plot: evals},
		{title: "Performance Distribution", plot: spread},
	})
}

// versionBoxPlot draws one box per version that has values for col.
func versionBoxPlot(title, yLabel string, versions []string, byVersion map[string][]schema.FlatRow, col schema.Column) (*plot.Plot, error) {
	p := newPlot(title, "Version", yLabel)
	drawn := 0
	for i, v := range versions {
		values := schema.ColumnValues(byVersion[v], col)
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(24), float64(i), plotter.Values(values))
		if err != nil {
			return nil, err
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
		drawn++
	}
	if drawn == 0 {
		return nil, nil
	}
	p.NominalX(versions...)
	return p, nil
}

// versionScatter spreads each version's moves per second horizontally around its slot.
func versionScatter(versions []string, byVersion map[string][]schema.FlatRow) (*plot.Plot, error) {
	p := newPlot("Performance Distribution", "Version", "Moves per Second")
	drawn := 0
	for i, v := range versions {
		values := schema.ColumnValues(byVersion[v], schema.ColMovesPerSecond)
		if len(values) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(values))
		for j, y := range values {
			pts[j] = plotter.XY{X: float64(i) + jitter(j), Y: y}
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.Color = plotutil.Color(i)
		s.Shape = plotutil.Shape(i)
		p.Add(s)
		p.Legend.Add(v, s)
		drawn++
	}
	if drawn == 0 {
		return nil, nil
	}
	p.X.Tick.Marker = nominalTicks(versions)
	return p, nil
}

// jitter returns a deterministic offset in [-0.2, 0.2).
func jitter(i int) float64 {
	_, frac := math.Modf(float64(i) * 0.618033988749)
	return frac*0.4 - 0.2
}
