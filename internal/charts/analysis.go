package charts

import (
	"cmp"
	"image/color"
	"math"
	"slices"

	"github.com/huangsam/perfpipe/core/analyze"
	"github.com/huangsam/perfpipe/schema"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const topConfigurations = 5

// heatMetrics are the columns compared across test names.
var heatMetrics = []schema.Column{
	schema.ColDurationSeconds,
	schema.ColMovesPerSecond,
	schema.ColEvaluationsPerSecond,
	schema.ColOperationsPerSecond,
}

// TestTypeAnalysis writes a 2x2 PNG figure comparing test names and board configurations.
func (r *Renderer) TestTypeAnalysis(rows []schema.FlatRow, path string) error {
	named := namedRows(rows)

	heat := metricHeatMap(named)
	byConfig, err := meanBarPlot("Moves per Second by Board Configuration", "Moves per Second",
		rows, schema.ColBoardConfiguration, schema.ColMovesPerSecond)
	if err != nil {
		return err
	}
	durations, err := meanBarPlot("Average Duration by Test Name", "Duration (seconds)",
		named, schema.ColTestName, schema.ColDurationSeconds)
	if err != nil {
		return err
	}
	variation, err := variationPlot(named)
	if err != nil {
		return err
	}

	return writePNG(path, [][]*plot.Plot{
		{heat, byConfig},
		{durations, variation},
	}, figureWidth, figureTall)
}

// Dashboard writes the overview dashboard page.
func (r *Renderer) Dashboard(rows []schema.FlatRow, path string) error {
	daily, err := dailyPlot(rows)
	if err != nil {
		return err
	}
	versions := schema.GroupBy(rows, schema.ColAppVersion)
	box, err := versionBoxPlot("Performance by Version", "Moves per Second",
		schema.SortedKeys(versions), versions, schema.ColMovesPerSecond)
	if err != nil {
		return err
	}
	names := namedRows(rows)
	counts, err := countBarPlot("Test Distribution", names, schema.ColTestName, 0)
	if err != nil {
		return err
	}
	durations, err := meanBarPlot("Average Duration by Test Name", "Duration (seconds)",
		names, schema.ColTestName, schema.ColDurationSeconds)
	if err != nil {
		return err
	}
	configs, err := countBarPlot("Top Board Configurations", rows, schema.ColBoardConfiguration, topConfigurations)
	if err != nil {
		return err
	}

	return r.writeHTML(path, "Chess Engine Performance Dashboard", []panel{
		{title: "Daily Average Performance", plot: daily},
		{title: "Performance by Version", plot: box},
		{title: "Test Distribution", plot: counts},
		{title: "Average Duration by Test Name", plot: durations},
		{title: "Top Board Configurations", plot: configs},
		{title: "Metric Correlations", plot: correlationHeatMap(rows)},
	})
}

// dailyPlot averages moves per second per calendar day.
func dailyPlot(rows []schema.FlatRow) (*plot.Plot, error) {
	sums := make(map[int64][]float64)
	for _, row := range rows {
		v, ok := row.Numeric(schema.ColMovesPerSecond)
		if !ok || row.Timestamp.IsZero() {
			continue
		}
		day := dayOf(row.Timestamp).Unix()
		sums[day] = append(sums[day], v)
	}
	if len(sums) == 0 {
		return nil, nil
	}

	days := make([]int64, 0, len(sums))
	for d := range sums {
		days = append(days, d)
	}
	slices.Sort(days)
	pts := make(plotter.XYs, len(days))
	for i, d := range days {
		pts[i] = plotter.XY{X: float64(d), Y: stat.Mean(sums[d], nil)}
	}

	p := timePlot("Daily Average Performance", "Moves per Second")
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Color = plotutil.Color(0)
	points.Color = plotutil.Color(0)
	p.Add(line, points)
	return p, nil
}

// barPlot draws one bar per label.
func barPlot(title, yLabel string, labels []string, values []float64) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, nil
	}
	p := newPlot(title, "", yLabel)
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	return p, nil
}

// meanBarPlot draws the mean of valueCol per value of groupCol.
func meanBarPlot(title, yLabel string, rows []schema.FlatRow, groupCol, valueCol schema.Column) (*plot.Plot, error) {
	groups := schema.GroupBy(rows, groupCol)
	var labels []string
	var means []float64
	for _, key := range schema.SortedKeys(groups) {
		values := schema.ColumnValues(groups[key], valueCol)
		if len(values) == 0 {
			continue
		}
		labels = append(labels, key)
		means = append(means, stat.Mean(values, nil))
	}
	return barPlot(title, yLabel, labels, means)
}

// countBarPlot draws row counts per value of col, largest first. A positive limit keeps the top entries.
func countBarPlot(title string, rows []schema.FlatRow, col schema.Column, limit int) (*plot.Plot, error) {
	groups := schema.GroupBy(rows, col)
	keys := schema.SortedKeys(groups)
	slices.SortStableFunc(keys, func(a, b string) int {
		return cmp.Compare(len(groups[b]), len(groups[a]))
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	counts := make([]float64, len(keys))
	for i, k := range keys {
		counts[i] = float64(len(groups[k]))
	}
	return barPlot(title, "Count", keys, counts)
}

// variationPlot draws the coefficient of variation of moves per second per test name.
func variationPlot(rows []schema.FlatRow) (*plot.Plot, error) {
	groups := schema.GroupBy(rows, schema.ColTestName)
	var labels []string
	var cvs []float64
	for _, key := range schema.SortedKeys(groups) {
		cv := analyze.CoefficientOfVariation(schema.ColumnValues(groups[key], schema.ColMovesPerSecond))
		if cv == nil {
			continue
		}
		labels = append(labels, key)
		cvs = append(cvs, *cv)
	}
	return barPlot("Performance Consistency (CV)", "Coefficient of Variation", labels, cvs)
}

// matrix is a heat map grid indexed as z[row][col].
type matrix struct {
	z [][]float64
}

func (m matrix) Dims() (c, r int)   { return len(m.z[0]), len(m.z) }
func (m matrix) Z(c, r int) float64 { return m.z[r][c] }
func (m matrix) X(c int) float64    { return float64(c) }
func (m matrix) Y(r int) float64    { return float64(r) }

func heatMapPlot(title string, m matrix, lo, hi float64, xLabels, yLabels []string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	h := plotter.NewHeatMap(m, palette.Heat(12, 1))
	h.Min, h.Max = lo, hi
	h.NaN = color.Gray{Y: 220}
	p.Add(h)
	p.X.Tick.Marker = nominalTicks(xLabels)
	p.Y.Tick.Marker = nominalTicks(yLabels)
	return p
}

// metricHeatMap compares test names across metrics. Each metric is scaled to [0, 1].
func metricHeatMap(rows []schema.FlatRow) *plot.Plot {
	groups := schema.GroupBy(rows, schema.ColTestName)
	if len(groups) == 0 {
		return nil
	}
	var metrics []schema.Column
	for _, col := range heatMetrics {
		if schema.HasColumn(rows, col) {
			metrics = append(metrics, col)
		}
	}
	if len(metrics) == 0 {
		return nil
	}

	names := schema.SortedKeys(groups)
	z := make([][]float64, len(names))
	for i, name := range names {
		z[i] = make([]float64, len(metrics))
		for j, col := range metrics {
			z[i][j] = math.NaN()
			if values := schema.ColumnValues(groups[name], col); len(values) > 0 {
				z[i][j] = stat.Mean(values, nil)
			}
		}
	}
	for j := range metrics {
		normalizeColumn(z, j)
	}

	labels := make([]string, len(metrics))
	for i, col := range metrics {
		labels[i] = string(col)
	}
	return heatMapPlot("Test Type Performance Heatmap", matrix{z: z}, 0, 1, labels, names)
}

// normalizeColumn scales column j of z to [0, 1], leaving NaN cells alone.
func normalizeColumn(z [][]float64, j int) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range z {
		if v := z[i][j]; !math.IsNaN(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	for i := range z {
		if math.IsNaN(z[i][j]) {
			continue
		}
		if hi == lo {
			z[i][j] = 0.5
			continue
		}
		z[i][j] = (z[i][j] - lo) / (hi - lo)
	}
}

// correlationHeatMap draws pairwise correlations of the first five numeric columns present.
func correlationHeatMap(rows []schema.FlatRow) *plot.Plot {
	cols := schema.PresentNumericColumns(rows)
	if len(cols) > 5 {
		cols = cols[:5]
	}
	if len(cols) < 2 {
		return nil
	}

	z := make([][]float64, len(cols))
	for i := range cols {
		z[i] = make([]float64, len(cols))
		for j := range cols {
			z[i][j] = pairCorrelation(rows, cols[i], cols[j])
		}
	}
	labels := make([]string, len(cols))
	for i, col := range cols {
		labels[i] = string(col)
	}
	return heatMapPlot("Metric Correlations", matrix{z: z}, -1, 1, labels, labels)
}

// pairCorrelation correlates two columns over rows carrying both. It is NaN when undefined.
func pairCorrelation(rows []schema.FlatRow, a, b schema.Column) float64 {
	var xs, ys []float64
	for _, r := range rows {
		x, okX := r.Numeric(a)
		y, okY := r.Numeric(b)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	c := analyze.Correlation(xs, ys)
	if c == nil {
		return math.NaN()
	}
	return *c
}
