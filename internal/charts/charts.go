// Package charts renders benchmark charts with gonum/plot.
// HTML charts embed one SVG per panel; the test type analysis is a single PNG figure.
package charts

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

var (
	// ErrNoData is returned when a chart has no renderable panel.
	ErrNoData = fmt.Errorf("%w: no data to plot", contract.ErrSkipped)

	// ErrNotEnoughVersions is returned by VersionComparison with fewer than two versions.
	ErrNotEnoughVersions = fmt.Errorf("%w: need at least 2 versions to compare", contract.ErrSkipped)
)

const (
	panelWidth  = 9 * vg.Inch
	panelHeight = 4 * vg.Inch
	figureWidth = 16 * vg.Inch
	figureTall  = 12 * vg.Inch
	dateFormat  = "2006-01-02"
)

// Renderer implements contract.ChartRenderer.
type Renderer struct {
	PanelWidth  vg.Length
	PanelHeight vg.Length
}

// New returns a Renderer with default panel dimensions.
func New() *Renderer {
	return &Renderer{PanelWidth: panelWidth, PanelHeight: panelHeight}
}

var _ contract.ChartRenderer = (*Renderer)(nil)

// panel is one titled plot on an HTML page.
type panel struct {
	title string
	plot  *plot.Plot
}

type pageData struct {
	Title  string
	Panels []pagePanel
}

type pagePanel struct {
	Title string
	SVG   template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; background: #fafafa; color: #222; }
.panel { background: #fff; border: 1px solid #ddd; border-radius: 4px; margin-bottom: 1.5em; padding: 1em; }
.panel h2 { font-size: 1.1em; margin-top: 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Panels}}<div class="panel">
<h2>{{.Title}}</h2>
{{.SVG}}
</div>
{{end}}</body>
</html>
`))

// writeHTML renders the non-nil panels into an HTML page at path.
func (r *Renderer) writeHTML(path, title string, panels []panel) error {
	page := pageData{Title: title}
	for _, p := range panels {
		if p.plot == nil {
			continue
		}
		svg, err := renderSVG(p.plot, r.PanelWidth, r.PanelHeight)
		if err != nil {
			return fmt.Errorf("render panel %q: %w", p.title, err)
		}
		page.Panels = append(page.Panels, pagePanel{Title: p.title, SVG: svg})
	}
	if len(page.Panels) == 0 {
		return ErrNoData
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func renderSVG(p *plot.Plot, w, h vg.Length) (template.HTML, error) {
	c := vgsvg.New(w, h)
	p.Draw(draw.New(c))
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return "", err
	}
	out := buf.String()
	if i := strings.Index(out, "<svg"); i > 0 {
		out = out[i:]
	}
	return template.HTML(out), nil //nolint:gosec // generated by vgsvg
}

// writePNG draws a grid of plots into a single PNG. Nil cells are left blank.
func writePNG(path string, grid [][]*plot.Plot, w, h vg.Length) error {
	drawn := 0
	for _, row := range grid {
		for _, p := range row {
			if p != nil {
				drawn++
			}
		}
	}
	if drawn == 0 {
		return ErrNoData
	}

	img := vgimg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(grid),
		Cols:      len(grid[0]),
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		for j, p := range grid[i] {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// newPlot creates a plot with a title and axis labels.
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

// timePlot configures the X axis for unix-second timestamps.
func timePlot(title, yLabel string) *plot.Plot {
	p := newPlot(title, "Date", yLabel)
	p.X.Tick.Marker = plot.TimeTicks{Format: dateFormat}
	return p
}

// timeSeries returns the (timestamp, value) points of rows sorted by time.
// Rows without a timestamp or without the column are skipped.
func timeSeries(rows []schema.FlatRow, col schema.Column) plotter.XYs {
	var pts plotter.XYs
	for _, r := range rows {
		v, ok := r.Numeric(col)
		if !ok || r.Timestamp.IsZero() {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(r.Timestamp.Unix()), Y: v})
	}
	slices.SortStableFunc(pts, func(a, b plotter.XY) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})
	return pts
}

// seriesPlot draws one line per value of groupCol. It returns nil when no group has points.
func seriesPlot(title, yLabel string, rows []schema.FlatRow, groupCol, valueCol schema.Column) (*plot.Plot, error) {
	groups := schema.GroupBy(rows, groupCol)
	p := timePlot(title, yLabel)
	drawn := 0
	for i, key := range schema.SortedKeys(groups) {
		pts := timeSeries(groups[key], valueCol)
		if len(pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(key, line, points)
		drawn++
	}
	if drawn == 0 {
		return nil, nil
	}
	return p, nil
}

// filterGroup keeps rows whose test group contains substr.
func filterGroup(rows []schema.FlatRow, substr string) []schema.FlatRow {
	var out []schema.FlatRow
	for _, r := range rows {
		if strings.Contains(r.TestGroup, substr) {
			out = append(out, r)
		}
	}
	return out
}

// namedRows drops rows carrying the placeholder test name.
func namedRows(rows []schema.FlatRow) []schema.FlatRow {
	var out []schema.FlatRow
	for _, r := range rows {
		if r.TestName != "" && r.TestName != schema.DefaultTestName {
			out = append(out, r)
		}
	}
	return out
}

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// nominalTicks labels integer positions 0..n-1.
func nominalTicks(labels []string) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: l}
	}
	return ticks
}
