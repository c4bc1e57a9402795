package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
)

// RunOptions controls which artifacts Run produces and where.
type RunOptions struct {
	Dir         string // Directory for file artifacts; relative names are used when empty
	NoHTML      bool   // Skip HTML charts
	NoCharts    bool   // Skip every chart
	GeneratedAt time.Time
}

// step is one artifact-producing unit of work.
type step struct {
	name string
	file string
	skip string // non-empty means the step is skipped with this reason
	run  func(path string) error
}

// Run produces every analysis artifact in order: overview, charts, text report and summary CSV.
// A failing step is logged and recorded; it never stops the remaining steps.
func Run(ctx context.Context, a *Analyzer, opts RunOptions, writer contract.ReportWriter, charts contract.ChartRenderer, out io.Writer) []schema.Artifact {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	rows := a.Rows()

	htmlSkip := ""
	if opts.NoHTML {
		htmlSkip = "html output disabled"
	}
	chartSkip := ""
	if opts.NoCharts || charts == nil {
		chartSkip = "charts disabled"
		htmlSkip = chartSkip
	}

	steps := []step{
		{name: "overview", run: func(string) error {
			return writer.WriteOverview(out, a.Overview())
		}},
		{name: "performance trends", file: schema.TrendsFileName, skip: htmlSkip, run: func(p string) error {
			return charts.Trends(rows, p)
		}},
		{name: "version comparison", file: schema.VersionFileName, skip: htmlSkip, run: func(p string) error {
			return charts.VersionComparison(rows, p)
		}},
		{name: "test type analysis", file: schema.TestTypeFileName, skip: chartSkip, run: func(p string) error {
			return charts.TestTypeAnalysis(rows, p)
		}},
		{name: "performance dashboard", file: schema.DashboardFileName, skip: htmlSkip, run: func(p string) error {
			return charts.Dashboard(rows, p)
		}},
		{name: "performance report", file: schema.ReportFileName, run: func(p string) error {
			return writer.WriteTextReport(p, a.Report(opts.GeneratedAt))
		}},
		{name: "summary csv", file: schema.SummaryFileName, run: func(p string) error {
			return writer.WriteSummaryCSV(p, a.Summary())
		}},
	}

	artifacts := make([]schema.Artifact, 0, len(steps))
	for _, s := range steps {
		path := s.file
		if path != "" && opts.Dir != "" {
			path = filepath.Join(opts.Dir, s.file)
		}
		art := schema.Artifact{Name: s.name, Path: path}

		switch {
		case ctx.Err() != nil:
			art.Status = schema.ArtifactSkipped
			art.Error = ctx.Err().Error()
		case s.skip != "":
			art.Status = schema.ArtifactSkipped
			art.Error = s.skip
		default:
			art = runStep(s, art)
		}
		artifacts = append(artifacts, art)
	}
	return artifacts
}

// runStep executes one step, converting errors and panics into the artifact status.
func runStep(s step, art schema.Artifact) (result schema.Artifact) {
	result = art
	defer func() {
		if r := recover(); r != nil {
			err := &contract.RenderError{Step: s.name, Err: fmt.Errorf("panic: %v", r)}
			contract.LogWarn("Report step failed", err)
			result.Status = schema.ArtifactFailed
			result.Error = err.Error()
		}
	}()

	err := s.run(art.Path)
	switch {
	case err == nil:
		result.Status = schema.ArtifactGenerated
	case errors.Is(err, contract.ErrSkipped):
		result.Status = schema.ArtifactSkipped
		result.Error = err.Error()
	default:
		rerr := &contract.RenderError{Step: s.name, Err: err}
		contract.LogWarn("Report step failed", rerr)
		result.Status = schema.ArtifactFailed
		result.Error = rerr.Error()
	}
	return result
}
