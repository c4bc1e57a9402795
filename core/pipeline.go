package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/perfpipe/core/analyze"
	"github.com/huangsam/perfpipe/core/collect"
	"github.com/huangsam/perfpipe/core/project"
	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/internal/outwriter"
	"github.com/huangsam/perfpipe/schema"
)

// ErrNoPerformanceData is returned when collection finds no test results.
var ErrNoPerformanceData = errors.New("no performance data found")

// Collector is what the collection phase needs from a collector.
type Collector interface {
	CollectAllData(ctx context.Context) (schema.Collection, error)
	GetStatistics() schema.CollectionStats
	ExportToJSON(path string) error
}

// AnalyzerFactory builds an analyzer over projected rows.
type AnalyzerFactory func(rows []schema.FlatRow) *analyze.Analyzer

// Pipeline sequences the collection and analysis phases.
type Pipeline struct {
	cfg         *contract.Config
	collector   Collector
	newAnalyzer AnalyzerFactory
	writer      contract.ReportWriter
	charts      contract.ChartRenderer
	history     contract.HistoryStore

	out  io.Writer
	now  func() time.Time
	rows []schema.FlatRow
}

// NewPipeline wires a pipeline. A nil analyzer factory uses analyze.New;
// nil charts skip every chart and a nil history store records nothing.
func NewPipeline(cfg *contract.Config, collector Collector, newAnalyzer AnalyzerFactory,
	writer contract.ReportWriter, charts contract.ChartRenderer, history contract.HistoryStore,
) *Pipeline {
	if newAnalyzer == nil {
		newAnalyzer = analyze.New
	}
	return &Pipeline{
		cfg:         cfg,
		collector:   collector,
		newAnalyzer: newAnalyzer,
		writer:      writer,
		charts:      charts,
		history:     history,
		out:         os.Stdout,
		now:         time.Now,
	}
}

// Run executes the phases selected by the configured mode and prints the outcome.
func (p *Pipeline) Run(ctx context.Context) schema.PipelineResult {
	result := schema.PipelineResult{
		Mode:       p.cfg.Mode,
		Collection: schema.PhaseSkipped,
		Analysis:   schema.PhaseSkipped,
		OutputDir:  p.cfg.OutputDir,
		DataFile:   p.cfg.DataFile,
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.PrintPipelineHeader(p.out, p.cfg)
	}
	runID := p.beginRun()

	if p.cfg.Mode != schema.AnalyzeOnly {
		stats, err := p.runCollection(ctx)
		if err != nil {
			result.Collection = schema.PhaseFailed
			result.State = schema.StateFailedAtCollection
			result.Err = err
			p.endRun(runID, result)
			outwriter.PrintPipelineResult(p.out, result, p.cfg.NoHTML)
			return result
		}
		result.Collection = schema.PhaseSucceeded
		result.Stats = &stats
	}

	if p.cfg.Mode != schema.CollectOnly {
		artifacts, err := p.runAnalysis(ctx)
		result.Artifacts = artifacts
		if err != nil {
			result.Analysis = schema.PhaseFailed
			result.State = schema.StateFailedAtAnalysis
			result.Err = err
			p.endRun(runID, result)
			outwriter.PrintPipelineResult(p.out, result, p.cfg.NoHTML)
			return result
		}
		result.Analysis = schema.PhaseSucceeded
	}

	result.State = schema.StateCompleted
	p.endRun(runID, result)
	outwriter.PrintPipelineResult(p.out, result, p.cfg.NoHTML)
	return result
}

// runCollection discovers result files, prints statistics and exports the aggregated document.
func (p *Pipeline) runCollection(ctx context.Context) (schema.CollectionStats, error) {
	outwriter.PrintBanner(p.out, "PHASE 1 : DATA COLLECTION")
	_, _ = fmt.Fprintln(p.out, "Collecting chess performance data...")

	collection, err := p.collector.CollectAllData(ctx)
	if err != nil {
		contract.LogWarn("Error occurred during data collection", err)
		return schema.CollectionStats{}, err
	}
	if collection.TotalResults() == 0 {
		_, _ = fmt.Fprintln(p.out, "No performance data found!")
		return schema.CollectionStats{}, ErrNoPerformanceData
	}

	stats := p.collector.GetStatistics()
	if err := outwriter.PrintCollectionStats(p.out, stats); err != nil {
		return stats, err
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		contract.LogWarn("Error occurred during data collection", err)
		return stats, err
	}
	if err := p.collector.ExportToJSON(p.cfg.DataFile); err != nil {
		contract.LogWarn("Error occurred during data collection", err)
		return stats, err
	}
	_, _ = fmt.Fprintf(p.out, "Data exported to %s\n", p.cfg.DataFile)

	if p.cfg.Mode == schema.CollectOnly {
		p.rows = project.Project(collection)
	}
	return stats, nil
}

// runAnalysis loads the aggregated document and produces every artifact inside the output directory.
// Chart failures are recorded on their artifacts; only the text report and summary CSV fail the phase.
func (p *Pipeline) runAnalysis(ctx context.Context) ([]schema.Artifact, error) {
	outwriter.PrintBanner(p.out, "PHASE 2 : DATA ANALYSIS")

	if _, err := os.Stat(p.cfg.DataFile); err != nil {
		missing := &contract.MissingInputError{Path: p.cfg.DataFile}
		_, _ = fmt.Fprintf(p.out, "Data file not found: %s\n", p.cfg.DataFile)
		return nil, missing
	}
	collection, err := collect.LoadCollection(p.cfg.DataFile)
	if err != nil {
		contract.LogWarn("Error occurred during analysis", err)
		return nil, err
	}
	rows := project.Project(collection)
	if len(rows) == 0 {
		contract.LogWarn("Error occurred during analysis", ErrNoPerformanceData)
		return nil, ErrNoPerformanceData
	}
	p.rows = rows

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}

	var artifacts []schema.Artifact
	opts := analyze.RunOptions{NoHTML: p.cfg.NoHTML, GeneratedAt: p.now()}
	err = contract.WithWorkDir(p.cfg.OutputDir, func() error {
		artifacts = analyze.Run(ctx, p.newAnalyzer(rows), opts, p.writer, p.charts, p.out)
		return nil
	})
	if err != nil {
		contract.LogWarn("Error occurred during analysis", err)
		return artifacts, err
	}

	_, _ = fmt.Fprintln(p.out, "\nReport steps:")
	outwriter.PrintArtifacts(p.out, artifacts)
	return artifacts, requiredArtifactsError(artifacts)
}

// requiredArtifactsError reports the first failed text artifact.
func requiredArtifactsError(artifacts []schema.Artifact) error {
	for _, a := range artifacts {
		if a.Path != schema.ReportFileName && a.Path != schema.SummaryFileName {
			continue
		}
		if a.Status == schema.ArtifactFailed {
			return &contract.RenderError{Step: a.Name, Err: errors.New(a.Error)}
		}
	}
	return nil
}

// beginRun records the start of a run. Failures are logged and disable recording.
func (p *Pipeline) beginRun() int64 {
	if p.history == nil {
		return 0
	}
	params := map[string]any{
		"data_dir":   p.cfg.DataDir,
		"output_dir": p.cfg.OutputDir,
		"data_file":  p.cfg.DataFile,
		"no_html":    p.cfg.NoHTML,
	}
	runID, err := p.history.BeginRun(p.now(), p.cfg.Mode, params)
	if err != nil {
		contract.LogWarn("Run history initialization failed", err)
		return 0
	}
	return runID
}

// endRun stores the projected rows and the terminal state of the run.
func (p *Pipeline) endRun(runID int64, result schema.PipelineResult) {
	if p.history == nil || runID <= 0 {
		return
	}
	if err := p.history.RecordRows(runID, p.rows); err != nil {
		contract.LogWarn("Failed to record run rows", err)
	}
	totalFiles := 0
	if result.Stats != nil {
		totalFiles = result.Stats.TotalFiles
	}
	if err := p.history.EndRun(runID, p.now(), result.State, totalFiles, len(p.rows)); err != nil {
		contract.LogWarn("Failed to finalize run history", err)
	}
}
