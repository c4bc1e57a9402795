package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/perfpipe/core/collect"
	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/internal/iocache"
	"github.com/huangsam/perfpipe/internal/outwriter"
	"github.com/huangsam/perfpipe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const resultFile = `{
  "metadata": {"timestamp": "2025-03-01T10:00:00Z", "testGroup": "Move Generation", "testFile": "MoveGenerationPerformanceTests"},
  "results": [
    {
      "testName": "Perft Depth 3",
      "boardConfiguration": "Starting Position",
      "performance": {"durationMicroseconds": 2000000, "movesGenerated": 8902, "movesPerSecond": 4451.0, "positionsEvaluated": 9322},
      "testMetadata": {"timestamp": "2025-03-01T10:00:00Z", "version": "1.2.0"}
    },
    {
      "testName": "Perft Depth 4",
      "boardConfiguration": "Starting Position",
      "performance": {"durationMicroseconds": 4000000, "movesGenerated": 197281, "movesPerSecond": 49320.25, "positionsEvaluated": 206603},
      "testMetadata": {"timestamp": "2025-03-01T10:00:00Z", "version": "1.2.0"}
    }
  ]
}`

var fixedNow = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

// fakeCollector returns a canned collection or error.
type fakeCollector struct {
	collection schema.Collection
	err        error
	exported   string
}

func (f *fakeCollector) CollectAllData(context.Context) (schema.Collection, error) {
	return f.collection, f.err
}

func (f *fakeCollector) GetStatistics() schema.CollectionStats {
	return schema.CollectionStats{TotalFiles: len(f.collection.Data), TotalTestResults: f.collection.TotalResults()}
}

func (f *fakeCollector) ExportToJSON(path string) error {
	f.exported = path
	return collect.WriteCollection(path, f.collection)
}

// fakeCharts writes a marker file for every chart.
type fakeCharts struct {
	calls []string
}

func (c *fakeCharts) write(name, path string) error {
	c.calls = append(c.calls, name)
	return os.WriteFile(path, []byte(name), 0o644)
}

func (c *fakeCharts) Trends(_ []schema.FlatRow, path string) error {
	return c.write("trends", path)
}

func (c *fakeCharts) VersionComparison(_ []schema.FlatRow, path string) error {
	return c.write("versions", path)
}

func (c *fakeCharts) TestTypeAnalysis(_ []schema.FlatRow, path string) error {
	return c.write("test types", path)
}

func (c *fakeCharts) Dashboard([]schema.FlatRow, string) error {
	c.calls = append(c.calls, "dashboard")
	return errors.New("dashboard exploded")
}

// failingWriter fails the text report and delegates everything else.
type failingWriter struct {
	*outwriter.OutWriter
}

func (failingWriter) WriteTextReport(string, schema.Report) error {
	return errors.New("disk full")
}

func setupDirs(t *testing.T) (dataDir, outDir string) {
	t.Helper()
	root := t.TempDir()
	dataDir = filepath.Join(root, "data")
	outDir = filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "perft.json"), []byte(resultFile), 0o644))
	return dataDir, outDir
}

func testConfig(dataDir, outDir string, mode schema.RunMode) *contract.Config {
	return &contract.Config{
		DataDir:   dataDir,
		OutputDir: outDir,
		DataFile:  filepath.Join(outDir, schema.DataFileName),
		Mode:      mode,
		Output:    schema.TextOut,
		Precision: contract.DefaultPrecision,
	}
}

func newTestPipeline(cfg *contract.Config, c Collector, w contract.ReportWriter, charts contract.ChartRenderer, h contract.HistoryStore) (*Pipeline, *bytes.Buffer) {
	var buf bytes.Buffer
	p := NewPipeline(cfg, c, nil, w, charts, h)
	p.out = &buf
	p.now = func() time.Time { return fixedNow }
	return p, &buf
}

func TestPipelineFullRun(t *testing.T) {
	dataDir, outDir := setupDirs(t)
	cfg := testConfig(dataDir, outDir, schema.FullRun)
	charts := &fakeCharts{}
	p, out := newTestPipeline(cfg, collect.New(collect.Options{SearchRoot: dataDir}, nil), outwriter.NewOutWriter(cfg), charts, nil)

	result := p.Run(context.Background())
	require.True(t, result.OK(), "err: %v", result.Err)
	assert.Equal(t, schema.StateCompleted, result.State)
	assert.Equal(t, schema.PhaseSucceeded, result.Collection)
	assert.Equal(t, schema.PhaseSucceeded, result.Analysis)
	require.NotNil(t, result.Stats)
	assert.Equal(t, 2, result.Stats.TotalTestResults)

	for _, name := range []string{schema.DataFileName, schema.ReportFileName, schema.SummaryFileName, schema.TrendsFileName} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	assert.NoFileExists(t, filepath.Join(outDir, schema.DashboardFileName))
	assert.Equal(t, []string{"trends", "versions", "test types", "dashboard"}, charts.calls)

	var dashboard schema.Artifact
	for _, a := range result.Artifacts {
		if a.Name == "performance dashboard" {
			dashboard = a
		}
	}
	assert.Equal(t, schema.ArtifactFailed, dashboard.Status)

	text := out.String()
	assert.Contains(t, text, "Starting Chess Engine Performance Analysis pipeline")
	assert.Contains(t, text, "PHASE 1 : DATA COLLECTION")
	assert.Contains(t, text, "PHASE 2 : DATA ANALYSIS")
	assert.Contains(t, text, "PIPELINE COMPLETED SUCCESSFULLY!")
	assert.Contains(t, text, "not generated")
}

func TestPipelineSuppressHeader(t *testing.T) {
	dataDir, outDir := setupDirs(t)
	cfg := testConfig(dataDir, outDir, schema.CollectOnly)
	p, out := newTestPipeline(cfg, collect.New(collect.Options{SearchRoot: dataDir}, nil), outwriter.NewOutWriter(cfg), nil, nil)

	result := p.Run(WithSuppressHeader(context.Background()))
	require.True(t, result.OK())
	assert.NotContains(t, out.String(), "Starting Chess Engine Performance Analysis pipeline")
}

func TestPipelineCollectOnly(t *testing.T) {
	dataDir, outDir := setupDirs(t)
	cfg := testConfig(dataDir, outDir, schema.CollectOnly)
	p, out := newTestPipeline(cfg, collect.New(collect.Options{SearchRoot: dataDir}, nil), outwriter.NewOutWriter(cfg), &fakeCharts{}, nil)

	result := p.Run(context.Background())
	require.True(t, result.OK())
	assert.Equal(t, schema.PhaseSkipped, result.Analysis)
	assert.Empty(t, result.Artifacts)
	assert.FileExists(t, cfg.DataFile)
	assert.NoFileExists(t, filepath.Join(outDir, schema.ReportFileName))
	assert.NotContains(t, out.String(), "PHASE 2")
	assert.NotContains(t, out.String(), "Generated files:")
}

func TestPipelineAnalyzeOnly(t *testing.T) {
	t.Run("existing data file", func(t *testing.T) {
		dataDir, outDir := setupDirs(t)
		collectCfg := testConfig(dataDir, outDir, schema.CollectOnly)
		first, _ := newTestPipeline(collectCfg, collect.New(collect.Options{SearchRoot: dataDir}, nil), outwriter.NewOutWriter(collectCfg), nil, nil)
		require.True(t, first.Run(context.Background()).OK())

		cfg := testConfig("", outDir, schema.AnalyzeOnly)
		collector := &fakeCollector{err: errors.New("must not be called")}
		p, out := newTestPipeline(cfg, collector, outwriter.NewOutWriter(cfg), nil, nil)

		result := p.Run(context.Background())
		require.True(t, result.OK(), "err: %v", result.Err)
		assert.Equal(t, schema.PhaseSkipped, result.Collection)
		assert.Nil(t, result.Stats)
		assert.FileExists(t, filepath.Join(outDir, schema.ReportFileName))
		assert.NotContains(t, out.String(), "PHASE 1")
	})

	t.Run("missing data file", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "out")
		cfg := testConfig("", outDir, schema.AnalyzeOnly)
		p, out := newTestPipeline(cfg, &fakeCollector{}, outwriter.NewOutWriter(cfg), nil, nil)

		result := p.Run(context.Background())
		assert.False(t, result.OK())
		assert.Equal(t, schema.StateFailedAtAnalysis, result.State)
		var missing *contract.MissingInputError
		require.ErrorAs(t, result.Err, &missing)
		assert.Equal(t, cfg.DataFile, missing.Path)
		assert.Contains(t, out.String(), "Data file not found")
		assert.Contains(t, out.String(), "Pipeline failed during data analysis phase")
		assert.NoFileExists(t, filepath.Join(outDir, schema.ReportFileName))
	})
}

func TestPipelineCollectionFailures(t *testing.T) {
	tests := []struct {
		name      string
		collector *fakeCollector
		wantErr   error
		wantOut   string
	}{
		{
			name:      "collector error",
			collector: &fakeCollector{err: context.Canceled},
			wantErr:   context.Canceled,
		},
		{
			name:      "empty collection",
			collector: &fakeCollector{},
			wantErr:   ErrNoPerformanceData,
			wantOut:   "No performance data found!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "out")
			cfg := testConfig("", outDir, schema.FullRun)
			p, out := newTestPipeline(cfg, tt.collector, outwriter.NewOutWriter(cfg), nil, nil)

			result := p.Run(context.Background())
			assert.False(t, result.OK())
			assert.Equal(t, schema.StateFailedAtCollection, result.State)
			assert.Equal(t, schema.PhaseFailed, result.Collection)
			assert.Equal(t, schema.PhaseSkipped, result.Analysis)
			assert.ErrorIs(t, result.Err, tt.wantErr)
			assert.Empty(t, tt.collector.exported)
			assert.Contains(t, out.String(), "Pipeline failed during data collection phase")
			assert.Contains(t, out.String(), tt.wantOut)
			assert.NotContains(t, out.String(), "PHASE 2")
		})
	}
}

func TestPipelineReportFailure(t *testing.T) {
	dataDir, outDir := setupDirs(t)
	cfg := testConfig(dataDir, outDir, schema.FullRun)
	writer := failingWriter{outwriter.NewOutWriter(cfg)}
	p, _ := newTestPipeline(cfg, collect.New(collect.Options{SearchRoot: dataDir}, nil), writer, nil, nil)

	result := p.Run(context.Background())
	assert.Equal(t, schema.StateFailedAtAnalysis, result.State)
	var rerr *contract.RenderError
	require.ErrorAs(t, result.Err, &rerr)
	assert.Equal(t, "performance report", rerr.Step)

	// The summary still runs after the failed report
	assert.FileExists(t, filepath.Join(outDir, schema.SummaryFileName))
}

func TestPipelineRecordsHistory(t *testing.T) {
	dataDir, outDir := setupDirs(t)
	cfg := testConfig(dataDir, outDir, schema.FullRun)

	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", fixedNow, schema.FullRun, mock.Anything).Return(int64(7), nil)
	history.On("RecordRows", int64(7), mock.MatchedBy(func(rows []schema.FlatRow) bool {
		return len(rows) == 2
	})).Return(nil)
	history.On("EndRun", int64(7), fixedNow, schema.StateCompleted, 1, 2).Return(nil)

	p, _ := newTestPipeline(cfg, collect.New(collect.Options{SearchRoot: dataDir}, nil), outwriter.NewOutWriter(cfg), nil, history)
	result := p.Run(context.Background())
	require.True(t, result.OK(), "err: %v", result.Err)
	history.AssertExpectations(t)
}

func TestPipelineHistoryFailuresAreNotFatal(t *testing.T) {
	t.Run("begin fails", func(t *testing.T) {
		dataDir, outDir := setupDirs(t)
		cfg := testConfig(dataDir, outDir, schema.CollectOnly)

		history := &iocache.MockHistoryStore{}
		history.On("BeginRun", fixedNow, schema.CollectOnly, mock.Anything).Return(int64(0), errors.New("db down"))

		p, _ := newTestPipeline(cfg, collect.New(collect.Options{SearchRoot: dataDir}, nil), outwriter.NewOutWriter(cfg), nil, history)
		result := p.Run(context.Background())
		assert.True(t, result.OK())
		history.AssertExpectations(t)
		history.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("end fails", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "out")
		cfg := testConfig("", outDir, schema.FullRun)

		history := &iocache.MockHistoryStore{}
		history.On("BeginRun", fixedNow, schema.FullRun, mock.Anything).Return(int64(3), nil)
		history.On("RecordRows", int64(3), mock.Anything).Return(errors.New("constraint"))
		history.On("EndRun", int64(3), fixedNow, schema.StateFailedAtCollection, 0, 0).Return(errors.New("db down"))

		p, _ := newTestPipeline(cfg, &fakeCollector{}, outwriter.NewOutWriter(cfg), nil, history)
		result := p.Run(context.Background())
		assert.Equal(t, schema.StateFailedAtCollection, result.State)
		assert.ErrorIs(t, result.Err, ErrNoPerformanceData)
		history.AssertExpectations(t)
	})
}

func TestRequiredArtifactsError(t *testing.T) {
	assert.NoError(t, requiredArtifactsError([]schema.Artifact{
		{Name: "performance trends", Path: schema.TrendsFileName, Status: schema.ArtifactFailed, Error: "boom"},
		{Name: "performance report", Path: schema.ReportFileName, Status: schema.ArtifactGenerated},
	}))

	err := requiredArtifactsError([]schema.Artifact{
		{Name: "summary csv", Path: schema.SummaryFileName, Status: schema.ArtifactFailed, Error: "boom"},
	})
	var rerr *contract.RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "summary csv", rerr.Step)
}
