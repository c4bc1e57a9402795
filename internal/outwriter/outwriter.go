// Package outwriter has output and writer logic.
package outwriter

import (
	"io"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct {
	cfg *contract.Config
}

var _ contract.ReportWriter = (*OutWriter)(nil)

// NewOutWriter creates a new instance of the output writer.
// A nil config uses text output to stdout with default precision.
func NewOutWriter(cfg *contract.Config) *OutWriter {
	if cfg == nil {
		cfg = &contract.Config{Output: schema.TextOut, Precision: contract.DefaultPrecision}
	}
	return &OutWriter{cfg: cfg}
}

// WriteOverview prints the console overview tables.
func (ow *OutWriter) WriteOverview(w io.Writer, ov schema.Overview) error {
	return writeOverview(w, ov, ow.cfg.Precision)
}

// WriteTextReport writes the fixed-layout text report to path.
func (ow *OutWriter) WriteTextReport(path string, report schema.Report) error {
	if err := writeArtifact(path, func(w io.Writer) error {
		return writeTextReport(w, report)
	}); err != nil {
		return err
	}
	contract.LogInfo("Performance report saved to %s", path)
	return nil
}

// WriteSummaryCSV writes the per-version summary to path.
func (ow *OutWriter) WriteSummaryCSV(path string, rows []schema.VersionSummary) error {
	if err := writeArtifact(path, func(w io.Writer) error {
		return writeSummaryCSV(w, rows)
	}); err != nil {
		return err
	}
	contract.LogInfo("Performance summary exported to %s", path)
	return nil
}

// WriteRows prints the projected table using the configured output format.
func (ow *OutWriter) WriteRows(rows []schema.FlatRow) error {
	return writeRowResults(rows, ow.cfg)
}

// WriteCollectionStats prints the collector statistics using the configured output format.
func (ow *OutWriter) WriteCollectionStats(stats schema.CollectionStats) error {
	return writeCollectionStats(stats, ow.cfg)
}
