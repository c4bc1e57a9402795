package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/perfpipe/internal/contract"
	"github.com/huangsam/perfpipe/schema"
)

// GeneratedFile is an expected pipeline output with its description.
type GeneratedFile struct {
	Name        string
	Description string
}

// ExpectedFiles lists the outputs of a full run. HTML charts are included unless noHTML.
func ExpectedFiles(noHTML bool) []GeneratedFile {
	files := []GeneratedFile{
		{schema.DataFileName, "Raw collected data"},
		{schema.ReportFileName, "Detailed analysis report"},
		{schema.SummaryFileName, "Summary statistics"},
		{schema.TestTypeFileName, "Test type analysis chart"},
	}
	if !noHTML {
		files = append(files,
			GeneratedFile{schema.TrendsFileName, "Interactive performance trends"},
			GeneratedFile{schema.VersionFileName, "Interactive version comparison"},
			GeneratedFile{schema.DashboardFileName, "Interactive dashboard"},
		)
	}
	return files
}

// PrintBanner prints a title between two rules of "=".
func PrintBanner(w io.Writer, title string) {
	rule := strings.Repeat("=", 60)
	_, _ = fmt.Fprintf(w, "%s\n%s\n%s\n", rule, contract.BannerColor.Sprint(title), rule)
}

// PrintPipelineHeader prints the run parameters before any phase starts.
func PrintPipelineHeader(w io.Writer, cfg *contract.Config) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "Default search paths"
	}
	html := "Enabled"
	if cfg.NoHTML {
		html = "Disabled"
	}
	_, _ = fmt.Fprintf(w, "Starting Chess Engine Performance Analysis pipeline\n"+
		"Data directory: %s\nOutput directory: %s\nHTML output: %s\nMode: %s\n",
		dataDir, cfg.OutputDir, html, cfg.Mode)
}

// PrintArtifacts prints one status line per report step.
func PrintArtifacts(w io.Writer, artifacts []schema.Artifact) {
	for _, a := range artifacts {
		line := fmt.Sprintf("  %-24s %s", a.Name, contract.GetColorStatus(string(a.Status)))
		if a.Error != "" && a.Status != schema.ArtifactGenerated {
			line += fmt.Sprintf(" (%s)", a.Error)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

// PrintPipelineResult prints the final state, the output directory and the expected files.
func PrintPipelineResult(w io.Writer, result schema.PipelineResult, noHTML bool) {
	switch result.State {
	case schema.StateFailedAtCollection:
		_, _ = fmt.Fprintf(w, "\n%s\n", contract.FailColor.Sprint("Pipeline failed during data collection phase"))
		return
	case schema.StateFailedAtAnalysis:
		_, _ = fmt.Fprintf(w, "\n%s\n", contract.FailColor.Sprint("Pipeline failed during data analysis phase"))
		return
	}

	_, _ = fmt.Fprintln(w)
	PrintBanner(w, "PIPELINE COMPLETED SUCCESSFULLY!")
	dir := result.OutputDir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	_, _ = fmt.Fprintf(w, "Results saved to: %s\n", dir)
	if result.Mode == schema.CollectOnly {
		return
	}

	_, _ = fmt.Fprintln(w, "\nGenerated files:")
	for _, f := range ExpectedFiles(noHTML) {
		if _, err := os.Stat(filepath.Join(result.OutputDir, f.Name)); err == nil {
			_, _ = fmt.Fprintf(w, "%s - %s\n", f.Name, f.Description)
		} else {
			_, _ = fmt.Fprintf(w, "%s - %s - %s\n", f.Name, f.Description, contract.SkipColor.Sprint("not generated"))
		}
	}
}
