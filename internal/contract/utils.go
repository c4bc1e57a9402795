package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/perfpipe/schema"
)

// Color variables for console output.
var (
	FailColor    = color.New(color.FgRed, color.Bold) // FailColor marks failed phases and artifacts.
	SkipColor    = color.New(color.FgYellow)          // SkipColor marks skipped work.
	SuccessColor = color.New(color.FgGreen)           // SuccessColor marks completed work.
	BannerColor  = color.New(color.FgCyan, color.Bold)
)

// GetColorStatus returns a colored status word for console output.
func GetColorStatus(status string) string {
	switch status {
	// Phase and artifact statuses share the "failed" and "skipped" words.
	case string(schema.PhaseFailed), string(schema.StateFailedAtCollection), string(schema.StateFailedAtAnalysis):
		return FailColor.Sprint(status)
	case string(schema.PhaseSkipped):
		return SkipColor.Sprint(status)
	default:
		return SuccessColor.Sprint(status)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo prints a progress line to stdout.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the parse cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".perfpipe_cache.db"
	}
	return filepath.Join(homeDir, ".perfpipe_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".perfpipe_history.db"
	}
	return filepath.Join(homeDir, ".perfpipe_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
