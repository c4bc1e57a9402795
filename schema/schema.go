// Package schema has the record models, flat rows and report models for all parts of perfpipe.
package schema

import "time"

// CollectionEntry represents one benchmark run file after parsing.
// Entries are created by the collector and never mutated afterwards.
type CollectionEntry struct {
	AppVersion string       `json:"app_version"`
	Timestamp  time.Time    `json:"timestamp"`
	TestGroup  string       `json:"test_group"`
	TestFile   string       `json:"test_file"`
	FilePath   string       `json:"file_path"`
	Results    []TestResult `json:"results"`
}

// TestResult is the outcome of one test inside an entry.
type TestResult struct {
	TestName           string         `json:"testName"`
	EvaluationType     string         `json:"evaluationType,omitempty"`
	GamePhase          string         `json:"gamePhase,omitempty"`
	Operation          string         `json:"operation,omitempty"`
	BoardConfiguration string         `json:"boardConfiguration,omitempty"`
	Performance        *Performance   `json:"performance,omitempty"`
	Scores             *Scores        `json:"scores,omitempty"`
	BoardState         map[string]any `json:"boardState,omitempty"`
	TestMetadata       *TestMetadata  `json:"testMetadata,omitempty"`
}

// Scores holds the evaluation score range of a test.
type Scores struct {
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
	Average float64 `json:"average"`
}

// TestMetadata is the per-result metadata written by the engine.
type TestMetadata struct {
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// Collection is the full set of entries for one run.
type Collection struct {
	Data []CollectionEntry `json:"data"`
}

// TotalResults returns the number of test results across all entries.
func (c Collection) TotalResults() int {
	total := 0
	for _, e := range c.Data {
		total += len(e.Results)
	}
	return total
}

// IsEmpty reports whether the collection holds no entries.
func (c Collection) IsEmpty() bool {
	return len(c.Data) == 0
}
