// Package project flattens collections into one row per test result.
package project

import "github.com/huangsam/perfpipe/schema"

// microsPerSecond converts durationMicroseconds to duration_seconds.
const microsPerSecond = 1_000_000.0

// Project returns one FlatRow per TestResult, entries first and results second,
// in their original order. It does not modify its input.
func Project(c schema.Collection) []schema.FlatRow {
	rows := make([]schema.FlatRow, 0, c.TotalResults())
	for _, e := range c.Data {
		rows = append(rows, ProjectEntry(e)...)
	}
	return rows
}

// ProjectEntry returns the rows of one entry.
func ProjectEntry(e schema.CollectionEntry) []schema.FlatRow {
	rows := make([]schema.FlatRow, 0, len(e.Results))
	for _, r := range e.Results {
		rows = append(rows, projectResult(e, r))
	}
	return rows
}

func projectResult(e schema.CollectionEntry, r schema.TestResult) schema.FlatRow {
	row := schema.FlatRow{
		AppVersion: e.AppVersion,
		Timestamp:  e.Timestamp,
		TestGroup:  e.TestGroup,
		TestFile:   e.TestFile,
		FilePath:   e.FilePath,
		TestName:   r.TestName,
	}
	if row.TestName == "" {
		row.TestName = schema.DefaultTestName
	}

	if r.Performance != nil {
		us := r.Performance.DurationMicroseconds
		row.DurationMicroseconds = &us
		row.DurationSeconds = ptr(float64(us) / microsPerSecond)

		switch c := r.Performance.Counters.(type) {
		case schema.MoveGen:
			row.MovesGenerated = ptr(c.MovesGenerated)
			row.MovesPerSecond = ptr(c.MovesPerSecond)
			row.PositionsEvaluated = ptr(c.PositionsEvaluated)
		case schema.Evaluation:
			row.EvaluationsPerformed = ptr(c.EvaluationsPerformed)
			row.EvaluationsPerSecond = ptr(c.EvaluationsPerSecond)
			row.AverageEvaluationTime = ptr(c.AverageEvaluationTime)
		case schema.Operations:
			row.OperationsPerformed = ptr(c.OperationsPerformed)
			row.OperationsPerSecond = ptr(c.OperationsPerSecond)
			row.AverageOperationTime = ptr(c.AverageOperationTime)
		}
	}

	row.BoardConfiguration = optionalString(r.BoardConfiguration)
	row.Operation = optionalString(r.Operation)
	row.EvaluationType = optionalString(r.EvaluationType)

	if r.Scores != nil {
		row.MinScore = ptr(r.Scores.Minimum)
		row.MaxScore = ptr(r.Scores.Maximum)
		row.AverageScore = ptr(r.Scores.Average)
	}
	return row
}

func ptr[T any](v T) *T { return &v }

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
