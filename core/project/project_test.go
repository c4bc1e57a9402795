package project

import (
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/perfpipe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCollection() schema.Collection {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return schema.Collection{Data: []schema.CollectionEntry{
		{
			AppVersion: "1.0.0", Timestamp: ts, TestGroup: "Move Generation", TestFile: "MoveGen", FilePath: "/a.json",
			Results: []schema.TestResult{
				{
					TestName:           "Perft",
					BoardConfiguration: "Start",
					Performance: &schema.Performance{
						DurationMicroseconds: 2_500_000,
						Counters:             schema.MoveGen{MovesGenerated: 10, MovesPerSecond: 4.0, PositionsEvaluated: 12},
					},
				},
				{
					EvaluationType: "Material",
					Performance: &schema.Performance{
						DurationMicroseconds: 0,
						Counters:             schema.Evaluation{EvaluationsPerformed: 3, EvaluationsPerSecond: 6, AverageEvaluationTime: 1.5},
					},
					Scores: &schema.Scores{Minimum: -1, Maximum: 2, Average: 0.5},
				},
			},
		},
		{
			AppVersion: "1.1.0", TestGroup: "Board",
			Results: []schema.TestResult{
				{TestName: "MakeMove", Operation: "make", Performance: &schema.Performance{
					DurationMicroseconds: 7,
					Counters:             schema.Operations{OperationsPerformed: 5, OperationsPerSecond: 9, AverageOperationTime: 0.2},
				}},
				{TestName: "NoPerf"},
				{TestName: "Empty", Performance: &schema.Performance{DurationMicroseconds: 1}},
			},
		},
	}}
}

func TestProjectRowCountAndOrder(t *testing.T) {
	c := sampleCollection()
	rows := Project(c)

	require.Len(t, rows, c.TotalResults())
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.TestName
	}
	assert.Equal(t, []string{"Perft", schema.DefaultTestName, "MakeMove", "NoPerf", "Empty"}, names)
}

func TestProjectVariantColumns(t *testing.T) {
	rows := Project(sampleCollection())

	moveGen := rows[0]
	assert.Equal(t, "1.0.0", moveGen.AppVersion)
	assert.Equal(t, "/a.json", moveGen.FilePath)
	require.NotNil(t, moveGen.DurationSeconds)
	assert.Equal(t, 2.5, *moveGen.DurationSeconds)
	assert.Equal(t, 4.0, *moveGen.MovesPerSecond)
	assert.Equal(t, "Start", *moveGen.BoardConfiguration)
	assert.Nil(t, moveGen.EvaluationsPerSecond)
	assert.Nil(t, moveGen.OperationsPerSecond)
	assert.Nil(t, moveGen.MinScore)

	eval := rows[1]
	assert.Nil(t, eval.MovesPerSecond)
	assert.Equal(t, 6.0, *eval.EvaluationsPerSecond)
	assert.Equal(t, "Material", *eval.EvaluationType)
	assert.Equal(t, -1.0, *eval.MinScore)
	assert.Equal(t, 0.5, *eval.AverageScore)
	assert.Nil(t, eval.BoardConfiguration)

	ops := rows[2]
	assert.Equal(t, 9.0, *ops.OperationsPerSecond)
	assert.Equal(t, "make", *ops.Operation)

	noPerf := rows[3]
	assert.Nil(t, noPerf.DurationMicroseconds)
	assert.Nil(t, noPerf.DurationSeconds)

	empty := rows[4]
	require.NotNil(t, empty.DurationSeconds)
	assert.Nil(t, empty.MovesPerSecond)
	assert.Nil(t, empty.EvaluationsPerSecond)
	assert.Nil(t, empty.OperationsPerSecond)
}

func TestProjectDurationSeconds(t *testing.T) {
	for _, us := range []int64{0, 1, 999_999, 1_000_000, 123_456_789} {
		t.Run(fmt.Sprint(us), func(t *testing.T) {
			c := schema.Collection{Data: []schema.CollectionEntry{{
				Results: []schema.TestResult{{TestName: "t", Performance: &schema.Performance{DurationMicroseconds: us}}},
			}}}
			rows := Project(c)
			require.Len(t, rows, 1)
			assert.Equal(t, float64(us)/1_000_000, *rows[0].DurationSeconds)
			assert.Equal(t, us, *rows[0].DurationMicroseconds)
		})
	}
}

func TestProjectIsPureAndDeterministic(t *testing.T) {
	c := sampleCollection()
	first := Project(c)
	second := Project(c)
	assert.Equal(t, first, second)

	*first[0].MovesPerSecond = 999
	assert.Equal(t, 4.0, c.Data[0].Results[0].Performance.Counters.(schema.MoveGen).MovesPerSecond)
	assert.Equal(t, 4.0, *second[0].MovesPerSecond)
}

func TestProjectEmpty(t *testing.T) {
	assert.Empty(t, Project(schema.Collection{}))
	assert.Empty(t, ProjectEntry(schema.CollectionEntry{}))
}
