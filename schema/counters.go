package schema

import (
	"encoding/json"
	"fmt"
)

// CounterKind identifies which performance counter variant a result carries.
type CounterKind string

// All counter kinds supported.
const (
	NoCounters         CounterKind = "none"
	MoveGenCounters    CounterKind = "move_generation"
	EvaluationCounters CounterKind = "evaluation"
	OperationCounters  CounterKind = "operations"
)

// PerfCounters is the tagged union of test-type-specific counters.
// A nil value means the performance block had no counter keys.
type PerfCounters interface {
	Kind() CounterKind
}

// MoveGen holds move generation counters.
type MoveGen struct {
	MovesGenerated     int64   `json:"movesGenerated"`
	MovesPerSecond     float64 `json:"movesPerSecond"`
	PositionsEvaluated int64   `json:"positionsEvaluated"`
}

// Evaluation holds evaluation counters.
// MovesEvaluated is set when the engine reported the count under the movesEvaluated key.
type Evaluation struct {
	EvaluationsPerformed  int64   `json:"evaluationsPerformed"`
	EvaluationsPerSecond  float64 `json:"evaluationsPerSecond"`
	AverageEvaluationTime float64 `json:"averageEvaluationTimeMicroseconds"`
	MovesEvaluated        bool    `json:"-"`
}

// Operations holds board operation counters.
type Operations struct {
	OperationsPerformed  int64   `json:"operationsPerformed"`
	OperationsPerSecond  float64 `json:"operationsPerSecond"`
	AverageOperationTime float64 `json:"averageOperationTimeMicroseconds"`
}

// Kind implements PerfCounters.
func (MoveGen) Kind() CounterKind { return MoveGenCounters }

// Kind implements PerfCounters.
func (Evaluation) Kind() CounterKind { return EvaluationCounters }

// Kind implements PerfCounters.
func (Operations) Kind() CounterKind { return OperationCounters }

// Performance is the performance block of a test result.
type Performance struct {
	DurationMicroseconds int64
	Counters             PerfCounters
}

// CounterKind returns the kind of the populated variant.
func (p Performance) CounterKind() CounterKind {
	if p.Counters == nil {
		return NoCounters
	}
	return p.Counters.Kind()
}

// rawPerformance mirrors every key the engine may write in a performance block.
type rawPerformance struct {
	DurationMicroseconds  int64    `json:"durationMicroseconds"`
	MovesGenerated        *int64   `json:"movesGenerated,omitempty"`
	MovesPerSecond        *float64 `json:"movesPerSecond,omitempty"`
	PositionsEvaluated    *int64   `json:"positionsEvaluated,omitempty"`
	EvaluationsPerformed  *int64   `json:"evaluationsPerformed,omitempty"`
	MovesEvaluated        *int64   `json:"movesEvaluated,omitempty"`
	EvaluationsPerSecond  *float64 `json:"evaluationsPerSecond,omitempty"`
	AverageEvaluationTime *float64 `json:"averageEvaluationTimeMicroseconds,omitempty"`
	OperationsPerformed   *int64   `json:"operationsPerformed,omitempty"`
	OperationsPerSecond   *float64 `json:"operationsPerSecond,omitempty"`
	AverageOperationTime  *float64 `json:"averageOperationTimeMicroseconds,omitempty"`
}

// UnmarshalJSON selects the counter variant by key presence.
// When several selector keys are present, move generation wins over evaluation,
// and evaluation wins over operations.
func (p *Performance) UnmarshalJSON(data []byte) error {
	var raw rawPerformance
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode performance block: %w", err)
	}
	p.DurationMicroseconds = raw.DurationMicroseconds
	p.Counters = nil

	switch {
	case raw.MovesGenerated != nil:
		p.Counters = MoveGen{
			MovesGenerated:     *raw.MovesGenerated,
			MovesPerSecond:     derefFloat(raw.MovesPerSecond),
			PositionsEvaluated: derefInt(raw.PositionsEvaluated),
		}
	case raw.EvaluationsPerformed != nil || raw.MovesEvaluated != nil:
		ev := Evaluation{
			EvaluationsPerSecond:  derefFloat(raw.EvaluationsPerSecond),
			AverageEvaluationTime: derefFloat(raw.AverageEvaluationTime),
		}
		if raw.EvaluationsPerformed != nil {
			ev.EvaluationsPerformed = *raw.EvaluationsPerformed
		} else {
			ev.EvaluationsPerformed = *raw.MovesEvaluated
			ev.MovesEvaluated = true
		}
		p.Counters = ev
	case raw.OperationsPerformed != nil:
		p.Counters = Operations{
			OperationsPerformed:  *raw.OperationsPerformed,
			OperationsPerSecond:  derefFloat(raw.OperationsPerSecond),
			AverageOperationTime: derefFloat(raw.AverageOperationTime),
		}
	}
	return nil
}

// MarshalJSON writes the block back in the engine's key layout.
func (p Performance) MarshalJSON() ([]byte, error) {
	raw := rawPerformance{DurationMicroseconds: p.DurationMicroseconds}
	switch c := p.Counters.(type) {
	case MoveGen:
		raw.MovesGenerated = &c.MovesGenerated
		raw.MovesPerSecond = &c.MovesPerSecond
		raw.PositionsEvaluated = &c.PositionsEvaluated
	case Evaluation:
		if c.MovesEvaluated {
			raw.MovesEvaluated = &c.EvaluationsPerformed
		} else {
			raw.EvaluationsPerformed = &c.EvaluationsPerformed
		}
		raw.EvaluationsPerSecond = &c.EvaluationsPerSecond
		raw.AverageEvaluationTime = &c.AverageEvaluationTime
	case Operations:
		raw.OperationsPerformed = &c.OperationsPerformed
		raw.OperationsPerSecond = &c.OperationsPerSecond
		raw.AverageOperationTime = &c.AverageOperationTime
	case nil:
	default:
		return nil, fmt.Errorf("unknown counter variant %T", c)
	}
	return json.Marshal(raw)
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
