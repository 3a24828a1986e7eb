package testutil

import (
	"context"
	"fmt"

	"github.com/tomerk/chessmetrics/internal/engine"
)

// ScriptedEvaluator replays a fixed sequence of evaluations and counts how
// many times it was called, which lets tests assert that analysis ran exactly
// once per position.
type ScriptedEvaluator struct {
	Evals []engine.Evaluation
	Calls int
}

func (s *ScriptedEvaluator) Evaluate(_ context.Context, _ string) (engine.Evaluation, error) {
	if s.Calls >= len(s.Evals) {
		return engine.Evaluation{}, fmt.Errorf("scripted evaluator exhausted after %d calls", s.Calls)
	}
	e := s.Evals[s.Calls]
	s.Calls++
	return e, nil
}

func (s *ScriptedEvaluator) Close() error { return nil }

// CP builds a centipawn evaluation.
func CP(v float64) engine.Evaluation {
	return engine.Evaluation{Kind: engine.Centipawn, Value: v}
}

// MateIn builds a mate evaluation, positive n for white.
func MateIn(n float64) engine.Evaluation {
	return engine.Evaluation{Kind: engine.Mate, Value: n}
}

// FlatEvaluator scores every position with the same centipawn value.
type FlatEvaluator struct {
	Value float64
	Calls int
}

func (f *FlatEvaluator) Evaluate(_ context.Context, _ string) (engine.Evaluation, error) {
	f.Calls++
	return engine.Evaluation{Kind: engine.Centipawn, Value: f.Value}, nil
}

func (f *FlatEvaluator) Close() error { return nil }
