// Package engine wraps an external UCI chess engine as a position evaluator.
package engine

import "context"

// Kind discriminates the two score shapes a UCI engine reports.
type Kind string

const (
	// Centipawn scores are hundredths of a pawn from white's perspective.
	Centipawn Kind = "cp"
	// Mate scores carry the signed number of moves to forced mate, positive
	// when white delivers it.
	Mate Kind = "mate"
)

// Evaluation is one engine verdict on a position, normalized to white's
// perspective regardless of the side to move.
type Evaluation struct {
	Kind     Kind
	Value    float64
	BestMove string
}

// Evaluator scores FEN positions. Implementations must be safe for use from
// a single goroutine at a time; callers serialize access.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string) (Evaluation, error)
	Close() error
}
