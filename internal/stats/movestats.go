// Package stats maintains incremental, removable aggregates over analyzed
// games: per-move-index averages and the opening aggregation tree.
package stats

import (
	"math"

	"github.com/tomerk/chessmetrics/internal/game"
)

// Direction is the sign of an aggregate update. Removing a game applies the
// exact inverse of adding it.
type Direction int

const (
	Add    Direction = 1
	Remove Direction = -1
)

// MoveStats accumulates error and thinking-time totals per move index, so
// that averages across a set of games line up move-for-move: index 0 is every
// game's first tracked move, index 1 the second, and so on. Games contribute
// only as far as they lasted.
type MoveStats struct {
	errTotals  []float64
	errCounts  []int
	timeTotals []float64
	timeCounts []int
}

// NewMoveStats returns an empty accumulator.
func NewMoveStats() *MoveStats {
	return &MoveStats{}
}

// Update folds one analyzed game into (or out of) the accumulator. The game
// must be analyzed; its per-move errors and, when present, per-move times are
// applied index by index with the given direction.
func (s *MoveStats) Update(g *game.Game, dir Direction) error {
	errs, err := g.ErrorPerMove()
	if err != nil {
		return err
	}
	for i, e := range errs {
		s.errTotals = grow(s.errTotals, i)
		s.errCounts = growInt(s.errCounts, i)
		s.errTotals[i] += float64(dir) * e
		s.errCounts[i] += int(dir)
	}
	for i, t := range g.TimeSpent() {
		s.timeTotals = grow(s.timeTotals, i)
		s.timeCounts = growInt(s.timeCounts, i)
		s.timeTotals[i] += float64(dir) * t
		s.timeCounts[i] += int(dir)
	}
	return nil
}

// AvgErrorPerMove returns the mean error at each move index, rounded to two
// decimals. Indices no remaining game reaches report zero.
func (s *MoveStats) AvgErrorPerMove() []float64 {
	return averages(s.errTotals, s.errCounts)
}

// AvgTimePerMove returns the mean thinking time at each move index in
// seconds, rounded to two decimals.
func (s *MoveStats) AvgTimePerMove() []float64 {
	return averages(s.timeTotals, s.timeCounts)
}

// Clear resets the accumulator to empty.
func (s *MoveStats) Clear() {
	s.errTotals = nil
	s.errCounts = nil
	s.timeTotals = nil
	s.timeCounts = nil
}

func averages(totals []float64, counts []int) []float64 {
	out := make([]float64, len(totals))
	for i, total := range totals {
		if counts[i] > 0 {
			out[i] = round2(total / float64(counts[i]))
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func grow(s []float64, i int) []float64 {
	for len(s) <= i {
		s = append(s, 0)
	}
	return s
}

func growInt(s []int, i int) []int {
	for len(s) <= i {
		s = append(s, 0)
	}
	return s
}
