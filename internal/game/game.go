// Package game holds the per-game record: the replayed move list, decoded
// clock times, opening classification and the engine-derived error profile.
package game

import (
	"context"
	"fmt"
	"math"
	"time"

	chesslib "github.com/corentings/chess/v2"

	"github.com/tomerk/chessmetrics/internal/book"
	"github.com/tomerk/chessmetrics/internal/engine"
	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/pgn"
)

// Mate scores are folded onto the centipawn axis so that slower mates score
// slightly lower than faster ones.
const (
	forcedMateEval    = 10000.0
	matePlyPunishment = 10.0
)

// Game is one fully parsed game of the tracked player. Engine analysis is a
// separate, one-way step: a Game starts unanalyzed, Analyze moves it to the
// analyzed state exactly once, and there is no way back.
type Game struct {
	meta      pgn.GameMeta
	userColor Color
	result    Result
	opponent  string

	moves []string
	fens  []string

	timeSpent []float64

	mainOpening string
	variation   string
	plyLeftBook int

	analyzed   bool
	errPerMove []float64
}

// New replays a normalized record against the rules of chess, classifies its
// opening against the book and decodes the user's per-move thinking times.
// Any illegal move makes the whole record a parse failure.
func New(meta pgn.GameMeta, norm pgn.Normalized, userColor Color, bk *book.Book) (*Game, error) {
	result, err := ParseResult(meta.Result, userColor)
	if err != nil {
		return nil, err
	}

	g := &Game{
		meta:      meta,
		userColor: userColor,
		result:    result,
		moves:     norm.Moves,
	}
	if userColor == White {
		g.opponent = meta.Black
	} else {
		g.opponent = meta.White
	}

	replay := chesslib.NewGame()
	matcher := book.NewMatcher(bk)
	g.fens = make([]string, 0, len(norm.Moves)+1)
	g.fens = append(g.fens, replay.FEN())
	for i, san := range norm.Moves {
		if err := replay.PushNotationMove(san, chesslib.AlgebraicNotation{}, nil); err != nil {
			return nil, errors.NewParseError("illegal move %q at ply %d: %v", san, i+1, err)
		}
		g.fens = append(g.fens, replay.FEN())
		matcher.Feed(book.NumberedMovetext(norm.Moves[:i+1]), g.isUserPly(i))
	}
	g.mainOpening = matcher.Main()
	g.variation = matcher.Variation()
	g.plyLeftBook = matcher.PlyLeftBook()

	if norm.HasClocks {
		start := 0
		if userColor == Black {
			start = 1
		}
		var userClocks []string
		for i := start; i < len(norm.Clocks); i += 2 {
			userClocks = append(userClocks, norm.Clocks[i])
		}
		g.timeSpent, err = pgn.DecodeClockTimes(userClocks, meta.TimeBase, meta.TimeBonus)
		if err != nil {
			return nil, err
		}
	}

	return g, nil
}

// isUserPly reports whether the ply at index i (0-based) was played by the
// tracked player. White plays the even indices.
func (g *Game) isUserPly(i int) bool {
	return (i%2 == 0) == (g.userColor == White)
}

// Analyze runs the engine over every position of the game and derives the
// per-move error profile for the tracked player. It is idempotent: once a
// game is analyzed, further calls return immediately without touching the
// evaluator. The transition is one-way.
func (g *Game) Analyze(ctx context.Context, ev engine.Evaluator) error {
	if g.analyzed {
		return nil
	}

	evals := make([]float64, len(g.fens))
	for i, fen := range g.fens {
		e, err := ev.Evaluate(ctx, fen)
		if err != nil {
			return err
		}
		evals[i] = foldEvaluation(e)
	}

	errs := make([]float64, 0, (len(g.moves)+1)/2)
	for i := range g.moves {
		if !g.isUserPly(i) {
			continue
		}
		errs = append(errs, math.Abs(evals[i]-evals[i+1])/100)
	}
	g.errPerMove = errs
	g.analyzed = true
	return nil
}

// foldEvaluation maps an engine verdict onto a single centipawn axis. Mate
// scores collapse near the forced-mate ceiling, discounted by how many moves
// the mate takes, so that mate-in-1 outranks mate-in-5.
func foldEvaluation(e engine.Evaluation) float64 {
	if e.Kind != engine.Mate {
		return e.Value
	}
	n := math.Abs(e.Value)
	folded := forcedMateEval - matePlyPunishment*math.Max(n-1, 0)
	if e.Value < 0 {
		return -folded
	}
	return folded
}

// Analyzed reports whether the engine pass has run.
func (g *Game) Analyzed() bool { return g.analyzed }

// ErrorPerMove returns the tracked player's error for each of their moves,
// in pawns. Calling it before Analyze is a contract violation.
func (g *Game) ErrorPerMove() ([]float64, error) {
	if !g.analyzed {
		return nil, errors.NewContractError("game is not analyzed")
	}
	out := make([]float64, len(g.errPerMove))
	copy(out, g.errPerMove)
	return out, nil
}

// GameError returns the mean per-move error of the tracked player.
func (g *Game) GameError() (float64, error) {
	errs, err := g.ErrorPerMove()
	if err != nil {
		return 0, err
	}
	if len(errs) == 0 {
		return 0, nil
	}
	var total float64
	for _, e := range errs {
		total += e
	}
	return total / float64(len(errs)), nil
}

// TimeSpent returns the seconds the tracked player spent on each of their
// moves, or nil when the record carried no clock annotations.
func (g *Game) TimeSpent() []float64 {
	out := make([]float64, len(g.timeSpent))
	copy(out, g.timeSpent)
	return out
}

// Moves returns the game's SAN move list.
func (g *Game) Moves() []string {
	out := make([]string, len(g.moves))
	copy(out, g.moves)
	return out
}

// MoveCount returns the number of plies the tracked player played.
func (g *Game) MoveCount() int {
	n := len(g.moves) / 2
	if len(g.moves)%2 == 1 && g.userColor == White {
		n++
	}
	return n
}

// Name renders the full opening classification, "Main: Variation" when a
// variation matched, bare main name otherwise.
func (g *Game) Name() string {
	if g.variation == "" {
		return g.mainOpening
	}
	return fmt.Sprintf("%s: %s", g.mainOpening, g.variation)
}

// MainOpening returns the matched opening family name.
func (g *Game) MainOpening() string { return g.mainOpening }

// Variation returns the matched variation, "" when the line had none.
func (g *Game) Variation() string { return g.variation }

// PlyLeftBook returns how many of the tracked player's plies stayed in book.
func (g *Game) PlyLeftBook() int { return g.plyLeftBook }

// Opponent returns the opponent's name.
func (g *Game) Opponent() string { return g.opponent }

// OpponentElo returns the opponent's rating.
func (g *Game) OpponentElo() int {
	if g.userColor == White {
		return g.meta.BlackElo
	}
	return g.meta.WhiteElo
}

// UserElo returns the tracked player's rating in this game.
func (g *Game) UserElo() int {
	if g.userColor == White {
		return g.meta.WhiteElo
	}
	return g.meta.BlackElo
}

// UserColor returns the side the tracked player held.
func (g *Game) UserColor() Color { return g.userColor }

// Result returns the outcome from the tracked player's perspective.
func (g *Game) Result() Result { return g.result }

// Date returns the game date.
func (g *Game) Date() string { return g.meta.Date.Format("2006-01-02") }

// PlayedAt returns the game date as a time value.
func (g *Game) PlayedAt() time.Time { return g.meta.Date }

// TimeControl renders the time control as "base+bonus" in seconds.
func (g *Game) TimeControl() string {
	return fmt.Sprintf("%d+%d", g.meta.TimeBase, g.meta.TimeBonus)
}

// TimeBase returns the base clock time in seconds.
func (g *Game) TimeBase() int { return g.meta.TimeBase }

// TimeBonus returns the per-move increment in seconds.
func (g *Game) TimeBonus() int { return g.meta.TimeBonus }
