package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomerk/chessmetrics/internal/book"
	"github.com/tomerk/chessmetrics/internal/engine"
	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/game"
	"github.com/tomerk/chessmetrics/internal/pgn"
	"github.com/tomerk/chessmetrics/internal/testutil"
)

var sharedBook = book.New()

type gameCase struct {
	opponent    string
	opponentElo int
	result      string
	moves       []string
	date        time.Time
	errPawns    float64
}

// buildAnalyzer creates unanalyzed games plus an evaluator scripted so that
// each game's first white move carries exactly errPawns of error when the
// pipeline analyzes the games in order.
func buildAnalyzer(t *testing.T, cases []gameCase) (*Analyzer, *testutil.ScriptedEvaluator) {
	t.Helper()
	var games []*game.Game
	var evals []engine.Evaluation
	for _, s := range cases {
		moves := s.moves
		if moves == nil {
			moves = []string{"e4", "e5"}
		}
		date := s.date
		if date.IsZero() {
			date = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		}
		elo := s.opponentElo
		if elo == 0 {
			elo = 1500
		}
		meta := pgn.GameMeta{
			Date:      date,
			White:     "me",
			Black:     s.opponent,
			WhiteElo:  1500,
			BlackElo:  elo,
			Result:    s.result,
			TimeBase:  300,
			TimeBonus: 2,
		}
		g, err := game.New(meta, pgn.Normalized{Moves: moves}, game.White, sharedBook)
		require.NoError(t, err)
		games = append(games, g)

		// Start at zero, jump to the target eval after the first move and
		// hold it: only white's first move accrues error.
		evals = append(evals, testutil.CP(0))
		for range moves {
			evals = append(evals, testutil.CP(s.errPawns*100))
		}
	}
	ev := &testutil.ScriptedEvaluator{Evals: evals}
	a := NewAnalyzer(ev)
	a.AddGames(games...)
	return a, ev
}

func TestConfigureNoFiltersReturnsUniverse(t *testing.T) {
	a, _ := buildAnalyzer(t, []gameCase{
		{opponent: "A", result: "1-0"},
		{opponent: "B", result: "0-1"},
		{opponent: "C", result: "1/2-1/2"},
	})

	view, err := a.Configure(context.Background(), Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 3, view.Size())
	assert.Len(t, view.Games(), 3)
}

func TestConfigureDisjointPredicatesYieldEmptyDomain(t *testing.T) {
	a, _ := buildAnalyzer(t, []gameCase{
		{opponent: "A", opponentElo: 1800, result: "1-0"},
	})

	// Opponent "A" exists but the Elo bound excludes every game.
	bound := 100
	view, err := a.Configure(context.Background(), Criteria{
		Opponents:      []string{"A"},
		MaxOpponentElo: &bound,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, view.Size())

	_, err = view.AvgError()
	require.Error(t, err)
	assert.True(t, errors.IsEmptyDomain(err))

	_, err = view.Record()
	require.Error(t, err)
	assert.True(t, errors.IsEmptyDomain(err))
}

func TestConfigureAnalyzesEachGameOnce(t *testing.T) {
	a, ev := buildAnalyzer(t, []gameCase{
		{opponent: "A", result: "1-0"},
		{opponent: "B", result: "0-1"},
	})

	_, err := a.Configure(context.Background(), Criteria{})
	require.NoError(t, err)
	calls := ev.Calls
	assert.Equal(t, 6, calls) // two games, three positions each

	// A second configuration reuses the analysis.
	_, err = a.Configure(context.Background(), Criteria{})
	require.NoError(t, err)
	assert.Equal(t, calls, ev.Calls)
}

func TestConfigureValidatesCriteria(t *testing.T) {
	a, _ := buildAnalyzer(t, []gameCase{{opponent: "A", result: "1-0"}})

	_, err := a.Configure(context.Background(), Criteria{Results: []string{"victory"}})
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))

	neg := -1
	_, err = a.Configure(context.Background(), Criteria{MaxOpponentElo: &neg})
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))

	from := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = a.Configure(context.Background(), Criteria{From: &from, To: &to})
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))
}

func TestConfigureUnknownOpeningSuggests(t *testing.T) {
	a, _ := buildAnalyzer(t, []gameCase{{opponent: "A", result: "1-0"}})

	_, err := a.Configure(context.Background(), Criteria{Openings: []string{"King's Pawn"}})
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))
	assert.Contains(t, err.Error(), "King's Pawn Game")
}

func TestTopGamesByErrorLowestFirst(t *testing.T) {
	a, _ := buildAnalyzer(t, []gameCase{
		{opponent: "A", result: "1-0", errPawns: 1.0},
		{opponent: "A", result: "0-1", errPawns: 2.0},
		{opponent: "A", result: "1-0", errPawns: 0.5},
	})

	view, err := a.Configure(context.Background(), Criteria{Opponents: []string{"A"}})
	require.NoError(t, err)

	top, err := view.TopGamesByError(2, true)
	require.NoError(t, err)
	require.Len(t, top, 2)

	e0, _ := top[0].GameError()
	e1, _ := top[1].GameError()
	assert.InDelta(t, 0.5, e0, 1e-9)
	assert.InDelta(t, 1.0, e1, 1e-9)
	assert.Less(t, e0, e1)
}

func TestTopNKeepsBoundaryTies(t *testing.T) {
	items := []float64{3, 3, 2, 1}
	got := topN(items, 2, func(v float64) float64 { return v }, false)
	assert.Equal(t, []float64{3, 3, 2}, got)

	got = topN(items, 2, func(v float64) float64 { return v }, true)
	assert.Equal(t, []float64{1, 2}, got)

	assert.Nil(t, topN(items, 0, func(v float64) float64 { return v }, true))
}

func TestBoundByGames(t *testing.T) {
	items := []int{5, 2, 9, 1}
	got := boundByGames(items, 3, func(v int) int { return v })
	assert.Equal(t, []int{5, 9}, got)
}

func TestRecordByElo(t *testing.T) {
	a, _ := buildAnalyzer(t, []gameCase{
		{opponent: "A", opponentElo: 1510, result: "1-0"},
		{opponent: "B", opponentElo: 1590, result: "0-1"},
		{opponent: "C", opponentElo: 1610, result: "1/2-1/2"},
	})
	view, err := a.Configure(context.Background(), Criteria{})
	require.NoError(t, err)

	_, err = view.RecordByElo(10)
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))

	bands, err := view.RecordByElo(100)
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, 1, bands[EloBand{Low: 1500, High: 1600}].Wins)
	assert.Equal(t, 1, bands[EloBand{Low: 1500, High: 1600}].Losses)
	assert.Equal(t, 1, bands[EloBand{Low: 1600, High: 1700}].Draws)
}

func TestFilterByResultAndDate(t *testing.T) {
	a, _ := buildAnalyzer(t, []gameCase{
		{opponent: "A", result: "1-0", date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{opponent: "A", result: "0-1", date: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)},
		{opponent: "A", result: "1-0", date: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)},
	})

	view, err := a.Configure(context.Background(), Criteria{Results: []string{"win"}})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Size())

	from := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC)
	view, err = a.Configure(context.Background(), Criteria{From: &from, To: &to})
	require.NoError(t, err)
	require.Equal(t, 1, view.Size())
	assert.Equal(t, game.Loss, view.Games()[0].Result())
}

func TestGroupingQueries(t *testing.T) {
	a, _ := buildAnalyzer(t, []gameCase{
		{opponent: "A", result: "1-0", date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), errPawns: 2.0},
		{opponent: "B", result: "0-1", date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), errPawns: 0.5},
		{opponent: "A", result: "1/2-1/2", date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
	})
	view, err := a.Configure(context.Background(), Criteria{})
	require.NoError(t, err)

	against, err := view.GamesAgainstOpponent("A")
	require.NoError(t, err)
	assert.Len(t, against, 2)

	byDate, err := view.GamesByDate()
	require.NoError(t, err)
	require.Len(t, byDate["2024-06-01"], 2)
	assert.Len(t, byDate["2024-06-02"], 1)
	// Each group is ordered by game error ascending.
	assert.Equal(t, "B", byDate["2024-06-01"][0].Opponent())
	assert.Equal(t, "A", byDate["2024-06-01"][1].Opponent())

	byResult, err := view.GamesByResult()
	require.NoError(t, err)
	assert.Len(t, byResult["win"], 1)
	assert.Len(t, byResult["loss"], 1)
	assert.Len(t, byResult["draw"], 1)

	byTC, err := view.GamesByTimeControl()
	require.NoError(t, err)
	assert.Len(t, byTC["300+2"], 3)
}

func TestAvgTimePerMoveBounded(t *testing.T) {
	meta := pgn.GameMeta{
		Date:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		White:     "me",
		Black:     "A",
		WhiteElo:  1500,
		BlackElo:  1500,
		Result:    "1-0",
		TimeBase:  300,
		TimeBonus: 2,
	}
	// White's readings 298 and 295 decode to 4s and 5s under 300+2.
	norm := pgn.Normalized{
		Moves:     []string{"e4", "e5", "Nf3", "Nc6"},
		Clocks:    []string{"0:04:58", "0:04:57", "0:04:55", "0:04:54"},
		HasClocks: true,
	}
	g, err := game.New(meta, norm, game.White, sharedBook)
	require.NoError(t, err)

	a := NewAnalyzer(&testutil.FlatEvaluator{})
	a.AddGames(g)
	view, err := a.Configure(context.Background(), Criteria{})
	require.NoError(t, err)

	times, err := view.AvgTimePerMove("King's Knight Opening", 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, times)

	times, err = view.AvgTimePerMove("King's Knight Opening", 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, times)
}

func TestAvgPlyLeavingBookBound(t *testing.T) {
	evans := []string{"e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5", "b4"}
	a, _ := buildAnalyzer(t, []gameCase{
		{opponent: "A", result: "1-0", moves: evans},
		{opponent: "B", result: "0-1", moves: evans},
		{opponent: "C", result: "1-0", moves: []string{"e4", "c5"}},
	})
	view, err := a.Configure(context.Background(), Criteria{})
	require.NoError(t, err)

	avg, err := view.AvgPlyLeavingBook(1)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, avg, 1e-9)

	// A bound of 2 drops the lone Sicilian game from the mean.
	avg, err = view.AvgPlyLeavingBook(2)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)

	_, err = view.AvgPlyLeavingBook(3)
	assert.True(t, errors.IsEmptyDomain(err))
}

func TestOpeningQueries(t *testing.T) {
	sicilian := []string{"e4", "c5"}
	a, _ := buildAnalyzer(t, []gameCase{
		{opponent: "A", result: "1-0", errPawns: 0.2},
		{opponent: "B", result: "1-0", errPawns: 0.4},
		{opponent: "C", result: "0-1", moves: sicilian, errPawns: 2.0},
	})
	view, err := a.Configure(context.Background(), Criteria{})
	require.NoError(t, err)

	common, err := view.MostCommonOpenings(1, 0)
	require.NoError(t, err)
	require.Len(t, common, 1)
	assert.Equal(t, "King's Pawn Game", common[0].Name())
	assert.Equal(t, 2, common[0].TotalGames())

	// The one-game Sicilian falls below the sample bound.
	accurate, err := view.MostAccurateOpenings(5, 2)
	require.NoError(t, err)
	require.Len(t, accurate, 1)
	assert.Equal(t, "King's Pawn Game", accurate[0].Name())

	errSeries, err := view.ErrorPerMove("King's Pawn Game")
	require.NoError(t, err)
	// Two games, one tracked move each, mean of 0.2 and 0.4 pawns.
	assert.Equal(t, []float64{0.3}, errSeries)

	_, err = view.ErrorPerMove("Dragon")
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))
}

func TestSummarize(t *testing.T) {
	a, _ := buildAnalyzer(t, []gameCase{
		{opponent: "A", result: "1-0", errPawns: 1.0},
		{opponent: "B", result: "0-1", errPawns: 3.0},
	})
	view, err := a.Configure(context.Background(), Criteria{})
	require.NoError(t, err)

	s, err := view.Summarize()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Games)
	assert.InDelta(t, 2.0, s.MeanError, 1e-9)
	assert.InDelta(t, 1.4142, s.StdDev, 1e-3)
	assert.Equal(t, 1, s.Record.Wins)
	assert.Equal(t, 1, s.Record.Losses)
}
