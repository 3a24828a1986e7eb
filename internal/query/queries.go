package query

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tomerk/chessmetrics/internal/errors"
	"github.com/tomerk/chessmetrics/internal/game"
	"github.com/tomerk/chessmetrics/internal/stats"
)

// minEloGap is the smallest band width RecordByElo accepts.
const minEloGap = 50

// EloBand is one half-open opponent-rating band [Low, High).
type EloBand struct {
	Low  int
	High int
}

func (b EloBand) String() string {
	return fmt.Sprintf("%d-%d", b.Low, b.High)
}

// Summary is the aggregate error profile of a working set.
type Summary struct {
	Games     int          `json:"games"`
	MeanError float64      `json:"mean_error"`
	StdDev    float64      `json:"std_dev"`
	Record    stats.Record `json:"record"`
}

func (v *FilteredView) empty() error {
	if len(v.games) == 0 {
		return errors.NewEmptyDomainError("no games in the filtered working set")
	}
	return nil
}

// opening resolves a main-opening name in the view's tree. Asking for an
// opening the working set does not contain is a contract violation.
func (v *FilteredView) opening(name string) (*stats.OpeningNode, error) {
	if err := v.empty(); err != nil {
		return nil, err
	}
	node, ok := v.tree.Opening(name)
	if !ok {
		var known []string
		for _, n := range v.tree.Openings() {
			known = append(known, n.Name())
		}
		return nil, unknownOpeningError(name, suggestOpening(name, known))
	}
	return node, nil
}

// ErrorPerMove returns the average error at each move index for one opening.
func (v *FilteredView) ErrorPerMove(opening string) ([]float64, error) {
	node, err := v.opening(opening)
	if err != nil {
		return nil, err
	}
	return node.MoveStats().AvgErrorPerMove(), nil
}

// AvgTimePerMove returns the average thinking time at each move index for
// one opening, truncated to moveBound entries when the bound is positive.
func (v *FilteredView) AvgTimePerMove(opening string, moveBound int) ([]float64, error) {
	node, err := v.opening(opening)
	if err != nil {
		return nil, err
	}
	times := node.MoveStats().AvgTimePerMove()
	if moveBound > 0 && len(times) > moveBound {
		times = times[:moveBound]
	}
	return times, nil
}

// AvgError returns the mean per-game error across the working set.
func (v *FilteredView) AvgError() (float64, error) {
	if err := v.empty(); err != nil {
		return 0, err
	}
	var total float64
	for _, g := range v.games {
		e, err := g.GameError()
		if err != nil {
			return 0, err
		}
		total += e
	}
	return total / float64(len(v.games)), nil
}

// AvgPlyLeavingBook returns the mean ply at which the working set's games
// left their opening book, counting only games whose opening holds at least
// gamesBound games in the working set.
func (v *FilteredView) AvgPlyLeavingBook(gamesBound int) (float64, error) {
	if err := v.empty(); err != nil {
		return 0, err
	}
	total, count := 0, 0
	for _, g := range v.games {
		node, ok := v.tree.Opening(g.MainOpening())
		if !ok || node.TotalGames() < gamesBound {
			continue
		}
		total += g.PlyLeftBook()
		count++
	}
	if count == 0 {
		return 0, errors.NewEmptyDomainError("no opening reaches the minimum game count")
	}
	return float64(total) / float64(count), nil
}

// Record returns the win/draw/loss record of the working set.
func (v *FilteredView) Record() (stats.Record, error) {
	if err := v.empty(); err != nil {
		return stats.Record{}, err
	}
	var r stats.Record
	for _, g := range v.games {
		switch g.Result() {
		case game.Win:
			r.Wins++
		case game.Draw:
			r.Draws++
		default:
			r.Losses++
		}
	}
	return r, nil
}

// RecordByElo buckets the working set by opponent rating into bands of the
// given width and returns the record per band. A gap below the minimum band
// width is a contract violation.
func (v *FilteredView) RecordByElo(gap int) (map[EloBand]stats.Record, error) {
	if gap < minEloGap {
		return nil, errors.NewContractError("elo band gap must be at least %d, got %d", minEloGap, gap)
	}
	if err := v.empty(); err != nil {
		return nil, err
	}
	out := map[EloBand]stats.Record{}
	for _, g := range v.games {
		low := (g.OpponentElo() / gap) * gap
		band := EloBand{Low: low, High: low + gap}
		r := out[band]
		switch g.Result() {
		case game.Win:
			r.Wins++
		case game.Draw:
			r.Draws++
		default:
			r.Losses++
		}
		out[band] = r
	}
	return out, nil
}

// GamesAgainstOpponent returns the working set's games against one opponent,
// in play order.
func (v *FilteredView) GamesAgainstOpponent(name string) ([]*game.Game, error) {
	if err := v.empty(); err != nil {
		return nil, err
	}
	var out []*game.Game
	for _, g := range v.games {
		if g.Opponent() == name {
			out = append(out, g)
		}
	}
	return out, nil
}

// GamesByTimeControl groups the working set by distinct time control, each
// group ordered by game error ascending.
func (v *FilteredView) GamesByTimeControl() (map[string][]*game.Game, error) {
	return v.groupGames(func(g *game.Game) string { return g.TimeControl() })
}

// GamesByDate groups the working set by calendar day, each group ordered by
// game error ascending.
func (v *FilteredView) GamesByDate() (map[string][]*game.Game, error) {
	return v.groupGames(func(g *game.Game) string { return g.Date() })
}

// GamesByResult splits the working set by outcome, each group ordered by
// game error ascending.
func (v *FilteredView) GamesByResult() (map[string][]*game.Game, error) {
	return v.groupGames(func(g *game.Game) string { return g.Result().String() })
}

func (v *FilteredView) groupGames(key func(*game.Game) string) (map[string][]*game.Game, error) {
	if err := v.empty(); err != nil {
		return nil, err
	}
	gameErrs := make(map[*game.Game]float64, len(v.games))
	for _, g := range v.games {
		e, err := g.GameError()
		if err != nil {
			return nil, err
		}
		gameErrs[g] = e
	}
	out := map[string][]*game.Game{}
	for _, g := range v.games {
		k := key(g)
		out[k] = append(out[k], g)
	}
	for _, gs := range out {
		sort.SliceStable(gs, func(i, j int) bool { return gameErrs[gs[i]] < gameErrs[gs[j]] })
	}
	return out, nil
}

// TopGamesByError ranks the working set by per-game error and takes n
// distinct error values, ascending (best games first) or descending.
// Boundary ties are all included.
func (v *FilteredView) TopGamesByError(n int, ascending bool) ([]*game.Game, error) {
	if err := v.empty(); err != nil {
		return nil, err
	}
	errByGame := make(map[*game.Game]float64, len(v.games))
	for _, g := range v.games {
		e, err := g.GameError()
		if err != nil {
			return nil, err
		}
		errByGame[g] = e
	}
	return topN(v.games, n, func(g *game.Game) float64 { return errByGame[g] }, ascending), nil
}

// MostCommonOpenings returns the n most played main openings, dropping
// openings with fewer than minGames games before ranking.
func (v *FilteredView) MostCommonOpenings(n, minGames int) ([]*stats.OpeningNode, error) {
	if err := v.empty(); err != nil {
		return nil, err
	}
	nodes := boundByGames(v.tree.Openings(), minGames, (*stats.OpeningNode).TotalGames)
	return topN(nodes, n, func(o *stats.OpeningNode) float64 {
		return float64(o.TotalGames())
	}, false), nil
}

// MostAccurateOpenings returns the n main openings with the lowest average
// error, subject to the minimum game count.
func (v *FilteredView) MostAccurateOpenings(n, minGames int) ([]*stats.OpeningNode, error) {
	if err := v.empty(); err != nil {
		return nil, err
	}
	nodes := boundByGames(v.tree.Openings(), minGames, (*stats.OpeningNode).TotalGames)
	return topN(nodes, n, (*stats.OpeningNode).AvgError, true), nil
}

// BestScoringOpenings returns the n main openings with the highest score
// rate (points per game), subject to the minimum game count.
func (v *FilteredView) BestScoringOpenings(n, minGames int) ([]*stats.OpeningNode, error) {
	if err := v.empty(); err != nil {
		return nil, err
	}
	nodes := boundByGames(v.tree.Openings(), minGames, (*stats.OpeningNode).TotalGames)
	return topN(nodes, n, func(o *stats.OpeningNode) float64 {
		r := o.Record()
		return r.Points() / float64(r.Total())
	}, false), nil
}

// Summarize computes the working set's error distribution and record.
func (v *FilteredView) Summarize() (Summary, error) {
	record, err := v.Record()
	if err != nil {
		return Summary{}, err
	}
	errs := make([]float64, 0, len(v.games))
	for _, g := range v.games {
		e, err := g.GameError()
		if err != nil {
			return Summary{}, err
		}
		errs = append(errs, e)
	}
	sort.Float64s(errs)
	s := Summary{
		Games:     len(v.games),
		MeanError: stat.Mean(errs, nil),
		Record:    record,
	}
	if len(errs) > 1 {
		s.StdDev = stat.StdDev(errs, nil)
	}
	return s, nil
}
