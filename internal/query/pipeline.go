package query

import (
	"context"

	"github.com/tomerk/chessmetrics/internal/engine"
	"github.com/tomerk/chessmetrics/internal/game"
	"github.com/tomerk/chessmetrics/internal/logger"
	"github.com/tomerk/chessmetrics/internal/stats"
)

// Analyzer owns the game universe and the evaluator. Configure carves a
// working set out of the universe and hands back a FilteredView with its own
// freshly built aggregation tree; no shared tree is ever cleared and
// refilled between queries. The Analyzer is not reentrant: callers serialize
// Configure calls, which keeps evaluator access strictly sequential.
type Analyzer struct {
	universe []*game.Game
	eval     engine.Evaluator
	log      *logger.Logger
}

// NewAnalyzer returns an Analyzer over an empty universe.
func NewAnalyzer(ev engine.Evaluator) *Analyzer {
	return &Analyzer{
		eval: ev,
		log:  logger.Default().WithPrefix("analyzer"),
	}
}

// AddGames appends games to the universe.
func (a *Analyzer) AddGames(games ...*game.Game) {
	a.universe = append(a.universe, games...)
}

// Universe returns the full game universe in insertion order.
func (a *Analyzer) Universe() []*game.Game {
	out := make([]*game.Game, len(a.universe))
	copy(out, a.universe)
	return out
}

// openingNames lists every distinct opening name in the universe, both the
// main names and the full "Main: Variation" forms.
func (a *Analyzer) openingNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, g := range a.universe {
		for _, n := range []string{g.MainOpening(), g.Name()} {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// Configure validates the criteria, intersects the candidate sets into a
// working set, analyzes every working game that has not been analyzed yet,
// and builds a fresh aggregation tree over exactly that subset. An empty
// working set is not an error here; queries on the resulting view report it.
func (a *Analyzer) Configure(ctx context.Context, c Criteria) (*FilteredView, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	// An opening filter naming an opening the universe never saw is a
	// contract violation, with a close-match hint when one exists.
	known := a.openingNames()
	for _, o := range c.Openings {
		found := false
		for _, k := range known {
			if o == k {
				found = true
				break
			}
		}
		if !found {
			return nil, unknownOpeningError(o, suggestOpening(o, known))
		}
	}

	var working []*game.Game
	for _, g := range a.universe {
		if c.matches(g) {
			working = append(working, g)
		}
	}
	a.log.Debug("configured working set: %d of %d games", len(working), len(a.universe))

	tree := stats.NewTree()
	for _, g := range working {
		if err := g.Analyze(ctx, a.eval); err != nil {
			return nil, err
		}
		if err := tree.AddGame(g); err != nil {
			return nil, err
		}
	}

	return &FilteredView{games: working, tree: tree}, nil
}

// FilteredView is the result of one Configure call: the working set and the
// aggregation tree built over it. Views are immutable snapshots; a new query
// configuration produces a new view.
type FilteredView struct {
	games []*game.Game
	tree  *stats.Tree
}

// Games returns the working set in universe order.
func (v *FilteredView) Games() []*game.Game {
	out := make([]*game.Game, len(v.games))
	copy(out, v.games)
	return out
}

// Size returns the number of games in the working set.
func (v *FilteredView) Size() int { return len(v.games) }

// Tree returns the view's opening aggregation tree.
func (v *FilteredView) Tree() *stats.Tree { return v.tree }
